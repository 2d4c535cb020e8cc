package slip_test

import (
	"testing"

	"github.com/0Z3/libose/slip"
	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := []byte("/foo\x00\x00\x00\x00,i\x00\x00\x00\x00\x00\x2a")

	framed := slip.Encode(msg)
	frames, err := slip.DecodeAll(framed)
	assert.NoError(t, err)
	assert.Equal(t, [][]byte{msg}, frames)
}

func TestEncodeEscapesEndAndEsc(t *testing.T) {
	msg := []byte{slip.End, slip.Esc, 0x00, 0x00}

	framed := slip.Encode(msg)
	assert.Equal(t, slip.End, framed[0])
	assert.Equal(t, []byte{slip.Esc, slip.EscEnd, slip.Esc, slip.EscEsc}, framed[1:5])

	frames, err := slip.DecodeAll(framed)
	assert.NoError(t, err)
	assert.Equal(t, [][]byte{msg}, frames)
}

func TestDecoderStreamsPartialWrites(t *testing.T) {
	msg := []byte("/a\x00\x00,\x00\x00\x00")
	framed := slip.Encode(msg)

	d := slip.NewDecoder()

	var got [][]byte
	for _, b := range framed {
		frames, err := d.Write([]byte{b})
		assert.NoError(t, err)
		got = append(got, frames...)
	}

	assert.NoError(t, d.Flush())
	assert.Equal(t, [][]byte{msg}, got)
}

func TestDecoderRejectsNonMultipleOfFour(t *testing.T) {
	_, err := slip.DecodeAll(slip.Encode([]byte{1, 2, 3}))
	assert.Error(t, err)
}

func TestDecoderFlushReportsDanglingEscape(t *testing.T) {
	d := slip.NewDecoder()
	_, err := d.Write([]byte{slip.End, 'a', slip.Esc})
	assert.NoError(t, err)
	assert.ErrorIs(t, d.Flush(), slip.ErrDanglingEscape)
}
