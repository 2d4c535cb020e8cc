package wire_test

import (
	"testing"

	"github.com/0Z3/libose/wire"
	"github.com/stretchr/testify/assert"
)

func TestInt32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	assert.NoError(t, wire.WriteInt32(buf, 0, -42))

	got, err := wire.ReadInt32(buf, 0)
	assert.NoError(t, err)
	assert.EqualValues(t, -42, got)
}

func TestFloat32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	assert.NoError(t, wire.WriteFloat32(buf, 0, 1.5))

	got, err := wire.ReadFloat32(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, float32(1.5), got)
}

func TestStringRoundTripIsPadded(t *testing.T) {
	buf := make([]byte, 8)
	width, err := wire.WriteString(buf, 0, "hi")
	assert.NoError(t, err)
	assert.EqualValues(t, 4, width)

	got, gotWidth, err := wire.ReadString(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, "hi", got)
	assert.Equal(t, width, gotWidth)
}

func TestBlobRoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	content := []byte{1, 2, 3}
	width, err := wire.WriteBlob(buf, 0, content)
	assert.NoError(t, err)
	assert.EqualValues(t, 8, width)

	got, gotWidth, err := wire.ReadBlob(buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, width, gotWidth)
}

func TestReadInt32OutOfRangeErrors(t *testing.T) {
	buf := make([]byte, 2)
	_, err := wire.ReadInt32(buf, 0)
	assert.Error(t, err)
}

func TestAlign(t *testing.T) {
	assert.EqualValues(t, 0, wire.Align(0))
	assert.EqualValues(t, 4, wire.Align(1))
	assert.EqualValues(t, 4, wire.Align(4))
	assert.EqualValues(t, 8, wire.Align(5))
}

func TestIsBundleHeader(t *testing.T) {
	buf := make([]byte, 8)
	copy(buf, wire.BundleHeader)
	assert.True(t, wire.IsBundleHeader(buf, 0))
	assert.False(t, wire.IsBundleHeader([]byte("notbundl"), 0))
}
