package main

import (
	"testing"

	"github.com/0Z3/libose/bundle"
	"github.com/0Z3/libose/wire"
	"github.com/stretchr/testify/assert"
)

func TestAssembleSkipsBlankAndCommentLines(t *testing.T) {
	out, err := assemble("\n# a comment\n\n/@/x\n")
	assert.NoError(t, err)

	elems, err := bundle.AsHandle(out).Elements()
	assert.NoError(t, err)
	assert.Len(t, elems, 1)
}

func TestAssembleLineBuildsMultiItemMessage(t *testing.T) {
	elem, err := assembleLine("/foo i 1000 s hello")
	assert.NoError(t, err)

	msg, isBundle, err := bundle.ParseElement(elem)
	assert.NoError(t, err)
	assert.False(t, isBundle)
	assert.Equal(t, "/foo", msg.Address)
	assert.Equal(t, "is", msg.TypeTags)

	n, err := wire.ReadInt32(msg.Payload, 0)
	assert.NoError(t, err)
	assert.EqualValues(t, 1000, n)
}

func TestAssembleLineRejectsMissingAddress(t *testing.T) {
	_, err := assembleLine("i 1000")
	assert.Error(t, err)
}

func TestEncodeItemRejectsInvalidHexBlob(t *testing.T) {
	_, _, err := encodeItem('b', "not-hex")
	assert.Error(t, err)
}

func TestEncodeItemRoundTripsBlob(t *testing.T) {
	buf, width, err := encodeItem('b', "cafe")
	assert.NoError(t, err)

	data, _, err := wire.ReadBlob(buf[:width], 0)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xca, 0xfe}, data)
}
