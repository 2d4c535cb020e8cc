package bundle_test

import (
	"testing"

	"github.com/0Z3/libose/bundle"
	"github.com/0Z3/libose/oseerr"
	"github.com/stretchr/testify/assert"
)

func newStack(t *testing.T) *bundle.Handle {
	t.Helper()

	h, err := bundle.NewRoot(make([]byte, 4096))
	assert.NoError(t, err)

	return h
}

func push(t *testing.T, h *bundle.Handle, address string, v int32) {
	t.Helper()
	assert.NoError(t, bundle.PushElement(h, bundle.BuildInt32Message(address, v)))
}

func elemCount(t *testing.T, h *bundle.Handle) int {
	t.Helper()

	elems, err := h.Elements()
	assert.NoError(t, err)

	return len(elems)
}

func TestDupDropIsIdentity(t *testing.T) {
	h := newStack(t)
	push(t, h, "", 1)

	before, err := h.Elements()
	assert.NoError(t, err)

	assert.NoError(t, bundle.Dup(h))
	assert.NoError(t, bundle.Drop(h))

	after, err := h.Elements()
	assert.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSwapSwapIsIdentity(t *testing.T) {
	h := newStack(t)
	push(t, h, "", 1)
	push(t, h, "", 2)

	before, err := h.Elements()
	assert.NoError(t, err)

	assert.NoError(t, bundle.Swap(h))
	assert.NoError(t, bundle.Swap(h))

	after, err := h.Elements()
	assert.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRotThreeTimesIsIdentity(t *testing.T) {
	h := newStack(t)
	push(t, h, "", 1)
	push(t, h, "", 2)
	push(t, h, "", 3)

	before, err := h.Elements()
	assert.NoError(t, err)

	assert.NoError(t, bundle.Rot(h))
	assert.NoError(t, bundle.Rot(h))
	assert.NoError(t, bundle.Rot(h))

	after, err := h.Elements()
	assert.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTwoSwapTwiceIsIdentity(t *testing.T) {
	h := newStack(t)
	push(t, h, "", 1)
	push(t, h, "", 2)
	push(t, h, "", 3)
	push(t, h, "", 4)

	before, err := h.Elements()
	assert.NoError(t, err)

	assert.NoError(t, bundle.TwoSwap(h))
	assert.NoError(t, bundle.TwoSwap(h))

	after, err := h.Elements()
	assert.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddLeavesSingleSum(t *testing.T) {
	h := newStack(t)
	push(t, h, "", 1)
	push(t, h, "", 2)

	assert.NoError(t, bundle.Add(h))
	assert.Equal(t, 1, elemCount(t, h))

	top, err := bundle.TopElement(h)
	assert.NoError(t, err)

	msg, isBundle, err := bundle.ParseElement(top)
	assert.NoError(t, err)
	assert.False(t, isBundle)
	assert.EqualValues(t, 3, int32(msg.Payload[3]))
}

func TestBundleAllUnpackIsIdentity(t *testing.T) {
	h := newStack(t)
	push(t, h, "/a", 1)
	push(t, h, "/b", 2)

	before, err := h.Elements()
	assert.NoError(t, err)

	assert.NoError(t, bundle.BundleAll(h))
	assert.NoError(t, bundle.Unpack(h))

	after, err := h.Elements()
	assert.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDropOnEmptyReportsElemCount(t *testing.T) {
	h := newStack(t)
	err := bundle.Drop(h)
	assert.Error(t, err)

	var oe *oseerr.Error
	if assert.ErrorAs(t, err, &oe) {
		assert.Equal(t, oseerr.ElemCount, oe.Kind)
	}
}
