package context_test

import (
	"testing"

	"github.com/0Z3/libose/bundle"
	"github.com/0Z3/libose/context"
	"github.com/0Z3/libose/oseerr"
	"github.com/stretchr/testify/assert"
)

func newRoot(t *testing.T) *bundle.Handle {
	t.Helper()

	h, err := bundle.NewRoot(make([]byte, 4096))
	assert.NoError(t, err)

	return h
}

func TestPushContextThenEnterRoundTrips(t *testing.T) {
	root := newRoot(t)

	inner, err := context.PushContext(root, 256, context.Stack)
	assert.NoError(t, err)

	elems, err := inner.Elements()
	assert.NoError(t, err)
	assert.Empty(t, elems)

	again, err := context.Enter(root, context.Stack)
	assert.NoError(t, err)

	size, err := again.Size()
	assert.NoError(t, err)
	assert.EqualValues(t, 16, size)
}

func TestPushContextGrowsIntoFreeSpace(t *testing.T) {
	root := newRoot(t)

	inner, err := context.PushContext(root, 256, context.Stack)
	assert.NoError(t, err)

	before, err := context.SpaceAvailable(root, context.Stack)
	assert.NoError(t, err)
	assert.Greater(t, before, int32(0))

	assert.NoError(t, bundle.PushElement(inner, bundle.BuildInt32Message("", 1)))

	after, err := context.SpaceAvailable(root, context.Stack)
	assert.NoError(t, err)
	assert.Less(t, after, before)
}

func TestDropContextRemovesLastOnly(t *testing.T) {
	root := newRoot(t)

	_, err := context.PushContext(root, 256, context.Stack)
	assert.NoError(t, err)
	_, err = context.PushContext(root, 256, context.Control)
	assert.NoError(t, err)

	err = context.DropContext(root, context.Stack)
	assert.Error(t, err)

	assert.NoError(t, context.DropContext(root, context.Control))

	elems, err := root.Elements()
	assert.NoError(t, err)
	assert.Len(t, elems, 1)
}

func TestGetSetStatusRoundTrip(t *testing.T) {
	root := newRoot(t)

	_, err := context.PushContext(root, 256, context.Status)
	assert.NoError(t, err)

	kind, err := context.GetStatus(root, context.Status)
	assert.NoError(t, err)
	assert.Equal(t, oseerr.None, kind)

	assert.NoError(t, context.SetStatus(root, context.Status, oseerr.Range))

	kind, err = context.GetStatus(root, context.Status)
	assert.NoError(t, err)
	assert.Equal(t, oseerr.Range, kind)
}
