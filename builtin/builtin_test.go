package builtin_test

import (
	"testing"

	"github.com/0Z3/libose/builtin"
	"github.com/0Z3/libose/bundle"
	"github.com/0Z3/libose/vm"
	"github.com/0Z3/libose/wire"
	"github.com/stretchr/testify/assert"
)

func newVM(t *testing.T) *vm.VM {
	t.Helper()

	arena := make([]byte, 1<<16)
	v, err := vm.Init(arena, vm.DefaultSizes())
	assert.NoError(t, err)

	v.Builtins = builtin.New().Resolve

	return v
}

func TestResolveFindsKnownNames(t *testing.T) {
	table := builtin.New()

	for _, name := range []string{"drop", "dup", "add", "assign", "lookup", "exec2", "version"} {
		_, ok := table.Resolve(name)
		assert.Truef(t, ok, "expected %q to resolve", name)
	}

	_, ok := table.Resolve("not-a-real-builtin")
	assert.False(t, ok)
}

// TestAddThroughFuncall is scenario 1: push 1 push 2 add leaves a single
// int32 message with value 3, dispatched through the real builtin table
// rather than a stub.
func TestAddThroughFuncall(t *testing.T) {
	v := newVM(t)

	assert.NoError(t, vm.InputMessage(v, bundle.BuildInt32Message("", 1)))
	assert.NoError(t, vm.InputMessage(v, bundle.BuildInt32Message("", 2)))
	assert.NoError(t, vm.InputMessage(v, bundle.BuildEmptyMessage("/!/add")))
	assert.NoError(t, vm.Run(v))

	elems, err := v.Stack.Elements()
	assert.NoError(t, err)
	assert.Len(t, elems, 1)

	msg, _, err := bundle.ParseElement(elems[0])
	assert.NoError(t, err)
	assert.Equal(t, "i", msg.TypeTags)

	n, err := wire.ReadInt32(msg.Payload, 0)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestVersionPushesStringMessage(t *testing.T) {
	v := newVM(t)

	assert.NoError(t, vm.InputMessage(v, bundle.BuildEmptyMessage("/!/version")))
	assert.NoError(t, vm.Run(v))

	top, err := bundle.TopElement(v.Stack)
	assert.NoError(t, err)

	msg, _, err := bundle.ParseElement(top)
	assert.NoError(t, err)
	assert.Equal(t, "s", msg.TypeTags)
}
