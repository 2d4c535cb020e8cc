package vm_test

import (
	"testing"

	"github.com/0Z3/libose/bundle"
	"github.com/0Z3/libose/oseerr"
	"github.com/0Z3/libose/vm"
	"github.com/0Z3/libose/wire"
	"github.com/stretchr/testify/assert"
)

func newVM(t *testing.T) *vm.VM {
	t.Helper()

	arena := make([]byte, 1<<16)
	v, err := vm.Init(arena, vm.DefaultSizes())
	assert.NoError(t, err)

	return v
}

func TestInitPartitionsAllSevenContexts(t *testing.T) {
	v := newVM(t)
	assert.NotNil(t, v.Cache)
	assert.NotNil(t, v.Input)
	assert.NotNil(t, v.Stack)
	assert.NotNil(t, v.Environment)
	assert.NotNil(t, v.Control)
	assert.NotNil(t, v.Dump)
	assert.NotNil(t, v.Output)
}

// TestAssignThenLookup is scenario 4: `assign /x = 5 then $/x` leaves
// int32 5 on the stack and a single Environment binding at address /x.
func TestAssignThenLookup(t *testing.T) {
	v := newVM(t)

	assert.NoError(t, vm.InputMessage(v, bundle.BuildInt32Message("", 5)))
	assert.NoError(t, vm.InputMessage(v, bundle.BuildEmptyMessage("/@/x")))
	assert.NoError(t, vm.Run(v))

	env, err := v.Environment.Elements()
	assert.NoError(t, err)
	assert.Len(t, env, 1)

	msg, isBundle, err := bundle.ParseElement(env[0])
	assert.NoError(t, err)
	assert.False(t, isBundle)
	assert.Equal(t, "/x", msg.Address)

	assert.NoError(t, vm.InputMessage(v, bundle.BuildEmptyMessage("/$/x")))
	assert.NoError(t, vm.Run(v))

	top, err := bundle.TopElement(v.Stack)
	assert.NoError(t, err)

	topMsg, isBundle, err := bundle.ParseElement(top)
	assert.NoError(t, err)
	assert.False(t, isBundle)
	assert.Equal(t, "i", topMsg.TypeTags)

	n, err := wire.ReadInt32(topMsg.Payload, 0)
	assert.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

// TestFuncallDropOnEmptyStackSetsElemCount is scenario 5's failure branch:
// funcall "/!/drop" on an empty stack sets status ElemCount, which the
// evaluator then clears and reports by pushing the code onto Stack.
func TestFuncallDropOnEmptyStackSetsElemCount(t *testing.T) {
	v := newVM(t)
	v.Builtins = func(name string) (vm.BuiltinFunc, bool) {
		if name != "drop" {
			return nil, false
		}

		return func(v *vm.VM) error { return bundle.Drop(v.Stack) }, true
	}

	assert.NoError(t, vm.InputMessage(v, bundle.BuildEmptyMessage("/!/drop")))
	assert.NoError(t, vm.Run(v))

	kind, err := vm.Status(v)
	assert.NoError(t, err)
	assert.Equal(t, oseerr.None, kind)

	top, err := bundle.TopElement(v.Stack)
	assert.NoError(t, err)

	topMsg, _, err := bundle.ParseElement(top)
	assert.NoError(t, err)

	code, err := wire.ReadInt32(topMsg.Payload, 0)
	assert.NoError(t, err)
	assert.EqualValues(t, oseerr.ElemCount, code)
}

// TestFuncallDropRemovesTopElement is scenario 5's success branch.
func TestFuncallDropRemovesTopElement(t *testing.T) {
	v := newVM(t)
	v.Builtins = func(name string) (vm.BuiltinFunc, bool) {
		if name != "drop" {
			return nil, false
		}

		return func(v *vm.VM) error { return bundle.Drop(v.Stack) }, true
	}

	assert.NoError(t, vm.InputMessage(v, bundle.BuildInt32Message("", 1)))
	assert.NoError(t, vm.InputMessage(v, bundle.BuildEmptyMessage("/!/drop")))
	assert.NoError(t, vm.Run(v))

	elems, err := v.Stack.Elements()
	assert.NoError(t, err)
	assert.Empty(t, elems)
}

// TestInputMessagesBundleAssignsInEnvironment is scenario 6:
// input_message(#bundle{ push "hello", "/@/greet" }) then run assigns
// "hello" to /greet, leaving Input and Control empty.
func TestInputMessagesBundleAssignsInEnvironment(t *testing.T) {
	v := newVM(t)

	body := bundle.WrapAsBundleBlob([][]byte{
		bundle.BuildStringMessage("", "hello"),
		bundle.BuildEmptyMessage("/@/greet"),
	})

	assert.NoError(t, vm.InputMessage(v, body))
	assert.NoError(t, vm.Run(v))

	inElems, err := v.Input.Elements()
	assert.NoError(t, err)
	assert.Empty(t, inElems)

	ctrlElems, err := v.Control.Elements()
	assert.NoError(t, err)
	assert.Empty(t, ctrlElems)

	envElems, err := v.Environment.Elements()
	assert.NoError(t, err)
	assert.Len(t, envElems, 1)

	msg, _, err := bundle.ParseElement(envElems[0])
	assert.NoError(t, err)
	assert.Equal(t, "/greet", msg.Address)
}

// TestDefunBindsAndCallsCompiledBody exercises the "(" / ")" macro pair:
// "(" opens a quoted body under a captured name, ")" closes it into an
// Environment binding, and a later funcall on that name installs the
// compiled body as a fresh call frame.
func TestDefunBindsAndCallsCompiledBody(t *testing.T) {
	v := newVM(t)

	assert.NoError(t, vm.InputMessage(v, bundle.BuildEmptyMessage("/(/make42")))
	assert.NoError(t, vm.InputMessage(v, bundle.BuildInt32Message("", 42)))
	assert.NoError(t, vm.InputMessage(v, bundle.BuildEmptyMessage("/)")))
	assert.NoError(t, vm.Run(v))

	assert.False(t, v.CompileMode)

	stackElems, err := v.Stack.Elements()
	assert.NoError(t, err)
	assert.Empty(t, stackElems)

	envElems, err := v.Environment.Elements()
	assert.NoError(t, err)
	assert.Len(t, envElems, 1)

	msg, isBundle, err := bundle.ParseElement(envElems[0])
	assert.NoError(t, err)
	assert.False(t, isBundle)
	assert.Equal(t, "/make42", msg.Address)

	assert.NoError(t, vm.InputMessage(v, bundle.BuildEmptyMessage("/!/make42")))
	assert.NoError(t, vm.Run(v))

	elems, err := v.Stack.Elements()
	assert.NoError(t, err)
	assert.Len(t, elems, 2)

	top, isBundle, err := bundle.ParseElement(elems[0])
	assert.NoError(t, err)
	assert.False(t, isBundle)

	n, err := wire.ReadInt32(top.Payload, 0)
	assert.NoError(t, err)
	assert.EqualValues(t, 42, n)
}
