// Package vm implements the fetch-decode-apply evaluator described in
// spec §4.5-§4.6: the step/run loop over Input, Control and Dump, the
// leading-token dispatch table, and call/return via the Dump.
package vm

import (
	"github.com/0Z3/libose/bundle"
	"github.com/0Z3/libose/context"
	"github.com/0Z3/libose/oseerr"
	"github.com/0Z3/libose/wire"
)

// Sizes gives the byte size reserved for each context message pushed by
// Init, in the order they are pushed onto the root bundle.
type Sizes struct {
	Cache       int32
	Input       int32
	Stack       int32
	Environment int32
	Control     int32
	Dump        int32
	Output      int32
}

// DefaultSizes returns a reasonable fixed partition for a general-purpose
// VM instance, sized generously enough for interactive use.
func DefaultSizes() Sizes {
	return Sizes{
		Cache:       256,
		Input:       4096,
		Stack:       8192,
		Environment: 16384,
		Control:     8192,
		Dump:        16384,
		Output:      4096,
	}
}

// VM holds the seven sub-bundle handles of one running instance, plus the
// compile-mode flag that suppresses automatic return (spec §4.5).
//
// The handles here are cached Go struct fields rather than re-derived by
// walking the root bundle on every access: this is the idiomatic
// counterpart to the source's Cache context message, which exists on the
// wire (see Init) but is not consulted at runtime — re-parsing the root
// bundle on every sub-bundle access would add no value in a process that
// already holds live pointers.
type VM struct {
	Root        *bundle.Handle
	Cache       *bundle.Handle
	Input       *bundle.Handle
	Stack       *bundle.Handle
	Environment *bundle.Handle
	Control     *bundle.Handle
	Dump        *bundle.Handle
	Output      *bundle.Handle

	CompileMode bool
	anonSeq     int

	// compileNames is the stack of names captured at each unmatched "("
	// of the defun/endDefun macro pair; its length is the nesting depth,
	// and CompileMode stays set while it is non-empty.
	compileNames []string

	// Builtins resolves a name to a native function when Lookup misses in
	// Environment. It is nil-able so the vm package has no import cycle
	// with builtin; callers wire builtin.Table.Resolve in.
	Builtins func(name string) (BuiltinFunc, bool)
}

// BuiltinFunc is the signature of a native builtin: it receives the VM and
// mutates its sub-bundles directly, returning an error that the caller
// translates into a status code.
type BuiltinFunc func(*VM) error

// Trace and OnException are optional hooks a host wires up (package
// oselog does) to observe the evaluator without coupling this package to
// any particular logging library: Trace fires with the dispatched
// address on every recognised token, OnException fires with a non-None
// status right before it is pushed/redirected to the exception handler.
var (
	Trace       func(address string)
	OnException func(kind oseerr.Kind)
)

// Init partitions arena into the root bundle, the /sx status context, and
// the seven fixed context messages (Cache, Input, Stack, Environment,
// Control, Dump, Output), per spec §4.4.
func Init(arena []byte, sizes Sizes) (*VM, error) {
	root, err := bundle.NewRoot(arena)
	if err != nil {
		return nil, err
	}

	// The status context only carries the status slot in its header, so
	// it gets a small fixed reservation.
	if _, err := context.PushContext(root, 64, context.Status); err != nil {
		return nil, err
	}

	v := &VM{Root: root}

	type slot struct {
		addr context.Address
		size int32
		dst  **bundle.Handle
	}

	for _, c := range []slot{
		{context.Cache, sizes.Cache, &v.Cache},
		{context.Input, sizes.Input, &v.Input},
		{context.Stack, sizes.Stack, &v.Stack},
		{context.Environment, sizes.Environment, &v.Environment},
		{context.Control, sizes.Control, &v.Control},
		{context.Dump, sizes.Dump, &v.Dump},
		{context.Output, sizes.Output, &v.Output},
	} {
		h, err := context.PushContext(root, c.size, c.addr)
		if err != nil {
			return nil, err
		}

		*c.dst = h
	}

	if err := writeCacheOffsets(v); err != nil {
		return nil, err
	}

	return v, nil
}

// writeCacheOffsets records each sub-bundle's handle offset as an int32
// item in a single message inside Cache, matching the data model of
// spec §4.4 even though the VM does not read it back at runtime.
func writeCacheOffsets(v *VM) error {
	handles := []*bundle.Handle{v.Input, v.Stack, v.Environment, v.Control, v.Dump, v.Output}

	payload := make([]byte, 0, 4*len(handles))
	for _, h := range handles {
		buf := make([]byte, 4)
		_ = wire.WriteInt32(buf, 0, h.At)
		payload = append(payload, buf...)
	}

	tags := ""
	for range handles {
		tags += "i"
	}

	elems, err := v.Cache.Elements()
	if err != nil {
		return err
	}

	msg := &bundle.Message{Address: "/offsets", TypeTags: tags, Payload: payload}

	return v.Cache.Rewrite(append(elems, msg.Bytes()))
}

// InputMessage appends one raw OSC message's bytes (size-prefixed element)
// to the Input sub-bundle.
func InputMessage(v *VM, elem []byte) error {
	elems, err := v.Input.Elements()
	if err != nil {
		return err
	}

	return v.Input.Rewrite(append(elems, elem))
}

// InputMessages appends every top-level element of a raw bundle's bytes to
// Input.
func InputMessages(v *VM, bundleBytes []byte) error {
	h := bundle.AsHandle(bundleBytes)

	elems, err := h.Elements()
	if err != nil {
		return err
	}

	dst, err := v.Input.Elements()
	if err != nil {
		return err
	}

	return v.Input.Rewrite(append(dst, elems...))
}

// Status reads the global status slot in /sx.
func Status(v *VM) (oseerr.Kind, error) {
	return context.GetStatus(v.Root, context.Status)
}

func setStatus(v *VM, kind oseerr.Kind) error {
	return context.SetStatus(v.Root, context.Status, kind)
}
