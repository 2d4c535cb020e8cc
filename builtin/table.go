// Package builtin maps the symbolic names reachable through "/!/name"
// funcall addresses to their concrete implementations: the bundle-algebra
// primitives in package bundle (which all act on the VM's Stack, per the
// evaluator's Funcall/Apply convention), plus a handful of VM-level
// control-flow operations that need the VM itself rather than one handle.
//
// Spec §2 calls this table "a static perfect-hash lookup populated from a
// fixed list of names" and puts it out of CORE scope, modeling it as an
// external collaborator; a Go map serves the same role without requiring
// the source's hash generator.
package builtin

import (
	"github.com/0Z3/libose/bundle"
	"github.com/0Z3/libose/oseerr"
	"github.com/0Z3/libose/vm"
	"github.com/0Z3/libose/wire"
)

// Table resolves a builtin name to its implementation.
type Table map[string]vm.BuiltinFunc

// Resolve satisfies vm.VM's Builtins field signature.
func (t Table) Resolve(name string) (vm.BuiltinFunc, bool) {
	fn, ok := t[name]
	return fn, ok
}

// on wraps a plain bundle-primitive (operating on Stack) as a BuiltinFunc.
func on(fn func(*bundle.Handle) error) vm.BuiltinFunc {
	return func(v *vm.VM) error { return fn(v.Stack) }
}

// withInt pops a single int32 argument from Stack (the top message, which
// must hold exactly one "i" item) before calling fn with that value, for primitives
// parameterised by a count (pick, roll, bundleFromTop, ...).
func withInt(fn func(*bundle.Handle, int) error) vm.BuiltinFunc {
	return func(v *vm.VM) error {
		top, err := bundle.TopElement(v.Stack)
		if err != nil {
			return err
		}

		msg, isBundle, err := bundle.ParseElement(top)
		if isBundle || err != nil || msg.TypeTags != "i" {
			return oseerr.New(oseerr.ItemType, "builtin.withInt")
		}

		n, err := wire.ReadInt32(msg.Payload, 0)
		if err != nil {
			return err
		}

		if err := bundle.DropTop(v.Stack); err != nil {
			return err
		}

		return fn(v.Stack, int(n))
	}
}

// New returns the fully populated builtin table.
func New() Table {
	t := Table{
		// Element stack operations (spec §4.2).
		"drop":        on(bundle.Drop),
		"dup":         on(bundle.Dup),
		"swap":        on(bundle.Swap),
		"over":        on(bundle.Over),
		"nip":         on(bundle.Nip),
		"tuck":        on(bundle.Tuck),
		"rot":         on(bundle.Rot),
		"-rot":        on(bundle.NotRot),
		"2drop":       on(bundle.TwoDrop),
		"2dup":        on(bundle.TwoDup),
		"2over":       on(bundle.TwoOver),
		"2swap":       on(bundle.TwoSwap),
		"pick":        withInt(bundle.Pick),
		"pickBottom":  withInt(bundle.PickBottom),
		"roll":        withInt(bundle.Roll),
		"rollBottom":  withInt(bundle.RollBottom),
		"pickMatch":   on(bundle.PickMatch),
		"rollMatch":   on(bundle.RollMatch),

		// Grouping (spec §4.2).
		"bundleAll":        on(bundle.BundleAll),
		"bundleFromTop":    withInt(bundle.BundleFromTop),
		"bundleFromBottom": withInt(bundle.BundleFromBottom),
		"clear":            on(bundle.Clear),
		"join":             on(bundle.Push), // see DESIGN.md: join is treated as an alias of push
		"push":             on(bundle.Push),
		"pop":              on(bundle.Pop),
		"popAll":           on(bundle.PopAll),
		"popAllDrop":       on(bundle.PopAllDrop),
		"unpack":           on(bundle.Unpack),
		"unpackDrop":       on(bundle.UnpackDrop),
		"split":            withInt(bundle.Split),

		// Queries (spec §4.2).
		"countElems":  on(bundle.CountElems),
		"countItems":  on(bundle.CountItems),
		"sizeElem":    on(bundle.SizeElem),
		"sizeItem":    on(bundle.SizeItem),
		"lengthItem":  on(bundle.LengthItem),
		"sizeTT":      on(bundle.SizeTT),
		"getAddresses": on(bundle.GetAddresses),

		// Payload item manipulation (spec §4.2).
		"blobToElem":             on(bundle.BlobToElem),
		"blobToType.i":           blobToType('i'),
		"blobToType.f":           blobToType('f'),
		"blobToType.s":           blobToType('s'),
		"blobToType.b":           blobToType('b'),
		"elemToBlob":             on(bundle.ElemToBlob),
		"itemToBlob":             on(bundle.ItemToBlob),
		"copyAddressToString":    on(bundle.CopyAddressToString),
		"moveStringToAddress":    on(bundle.MoveStringToAddress),
		"swapStringToAddress":    on(bundle.SwapStringToAddress),
		"concatenateStrings":     on(bundle.ConcatenateStrings),
		"concatenateBlobs":       on(bundle.ConcatenateBlobs),
		"decatenateStringFromStart": withInt(bundle.DecatenateStringFromStart),
		"decatenateStringFromEnd":   withInt(bundle.DecatenateStringFromEnd),
		"decatenateBlobFromStart":   withInt(bundle.DecatenateBlobFromStart),
		"decatenateBlobFromEnd":     withInt(bundle.DecatenateBlobFromEnd),
		"splitStringFromStart":      withInt(bundle.SplitStringFromStart),
		"splitStringFromEnd":        withInt(bundle.SplitStringFromEnd),
		"trimStringStart":           withInt(bundle.TrimStringStart),
		"trimStringEnd":             withInt(bundle.TrimStringEnd),
		"swap4Bytes":                on(bundle.Swap4Bytes),
		"swap8Bytes":                on(bundle.Swap8Bytes),
		"swapNBytes":                withInt(bundle.SwapNBytes),

		// Routing and pattern matching (spec §4.2).
		"match":              on(bundle.Match),
		"pmatch":             on(bundle.PMatch),
		"route":              on(bundle.Route),
		"routeWithDelegation": on(bundle.RouteWithDelegation),
		"gather":             on(bundle.Gather),
		"nth":                on(bundle.Nth),

		// Binding (spec §4.2).
		"replace": on(bundle.Replace),
		"assign":  on(bundle.Assign),
		"lookup":  on(bundle.Lookup),

		// Arithmetic and comparison (spec §4.2).
		"add": on(bundle.Add),
		"sub": on(bundle.Sub),
		"mul": on(bundle.Mul),
		"div": on(bundle.Div),
		"mod": on(bundle.Mod),
		"pow": on(bundle.Pow),
		"neg": on(bundle.Neg),
		"eql": on(bundle.Eql),
		"neq": on(bundle.Neq),
		"lte": on(bundle.Lte),
		"lt":  on(bundle.Lt),
		"and": on(bundle.And),
		"or":  on(bundle.Or),

		// Creation (spec §4.2).
		"pushBundle": on(bundle.PushBundle),
		"makeBlob":   withInt(bundle.MakeBlob),

		// Stubs left undefined in the source (spec §9 Open Questions).
		"clearPayload":         on(bundle.ClearPayload),
		"lengthAddress":        on(bundle.LengthAddress),
		"lengthTT":             on(bundle.LengthTT),
		"select":               on(bundle.Select),
		"selectWithDelegation": on(bundle.SelectWithDelegation),
		"rollPMatch":           on(bundle.RollPMatch),
	}

	addControlFlow(t)

	return t
}

func blobToType(tag byte) vm.BuiltinFunc {
	return func(v *vm.VM) error { return bundle.BlobToType(v.Stack, tag) }
}
