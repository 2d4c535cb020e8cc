package builtin

import (
	"github.com/0Z3/libose/bundle"
	"github.com/0Z3/libose/oseerr"
	"github.com/0Z3/libose/vm"
	"github.com/0Z3/libose/wire"
)

// addControlFlow wires the VM-level builtins: the three call variants
// (exec1/exec2/exec3), conditional/iteration helpers grounded on
// ose_builtins.c's "if"/"dotimes"/"map" family, the explicit "return", and
// "version". These act on the VM itself rather than a single handle, so
// they live alongside the table instead of in package bundle.
func addControlFlow(t Table) {
	t["exec2"] = vm.Apply
	t["exec1"] = exec1
	t["exec3"] = exec3
	t["if"] = ifBuiltin
	t["dotimes"] = dotimes
	t["map"] = mapBuiltin
	t["return"] = vm.Return
	t["version"] = version
}

// exec1 calls the top-of-stack bundle but keeps the caller's Environment,
// unlike the default exec2/Apply behaviour. The source leaves exec1
// reachable via alternative builtin registration (spec §9); this is that
// alternative.
func exec1(v *vm.VM) error {
	body, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if !bundle.IsBundleElement(body) {
		return oseerr.New(oseerr.ElemType, "exec1")
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	if err := vm.SaveFrame(v); err != nil {
		return err
	}

	return vm.InstallControl(v, body)
}

// exec3 calls a body bundle with an explicit environment bundle, both
// taken from the stack (environment on top, body below it).
func exec3(v *vm.VM) error {
	env, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if !bundle.IsBundleElement(env) {
		return oseerr.New(oseerr.ElemType, "exec3")
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	body, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if !bundle.IsBundleElement(body) {
		return oseerr.New(oseerr.ElemType, "exec3")
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	if err := vm.SaveFrame(v); err != nil {
		return err
	}

	if err := vm.InstallControl(v, body); err != nil {
		return err
	}

	envElems, err := bundle.AsHandle(env).Elements()
	if err != nil {
		return err
	}

	return bundle.ReplaceAll(v.Environment, envElems)
}

// ifBuiltin pops (bottom to top on the stack: condition, then-bundle,
// else-bundle) and applies whichever branch the int32 condition selects.
func ifBuiltin(v *vm.VM) error {
	elseBody, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	thenBody, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	condMsg, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	m, isBundle, err := bundle.ParseElement(condMsg)
	if isBundle || err != nil || m.TypeTags != "i" {
		return oseerr.New(oseerr.ItemType, "if")
	}

	cond, err := wire.ReadInt32(m.Payload, 0)
	if err != nil {
		return err
	}

	branch := elseBody
	if cond != 0 {
		branch = thenBody
	}

	if err := bundle.PushElement(v.Stack, branch); err != nil {
		return err
	}

	return vm.Apply(v)
}

// dotimes pops (count, body-bundle) and applies body count times, pushing
// a fresh copy of body before each application since Apply consumes it.
func dotimes(v *vm.VM) error {
	body, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if !bundle.IsBundleElement(body) {
		return oseerr.New(oseerr.ElemType, "dotimes")
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	countMsg, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	m, isBundle, err := bundle.ParseElement(countMsg)
	if isBundle || err != nil || m.TypeTags != "i" {
		return oseerr.New(oseerr.ItemType, "dotimes")
	}

	count, err := wire.ReadInt32(m.Payload, 0)
	if err != nil {
		return err
	}

	for i := int32(0); i < count; i++ {
		if err := bundle.PushElement(v.Stack, append([]byte(nil), body...)); err != nil {
			return err
		}

		if err := vm.Apply(v); err != nil {
			return err
		}
	}

	return nil
}

// mapBuiltin pops (items-bundle, function-bundle) and applies function to
// each element of items in turn, collecting the top-of-stack result of
// each application into a new bundle.
func mapBuiltin(v *vm.VM) error {
	fn, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if !bundle.IsBundleElement(fn) {
		return oseerr.New(oseerr.ElemType, "map")
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	items, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if !bundle.IsBundleElement(items) {
		return oseerr.New(oseerr.ElemType, "map")
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	itemElems, err := bundle.AsHandle(items).Elements()
	if err != nil {
		return err
	}

	results := make([][]byte, 0, len(itemElems))

	for _, e := range itemElems {
		if err := bundle.PushElement(v.Stack, e); err != nil {
			return err
		}

		if err := bundle.PushElement(v.Stack, append([]byte(nil), fn...)); err != nil {
			return err
		}

		if err := vm.Apply(v); err != nil {
			return err
		}

		r, err := bundle.TopElement(v.Stack)
		if err != nil {
			return err
		}

		if err := bundle.DropTop(v.Stack); err != nil {
			return err
		}

		results = append(results, r)
	}

	return bundle.PushElement(v.Stack, bundle.WrapAsBundleBlob(results))
}

// version pushes a single-item string message naming this implementation.
func version(v *vm.VM) error {
	return bundle.PushElement(v.Stack, bundle.BuildStringMessage("", "0Z3/libose"))
}
