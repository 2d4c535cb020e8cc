package vm

import (
	"strconv"
	"strings"

	"github.com/0Z3/libose/bundle"
	"github.com/0Z3/libose/context"
	"github.com/0Z3/libose/oseerr"
)

// dispatchTokens is the recognised set of single-character leading tokens
// from spec §4.5's table. "<<" is the one two-character token.
var dispatchTokens = map[byte]bool{
	'@': true, '\'': true, '!': true, '$': true, '>': true, '<': true,
	'-': true, 'i': true, 'f': true, 's': true, 'b': true, '#': true,
	'(': true, ')': true,
}

// parseDispatch recognises an address whose fixed leading prefix is "/X/"
// (or "/<</" for the two-character token), returning the token and the
// operand name reconstructed with its own leading slash — e.g. "/!/foo"
// yields token "!" and rest "/foo", matching the form of both environment
// addresses ("/x") and context addresses ("/ss"). A bare token with no
// trailing content ("/i", "/i/") yields an empty rest.
//
// The source's route_pfx/route_mthd macros compare the address as a fixed
// 3 (or 4, for "<<") byte prefix followed by a variable suffix; this is
// the direct Go reading of that scheme, rather than the C source's
// raw-int32 prefix-comparison trick, which is a wire-level optimisation
// with no separate observable semantics.
func parseDispatch(address string) (token string, rest string, ok bool) {
	if len(address) < 2 || address[0] != '/' {
		return "", "", false
	}

	var tok string
	var suffix string

	if strings.HasPrefix(address, "/<<") {
		tok = "<<"
		suffix = address[3:]
	} else {
		if !dispatchTokens[address[1]] {
			return "", "", false
		}

		tok = string(address[1])
		suffix = address[2:]
	}

	if suffix != "" && suffix[0] != '/' {
		return "", "", false
	}

	suffix = strings.TrimPrefix(suffix, "/")

	if suffix == "" {
		return tok, "", true
	}

	return tok, "/" + suffix, true
}

// Step performs one iteration of the evaluator loop (spec §4.5) and
// reports whether another iteration is possible.
func Step(v *VM) (bool, error) {
	ctrlEmpty, err := bundle.IsEmpty(v.Control)
	if err != nil {
		return false, err
	}

	if !ctrlEmpty {
		before, err := v.Control.Elements()
		if err != nil {
			return false, err
		}

		top := before[len(before)-1]

		if err := v.dispatchElement(top); err != nil {
			if serr := setStatus(v, classify(err)); serr != nil {
				return false, serr
			}
		}

		// A call dispatch (funcall) already consumes its own token, and a
		// call into a bundle then clears Control into the Dump frame, so
		// either way Control ends up shorter than before; mirrors
		// osevm_step's ose_bundleHasAtLeastNElems guard around ose_drop
		// so Step drops neither a pending instruction nor the callee body.
		after, err := v.Control.Elements()
		if err != nil {
			return false, err
		}

		if len(after) >= len(before) {
			if err := bundle.DropTop(v.Control); err != nil {
				return false, err
			}
		}

		if err := v.checkStatus(); err != nil {
			return false, err
		}

		return true, nil
	}

	inEmpty, err := bundle.IsEmpty(v.Input)
	if err != nil {
		return false, err
	}

	if !inEmpty {
		elem, err := bundle.PopFront(v.Input)
		if err != nil {
			return false, err
		}

		if bundle.IsBundleElement(elem) {
			inner := bundle.AsHandle(elem)

			elems, err := inner.Elements()
			if err != nil {
				return false, err
			}

			return true, bundle.PushElementsReversed(v.Control, elems)
		}

		return true, bundle.PushElement(v.Control, elem)
	}

	dumpEmpty, err := bundle.IsEmpty(v.Dump)
	if err != nil {
		return false, err
	}

	if !dumpEmpty && !v.CompileMode {
		return true, doReturn(v)
	}

	return false, nil
}

// Run iterates Step until it reports no further work.
func Run(v *VM) error {
	for {
		more, err := Step(v)
		if err != nil {
			return err
		}

		if !more {
			return nil
		}
	}
}

// classify maps a Go error from a primitive into an oseerr.Kind for the
// status slot; errors that are not *oseerr.Error pass through as ElemType.
func classify(err error) oseerr.Kind {
	if oe, ok := err.(*oseerr.Error); ok {
		return oe.Kind
	}

	return oseerr.ElemType
}

// checkStatus implements the error-handling redirection in spec §7: after
// each dispatch, a non-zero status is cleared, pushed onto Stack as an
// int32, and control transfers to the handler bound at /!/exception if
// one exists. If none is bound, the default handler is simply leaving the
// value on Stack and letting Step report no further work once Control,
// Input and Dump all drain empty.
func (v *VM) checkStatus() error {
	kind, err := Status(v)
	if err != nil {
		return err
	}

	if kind == oseerr.None {
		return nil
	}

	if err := setStatus(v, oseerr.None); err != nil {
		return err
	}

	if OnException != nil {
		OnException(kind)
	}

	if err := bundle.PushElement(v.Stack, bundle.BuildInt32Message("", int32(kind))); err != nil {
		return err
	}

	if handler, found, err := v.lookupEnv("/!/exception"); err == nil && found {
		if err := bundle.PushElement(v.Stack, handler); err != nil {
			return err
		}

		return v.apply()
	}

	return nil
}

// dispatchElement inspects elem's leading token (if it is a message whose
// address matches the dispatch table) and performs the corresponding VM
// action; otherwise the element is pushed as a literal onto Stack.
func (v *VM) dispatchElement(elem []byte) error {
	msg, isBundle, err := bundle.ParseElement(elem)
	if isBundle {
		return bundle.PushElement(v.Stack, elem)
	}

	if err != nil {
		return err
	}

	token, rest, ok := parseDispatch(msg.Address)
	if !ok {
		return bundle.PushElement(v.Stack, elem)
	}

	if Trace != nil {
		Trace(msg.Address)
	}

	switch token {
	case "@":
		return v.assign(rest)
	case "'":
		return bundle.PushElement(v.Stack, elem)
	case "!":
		return v.funcall(rest)
	case "$":
		return v.lookup(rest)
	case ">":
		return v.copyContext(rest)
	case "<":
		return v.replaceContext(rest)
	case "<<":
		return v.appendContext(rest)
	case "-":
		return v.moveContext(rest)
	case "i", "f", "s", "b":
		return v.coerce(token)
	case "#":
		return nil
	case "(":
		return v.beginDefun(rest)
	case ")":
		return v.endDefun()
	default:
		return bundle.PushElement(v.Stack, elem)
	}
}

// beginDefun implements the host-facing "(" macro, after ose_vm.c's
// commented-out osevm_defun: Stack is saved to Dump and cleared, and
// CompileMode is set so Step's auto-return stays suppressed while the
// quoted body accumulates on Stack. name is captured now and bound once
// the matching ")" closes the body.
func (v *VM) beginDefun(name string) error {
	saved, err := snapshot(v.Stack)
	if err != nil {
		return err
	}

	if err := bundle.ReplaceAll(v.Dump, append(mustElements(v.Dump), saved)); err != nil {
		return err
	}

	if err := bundle.ReplaceAll(v.Stack, nil); err != nil {
		return err
	}

	v.compileNames = append(v.compileNames, name)
	v.CompileMode = true

	return nil
}

// endDefun implements the ")" macro (osevm_endDefun): the accumulated
// Stack becomes a bundle bound to the name captured at the matching "(",
// and Stack is restored from Dump. CompileMode only clears once every
// nested "(" has been closed.
func (v *VM) endDefun() error {
	if len(v.compileNames) == 0 {
		return oseerr.New(oseerr.ElemType, "vm.)")
	}

	name := v.compileNames[len(v.compileNames)-1]
	v.compileNames = v.compileNames[:len(v.compileNames)-1]

	if len(v.compileNames) == 0 {
		v.CompileMode = false
	}

	body, err := snapshot(v.Stack)
	if err != nil {
		return err
	}

	dumpElems, err := v.Dump.Elements()
	if err != nil {
		return err
	}

	if err := bundle.NeedAtLeast(dumpElems, 1, "vm.)"); err != nil {
		return err
	}

	n := len(dumpElems)
	saved := dumpElems[n-1]

	if err := bundle.ReplaceAll(v.Dump, dumpElems[:n-1]); err != nil {
		return err
	}

	if err := restoreFrom(v.Stack, saved); err != nil {
		return err
	}

	if name == "" {
		name = v.nextAnonName()
	}

	return bundle.InstallBinding(v.Environment, name, body)
}

func (v *VM) contextHandle(addr string) (*bundle.Handle, error) {
	switch context.Address(addr) {
	case context.Input:
		return v.Input, nil
	case context.Stack:
		return v.Stack, nil
	case context.Environment:
		return v.Environment, nil
	case context.Control:
		return v.Control, nil
	case context.Dump:
		return v.Dump, nil
	case context.Output:
		return v.Output, nil
	case context.Cache:
		return v.Cache, nil
	default:
		return nil, oseerr.New(oseerr.ElemType, "vm.contextHandle")
	}
}

func (v *VM) copyContext(addr string) error {
	h, err := v.contextHandle(addr)
	if err != nil {
		return err
	}

	top, err := bundle.TopElement(h)
	if err != nil {
		return err
	}

	return bundle.PushElement(v.Stack, append([]byte(nil), top...))
}

func (v *VM) replaceContext(addr string) error {
	h, err := v.contextHandle(addr)
	if err != nil {
		return err
	}

	top, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	return bundle.ReplaceAll(h, [][]byte{top})
}

func (v *VM) appendContext(addr string) error {
	h, err := v.contextHandle(addr)
	if err != nil {
		return err
	}

	top, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	return bundle.PushElement(h, top)
}

func (v *VM) moveContext(addr string) error {
	return v.appendContext(addr)
}

func (v *VM) coerce(token string) error {
	switch token {
	case "i":
		return bundle.CoerceTopInt32(v.Stack)
	case "f":
		return bundle.CoerceTopFloat32(v.Stack)
	case "s":
		return bundle.CoerceTopString(v.Stack)
	case "b":
		return bundle.CoerceTopBlob(v.Stack)
	}

	return oseerr.New(oseerr.UnknownTypetag, "vm.coerce")
}

// assign implements spec §4.5's Assign: pop the top of Stack and bind it
// under name (or an anonymous name if rest is empty), installing the
// binding into Environment via replace semantics.
func (v *VM) assign(name string) error {
	top, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if err := bundle.DropTop(v.Stack); err != nil {
		return err
	}

	if name == "" {
		name = v.nextAnonName()
	}

	return bundle.InstallBinding(v.Environment, name, top)
}

// nextAnonName generates a fresh anonymous binding name. Anonymous names
// only need to be distinct within one VM's Environment, so a per-VM
// counter suffices; spec §4.5 leaves the naming scheme unspecified beyond
// "an anonymous name".
func (v *VM) nextAnonName() string {
	v.anonSeq++

	return "/_anon" + strconv.Itoa(v.anonSeq)
}

func (v *VM) lookupEnv(name string) ([]byte, bool, error) {
	elems, err := v.Environment.Elements()
	if err != nil {
		return nil, false, err
	}

	for _, e := range elems {
		m, isBundle, err := bundle.ParseElement(e)
		if err != nil || isBundle {
			continue
		}

		if m.Address == name {
			return e, true, nil
		}
	}

	return nil, false, nil
}

// lookup implements spec §4.5's Lookup: resolve name in Environment and
// push the bound value; on miss, consult Builtins and push a wrapped
// native-function value.
func (v *VM) lookup(name string) error {
	if val, found, err := v.lookupEnv(name); err != nil {
		return err
	} else if found {
		return bundle.PushElement(v.Stack, append([]byte(nil), val...))
	}

	// Builtin table names carry no leading slash ("drop", not "/drop").
	if bname := strings.TrimPrefix(name, "/"); v.Builtins != nil {
		if _, found := v.Builtins(bname); found {
			return bundle.PushElement(v.Stack, bundle.BuildNativeRef(bname))
		}
	}

	return bundle.PushElement(v.Stack, bundle.BuildEmptyMessage(name))
}

// funcall implements spec §4.5's Funcall: resolve name, then Apply. The
// "/!/name" token is still Control's top at this point (Step dispatches
// before dropping it); a call consumes it here, before apply's saveFrame
// snapshots Control, so the saved continuation doesn't include the token
// that is, by definition, already in progress. apply itself is also
// reachable directly (checkStatus's exception dispatch, the if/dotimes/map
// builtins re-entering a body bundle) with no token of its own on Control,
// so the drop belongs here rather than in apply.
func (v *VM) funcall(name string) error {
	if err := v.lookup(name); err != nil {
		return err
	}

	if err := bundle.DropTop(v.Control); err != nil {
		return err
	}

	return v.apply()
}

// apply implements spec §4.5's Apply over the top of Stack.
func (v *VM) apply() error {
	top, err := bundle.TopElement(v.Stack)
	if err != nil {
		return err
	}

	if bundle.IsBundleElement(top) {
		if err := bundle.DropTop(v.Stack); err != nil {
			return err
		}

		if err := v.saveFrame(); err != nil {
			return err
		}

		if err := v.installControl(top); err != nil {
			return err
		}

		// Apply replaces Environment with a fresh empty one for the new
		// call frame: the Open Question over exec1/exec2/exec3 names
		// exec2 (replace environment) as preferred and has Apply mirror
		// it, so every call through the dispatch table's "!" and the
		// evaluator's own Apply gets a fresh scope; exec1 (see package
		// builtin) is the explicit opt-out that keeps the caller's
		// Environment instead.
		return bundle.ReplaceAll(v.Environment, nil)
	}

	if body, ok := bundle.BodyValue(top); ok {
		if err := bundle.DropTop(v.Stack); err != nil {
			return err
		}

		if err := v.saveFrame(); err != nil {
			return err
		}

		if err := v.installControl(body); err != nil {
			return err
		}

		return bundle.ReplaceAll(v.Environment, nil)
	}

	if name, ok := bundle.NativeRefName(top); ok {
		if err := bundle.DropTop(v.Stack); err != nil {
			return err
		}

		if v.Builtins == nil {
			return oseerr.New(oseerr.ElemType, "vm.apply")
		}

		fn, found := v.Builtins(name)
		if !found {
			return oseerr.New(oseerr.ElemType, "vm.apply")
		}

		return fn(v)
	}

	return nil
}

// Apply exposes apply for builtins (exec1/exec2/exec3, map, etc.) that
// need to invoke the current top-of-stack value as a call. This is
// exec2's behaviour (see apply's doc comment): it replaces Environment.
func Apply(v *VM) error {
	return v.apply()
}

// SaveFrame exposes saveFrame for builtins that implement their own call
// variant (exec1, exec3) instead of going through Apply.
func SaveFrame(v *VM) error {
	return v.saveFrame()
}

// InstallControl exposes installControl for builtins implementing their
// own call variant.
func InstallControl(v *VM, body []byte) error {
	return v.installControl(body)
}

// saveFrame pushes Input, Environment and Control (in that order) onto
// Dump, per spec §4.6, then clears Control and Input: their prior content
// is now safely held in the Dump frame, and the callee's body is about to
// be staged through Input (installControl) and fed into Control by Step's
// normal Input-draining, the same path any other queued message takes.
func (v *VM) saveFrame() error {
	in, err := snapshot(v.Input)
	if err != nil {
		return err
	}

	env, err := snapshot(v.Environment)
	if err != nil {
		return err
	}

	ctl, err := snapshot(v.Control)
	if err != nil {
		return err
	}

	if err := bundle.ReplaceAll(v.Dump, append(mustElements(v.Dump), in, env, ctl)); err != nil {
		return err
	}

	if err := bundle.ReplaceAll(v.Control, nil); err != nil {
		return err
	}

	return bundle.ReplaceAll(v.Input, nil)
}

func mustElements(h *bundle.Handle) [][]byte {
	elems, _ := h.Elements()
	return elems
}

func snapshot(h *bundle.Handle) ([]byte, error) {
	elems, err := h.Elements()
	if err != nil {
		return nil, err
	}

	return bundle.WrapAsBundleBlob(elems), nil
}

// installControl stages top's inner elements (top must be a bundle
// element) through Input rather than writing Control directly, after
// ose_builtins.c's ose_builtin_apply: the callee body enters the same
// Input-draining path (Step) that any other queued message takes, one
// element fed into Control at a time, instead of materialising as a
// single opaque Control frame. saveFrame has already cleared Input by
// the time this runs, so the callee's elements become its entire queue.
// Environment is left as-is; apply (exec2) clears it right after calling
// this, while exec1 and exec3 keep or replace it themselves.
func (v *VM) installControl(top []byte) error {
	inner := bundle.AsHandle(top)

	elems, err := inner.Elements()
	if err != nil {
		return err
	}

	return bundle.ReplaceAll(v.Input, elems)
}

// Return forces the call/return sequence (spec §4.6) regardless of
// Control/Input state, for the explicit "return" builtin. The automatic
// evaluator loop performs the same action once Control and Input are both
// drained (see Step); this entry point lets a builtin return early.
func Return(v *VM) error {
	return doReturn(v)
}

// doReturn implements spec §4.6's return: restore Control, Environment,
// Input from Dump's topmost three elements (rightmost first), leaving a
// copy of the callee's Environment on Stack so the caller can observe its
// exported bindings. Per ose_builtins.c's ose_builtin_return, that copy
// is taken while Environment still holds the callee's bindings, before
// Environment is overwritten with the caller's restored one.
func doReturn(v *VM) error {
	elems, err := v.Dump.Elements()
	if err != nil {
		return err
	}

	if err := bundle.NeedAtLeast(elems, 3, "vm.return"); err != nil {
		return err
	}

	n := len(elems)
	ctl, env, in := elems[n-1], elems[n-2], elems[n-3]

	if err := bundle.ReplaceAll(v.Dump, elems[:n-3]); err != nil {
		return err
	}

	calleeEnv, err := v.Environment.Elements()
	if err != nil {
		return err
	}

	if err := restoreFrom(v.Control, ctl); err != nil {
		return err
	}

	if err := restoreFrom(v.Environment, env); err != nil {
		return err
	}

	if err := restoreFrom(v.Input, in); err != nil {
		return err
	}

	return bundle.PushElement(v.Stack, bundle.WrapAsBundleBlob(calleeEnv))
}

func restoreFrom(h *bundle.Handle, blob []byte) error {
	inner := bundle.AsHandle(blob)

	elems, err := inner.Elements()
	if err != nil {
		return err
	}

	return bundle.ReplaceAll(h, elems)
}
