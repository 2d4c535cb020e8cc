package bundle

import (
	"github.com/0Z3/libose/oseerr"
	"github.com/0Z3/libose/wire"
)

// IsBundleElement exports isBundleElem for the vm package.
func IsBundleElement(elem []byte) bool {
	return isBundleElem(elem)
}

// NeedAtLeast exports needElems for the vm package.
func NeedAtLeast(elems [][]byte, n int, op string) error {
	return needElems(elems, n, op)
}

// BuildInt32Message builds a detached single-item "i" message element.
func BuildInt32Message(address string, v int32) []byte {
	return buildMessage(address, "i", int32Payload(v))
}

// BuildStringMessage builds a detached single-item "s" message element.
func BuildStringMessage(address, s string) []byte {
	return buildMessage(address, "s", stringItemPayload(s))
}

// BuildMessage builds a detached message element with an already-encoded
// payload and type tag string, for callers (the "asm" host command) that
// assemble messages from several differently-typed items at once rather
// than through one of the single-item Build*Message helpers.
func BuildMessage(address, typeTags string, payload []byte) []byte {
	return buildMessage(address, typeTags, payload)
}

// BuildEmptyMessage builds a detached zero-item message element, pushed by
// Lookup on a miss and by binding primitives that need an anonymous
// placeholder.
func BuildEmptyMessage(address string) []byte {
	return buildMessage(address, "", nil)
}

// nativeRefAddress is the synthetic address used to mark a message as a
// wrapped native-function reference (see BuildNativeRef).
const nativeRefAddress = "#native"

// BuildNativeRef wraps a builtin name as a detached message element, the
// idiomatic Go stand-in for the source's aligned-pointer payload item: Go
// exposes no portable machine pointer to a function value, so the
// reference carries a stable name (looked back up in the builtin
// registry) rather than an address. Like the source's pointer blobs, this
// value is never meant to survive serialisation to a different process.
func BuildNativeRef(name string) []byte {
	return buildMessage(nativeRefAddress, "b", blobItemPayload([]byte(name)))
}

// NativeRefName reports whether elem is a value built by BuildNativeRef,
// returning the wrapped builtin name.
func NativeRefName(elem []byte) (string, bool) {
	if isBundleElem(elem) {
		return "", false
	}

	m, err := parseMessage(elem)
	if err != nil || m.Address != nativeRefAddress || m.TypeTags != "b" {
		return "", false
	}

	data, _, err := wire.ReadBlob(m.Payload, 0)
	if err != nil {
		return "", false
	}

	return string(data), true
}

// bodyTag marks a message's single blob item as a wrapped bundle (a
// compiled function body from the "(" / ")" macro pair, or any other
// bundle value bound by name) rather than ordinary blob data. OSC bundles
// carry no address of their own, so a bundle cannot be stored directly
// under an Environment name the way a message can; wrapping it mirrors
// BuildNativeRef's "function values need a named stand-in" treatment.
const bodyTag = "x"

// BuildBodyValue wraps body (a detached bundle element) as a named message
// so it can be installed into Environment and found again by lookup.
func BuildBodyValue(name string, body []byte) []byte {
	return buildMessage(name, bodyTag, blobItemPayload(body))
}

// BodyValue reports whether elem is a value built by BuildBodyValue,
// returning the unwrapped bundle bytes.
func BodyValue(elem []byte) ([]byte, bool) {
	if isBundleElem(elem) {
		return nil, false
	}

	m, err := parseMessage(elem)
	if err != nil || m.TypeTags != bodyTag {
		return nil, false
	}

	data, _, err := wire.ReadBlob(m.Payload, 0)
	if err != nil {
		return nil, false
	}

	return data, true
}

// InstallBinding renames value's address to name (value's payload and type
// tags are kept as-is) and installs it into container with
// replace-if-bound, else-append semantics. A bundle value is wrapped via
// BuildBodyValue first, since a bare bundle has no address to rename. This
// is the evaluator-level counterpart to the Assign primitive (binding.go): the
// Assign dispatch token (spec §4.5) already has its name from the control
// address and its value already popped from Stack, so it calls straight
// into the same renaming/installing step that Assign performs internally.
func InstallBinding(container *Handle, name string, value []byte) error {
	var named []byte

	if isBundleElem(value) {
		named = BuildBodyValue(name, value)
	} else {
		m, err := parseMessage(value)
		if err != nil {
			return err
		}

		named = buildMessage(name, m.TypeTags, m.Payload)
	}

	elems, err := container.elements()
	if err != nil {
		return err
	}

	idx := findByAddress(elems, name)

	out := append([][]byte{}, elems...)
	if idx >= 0 {
		out[idx] = named
	} else {
		out = append(out, named)
	}

	return container.rewrite(out)
}

// WrapAsBundleBlob builds a detached bundle element containing elems,
// exported for the vm package's call/return frame snapshots.
func WrapAsBundleBlob(elems [][]byte) []byte {
	return wrapBundle(elems)
}

func coerceTop(h *Handle, target byte, op string) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	tag, data, off, err := lastItem(m)
	if err != nil {
		return err
	}

	var converted []byte

	switch target {
	case 'i':
		n, err := numericValue(tag, data)
		if err != nil {
			return err
		}

		converted = int32Payload(int32(n))
	case 'f':
		n, err := numericValue(tag, data)
		if err != nil {
			return err
		}

		converted = floatPayload(float32(n))
	case 's':
		if tag != 's' && tag != 'S' {
			return oseerr.New(oseerr.ItemType, op)
		}

		converted = data
	case 'b':
		if tag != 'b' {
			return oseerr.New(oseerr.ItemType, op)
		}

		converted = data
	default:
		return oseerr.New(oseerr.UnknownTypetag, op)
	}

	newPayload := append(append([]byte(nil), m.Payload[:off]...), converted...)
	newTags := m.TypeTags[:len(m.TypeTags)-1] + string(target)
	out := buildMessage(m.Address, newTags, newPayload)

	return h.rewrite(append(elems[:len(elems)-1:len(elems)-1], out))
}

func numericValue(tag byte, data []byte) (float64, error) {
	n, err := readNumeric(tag, data)
	if err != nil {
		return 0, err
	}

	return n.f, nil
}

// CoerceTopInt32 converts the rightmost item of the top message to int32.
func CoerceTopInt32(h *Handle) error { return coerceTop(h, 'i', "coerce-i") }

// CoerceTopFloat32 converts the rightmost item of the top message to float32.
func CoerceTopFloat32(h *Handle) error { return coerceTop(h, 'f', "coerce-f") }

// CoerceTopString requires the rightmost item of the top message to already
// be a string, per the source's coercion family (s/b coercions on
// non-matching tags report ItemType rather than reinterpreting bytes).
func CoerceTopString(h *Handle) error { return coerceTop(h, 's', "coerce-s") }

// CoerceTopBlob requires the rightmost item of the top message to already
// be a blob.
func CoerceTopBlob(h *Handle) error { return coerceTop(h, 'b', "coerce-b") }
