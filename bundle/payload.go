package bundle

import (
	"github.com/0Z3/libose/oseerr"
	"github.com/0Z3/libose/wire"
)

// BlobToElem reinterprets the top element's sole blob payload item (whose
// content begins with "#bundle\0") as a bundle element, replacing the top
// element with it.
func BlobToElem(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	if m.TypeTags != "b" {
		return oseerr.New(oseerr.ItemType, "blobToElem")
	}

	content, _, err := wire.ReadBlob(m.Payload, 0)
	if err != nil {
		return err
	}

	if len(content) < 8 || string(content[:8]) != wire.BundleHeader {
		return oseerr.New(oseerr.ElemType, "blobToElem")
	}

	out := make([]byte, 4+len(content))
	_ = wire.WriteInt32(out, 0, int32(len(content)))
	copy(out[4:], content)

	return h.rewrite(append(elems[:len(elems)-1:len(elems)-1], out))
}

// BlobToType reinterprets the top element's sole blob payload as a scalar of
// the given type tag, replacing the top element with a single-item message
// of that tag.
func BlobToType(h *Handle, tag byte) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	if m.TypeTags != "b" {
		return oseerr.New(oseerr.ItemType, "blobToType")
	}

	content, _, err := wire.ReadBlob(m.Payload, 0)
	if err != nil {
		return err
	}

	w := itemWidth(tag)
	if w < 0 || int32(len(content)) < w {
		return oseerr.New(oseerr.ItemType, "blobToType")
	}

	out := buildMessage(m.Address, string(tag), content[:w])

	return h.rewrite(append(elems[:len(elems)-1:len(elems)-1], out))
}

// ElemToBlob replaces the top element (message or bundle) with a message
// whose sole item is a blob containing the element's raw content bytes.
func ElemToBlob(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 1, "elemToBlob"); err != nil {
		return err
	}

	n := len(elems)
	content := elems[n-1][4:]

	out := buildMessage("", "b", blobItemPayload(content))

	return h.rewrite(append(elems[:n-1:n-1], out))
}

// ItemToBlob wraps the rightmost payload item of the top message as a blob,
// replacing that item in place.
func ItemToBlob(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	_, data, off, err := lastItem(m)
	if err != nil {
		return err
	}

	last := len(m.TypeTags) - 1
	newPayload := append(append([]byte(nil), m.Payload[:off]...), blobItemPayload(data)...)
	out := buildMessage(m.Address, m.TypeTags[:last]+"b", newPayload)

	return h.rewrite(append(elems[:len(elems)-1:len(elems)-1], out))
}

// CopyAddressToString pushes a copy of the top element's address as a new
// string message, leaving the original element in place.
func CopyAddressToString(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	return h.rewrite(append(elems, buildMessage("", "s", stringItemPayload(m.Address))))
}

// MoveStringToAddress pops a single-item string message from the top and
// uses it to rename the address of the new top element.
func MoveStringToAddress(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "moveStringToAddress"); err != nil {
		return err
	}

	n := len(elems)

	nameMsg, err := parseMessage(elems[n-1])
	if err != nil {
		return err
	}

	name, _, err := stringPayload(nameMsg)
	if err != nil {
		return err
	}

	target := elems[n-2]
	if isBundleElem(target) {
		return oseerr.New(oseerr.ElemType, "moveStringToAddress")
	}

	tm, err := parseMessage(target)
	if err != nil {
		return err
	}

	renamed := buildMessage(name, tm.TypeTags, tm.Payload)

	return h.rewrite(append(elems[:n-2:n-2], renamed))
}

// SwapStringToAddress exchanges the top string message's content with the
// address of the element below it.
func SwapStringToAddress(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "swapStringToAddress"); err != nil {
		return err
	}

	n := len(elems)

	nameMsg, err := parseMessage(elems[n-1])
	if err != nil {
		return err
	}

	name, _, err := stringPayload(nameMsg)
	if err != nil {
		return err
	}

	target := elems[n-2]
	if isBundleElem(target) {
		return oseerr.New(oseerr.ElemType, "swapStringToAddress")
	}

	tm, err := parseMessage(target)
	if err != nil {
		return err
	}

	renamed := buildMessage(name, tm.TypeTags, tm.Payload)
	oldAddrMsg := buildMessage("", "s", stringItemPayload(tm.Address))

	return h.rewrite(append(elems[:n-2:n-2], renamed, oldAddrMsg))
}

// ConcatenateStrings merges the top two single-item string messages into
// one, top appended to the one below; the resulting address is the bottom
// message's address.
func ConcatenateStrings(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "concatenateStrings"); err != nil {
		return err
	}

	n := len(elems)

	bm, err := parseMessage(elems[n-2])
	if err != nil {
		return err
	}

	tm, err := parseMessage(elems[n-1])
	if err != nil {
		return err
	}

	bs, _, err := stringPayload(bm)
	if err != nil {
		return err
	}

	ts, _, err := stringPayload(tm)
	if err != nil {
		return err
	}

	out := buildMessage(bm.Address, "s", stringItemPayload(bs+ts))

	return h.rewrite(append(elems[:n-2:n-2], out))
}

// ConcatenateBlobs merges the top two single-item blob messages into one.
func ConcatenateBlobs(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "concatenateBlobs"); err != nil {
		return err
	}

	n := len(elems)

	bm, err := parseMessage(elems[n-2])
	if err != nil {
		return err
	}

	tm, err := parseMessage(elems[n-1])
	if err != nil {
		return err
	}

	if bm.TypeTags != "b" || tm.TypeTags != "b" {
		return oseerr.New(oseerr.ItemType, "concatenateBlobs")
	}

	bb, _, err := wire.ReadBlob(bm.Payload, 0)
	if err != nil {
		return err
	}

	tb, _, err := wire.ReadBlob(tm.Payload, 0)
	if err != nil {
		return err
	}

	out := buildMessage(bm.Address, "b", blobItemPayload(append(append([]byte(nil), bb...), tb...)))

	return h.rewrite(append(elems[:n-2:n-2], out))
}

// DecatenateStringFromStart detaches the first n bytes of the top string
// item into a new message above it.
func DecatenateStringFromStart(h *Handle, n int) error {
	return decatenateString(h, n, true)
}

// DecatenateStringFromEnd detaches the last n bytes of the top string item
// into a new message above it.
func DecatenateStringFromEnd(h *Handle, n int) error {
	return decatenateString(h, n, false)
}

// SplitStringFromStart is an alias of DecatenateStringFromStart; the source
// leaves the two operations' intended distinction undocumented, so both
// partition the same way.
func SplitStringFromStart(h *Handle, n int) error {
	return decatenateString(h, n, true)
}

// SplitStringFromEnd is an alias of DecatenateStringFromEnd.
func SplitStringFromEnd(h *Handle, n int) error {
	return decatenateString(h, n, false)
}

func decatenateString(h *Handle, n int, fromStart bool) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	s, _, err := stringPayload(m)
	if err != nil {
		return err
	}

	if n < 0 || n > len(s) {
		return oseerr.New(oseerr.Range, "decatenateString")
	}

	var head, tail string
	if fromStart {
		head, tail = s[n:], s[:n]
	} else {
		head, tail = s[:len(s)-n], s[len(s)-n:]
	}

	remainder := buildMessage(m.Address, "s", stringItemPayload(head))
	detached := buildMessage("", "s", stringItemPayload(tail))

	return h.rewrite(append(elems[:len(elems)-1:len(elems)-1], remainder, detached))
}

// DecatenateBlobFromStart detaches the first n bytes of the top blob item
// into a new message above it.
func DecatenateBlobFromStart(h *Handle, n int) error {
	return decatenateBlob(h, n, true)
}

// DecatenateBlobFromEnd detaches the last n bytes of the top blob item into
// a new message above it.
func DecatenateBlobFromEnd(h *Handle, n int) error {
	return decatenateBlob(h, n, false)
}

func decatenateBlob(h *Handle, n int, fromStart bool) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	if m.TypeTags != "b" {
		return oseerr.New(oseerr.ItemType, "decatenateBlob")
	}

	b, _, err := wire.ReadBlob(m.Payload, 0)
	if err != nil {
		return err
	}

	if n < 0 || n > len(b) {
		return oseerr.New(oseerr.Range, "decatenateBlob")
	}

	var head, tail []byte
	if fromStart {
		head, tail = b[n:], b[:n]
	} else {
		head, tail = b[:len(b)-n], b[len(b)-n:]
	}

	remainder := buildMessage(m.Address, "b", blobItemPayload(head))
	detached := buildMessage("", "b", blobItemPayload(tail))

	return h.rewrite(append(elems[:len(elems)-1:len(elems)-1], remainder, detached))
}

// TrimStringStart removes the first n bytes of the top string item in
// place.
func TrimStringStart(h *Handle, n int) error {
	return trimString(h, n, true)
}

// TrimStringEnd removes the last n bytes of the top string item in place.
func TrimStringEnd(h *Handle, n int) error {
	return trimString(h, n, false)
}

func trimString(h *Handle, n int, fromStart bool) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	s, _, err := stringPayload(m)
	if err != nil {
		return err
	}

	if n < 0 || n > len(s) {
		return oseerr.New(oseerr.Range, "trimString")
	}

	var trimmed string
	if fromStart {
		trimmed = s[n:]
	} else {
		trimmed = s[:len(s)-n]
	}

	out := buildMessage(m.Address, "s", stringItemPayload(trimmed))

	return h.rewrite(append(elems[:len(elems)-1:len(elems)-1], out))
}

// Swap4Bytes reverses the byte order of the first 4 bytes of the rightmost
// payload item of the top message, which must be at least 4 bytes wide.
func Swap4Bytes(h *Handle) error {
	return swapNBytes(h, 4)
}

// Swap8Bytes reverses the byte order of the first 8 bytes of the rightmost
// payload item, which must be at least 8 bytes wide.
func Swap8Bytes(h *Handle) error {
	return swapNBytes(h, 8)
}

// SwapNBytes reverses the byte order of the first n bytes of the rightmost
// payload item of the top message.
func SwapNBytes(h *Handle, n int) error {
	return swapNBytes(h, n)
}

func swapNBytes(h *Handle, n int) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	_, data, off, err := lastItem(m)
	if err != nil {
		return err
	}

	if n < 0 || n > len(data) {
		return oseerr.New(oseerr.Range, "swapNBytes")
	}

	swapped := append([]byte(nil), data...)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swapped[i], swapped[j] = swapped[j], swapped[i]
	}

	newPayload := append([]byte(nil), m.Payload...)
	copy(newPayload[off:off+int32(len(swapped))], swapped)

	out := buildMessage(m.Address, m.TypeTags, newPayload)

	return h.rewrite(append(elems[:len(elems)-1:len(elems)-1], out))
}
