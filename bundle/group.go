package bundle

import (
	"github.com/0Z3/libose/oseerr"
	"github.com/0Z3/libose/wire"
)

// wrapBundle builds a detached bundle element containing elems.
func wrapBundle(elems [][]byte) []byte {
	var total int32
	for _, e := range elems {
		total += int32(len(e))
	}

	out := NewBundleBytes(0)
	out = append(out, make([]byte, total)...)

	_ = wire.WriteInt32(out, 0, 16+total)

	off := int32(20)
	for _, e := range elems {
		copy(out[off:off+int32(len(e))], e)
		off += int32(len(e))
	}

	return out
}

// BundleAll wraps all current elements as one nested bundle.
func BundleAll(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	return h.rewrite([][]byte{wrapBundle(elems)})
}

// BundleFromTop wraps the top n elements as one nested bundle.
func BundleFromTop(h *Handle, n int) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if n < 0 || n > len(elems) {
		return oseerr.New(oseerr.ElemCount, "bundleFromTop")
	}

	split := len(elems) - n
	out := append(append([][]byte{}, elems[:split]...), wrapBundle(elems[split:]))

	return h.rewrite(out)
}

// BundleFromBottom wraps the bottom n elements as one nested bundle.
func BundleFromBottom(h *Handle, n int) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if n < 0 || n > len(elems) {
		return oseerr.New(oseerr.ElemCount, "bundleFromBottom")
	}

	out := append([][]byte{wrapBundle(elems[:n])}, elems[n:]...)

	return h.rewrite(out)
}

// Clear removes all elements, preserving the bundle header.
func Clear(h *Handle) error {
	return h.rewrite(nil)
}

// Push takes the top two elements and merges them: two messages concatenate
// typetags and payloads (bottom message's address retained); anything onto
// a bundle appends into it; two bundles concatenate their elements.
func Push(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "push"); err != nil {
		return err
	}

	n := len(elems)
	bottom, top := elems[n-2], elems[n-1]

	var merged []byte

	switch {
	case isBundleElem(top):
		sub := AsHandle(append([]byte(nil), top...))
		inner, err := sub.elements()
		if err != nil {
			return err
		}

		if isBundleElem(bottom) {
			bsub := AsHandle(append([]byte(nil), bottom...))
			binner, err := bsub.elements()
			if err != nil {
				return err
			}

			merged = wrapBundle(append(binner, inner...))
		} else {
			merged = wrapBundle(append([][]byte{bottom}, inner...))
		}
	case isBundleElem(bottom):
		sub := AsHandle(append([]byte(nil), bottom...))
		inner, err := sub.elements()
		if err != nil {
			return err
		}

		merged = wrapBundle(append(inner, top))
	default:
		bm, err := parseMessage(bottom)
		if err != nil {
			return err
		}

		tm, err := parseMessage(top)
		if err != nil {
			return err
		}

		merged = buildMessage(bm.Address, bm.TypeTags+tm.TypeTags, append(append([]byte(nil), bm.Payload...), tm.Payload...))
	}

	return h.rewrite(append(elems[:n-2:n-2], merged))
}

// Pop is the structural inverse of Push: from a message it detaches the
// rightmost typetag+payload item into a new anonymous message above it;
// from a bundle it detaches the last element.
func Pop(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 1, "pop"); err != nil {
		return err
	}

	n := len(elems)
	top := elems[n-1]

	if isBundleElem(top) {
		sub := AsHandle(append([]byte(nil), top...))
		inner, err := sub.elements()
		if err != nil {
			return err
		}

		if len(inner) == 0 {
			return oseerr.New(oseerr.ElemCount, "pop")
		}

		last := inner[len(inner)-1]
		rest := wrapBundle(inner[:len(inner)-1])

		return h.rewrite(append(elems[:n-1:n-1], rest, last))
	}

	m, err := parseMessage(top)
	if err != nil {
		return err
	}

	if len(m.TypeTags) == 0 {
		return oseerr.New(oseerr.ItemCount, "pop")
	}

	offs, widths, err := itemOffsets(m.Payload, m.TypeTags)
	if err != nil {
		return err
	}

	last := len(m.TypeTags) - 1
	detached := buildMessage("", m.TypeTags[last:last+1], m.Payload[offs[last]:offs[last]+widths[last]])
	remainder := buildMessage(m.Address, m.TypeTags[:last], m.Payload[:offs[last]])

	return h.rewrite(append(elems[:n-1:n-1], remainder, detached))
}

// PopAll repeatedly pops the top element until empty.
func PopAll(h *Handle) error {
	for {
		elems, err := h.elements()
		if err != nil {
			return err
		}

		top := elems[len(elems)-1]
		if isBundleElem(top) {
			if err := Pop(h); err != nil {
				return err
			}

			continue
		}

		m, err := parseMessage(top)
		if err != nil {
			return err
		}

		if len(m.TypeTags) == 0 {
			return nil
		}

		if err := Pop(h); err != nil {
			return err
		}
	}
}

// PopAllDrop is PopAll followed by dropping the now-empty container.
func PopAllDrop(h *Handle) error {
	if err := PopAll(h); err != nil {
		return err
	}

	elems, err := h.elements()
	if err != nil {
		return err
	}

	if len(elems) == 0 {
		return oseerr.New(oseerr.ElemCount, "popAllDrop")
	}

	return h.rewrite(elems[:len(elems)-1])
}

// Unpack replaces the top bundle element with its own elements, splicing
// them into the container in place.
func Unpack(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 1, "unpack"); err != nil {
		return err
	}

	n := len(elems)
	top := elems[n-1]

	if !isBundleElem(top) {
		return oseerr.New(oseerr.ElemType, "unpack")
	}

	sub := AsHandle(append([]byte(nil), top...))

	inner, err := sub.elements()
	if err != nil {
		return err
	}

	return h.rewrite(append(elems[:n-1:n-1], inner...))
}

// UnpackDrop unpacks then additionally consumes nothing further: per
// "additionally drop the emptied container", for unpack this is a no-op
// beyond Unpack itself since the container is already replaced.
func UnpackDrop(h *Handle) error {
	return Unpack(h)
}

// Split partitions the top element (a message) at item n: items [0,n) stay
// with the original address, items [n,end) go to a new anonymous message
// above it.
func Split(h *Handle, n int) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 1, "split"); err != nil {
		return err
	}

	top := elems[len(elems)-1]
	if isBundleElem(top) {
		return oseerr.New(oseerr.ElemType, "split")
	}

	m, err := parseMessage(top)
	if err != nil {
		return err
	}

	if n < 0 || n > len(m.TypeTags) {
		return oseerr.New(oseerr.ItemCount, "split")
	}

	offs, widths, err := itemOffsets(m.Payload, m.TypeTags)
	if err != nil {
		return err
	}

	var cut int32
	if n < len(offs) {
		cut = offs[n]
	} else {
		cut = int32(len(m.Payload))
	}

	_ = widths

	lo := buildMessage(m.Address, m.TypeTags[:n], m.Payload[:cut])
	hi := buildMessage("", m.TypeTags[n:], m.Payload[cut:])

	return h.rewrite(append(elems[:len(elems)-1:len(elems)-1], lo, hi))
}
