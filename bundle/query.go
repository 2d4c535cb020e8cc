package bundle

import (
	"github.com/0Z3/libose/oseerr"
	"github.com/0Z3/libose/wire"
)

// CountElems pushes the top-level element count of the bundle.
func CountElems(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	return h.rewrite(append(elems, buildMessage("", "i", int32Payload(int32(len(elems))))))
}

// CountItems pushes the typetag-count of the top message, or the element
// count of the top bundle.
func CountItems(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 1, "countItems"); err != nil {
		return err
	}

	top := elems[len(elems)-1]

	var n int32

	if isBundleElem(top) {
		inner, err := AsHandle(append([]byte(nil), top...)).elements()
		if err != nil {
			return err
		}

		n = int32(len(inner))
	} else {
		m, err := parseMessage(top)
		if err != nil {
			return err
		}

		n = int32(len(m.TypeTags))
	}

	return h.rewrite(append(elems, buildMessage("", "i", int32Payload(n))))
}

// SizeElem pushes the total byte width (4+size) of the top element.
func SizeElem(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 1, "sizeElem"); err != nil {
		return err
	}

	top := elems[len(elems)-1]

	return h.rewrite(append(elems, buildMessage("", "i", int32Payload(int32(len(top))))))
}

// SizeItem pushes the byte width of the rightmost payload item of the top
// message.
func SizeItem(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	_, data, _, err := lastItem(m)
	if err != nil {
		return err
	}

	return h.rewrite(append(elems, buildMessage("", "i", int32Payload(int32(len(data))))))
}

// LengthItem pushes the logical length of the rightmost payload item (for
// strings/blobs, content length excluding padding; for fixed-width items,
// the item width).
func LengthItem(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	tag, data, _, err := lastItem(m)
	if err != nil {
		return err
	}

	var n int32

	switch tag {
	case 's', 'S':
		for n = 0; int(n) < len(data) && data[n] != 0; n++ {
		}
	case 'b':
		if n, err = wire.ReadInt32(data, 0); err != nil {
			return err
		}
	default:
		n = int32(len(data))
	}

	return h.rewrite(append(elems, buildMessage("", "i", int32Payload(n))))
}

// SizeTT pushes the byte width of the top message's typetag string
// (including the leading comma, NUL and padding).
func SizeTT(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	n := wire.PaddedStringLen(int32(len(m.TypeTags) + 1))

	return h.rewrite(append(elems, buildMessage("", "i", int32Payload(n))))
}

// GetAddresses pushes a string message containing the addresses of all
// elements, one per line.
func GetAddresses(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	var out []byte

	for i, e := range elems {
		if i > 0 {
			out = append(out, '\n')
		}

		if isBundleElem(e) {
			out = append(out, "#bundle"...)

			continue
		}

		m, err := parseMessage(e)
		if err != nil {
			return oseerr.New(oseerr.ElemType, "getAddresses")
		}

		out = append(out, m.Address...)
	}

	return h.rewrite(append(elems, buildMessage("", "s", stringItemPayload(string(out)))))
}
