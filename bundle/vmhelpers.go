package bundle

// ParseElement parses a raw element (as returned by Elements) into a
// Message, or reports that it is a nested bundle.
func ParseElement(elem []byte) (msg *Message, isBundle bool, err error) {
	if isBundleElem(elem) {
		return nil, true, nil
	}

	m, err := parseMessage(elem)

	return m, false, err
}

// TopElement returns the raw bytes of h's top (last) element without
// mutating h.
func TopElement(h *Handle) ([]byte, error) {
	elems, err := h.elements()
	if err != nil {
		return nil, err
	}

	if err := needElems(elems, 1, "bundle.TopElement"); err != nil {
		return nil, err
	}

	return elems[len(elems)-1], nil
}

// PopFront removes and returns h's bottom (first) element, used by the
// evaluator to drain Input in program order.
func PopFront(h *Handle) ([]byte, error) {
	elems, err := h.elements()
	if err != nil {
		return nil, err
	}

	if err := needElems(elems, 1, "bundle.PopFront"); err != nil {
		return nil, err
	}

	front := elems[0]

	return front, h.rewrite(elems[1:])
}

// PushElement appends elem as h's new top element.
func PushElement(h *Handle, elem []byte) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	return h.rewrite(append(elems, elem))
}

// PushElementsReversed appends elems to h in reverse order, so that elems[0]
// ends up as h's new top. Used when unpacking a bundle pulled from Input
// into Control, so the first inner element dispatches first even though
// dispatch always consumes the top (last) element of a bundle.
func PushElementsReversed(h *Handle, elems [][]byte) error {
	cur, err := h.elements()
	if err != nil {
		return err
	}

	out := append([][]byte{}, cur...)
	for i := len(elems) - 1; i >= 0; i-- {
		out = append(out, elems[i])
	}

	return h.rewrite(out)
}

// DropTop removes h's top (last) element.
func DropTop(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 1, "bundle.DropTop"); err != nil {
		return err
	}

	return h.rewrite(elems[:len(elems)-1])
}

// IsEmpty reports whether h currently holds zero top-level elements.
func IsEmpty(h *Handle) (bool, error) {
	elems, err := h.elements()
	if err != nil {
		return false, err
	}

	return len(elems) == 0, nil
}

// ReplaceAll overwrites h's entire element list.
func ReplaceAll(h *Handle, elems [][]byte) error {
	return h.rewrite(elems)
}
