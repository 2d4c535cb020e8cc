package bundle

import "github.com/0Z3/libose/oseerr"

// needElems checks that a bundle's element list has at least n entries,
// returning oseerr.ElemCount otherwise.
func needElems(elems [][]byte, n int, op string) error {
	if len(elems) < n {
		return oseerr.New(oseerr.ElemCount, op)
	}

	return nil
}

// Drop removes the top element.
func Drop(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 1, "drop"); err != nil {
		return err
	}

	return h.rewrite(elems[:len(elems)-1])
}

// Dup duplicates the top element.
func Dup(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 1, "dup"); err != nil {
		return err
	}

	top := append([]byte(nil), elems[len(elems)-1]...)

	return h.rewrite(append(elems, top))
}

// Swap exchanges the top two elements.
func Swap(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "swap"); err != nil {
		return err
	}

	n := len(elems)
	elems[n-1], elems[n-2] = elems[n-2], elems[n-1]

	return h.rewrite(elems)
}

// Over copies the second element to the top.
func Over(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "over"); err != nil {
		return err
	}

	n := len(elems)
	copied := append([]byte(nil), elems[n-2]...)

	return h.rewrite(append(elems, copied))
}

// Nip removes the second element, leaving the top in place.
func Nip(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "nip"); err != nil {
		return err
	}

	n := len(elems)
	out := append(elems[:n-2:n-2], elems[n-1])

	return h.rewrite(out)
}

// Tuck copies the top element below the second.
func Tuck(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "tuck"); err != nil {
		return err
	}

	n := len(elems)
	top := append([]byte(nil), elems[n-1]...)
	out := make([][]byte, 0, n+1)
	out = append(out, elems[:n-2]...)
	out = append(out, top, elems[n-2], elems[n-1])

	return h.rewrite(out)
}

// Rot rotates the top three elements so the third from top becomes the top.
func Rot(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 3, "rot"); err != nil {
		return err
	}

	n := len(elems)
	a, b, c := elems[n-3], elems[n-2], elems[n-1]
	out := append(elems[:n-3:n-3], b, c, a)

	return h.rewrite(out)
}

// NotRot rotates the top three elements the other way (the "-rot" op): the
// top becomes the third from top.
func NotRot(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 3, "-rot"); err != nil {
		return err
	}

	n := len(elems)
	a, b, c := elems[n-3], elems[n-2], elems[n-1]
	out := append(elems[:n-3:n-3], c, a, b)

	return h.rewrite(out)
}

// TwoDrop removes the top two elements.
func TwoDrop(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "2drop"); err != nil {
		return err
	}

	return h.rewrite(elems[:len(elems)-2])
}

// TwoDup duplicates the top two elements as a pair.
func TwoDup(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "2dup"); err != nil {
		return err
	}

	n := len(elems)
	a := append([]byte(nil), elems[n-2]...)
	b := append([]byte(nil), elems[n-1]...)

	return h.rewrite(append(elems, a, b))
}

// TwoOver copies the pair below the top pair, to the top.
func TwoOver(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 4, "2over"); err != nil {
		return err
	}

	n := len(elems)
	a := append([]byte(nil), elems[n-4]...)
	b := append([]byte(nil), elems[n-3]...)

	return h.rewrite(append(elems, a, b))
}

// TwoSwap exchanges the top pair with the pair below it.
func TwoSwap(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 4, "2swap"); err != nil {
		return err
	}

	n := len(elems)
	out := append(elems[:n-4:n-4], elems[n-2], elems[n-1], elems[n-4], elems[n-3])

	return h.rewrite(out)
}

// Pick duplicates the nth element from the top (0 = top) onto the top.
func Pick(h *Handle, n int) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if n < 0 || n >= len(elems) {
		return oseerr.New(oseerr.ElemCount, "pick")
	}

	idx := len(elems) - 1 - n
	picked := append([]byte(nil), elems[idx]...)

	return h.rewrite(append(elems, picked))
}

// PickBottom duplicates the nth element from the bottom (0 = bottom) onto
// the top.
func PickBottom(h *Handle, n int) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if n < 0 || n >= len(elems) {
		return oseerr.New(oseerr.ElemCount, "pickBottom")
	}

	picked := append([]byte(nil), elems[n]...)

	return h.rewrite(append(elems, picked))
}

// Roll relocates the nth element from the top (0 = top) to the top.
func Roll(h *Handle, n int) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if n < 0 || n >= len(elems) {
		return oseerr.New(oseerr.ElemCount, "roll")
	}

	idx := len(elems) - 1 - n
	e := elems[idx]
	out := append(append([][]byte{}, elems[:idx]...), elems[idx+1:]...)
	out = append(out, e)

	return h.rewrite(out)
}

// RollBottom relocates the nth element from the bottom (0 = bottom) to the
// top.
func RollBottom(h *Handle, n int) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if n < 0 || n >= len(elems) {
		return oseerr.New(oseerr.ElemCount, "rollBottom")
	}

	e := elems[n]
	out := append(append([][]byte{}, elems[:n]...), elems[n+1:]...)
	out = append(out, e)

	return h.rewrite(out)
}

// findByAddress returns the index of the first element (searching from the
// bottom) whose address equals addr; -1 if none matches or the element is a
// nested bundle.
func findByAddress(elems [][]byte, addr string) int {
	for i, e := range elems {
		if isBundleElem(e) {
			continue
		}

		m, err := parseMessage(e)
		if err != nil {
			continue
		}

		if m.Address == addr {
			return i
		}
	}

	return -1
}

// PickMatch consumes a string item at the top of the bundle, scans for the
// first element (from the bottom) whose address equals that string, and
// copies it to the top, pushing an int32 0/1 success flag.
func PickMatch(h *Handle) error {
	return matchOp(h, "pickMatch", false)
}

// RollMatch is PickMatch but relocates instead of copying.
func RollMatch(h *Handle) error {
	return matchOp(h, "rollMatch", true)
}

func matchOp(h *Handle, op string, move bool) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 1, op); err != nil {
		return err
	}

	top := elems[len(elems)-1]
	tm, err := parseMessage(top)
	if err != nil || tm.TypeTags != "s" {
		return oseerr.New(oseerr.ItemType, op)
	}

	name, _, err := stringPayload(tm)
	if err != nil {
		return err
	}

	rest := elems[:len(elems)-1]
	idx := findByAddress(rest, name)

	out := append([][]byte{}, rest...)

	flag := int32(0)
	if idx >= 0 {
		flag = 1
		found := rest[idx]

		if move {
			out = append(append(out[:idx:idx], out[idx+1:]...), found)
		} else {
			out = append(out, append([]byte(nil), found...))
		}
	}

	out = append(out, buildMessage("", "i", int32Payload(flag)))

	return h.rewrite(out)
}
