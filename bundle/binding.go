package bundle

// Replace overwrites the first element in the container whose address
// matches the popped top message's address; if none matches, the message is
// discarded and the container is left unchanged.
func Replace(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 1, "replace"); err != nil {
		return err
	}

	n := len(elems)
	incoming := elems[n-1]

	m, err := parseMessage(incoming)
	if err != nil {
		return err
	}

	rest := append([][]byte{}, elems[:n-1]...)
	idx := findByAddress(rest, m.Address)

	if idx >= 0 {
		rest[idx] = incoming
	}

	return h.rewrite(rest)
}

// Assign promotes the top element to a value bound to the address given in
// the message below it (a single-item string message), then installs the
// binding in the container with replace-if-bound, else-append semantics.
func Assign(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, "assign"); err != nil {
		return err
	}

	n := len(elems)

	nameMsg, err := parseMessage(elems[n-2])
	if err != nil {
		return err
	}

	name, _, err := stringPayload(nameMsg)
	if err != nil {
		return err
	}

	value := elems[n-1]
	var named []byte

	if isBundleElem(value) {
		named = value
	} else {
		vm, err := parseMessage(value)
		if err != nil {
			return err
		}

		named = buildMessage(name, vm.TypeTags, vm.Payload)
	}

	rest := append([][]byte{}, elems[:n-2]...)
	idx := findByAddress(rest, name)

	if idx >= 0 {
		rest[idx] = named
	} else {
		rest = append(rest, named)
	}

	return h.rewrite(rest)
}

// Lookup pops a single-item string message naming an address, and pushes a
// copy of the first matching element in the container, or an empty
// anonymous message on miss.
func Lookup(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 1, "lookup"); err != nil {
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

	rest := elems[:n-1]
	idx := findByAddress(rest, name)

	var found []byte
	if idx >= 0 {
		found = append([]byte(nil), rest[idx]...)
	} else {
		found = buildMessage("", "", nil)
	}

	return h.rewrite(append(append([][]byte{}, rest...), found))
}
