package bundle

// PushBundle appends an empty nested bundle as a new top element.
func PushBundle(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	return h.rewrite(append(elems, NewBundleBytes(0)))
}

// MakeBlob appends a zeroed blob of the given length as a new single-item
// message.
func MakeBlob(h *Handle, size int) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	out := buildMessage("", "b", blobItemPayload(make([]byte, size)))

	return h.rewrite(append(elems, out))
}
