// Package bundle implements the in-place OSC bundle algebra: the family of
// stack, grouping, query, payload, routing, binding and arithmetic
// primitives that the evaluator composes to run a program. Every primitive
// takes a *Handle — a view onto one sub-bundle inside a byte arena — and
// rewrites its content in place, updating the declared size field and, for
// sub-bundles owned by a context, the trailing free-space blob.
package bundle

import (
	"github.com/0Z3/libose/oseerr"
	"github.com/0Z3/libose/wire"
)

// Handle is a view onto one bundle living inside an arena: At is the
// absolute offset of that bundle's literal "#bundle\0" marker, and the
// bundle's declared size field occupies the 4 bytes immediately before it.
//
// A Handle over a context's inner sub-bundle additionally carries Capacity
// (the reserved total for that context) and OnResize (a hook that adjusts
// the trailing free-space blob); both are zero for a free-standing handle
// built over a detached element, such as the scratch handles primitives use
// to inspect a bundle-shaped payload item.
type Handle struct {
	Arena    []byte
	At       int32
	Capacity int32
	OnResize func(oldSize, newSize int32) error
}

// Size returns the handle's declared size field: the number of bytes that
// follow the size field, including the 16-byte "#bundle\0"+timetag header.
func (h *Handle) Size() (int32, error) {
	return wire.ReadInt32(h.Arena, h.At-4)
}

func (h *Handle) contentOffset() int32 {
	return h.At + 16
}

func (h *Handle) elementsEnd() (int32, error) {
	sz, err := h.Size()
	if err != nil {
		return 0, err
	}

	return h.At + sz, nil
}

// TimeTag reads the 8-byte timetag slot following the bundle marker.
func (h *Handle) TimeTag() (int64, error) {
	return wire.ReadTimeTag(h.Arena, h.At+8)
}

// Elements exports elements for use by the context and vm packages, which
// need to inspect a bundle's raw element list directly (e.g. to locate a
// context message by address).
func (h *Handle) Elements() ([][]byte, error) {
	return h.elements()
}

// Rewrite exports rewrite for use by the context package, which appends and
// removes context-message elements directly on the root bundle.
func (h *Handle) Rewrite(elems [][]byte) error {
	return h.rewrite(elems)
}

// elements walks the bundle and returns each top-level element as its own
// byte slice (size prefix + content), copied out of the arena so that
// primitives can freely reorder them before writing the result back.
func (h *Handle) elements() ([][]byte, error) {
	if !wire.IsBundleHeader(h.Arena, h.At) {
		return nil, oseerr.New(oseerr.ElemType, "bundle.elements")
	}

	end, err := h.elementsEnd()
	if err != nil {
		return nil, err
	}

	var out [][]byte

	off := h.contentOffset()
	for off < end {
		size, err := wire.ReadInt32(h.Arena, off)
		if err != nil {
			return nil, err
		}

		width := 4 + size
		if size < 0 || off+width > end {
			return nil, oseerr.New(oseerr.Range, "bundle.elements")
		}

		buf := make([]byte, width)
		copy(buf, h.Arena[off:off+width])
		out = append(out, buf)

		off += width
	}

	return out, nil
}

// rewrite replaces the handle's element list with elems, updating the size
// field and invoking OnResize if set. It fails with oseerr.Range if the new
// content would exceed Capacity (when Capacity is non-zero) or the arena.
func (h *Handle) rewrite(elems [][]byte) error {
	old, err := h.Size()
	if err != nil {
		return err
	}

	var total int32
	for _, e := range elems {
		total += int32(len(e))
	}

	newSize := 16 + total
	if h.Capacity > 0 && newSize > h.Capacity {
		return oseerr.New(oseerr.Range, "bundle.rewrite")
	}

	oldEnd := h.At + old
	off := h.contentOffset()

	for _, e := range elems {
		if off+int32(len(e)) > int32(len(h.Arena)) {
			return oseerr.New(oseerr.Range, "bundle.rewrite")
		}

		copy(h.Arena[off:off+int32(len(e))], e)
		off += int32(len(e))
	}

	for i := off; i < oldEnd; i++ {
		h.Arena[i] = 0
	}

	if err := wire.WriteInt32(h.Arena, h.At-4, newSize); err != nil {
		return err
	}

	if h.OnResize != nil {
		if err := h.OnResize(old, newSize); err != nil {
			_ = wire.WriteInt32(h.Arena, h.At-4, old)
			return err
		}
	}

	return nil
}

// NewRoot initialises arena as an empty root bundle and returns a Handle
// over it. The arena must be at least 20 bytes (4-byte size field plus the
// 16-byte "#bundle\0"+timetag header) and is otherwise left untouched
// beyond that header, matching the lifecycle described in spec §3: the
// host acquires and zeroes the arena before calling this.
func NewRoot(arena []byte) (*Handle, error) {
	if len(arena) < 20 {
		return nil, oseerr.New(oseerr.Range, "bundle.NewRoot")
	}

	if err := wire.WriteInt32(arena, 0, 16); err != nil {
		return nil, err
	}

	copy(arena[4:12], wire.BundleHeader)

	if err := wire.WriteTimeTag(arena, 12, 0); err != nil {
		return nil, err
	}

	return &Handle{Arena: arena, At: 4, Capacity: int32(len(arena)) - 4}, nil
}

// NewBundleBytes builds a detached, empty bundle element (size prefix +
// "#bundle\0" + 8-byte timetag), suitable for embedding via rewrite or for
// wrapping with a Handle at At=4 to inspect/build its contents.
func NewBundleBytes(timeTag int64) []byte {
	out := make([]byte, 4+16)
	_ = wire.WriteInt32(out, 0, 16)
	copy(out[4:12], wire.BundleHeader)
	_ = wire.WriteTimeTag(out, 12, timeTag)

	return out
}

// AsHandle wraps a detached bundle element (as returned by elements() when
// isBundleElem is true) in a Handle positioned at its own marker, so the
// stack/grouping primitives can be reused on nested bundle payloads.
func AsHandle(elem []byte) *Handle {
	return &Handle{Arena: elem, At: 4}
}

func isBundleElem(e []byte) bool {
	return len(e) >= 12 && string(e[4:12]) == wire.BundleHeader
}

// Message is the parsed view of a message element: address, type tags
// (without the leading comma) and the raw payload bytes that follow.
type Message struct {
	Address  string
	TypeTags string
	Payload  []byte
}

func parseMessage(e []byte) (*Message, error) {
	if isBundleElem(e) {
		return nil, oseerr.New(oseerr.ElemType, "bundle.parseMessage")
	}

	content := e[4:]

	addr, aw, err := wire.ReadString(content, 0)
	if err != nil {
		return nil, err
	}

	ttRaw, tw, err := wire.ReadString(content, aw)
	if err != nil {
		return nil, err
	}

	if len(ttRaw) == 0 || ttRaw[0] != ',' {
		return nil, oseerr.New(oseerr.ElemType, "bundle.parseMessage")
	}

	return &Message{
		Address:  addr,
		TypeTags: ttRaw[1:],
		Payload:  content[aw+tw:],
	}, nil
}

func buildMessage(address, typeTags string, payload []byte) []byte {
	addrWidth := wire.PaddedStringLen(int32(len(address)))
	ttWidth := wire.PaddedStringLen(int32(len(typeTags) + 1))

	content := make([]byte, addrWidth+ttWidth+int32(len(payload)))
	_, _ = wire.WriteString(content, 0, address)
	_, _ = wire.WriteString(content, addrWidth, ","+typeTags)
	copy(content[addrWidth+ttWidth:], payload)

	out := make([]byte, 4+len(content))
	_ = wire.WriteInt32(out, 0, int32(len(content)))
	copy(out[4:], content)

	return out
}

func (m *Message) bytes() []byte {
	return buildMessage(m.Address, m.TypeTags, m.Payload)
}

// Bytes encodes the message as a size-prefixed element, for callers outside
// the package that build ad hoc messages (e.g. the vm package's Cache
// bookkeeping message).
func (m *Message) Bytes() []byte {
	return m.bytes()
}

// itemWidth returns the wire width of one payload item of the given tag,
// or -1 if the tag's width is not a fixed constant (s, S, b).
func itemWidth(tag byte) int32 {
	switch tag {
	case 'i', 'f', 'u':
		return 4
	case 'h', 't', 'd', 'U':
		return 8
	case 'T', 'F', 'N', '|':
		return 0
	default:
		return -1
	}
}

// itemOffsets returns the start offset (relative to payload) and width of
// each item described by typeTags, in order.
func itemOffsets(payload []byte, typeTags string) ([]int32, []int32, error) {
	offs := make([]int32, len(typeTags))
	widths := make([]int32, len(typeTags))

	off := int32(0)

	for i := 0; i < len(typeTags); i++ {
		offs[i] = off

		w := itemWidth(typeTags[i])
		switch {
		case w >= 0:
			widths[i] = w
		case typeTags[i] == 's' || typeTags[i] == 'S':
			_, width, err := wire.ReadString(payload, off)
			if err != nil {
				return nil, nil, err
			}

			widths[i] = width
		case typeTags[i] == 'b':
			_, width, err := wire.ReadBlob(payload, off)
			if err != nil {
				return nil, nil, err
			}

			widths[i] = width
		default:
			return nil, nil, oseerr.New(oseerr.UnknownTypetag, "bundle.itemOffsets")
		}

		off += widths[i]
	}

	return offs, widths, nil
}
