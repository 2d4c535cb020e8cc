// Package context implements the context-message protocol described in
// spec §4.3: each VM sub-bundle is a 3-character-address message reserving
// a contiguous region that holds an inner bundle handle plus a trailing
// free-space blob. push_context/drop_context/enter/space_available manage
// that region; growing or shrinking the inner bundle is pure bookkeeping —
// the bundle package's Handle.OnResize hook installed here shifts the
// boundary between the inner bundle and the free blob without moving bytes,
// since the two are always physically contiguous.
package context

import (
	"github.com/0Z3/libose/bundle"
	"github.com/0Z3/libose/oseerr"
	"github.com/0Z3/libose/wire"
)

// typeTags is the fixed typetag string of every context message, per
// spec §3: four int32 items (unused, status, offset, total) then two blobs
// (the inner bundle, and the trailing free space).
const typeTags = "iiiibb"

// overhead is the fixed number of bytes a context message element uses
// besides the inner bundle's content and the free blob's content: a
// 3-character address (4 bytes padded), the typetag string (8 bytes
// padded), four int32 items (16 bytes), and the two blobs' own 4-byte
// length prefixes.
const overhead = 4 + 8 + 16 + 4 + 4

const (
	offUnused = 0
	offStatus = 4
	offOffset = 8
	offTotal  = 12
	offBlobIV = 16
)

// Address is a reserved 3-character context address.
type Address string

// The eight fixed VM context addresses (spec §4.4, §6).
const (
	Cache       Address = "/co"
	Input       Address = "/ii"
	Stack       Address = "/ss"
	Environment Address = "/ee"
	Control     Address = "/cc"
	Dump        Address = "/dd"
	Output      Address = "/oo"
	Status      Address = "/sx"
)

// findContext locates the context message for address within root's
// top-level elements, returning its byte offset (absolute, start of the
// element's own size prefix) and raw bytes.
func findContext(root *bundle.Handle, address Address) (int32, []byte, error) {
	elems, err := root.Elements()
	if err != nil {
		return 0, nil, err
	}

	off := root.At + 16

	for _, e := range elems {
		if len(e) >= 8 && string(trimAddress(e[4:8])) == string(address) {
			return off, e, nil
		}

		off += int32(len(e))
	}

	return 0, nil, oseerr.New(oseerr.ElemType, "context.findContext")
}

func trimAddress(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}

	return b
}

// innerHandle builds a *bundle.Handle for the inner bundle embedded in a
// context message whose element starts at ctxOff within root's arena, and
// wires its OnResize hook to adjust the trailing free blob.
func innerHandle(root *bundle.Handle, ctxOff int32) (*bundle.Handle, error) {
	payloadOff := ctxOff + 4 + 4 + 8 // elem size prefix + address + typetags
	total, err := wire.ReadInt32(root.Arena, payloadOff+offTotal)
	if err != nil {
		return nil, err
	}

	blobIVOff := payloadOff + offBlobIV
	innerAt := blobIVOff + 4

	h := &bundle.Handle{
		Arena:    root.Arena,
		At:       innerAt,
		Capacity: total,
	}

	h.OnResize = func(oldSize, newSize int32) error {
		delta := newSize - oldSize

		freeOff := blobIVOff + 4 + oldSize

		// The free blob's length prefix is recomputed from the reserved
		// total rather than read back: on growth, the caller has already
		// written the inner bundle's new content over the old prefix.
		newFreeLen := total - 4 - newSize
		if newFreeLen < 0 {
			return oseerr.New(oseerr.Range, "context.OnResize")
		}

		newFreeOff := blobIVOff + 4 + newSize
		if err := wire.WriteInt32(root.Arena, newFreeOff, newFreeLen); err != nil {
			return err
		}

		if delta < 0 {
			for i := newFreeOff + 4; i < freeOff+4; i++ {
				root.Arena[i] = 0
			}
		}

		return nil
	}

	return h, nil
}

// PushContext appends a context message of exactly size content bytes
// (spec §4.3) at root's current write cursor, reserving size-overhead
// bytes split between an initially-empty inner bundle and the trailing
// free blob, and returns a handle to the inner bundle.
func PushContext(root *bundle.Handle, size int32, address Address) (*bundle.Handle, error) {
	if len(address) != 3 {
		return nil, oseerr.New(oseerr.ElemType, "context.PushContext")
	}

	if size < overhead+16 || size%4 != 0 {
		return nil, oseerr.New(oseerr.Range, "context.PushContext")
	}

	elems, err := root.Elements()
	if err != nil {
		return nil, err
	}

	var prevTotal int32
	for _, e := range elems {
		prevTotal += int32(len(e))
	}

	ctxOff := root.At + 16 + prevTotal
	payloadOff := ctxOff + 4 + 4 + 8
	blobIVOff := payloadOff + offBlobIV
	innerAt := blobIVOff + 4

	freeLen := size - overhead - 16

	payload := make([]byte, size-4-8)
	_ = wire.WriteInt32(payload, offUnused, 0)
	_ = wire.WriteInt32(payload, offStatus, int32(oseerr.None))
	_ = wire.WriteInt32(payload, offOffset, innerAt)
	_ = wire.WriteInt32(payload, offTotal, size-32)
	copy(payload[offBlobIV:], bundle.NewBundleBytes(0))
	_, err = wire.WriteBlob(payload, offBlobIV+20, make([]byte, freeLen))
	if err != nil {
		return nil, err
	}

	var addrBuf [4]byte
	copy(addrBuf[:], address)

	elem := make([]byte, 4+4+8+len(payload))
	_ = wire.WriteInt32(elem, 0, int32(4+8+len(payload)))
	copy(elem[4:8], addrBuf[:])
	_, _ = wire.WriteString(elem, 8, ","+typeTags)
	copy(elem[16:], payload)

	if err := root.Rewrite(append(elems, elem)); err != nil {
		return nil, err
	}

	return innerHandle(root, ctxOff)
}

// DropContext removes the highest-address (most recently pushed) context
// message, zeroing its footprint. It refuses to remove any context but the
// last one.
func DropContext(root *bundle.Handle, address Address) error {
	elems, err := root.Elements()
	if err != nil {
		return err
	}

	if len(elems) == 0 {
		return oseerr.New(oseerr.ElemCount, "context.DropContext")
	}

	last := elems[len(elems)-1]
	if len(last) < 8 || string(trimAddress(last[4:8])) != string(address) {
		return oseerr.New(oseerr.ElemType, "context.DropContext")
	}

	return root.Rewrite(elems[:len(elems)-1])
}

// Enter returns a handle to the inner bundle associated with the named
// context.
func Enter(root *bundle.Handle, address Address) (*bundle.Handle, error) {
	ctxOff, _, err := findContext(root, address)
	if err != nil {
		return nil, err
	}

	return innerHandle(root, ctxOff)
}

// Exit returns the parent bundle of a context's inner handle. The VM
// layout in this design never nests contexts more than one level below
// root, so exit is always root itself.
func Exit(root *bundle.Handle) *bundle.Handle {
	return root
}

// SpaceAvailable returns the number of bytes still free for the named
// context's inner bundle to grow into.
func SpaceAvailable(root *bundle.Handle, address Address) (int32, error) {
	inner, err := Enter(root, address)
	if err != nil {
		return 0, err
	}

	size, err := inner.Size()
	if err != nil {
		return 0, err
	}

	return inner.Capacity - 4 - size, nil
}

// GetStatus reads the status int32 stored in the named context's header.
func GetStatus(root *bundle.Handle, address Address) (oseerr.Kind, error) {
	ctxOff, _, err := findContext(root, address)
	if err != nil {
		return 0, err
	}

	payloadOff := ctxOff + 4 + 4 + 8
	v, err := wire.ReadInt32(root.Arena, payloadOff+offStatus)
	if err != nil {
		return 0, err
	}

	return oseerr.Kind(v), nil
}

// SetStatus writes the status int32 stored in the named context's header.
func SetStatus(root *bundle.Handle, address Address, kind oseerr.Kind) error {
	ctxOff, _, err := findContext(root, address)
	if err != nil {
		return err
	}

	payloadOff := ctxOff + 4 + 4 + 8

	return wire.WriteInt32(root.Arena, payloadOff+offStatus, int32(kind))
}
