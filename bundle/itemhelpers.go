package bundle

import (
	"github.com/0Z3/libose/oseerr"
	"github.com/0Z3/libose/wire"
)

// int32Payload encodes a single int32 payload (for building single-item
// messages such as the 0/1 flags pushed by match/pmatch/pickMatch).
func int32Payload(v int32) []byte {
	buf := make([]byte, 4)
	_ = wire.WriteInt32(buf, 0, v)

	return buf
}

func floatPayload(v float32) []byte {
	buf := make([]byte, 4)
	_ = wire.WriteFloat32(buf, 0, v)

	return buf
}

func stringItemPayload(s string) []byte {
	w := wire.PaddedStringLen(int32(len(s)))
	buf := make([]byte, w)
	_, _ = wire.WriteString(buf, 0, s)

	return buf
}

func blobItemPayload(b []byte) []byte {
	w := 4 + wire.Align(int32(len(b)))
	buf := make([]byte, w)
	_, _ = wire.WriteBlob(buf, 0, b)

	return buf
}

// stringPayload requires m to be a single-item "s" message and returns that
// string plus the item's wire width.
func stringPayload(m *Message) (string, int32, error) {
	if m.TypeTags != "s" && m.TypeTags != "S" {
		return "", 0, oseerr.New(oseerr.ItemType, "bundle.stringPayload")
	}

	return wire.ReadString(m.Payload, 0)
}

// lastItem returns the tag and raw bytes of the rightmost payload item of
// m, along with its offset in m.Payload.
func lastItem(m *Message) (tag byte, data []byte, off int32, err error) {
	if len(m.TypeTags) == 0 {
		return 0, nil, 0, oseerr.New(oseerr.ItemCount, "bundle.lastItem")
	}

	offs, widths, err := itemOffsets(m.Payload, m.TypeTags)
	if err != nil {
		return 0, nil, 0, err
	}

	last := len(m.TypeTags) - 1
	tag = m.TypeTags[last]
	off = offs[last]
	data = m.Payload[off : off+widths[last]]

	return tag, data, off, nil
}

// readInt32At reads a big-endian int32 from payload at off.
func readInt32At(payload []byte, off int32) (int32, error) {
	return wire.ReadInt32(payload, off)
}

// topMessage returns the top element of h as a parsed *Message, requiring
// it not be a nested bundle.
func topMessage(elems [][]byte) (*Message, error) {
	if len(elems) == 0 {
		return nil, oseerr.New(oseerr.ElemCount, "bundle.topMessage")
	}

	top := elems[len(elems)-1]
	if isBundleElem(top) {
		return nil, oseerr.New(oseerr.ElemType, "bundle.topMessage")
	}

	return parseMessage(top)
}
