// Package wire implements the typed, in-place read/write accessors over a
// byte arena that the bundle and context packages build on. Every accessor
// takes an absolute offset into the arena and fails with oseerr.Range if the
// access would run past the end of the arena; it is the caller's
// responsibility to additionally bound accesses to a sub-bundle's declared
// size (the wire layer only knows about the arena it was given).
//
// All numeric values are big-endian on the wire regardless of host
// endianness; every accessor converts on every read and write.
package wire

import (
	"encoding/binary"
	"math"

	"github.com/0Z3/libose/oseerr"
)

// Align rounds n up to the next multiple of 4.
func Align(n int32) int32 {
	return (n + 3) &^ 3
}

// PaddedStringLen returns the number of bytes a NUL-terminated, 4-byte
// padded string needs to hold byteLen content bytes: always at least one
// NUL, rounded up to a multiple of 4.
func PaddedStringLen(byteLen int32) int32 {
	return Align(byteLen + 1)
}

func checkRange(arena []byte, off, width int32, op string) error {
	if off < 0 || width < 0 || int64(off)+int64(width) > int64(len(arena)) {
		return oseerr.New(oseerr.Range, op)
	}

	return nil
}

// ReadByte reads a single byte at off.
func ReadByte(arena []byte, off int32) (byte, error) {
	if err := checkRange(arena, off, 1, "wire.ReadByte"); err != nil {
		return 0, err
	}

	return arena[off], nil
}

// WriteByte writes a single byte at off.
func WriteByte(arena []byte, off int32, v byte) error {
	if err := checkRange(arena, off, 1, "wire.WriteByte"); err != nil {
		return err
	}

	arena[off] = v

	return nil
}

// ReadInt32 reads a big-endian int32 at off.
func ReadInt32(arena []byte, off int32) (int32, error) {
	if err := checkRange(arena, off, 4, "wire.ReadInt32"); err != nil {
		return 0, err
	}

	return int32(binary.BigEndian.Uint32(arena[off : off+4])), nil
}

// WriteInt32 writes a big-endian int32 at off.
func WriteInt32(arena []byte, off int32, v int32) error {
	if err := checkRange(arena, off, 4, "wire.WriteInt32"); err != nil {
		return err
	}

	binary.BigEndian.PutUint32(arena[off:off+4], uint32(v))

	return nil
}

// ReadUint32 reads a big-endian uint32 at off.
func ReadUint32(arena []byte, off int32) (uint32, error) {
	if err := checkRange(arena, off, 4, "wire.ReadUint32"); err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(arena[off : off+4]), nil
}

// WriteUint32 writes a big-endian uint32 at off.
func WriteUint32(arena []byte, off int32, v uint32) error {
	if err := checkRange(arena, off, 4, "wire.WriteUint32"); err != nil {
		return err
	}

	binary.BigEndian.PutUint32(arena[off:off+4], v)

	return nil
}

// ReadInt64 reads a big-endian int64 at off.
func ReadInt64(arena []byte, off int32) (int64, error) {
	if err := checkRange(arena, off, 8, "wire.ReadInt64"); err != nil {
		return 0, err
	}

	return int64(binary.BigEndian.Uint64(arena[off : off+8])), nil
}

// WriteInt64 writes a big-endian int64 at off.
func WriteInt64(arena []byte, off int32, v int64) error {
	if err := checkRange(arena, off, 8, "wire.WriteInt64"); err != nil {
		return err
	}

	binary.BigEndian.PutUint64(arena[off:off+8], uint64(v))

	return nil
}

// ReadUint64 reads a big-endian uint64 at off.
func ReadUint64(arena []byte, off int32) (uint64, error) {
	if err := checkRange(arena, off, 8, "wire.ReadUint64"); err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint64(arena[off : off+8]), nil
}

// WriteUint64 writes a big-endian uint64 at off.
func WriteUint64(arena []byte, off int32, v uint64) error {
	if err := checkRange(arena, off, 8, "wire.WriteUint64"); err != nil {
		return err
	}

	binary.BigEndian.PutUint64(arena[off:off+8], v)

	return nil
}

// ReadFloat32 reads a big-endian IEEE 754 float32 at off.
func ReadFloat32(arena []byte, off int32) (float32, error) {
	bits, err := ReadUint32(arena, off)
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(bits), nil
}

// WriteFloat32 writes a big-endian IEEE 754 float32 at off.
func WriteFloat32(arena []byte, off int32, v float32) error {
	return WriteUint32(arena, off, math.Float32bits(v))
}

// ReadFloat64 reads a big-endian IEEE 754 float64 (double) at off.
func ReadFloat64(arena []byte, off int32) (float64, error) {
	bits, err := ReadUint64(arena, off)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(bits), nil
}

// WriteFloat64 writes a big-endian IEEE 754 float64 (double) at off.
func WriteFloat64(arena []byte, off int32, v float64) error {
	return WriteUint64(arena, off, math.Float64bits(v))
}

// ReadTimeTag reads an 8-byte OSC time tag at off.
func ReadTimeTag(arena []byte, off int32) (int64, error) {
	return ReadInt64(arena, off)
}

// WriteTimeTag writes an 8-byte OSC time tag at off.
func WriteTimeTag(arena []byte, off int32, v int64) error {
	return WriteInt64(arena, off, v)
}

// ReadString reads a NUL-terminated, 4-byte padded string at off and returns
// its content (without the NUL or padding) together with the total byte
// width consumed on the wire (including NUL and padding).
func ReadString(arena []byte, off int32) (string, int32, error) {
	if off < 0 || int(off) > len(arena) {
		return "", 0, oseerr.New(oseerr.Range, "wire.ReadString")
	}

	end := off

	for {
		b, err := ReadByte(arena, end)
		if err != nil {
			return "", 0, oseerr.New(oseerr.Range, "wire.ReadString")
		}

		if b == 0 {
			break
		}

		end++
	}

	contentLen := end - off
	width := PaddedStringLen(contentLen)

	if err := checkRange(arena, off, width, "wire.ReadString"); err != nil {
		return "", 0, err
	}

	return string(arena[off : off+contentLen]), width, nil
}

// WriteString writes s as a NUL-terminated, 4-byte padded string at off and
// returns the total byte width written. The destination must already have
// room for the full padded width.
func WriteString(arena []byte, off int32, s string) (int32, error) {
	width := PaddedStringLen(int32(len(s)))
	if err := checkRange(arena, off, width, "wire.WriteString"); err != nil {
		return 0, err
	}

	n := copy(arena[off:off+width], s)
	for i := off + int32(n); i < off+width; i++ {
		arena[i] = 0
	}

	return width, nil
}

// ReadBlob reads a length-prefixed, 4-byte padded blob at off and returns
// its content together with the total byte width consumed (4-byte length
// prefix + content + padding).
func ReadBlob(arena []byte, off int32) ([]byte, int32, error) {
	length, err := ReadInt32(arena, off)
	if err != nil {
		return nil, 0, err
	}

	if length < 0 {
		return nil, 0, oseerr.New(oseerr.Range, "wire.ReadBlob")
	}

	width := 4 + Align(length)
	if err := checkRange(arena, off, width, "wire.ReadBlob"); err != nil {
		return nil, 0, err
	}

	content := make([]byte, length)
	copy(content, arena[off+4:off+4+length])

	return content, width, nil
}

// WriteBlob writes b as a length-prefixed, 4-byte padded blob at off and
// returns the total byte width written.
func WriteBlob(arena []byte, off int32, b []byte) (int32, error) {
	width := 4 + Align(int32(len(b)))
	if err := checkRange(arena, off, width, "wire.WriteBlob"); err != nil {
		return 0, err
	}

	if err := WriteInt32(arena, off, int32(len(b))); err != nil {
		return 0, err
	}

	n := copy(arena[off+4:off+4+int32(len(b))], b)
	for i := off + 4 + int32(n); i < off+width; i++ {
		arena[i] = 0
	}

	return width, nil
}

// BundleHeader is the literal 8-byte marker that begins every bundle's
// content, per invariant I4.
const BundleHeader = "#bundle\x00"

// IsBundleHeader reports whether the 8 bytes at off are the literal
// "#bundle\0" marker.
func IsBundleHeader(arena []byte, off int32) bool {
	if err := checkRange(arena, off, 8, "wire.IsBundleHeader"); err != nil {
		return false
	}

	return string(arena[off:off+8]) == BundleHeader
}
