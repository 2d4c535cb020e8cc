package bundle

import (
	"math"

	"github.com/0Z3/libose/oseerr"
	"github.com/0Z3/libose/wire"
)

// numeric is a tagged numeric value extracted from a payload item, carried
// as float64 for arithmetic and re-encoded through its original tag.
type numeric struct {
	tag byte
	f   float64
}

func readNumeric(tag byte, data []byte) (numeric, error) {
	switch tag {
	case 'i':
		v, err := wire.ReadInt32(data, 0)
		return numeric{tag, float64(v)}, err
	case 'f':
		v, err := wire.ReadFloat32(data, 0)
		return numeric{tag, float64(v)}, err
	case 'h':
		v, err := wire.ReadInt64(data, 0)
		return numeric{tag, float64(v)}, err
	case 'd':
		v, err := wire.ReadFloat64(data, 0)
		return numeric{tag, float64(v)}, err
	case 'u':
		v, err := wire.ReadUint32(data, 0)
		return numeric{tag, float64(v)}, err
	case 'U':
		v, err := wire.ReadUint64(data, 0)
		return numeric{tag, float64(v)}, err
	default:
		return numeric{}, oseerr.New(oseerr.ItemType, "bundle.readNumeric")
	}
}

func (n numeric) bytes() []byte {
	switch n.tag {
	case 'i':
		return int32Payload(int32(n.f))
	case 'f':
		return floatPayload(float32(n.f))
	case 'h':
		buf := make([]byte, 8)
		_ = wire.WriteInt64(buf, 0, int64(n.f))

		return buf
	case 'd':
		buf := make([]byte, 8)
		_ = wire.WriteFloat64(buf, 0, n.f)

		return buf
	case 'u':
		buf := make([]byte, 4)
		_ = wire.WriteUint32(buf, 0, uint32(n.f))

		return buf
	case 'U':
		buf := make([]byte, 8)
		_ = wire.WriteUint64(buf, 0, uint64(n.f))

		return buf
	default:
		return nil
	}
}

// arithOp implements add/sub/mul/div/mod/pow: both items of the top two
// message elements must carry the same numeric tag in their rightmost
// item; the result replaces both with a single message (bottom's address)
// carrying the combined value.
func arithOp(h *Handle, op string, combine func(a, b float64) (float64, error)) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, op); err != nil {
		return err
	}

	n := len(elems)

	am, err := topMessage(elems[:n-1])
	if err != nil {
		return err
	}

	bm, err := topMessage(elems)
	if err != nil {
		return err
	}

	atag, adata, _, err := lastItem(am)
	if err != nil {
		return err
	}

	btag, bdata, _, err := lastItem(bm)
	if err != nil {
		return err
	}

	if atag != btag {
		return oseerr.New(oseerr.ItemType, op)
	}

	av, err := readNumeric(atag, adata)
	if err != nil {
		return err
	}

	bv, err := readNumeric(btag, bdata)
	if err != nil {
		return err
	}

	result, err := combine(av.f, bv.f)
	if err != nil {
		return err
	}

	out := buildMessage(am.Address, string(atag), numeric{atag, result}.bytes())

	return h.rewrite(append(elems[:n-2:n-2], out))
}

func Add(h *Handle) error {
	return arithOp(h, "add", func(a, b float64) (float64, error) { return a + b, nil })
}

func Sub(h *Handle) error {
	return arithOp(h, "sub", func(a, b float64) (float64, error) { return a - b, nil })
}

func Mul(h *Handle) error {
	return arithOp(h, "mul", func(a, b float64) (float64, error) { return a * b, nil })
}

func Div(h *Handle) error {
	return arithOp(h, "div", func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, oseerr.New(oseerr.Range, "div")
		}

		return a / b, nil
	})
}

func Mod(h *Handle) error {
	return arithOp(h, "mod", func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, oseerr.New(oseerr.Range, "mod")
		}

		return math.Mod(a, b), nil
	})
}

func Pow(h *Handle) error {
	return arithOp(h, "pow", func(a, b float64) (float64, error) { return math.Pow(a, b), nil })
}

// Neg negates the rightmost payload item of the top message in place.
func Neg(h *Handle) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	m, err := topMessage(elems)
	if err != nil {
		return err
	}

	tag, data, off, err := lastItem(m)
	if err != nil {
		return err
	}

	v, err := readNumeric(tag, data)
	if err != nil {
		return err
	}

	negated := numeric{tag, -v.f}.bytes()
	newPayload := append([]byte(nil), m.Payload...)
	copy(newPayload[off:off+int32(len(negated))], negated)

	out := buildMessage(m.Address, m.TypeTags, newPayload)

	return h.rewrite(append(elems[:len(elems)-1:len(elems)-1], out))
}

func cmpOp(h *Handle, op string, cmp func(a, b float64) bool) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, op); err != nil {
		return err
	}

	n := len(elems)

	am, err := topMessage(elems[:n-1])
	if err != nil {
		return err
	}

	bm, err := topMessage(elems)
	if err != nil {
		return err
	}

	atag, adata, _, err := lastItem(am)
	if err != nil {
		return err
	}

	btag, bdata, _, err := lastItem(bm)
	if err != nil {
		return err
	}

	if atag != btag {
		return oseerr.New(oseerr.ItemType, op)
	}

	av, err := readNumeric(atag, adata)
	if err != nil {
		return err
	}

	bv, err := readNumeric(btag, bdata)
	if err != nil {
		return err
	}

	flag := int32(0)
	if cmp(av.f, bv.f) {
		flag = 1
	}

	return h.rewrite(append(elems[:n-2:n-2], buildMessage("", "i", int32Payload(flag))))
}

func Eql(h *Handle) error {
	return cmpOp(h, "eql", func(a, b float64) bool { return a == b })
}

func Neq(h *Handle) error {
	return cmpOp(h, "neq", func(a, b float64) bool { return a != b })
}

func Lte(h *Handle) error {
	return cmpOp(h, "lte", func(a, b float64) bool { return a <= b })
}

func Lt(h *Handle) error {
	return cmpOp(h, "lt", func(a, b float64) bool { return a < b })
}

func boolOp(h *Handle, op string, combine func(a, b int32) int32) error {
	elems, err := h.elements()
	if err != nil {
		return err
	}

	if err := needElems(elems, 2, op); err != nil {
		return err
	}

	n := len(elems)

	am, err := topMessage(elems[:n-1])
	if err != nil {
		return err
	}

	bm, err := topMessage(elems)
	if err != nil {
		return err
	}

	if am.TypeTags != "i" || bm.TypeTags != "i" {
		return oseerr.New(oseerr.ItemType, op)
	}

	av, err := wire.ReadInt32(am.Payload, 0)
	if err != nil {
		return err
	}

	bv, err := wire.ReadInt32(bm.Payload, 0)
	if err != nil {
		return err
	}

	out := buildMessage("", "i", int32Payload(combine(av, bv)))

	return h.rewrite(append(elems[:n-2:n-2], out))
}

// And is the integer logical AND of the top two int32 items.
func And(h *Handle) error {
	return boolOp(h, "and", func(a, b int32) int32 {
		if a != 0 && b != 0 {
			return 1
		}

		return 0
	})
}

// Or is the integer logical OR of the top two int32 items.
func Or(h *Handle) error {
	return boolOp(h, "or", func(a, b int32) int32 {
		if a != 0 || b != 0 {
			return 1
		}

		return 0
	})
}
