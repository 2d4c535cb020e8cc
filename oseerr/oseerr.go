// Package oseerr defines the error kinds reported by the wire, bundle, context
// and vm packages, mirroring the status codes stored in a VM's /sx context.
package oseerr

import "fmt"

// Kind identifies one of the recoverable error conditions a primitive can
// report through the status slot.
type Kind int32

// Error kinds, in the order they occupy the /sx status slot on the wire.
const (
	None Kind = iota
	ElemType
	ItemType
	ElemCount
	ItemCount
	Range
	UnknownTypetag
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case ElemType:
		return "ElemType"
	case ItemType:
		return "ItemType"
	case ElemCount:
		return "ElemCount"
	case ItemCount:
		return "ItemCount"
	case Range:
		return "Range"
	case UnknownTypetag:
		return "UnknownTypetag"
	default:
		return fmt.Sprintf("Kind(%d)", int32(k))
	}
}

// Error wraps a Kind with the operation that produced it, so callers can use
// errors.As against it while the raw Kind remains the canonical, persisted
// value in the /sx status slot.
type Error struct {
	Kind Kind
	Op   string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Kind.String()
	}

	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// New builds an *Error for the given kind and operation name.
func New(kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op}
}

// NotImplementedError is returned by primitives whose semantics the source
// library leaves undefined (see the Open Questions in the design notes):
// clearPayload, lengthAddress, lengthTT, select, selectWithDelegation and
// rollPMatch. It is distinct from Kind because the wire format has no status
// code for "undefined" — callers must catch this in Go before it would ever
// reach the /sx slot.
type NotImplementedError struct {
	Name string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s: not implemented (undefined in source)", e.Name)
}
