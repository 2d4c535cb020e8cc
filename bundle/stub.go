package bundle

import "github.com/0Z3/libose/oseerr"

// The following primitives are stubs in the source library: their intended
// semantics are undefined there, so rather than guess, they report
// oseerr.NotImplementedError. See the design notes' Open Questions.

// ClearPayload is not implemented; its semantics are undefined in the
// source.
func ClearPayload(*Handle) error {
	return &oseerr.NotImplementedError{Name: "clearPayload"}
}

// LengthAddress is not implemented; its semantics are undefined in the
// source.
func LengthAddress(*Handle) error {
	return &oseerr.NotImplementedError{Name: "lengthAddress"}
}

// LengthTT is not implemented; its semantics are undefined in the source.
func LengthTT(*Handle) error {
	return &oseerr.NotImplementedError{Name: "lengthTT"}
}

// Select is not implemented; its semantics are undefined in the source.
func Select(*Handle) error {
	return &oseerr.NotImplementedError{Name: "select"}
}

// SelectWithDelegation is not implemented; its semantics are undefined in
// the source.
func SelectWithDelegation(*Handle) error {
	return &oseerr.NotImplementedError{Name: "selectWithDelegation"}
}

// RollPMatch is not implemented; its semantics are undefined in the source.
func RollPMatch(*Handle) error {
	return &oseerr.NotImplementedError{Name: "rollPMatch"}
}
