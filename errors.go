package tonledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotStarted           = errors.New("session not started")
	ErrAlreadyStarted       = errors.New("session already started")
	ErrVerificationMismatch = errors.New("verification mismatch")
	ErrNoLink               = errors.New("no transport link")
	ErrNothingToVerify      = errors.New("nothing to verify")

	ErrBadStatusWord     = errors.New("unexpected status word")
	ErrSignatureMismatch = errors.New("signature does not match wallet public key")

	ErrWrongCla    = errors.New("class not supported")
	ErrWrongIns    = errors.New("instruction not supported")
	ErrWrongLength = errors.New("wrong data length")
	ErrWrongP1P2   = errors.New("wrong p1 or p2")
	ErrWrongData   = errors.New("invalid data")
)

// EncodingError is returned when parameters cannot be encoded into a command.
type EncodingError struct {
	Field  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %s: %s", e.Field, e.Reason)
}

// ProtocolError is returned when a frame does not have the shape expected for
// its operation or the device rejects a command.
type ProtocolError struct {
	Op  string
	Sw  uint16
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Sw != 0 {
		return fmt.Sprintf("%s: %v (sw %04x)", e.Op, e.Err, e.Sw)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// VerificationMismatchError reports the first divergence between the device
// result and the reference result. Offset is -1 when the lengths differ.
type VerificationMismatchError struct {
	Kind         string
	PrimaryLen   int
	ReferenceLen int
	Offset       int
}

func (e *VerificationMismatchError) Error() string {
	if e.PrimaryLen != e.ReferenceLen {
		return fmt.Sprintf("%s %s: length %d, reference length %d", e.Kind, ErrVerificationMismatch, e.PrimaryLen, e.ReferenceLen)
	}

	return fmt.Sprintf("%s %s: first difference at byte %d", e.Kind, ErrVerificationMismatch, e.Offset)
}

func (e *VerificationMismatchError) Is(target error) bool {
	return target == ErrVerificationMismatch
}
