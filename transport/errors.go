package transport

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout = errors.New("timeout")
	ErrClosed  = errors.New("transport closed")
	// ErrBroken is returned after a failed exchange left the device in an
	// unknown protocol state.
	ErrBroken = errors.New("transport broken by a previous failure")
)

// Error is a link level failure.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err as an *Error unless it already is one.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	var te *Error
	if errors.As(err, &te) {
		return err
	}

	return &Error{Op: op, Err: err}
}
