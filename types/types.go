package types

import (
	"fmt"

	"github.com/status-im/ton-ledger-go/apdu"
)

// Channel is an interface with a Send method to send apdu commands and receive apdu responses.
type Channel interface {
	Send(*apdu.Command) (*apdu.Response, error)
}

// LengthError reports a response whose length does not match its layout.
type LengthError struct {
	Layout   string
	Expected int
	Got      int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: expected %d bytes, got %d", e.Layout, e.Expected, e.Got)
}
