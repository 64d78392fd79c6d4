package apdu

import (
	"errors"
	"fmt"
)

const (
	SwOK                     = 0x9000
	SwWrongLength            = 0x6700
	SwConditionsNotSatisfied = 0x6985
	SwWrongData              = 0x6A80
	SwWrongP1P2              = 0x6B00
	SwInsNotSupported        = 0x6D00
	SwClaNotSupported        = 0x6E00
	SwUnknown                = 0x6F00
)

var ErrBadRawResponse = errors.New("response from device should be at least 2 bytes")

// Response represents a struct with the data returned by the device and the status word.
type Response struct {
	Data []byte
	Sw1  uint8
	Sw2  uint8
	Sw   uint16
}

// NewResponse returns a response carrying data and status word sw.
func NewResponse(data []byte, sw uint16) *Response {
	return &Response{
		Data: data,
		Sw1:  uint8(sw >> 8),
		Sw2:  uint8(sw),
		Sw:   sw,
	}
}

// ParseResponse parses a raw response and returns a Response.
func ParseResponse(data []byte) (*Response, error) {
	if len(data) < 2 {
		return nil, ErrBadRawResponse
	}

	n := len(data) - 2
	sw1 := data[n]
	sw2 := data[n+1]

	return &Response{
		Data: append([]byte{}, data[:n]...),
		Sw1:  sw1,
		Sw2:  sw2,
		Sw:   uint16(sw1)<<8 | uint16(sw2),
	}, nil
}

// Serialize returns the data followed by SW1 and SW2.
func (r *Response) Serialize() []byte {
	out := make([]byte, 0, len(r.Data)+2)
	out = append(out, r.Data...)
	return append(out, r.Sw1, r.Sw2)
}

// IsOK returns true if the status word is 0x9000.
func (r *Response) IsOK() bool {
	return r.Sw == SwOK
}

func (r *Response) String() string {
	return fmt.Sprintf("Response{Data: %x, Sw: %04x}", r.Data, r.Sw)
}
