package apdu

import (
	"bytes"
	"errors"
	"fmt"
)

// MaxDataLength is the largest payload a short APDU can carry.
const MaxDataLength = 255

var (
	ErrDataTooLong     = errors.New("command data longer than 255 bytes")
	ErrCommandTooShort = errors.New("command should be at least 5 bytes")
	ErrWrongDataLength = errors.New("command length does not match Lc")
)

// Command is an APDU command with CLA, INS, P1, P2, Lc, Data and an optional Le.
type Command struct {
	Cla  uint8
	Ins  uint8
	P1   uint8
	P2   uint8
	Data []byte

	le         uint8
	requiresLe bool
}

// NewCommand returns a new Command. Lc is computed from data when serialized.
func NewCommand(cla, ins, p1, p2 uint8, data []byte) *Command {
	return &Command{
		Cla:  cla,
		Ins:  ins,
		P1:   p1,
		P2:   p2,
		Data: data,
	}
}

// SetLe sets the expected response length.
func (c *Command) SetLe(le uint8) {
	c.requiresLe = true
	c.le = le
}

// Le returns if Le is set and its value.
func (c *Command) Le() (bool, uint8) {
	return c.requiresLe, c.le
}

// Serialize returns the raw frame. Lc is always present, even for empty data,
// because the device firmware reads a fixed five byte header.
func (c *Command) Serialize() ([]byte, error) {
	if len(c.Data) > MaxDataLength {
		return nil, ErrDataTooLong
	}

	buf := new(bytes.Buffer)
	buf.Write([]byte{c.Cla, c.Ins, c.P1, c.P2, uint8(len(c.Data))})
	buf.Write(c.Data)

	if c.requiresLe {
		buf.WriteByte(c.le)
	}

	return buf.Bytes(), nil
}

// ParseCommand parses a raw frame produced by Serialize.
func ParseCommand(raw []byte) (*Command, error) {
	if len(raw) < 5 {
		return nil, ErrCommandTooShort
	}

	lc := int(raw[4])
	cmd := NewCommand(raw[0], raw[1], raw[2], raw[3], nil)

	switch len(raw) {
	case 5 + lc:
	case 5 + lc + 1:
		cmd.SetLe(raw[5+lc])
	default:
		return nil, fmt.Errorf("%w: Lc %d, frame %d bytes", ErrWrongDataLength, lc, len(raw))
	}

	cmd.Data = append([]byte{}, raw[5:5+lc]...)

	return cmd, nil
}
