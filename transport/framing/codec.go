package framing

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// TagAPDU marks packets carrying an APDU.
	TagAPDU = 0x05

	// HIDChannel is the channel id used by Ledger devices over HID.
	HIDChannel = 0x0101

	HIDPacketSize = 64

	// DefaultBLEMTU is the payload size of a BLE write without MTU negotiation.
	DefaultBLEMTU = 20

	maxFrameLength = 0xFFFF
)

var (
	ErrInvalidHeader   = errors.New("invalid packet header")
	ErrInvalidSequence = errors.New("unexpected packet sequence")
	ErrFrameTooLong    = errors.New("frame longer than 65535 bytes")
	ErrPacketTooShort  = errors.New("packet too short")
)

// Codec splits APDU frames into link packets and joins them back.
//
// Every packet starts with an optional 2 byte channel id, the command tag and
// a 2 byte sequence index. The first packet then carries the 2 byte frame
// length.
type Codec struct {
	packetSize int
	channel    uint16
	hasChannel bool
	pad        bool
}

// HID returns the codec used over HID and USB: 64 byte zero padded packets on
// channel 0x0101.
func HID() *Codec {
	return &Codec{
		packetSize: HIDPacketSize,
		channel:    HIDChannel,
		hasChannel: true,
		pad:        true,
	}
}

// BLE returns the codec used over Bluetooth LE with packets of at most mtu bytes.
func BLE(mtu int) (*Codec, error) {
	if mtu == 0 {
		mtu = DefaultBLEMTU
	}

	c := &Codec{packetSize: mtu}
	if mtu <= c.headerSize()+2 {
		return nil, fmt.Errorf("mtu %d too small", mtu)
	}

	return c, nil
}

func (c *Codec) PacketSize() int {
	return c.packetSize
}

func (c *Codec) headerSize() int {
	if c.hasChannel {
		return 5
	}

	return 3
}

func (c *Codec) header(seq uint16) []byte {
	h := make([]byte, 0, c.headerSize())
	if c.hasChannel {
		h = binary.BigEndian.AppendUint16(h, c.channel)
	}
	h = append(h, TagAPDU)

	return binary.BigEndian.AppendUint16(h, seq)
}

// Encode splits frame into packets.
func (c *Codec) Encode(frame []byte) ([][]byte, error) {
	if len(frame) > maxFrameLength {
		return nil, ErrFrameTooLong
	}

	payload := binary.BigEndian.AppendUint16(nil, uint16(len(frame)))
	payload = append(payload, frame...)

	space := c.packetSize - c.headerSize()

	var packets [][]byte
	for seq := 0; len(payload) > 0; seq++ {
		packet := c.header(uint16(seq))

		n := space
		if len(payload) < n {
			n = len(payload)
		}

		packet = append(packet, payload[:n]...)
		payload = payload[n:]

		if c.pad {
			packet = append(packet, make([]byte, c.packetSize-len(packet))...)
		}

		packets = append(packets, packet)
	}

	return packets, nil
}

// Decode reads packets from next until a whole frame has been received.
func (c *Codec) Decode(next func() ([]byte, error)) ([]byte, error) {
	var (
		frame []byte
		total int
	)

	for seq := 0; ; seq++ {
		packet, err := next()
		if err != nil {
			return nil, err
		}

		payload, err := c.checkHeader(packet, uint16(seq))
		if err != nil {
			return nil, err
		}

		if seq == 0 {
			if len(payload) < 2 {
				return nil, ErrPacketTooShort
			}

			total = int(binary.BigEndian.Uint16(payload))
			frame = make([]byte, 0, total)
			payload = payload[2:]
		}

		if left := total - len(frame); left > len(payload) {
			frame = append(frame, payload...)
		} else {
			return append(frame, payload[:left]...), nil
		}
	}
}

func (c *Codec) checkHeader(packet []byte, seq uint16) ([]byte, error) {
	hs := c.headerSize()
	if len(packet) < hs {
		return nil, ErrPacketTooShort
	}

	off := 0
	if c.hasChannel {
		if binary.BigEndian.Uint16(packet) != c.channel {
			return nil, fmt.Errorf("%w: channel %04x", ErrInvalidHeader, binary.BigEndian.Uint16(packet))
		}
		off = 2
	}

	if packet[off] != TagAPDU {
		return nil, fmt.Errorf("%w: tag %02x", ErrInvalidHeader, packet[off])
	}

	if got := binary.BigEndian.Uint16(packet[off+1:]); got != seq {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidSequence, got, seq)
	}

	return packet[hs:], nil
}
