package ble

import (
	"io"

	"github.com/status-im/ton-ledger-go/transport"
	"github.com/status-im/ton-ledger-go/transport/framing"
)

// Transport talks to a Ledger device over a Bluetooth LE characteristic pair.
type Transport struct {
	*framing.Exchanger
}

// New wraps a connected characteristic pipe. Writes go to the write
// characteristic and each Read returns one notification. mtu is the
// negotiated payload size, or 0 for the default.
func New(dev io.ReadWriteCloser, mtu int, opts ...framing.Option) (*Transport, error) {
	codec, err := framing.BLE(mtu)
	if err != nil {
		return nil, &transport.Error{Op: "open", Err: err}
	}

	return &Transport{
		Exchanger: framing.NewExchanger(dev, codec, opts...),
	}, nil
}

func (t *Transport) Link() *transport.Link {
	return transport.Opaque(transport.KindBLE, t)
}
