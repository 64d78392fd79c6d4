package hid

import (
	"errors"
	"io"

	usbhid "github.com/karalabe/hid"

	"github.com/status-im/ton-ledger-go/transport"
	"github.com/status-im/ton-ledger-go/transport/framing"
)

const (
	LedgerVendorID = 0x2c97

	// The APDU interface is matched by usage page on macOS and Windows and by
	// interface number on Linux.
	ledgerUsagePage = 0xffa0
	ledgerInterface = 0
)

var (
	ErrUnsupported = errors.New("hid is not supported on this platform")
	ErrNoDevice    = errors.New("no Ledger device found")
)

// Transport talks to a Ledger device over HID.
type Transport struct {
	*framing.Exchanger
}

// New wraps an open HID handle. Every Read must return one 64 byte report.
func New(dev io.ReadWriteCloser, opts ...framing.Option) *Transport {
	return &Transport{
		Exchanger: framing.NewExchanger(dev, framing.HID(), opts...),
	}
}

// Enumerate lists the APDU interfaces of the connected Ledger devices.
func Enumerate() ([]usbhid.DeviceInfo, error) {
	if !usbhid.Supported() {
		return nil, &transport.Error{Op: "enumerate", Err: ErrUnsupported}
	}

	infos, err := usbhid.Enumerate(LedgerVendorID, 0)
	if err != nil {
		return nil, &transport.Error{Op: "enumerate", Err: err}
	}

	var devices []usbhid.DeviceInfo
	for _, info := range infos {
		if isLedgerAPDU(info) {
			devices = append(devices, info)
		}
	}

	return devices, nil
}

func isLedgerAPDU(info usbhid.DeviceInfo) bool {
	return info.VendorID == LedgerVendorID && (info.UsagePage == ledgerUsagePage || info.Interface == ledgerInterface)
}

// Open opens the Ledger device at path. An empty path selects the first
// device found.
func Open(path string, opts ...framing.Option) (*Transport, error) {
	devices, err := Enumerate()
	if err != nil {
		return nil, err
	}

	for _, info := range devices {
		if path != "" && info.Path != path {
			continue
		}

		dev, err := info.Open()
		if err != nil {
			return nil, &transport.Error{Op: "open", Err: err}
		}

		return New(dev, opts...), nil
	}

	return nil, &transport.Error{Op: "open", Err: ErrNoDevice}
}

func (t *Transport) Kind() transport.Kind {
	return transport.KindHID
}

// Link returns t as an opaque link.
func (t *Transport) Link() *transport.Link {
	return transport.Opaque(transport.KindHID, t)
}
