package hid

import (
	"errors"
	"io"
	"testing"

	usbhid "github.com/karalabe/hid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/status-im/ton-ledger-go/transport"
	"github.com/status-im/ton-ledger-go/transport/framing"
)

// configDevice answers any frame with version 1.2.3 in a single report.
type configDevice struct {
	reply [][]byte
}

func (d *configDevice) Write(p []byte) (int, error) {
	packets, err := framing.HID().Encode([]byte{1, 2, 3, 0x90, 0x00})
	if err != nil {
		return 0, err
	}
	d.reply = append(d.reply, packets...)
	return len(p), nil
}

func (d *configDevice) Read(p []byte) (int, error) {
	if len(d.reply) == 0 {
		return 0, io.EOF
	}
	n := copy(p, d.reply[0])
	d.reply = d.reply[1:]
	return n, nil
}

func (d *configDevice) Close() error { return nil }

func TestExchange(t *testing.T) {
	tr := New(&configDevice{})
	resp, err := tr.Exchange([]byte{0xE0, 0x01, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 0x90, 0x00}, resp)

	link := tr.Link()
	assert.Equal(t, transport.KindHID, link.Kind())
	_, ok := link.Debugger()
	assert.False(t, ok)
}

func TestLedgerInterfaceFilter(t *testing.T) {
	scenarios := []struct {
		info     usbhid.DeviceInfo
		expected bool
	}{
		{usbhid.DeviceInfo{VendorID: LedgerVendorID, ProductID: 0x1011, UsagePage: 0xffa0, Interface: -1}, true},
		{usbhid.DeviceInfo{VendorID: LedgerVendorID, ProductID: 0x4011, Interface: 0}, true},
		{usbhid.DeviceInfo{VendorID: LedgerVendorID, ProductID: 0x4011, UsagePage: 0xf1d0, Interface: 1}, false},
		{usbhid.DeviceInfo{VendorID: 0x1209, ProductID: 0x0001, UsagePage: 0xffa0}, false},
	}

	for _, s := range scenarios {
		assert.Equal(t, s.expected, isLedgerAPDU(s.info), "%+v", s.info)
	}
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open("/nonexistent/hidraw")
	var te *transport.Error
	require.ErrorAs(t, err, &te)
	assert.True(t, errors.Is(err, ErrNoDevice) || errors.Is(err, ErrUnsupported) || te.Op == "enumerate", err.Error())
}
