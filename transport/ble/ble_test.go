package ble

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/status-im/ton-ledger-go/transport"
	"github.com/status-im/ton-ledger-go/transport/framing"
)

// notifyDevice answers every frame with a fixed reply split in notifications.
type notifyDevice struct {
	codec   *framing.Codec
	reply   []byte
	pending [][]byte
	writes  int
}

func (d *notifyDevice) Write(p []byte) (int, error) {
	d.writes++
	packets, err := d.codec.Encode(d.reply)
	if err != nil {
		return 0, err
	}
	d.pending = append(d.pending, packets...)
	return len(p), nil
}

func (d *notifyDevice) Read(p []byte) (int, error) {
	if len(d.pending) == 0 {
		return 0, io.EOF
	}
	n := copy(p, d.pending[0])
	d.pending = d.pending[1:]
	return n, nil
}

func (d *notifyDevice) Close() error { return nil }

func TestExchange(t *testing.T) {
	codec, err := framing.BLE(0)
	require.NoError(t, err)

	reply := append(make([]byte, 65), 0x90, 0x00)
	reply[0] = 64
	dev := &notifyDevice{codec: codec, reply: reply}

	tr, err := New(dev, 0)
	require.NoError(t, err)

	resp, err := tr.Exchange([]byte{0xE0, 0x03, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, reply, resp)

	link := tr.Link()
	assert.Equal(t, transport.KindBLE, link.Kind())
	_, ok := link.Debugger()
	assert.False(t, ok)
}

func TestNewRejectsTinyMTU(t *testing.T) {
	_, err := New(&notifyDevice{}, 3)
	var te *transport.Error
	assert.ErrorAs(t, err, &te)
}
