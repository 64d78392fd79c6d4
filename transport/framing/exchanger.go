package framing

import (
	"io"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"

	"github.com/status-im/ton-ledger-go/transport"
)

// Exchanger runs APDU exchanges over a packet device. Each Read on the device
// must return one packet.
type Exchanger struct {
	dev     io.ReadWriteCloser
	codec   *Codec
	timeout time.Duration
	logger  log.Logger

	mu        sync.Mutex
	broken    error
	closed    bool
	devClosed bool
}

type Option func(*Exchanger)

// WithTimeout bounds every exchange. A timed out exchanger is broken and must
// be replaced.
func WithTimeout(d time.Duration) Option {
	return func(e *Exchanger) {
		e.timeout = d
	}
}

func WithLogger(logger log.Logger) Option {
	return func(e *Exchanger) {
		e.logger = logger
	}
}

func NewExchanger(dev io.ReadWriteCloser, codec *Codec, opts ...Option) *Exchanger {
	e := &Exchanger{
		dev:    dev,
		codec:  codec,
		logger: log.New("package", "ton-ledger-go/transport/framing"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

type result struct {
	resp []byte
	err  error
}

func (e *Exchanger) Exchange(frame []byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, &transport.Error{Op: "exchange", Err: transport.ErrClosed}
	}

	if e.broken != nil {
		return nil, &transport.Error{Op: "exchange", Err: transport.ErrBroken}
	}

	if e.timeout <= 0 {
		resp, err := e.exchange(frame)
		if err != nil {
			e.broken = err
			return nil, transport.Wrap("exchange", err)
		}

		return resp, nil
	}

	done := make(chan result, 1)
	go func() {
		resp, err := e.exchange(frame)
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			e.broken = r.err
			return nil, transport.Wrap("exchange", r.err)
		}
		return r.resp, nil
	case <-time.After(e.timeout):
		e.broken = transport.ErrTimeout
		e.logger.Warn("Exchange timed out, closing device", "timeout", e.timeout)
		e.closeDevice()
		return nil, &transport.Error{Op: "exchange", Err: transport.ErrTimeout}
	}
}

func (e *Exchanger) exchange(frame []byte) ([]byte, error) {
	packets, err := e.codec.Encode(frame)
	if err != nil {
		return nil, err
	}

	for _, packet := range packets {
		e.logger.Trace("Packet sent to device", "packet", hexutil.Bytes(packet))
		if _, err := e.dev.Write(packet); err != nil {
			return nil, err
		}
	}

	buf := make([]byte, e.codec.PacketSize())

	return e.codec.Decode(func() ([]byte, error) {
		n, err := e.dev.Read(buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, io.ErrUnexpectedEOF
		}

		e.logger.Trace("Packet received from device", "packet", hexutil.Bytes(buf[:n]))

		return buf[:n], nil
	})
}

func (e *Exchanger) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	e.closed = true

	return e.closeDevice()
}

func (e *Exchanger) closeDevice() error {
	if e.devClosed {
		return nil
	}

	e.devClosed = true

	return e.dev.Close()
}
