package transport

import (
	"crypto/ed25519"
	"fmt"

	"github.com/status-im/ton-ledger-go/types"
)

// Transport exchanges raw APDU frames with a device.
type Transport interface {
	Exchange(frame []byte) ([]byte, error)
	Close() error
}

// Debugger computes reference results without going through the device
// protocol. Only simulated devices provide it.
type Debugger interface {
	DebugConfig() (*types.AppConfiguration, error)
	DebugAddress(account uint32) (ed25519.PublicKey, error)
	DebugDeploy(account uint32) (*types.TransactionResult, error)
	DebugTransfer(intent types.TransactionIntent) (*types.TransactionResult, error)
}

// DebugTransport is a Transport that can also compute reference results.
type DebugTransport interface {
	Transport
	Debugger
}

type Kind string

const (
	KindHID Kind = "hid"
	KindBLE Kind = "ble"
	KindSim Kind = "sim"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindHID, KindBLE, KindSim:
		return k, nil
	default:
		return "", fmt.Errorf("unknown transport %q", s)
	}
}

// Link is a transport selected by configuration. It carries the debug
// capability only when built with Verifiable.
type Link struct {
	kind     Kind
	t        Transport
	debugger Debugger
}

// Opaque wraps a transport without a debug capability.
func Opaque(kind Kind, t Transport) *Link {
	return &Link{kind: kind, t: t}
}

// Verifiable wraps a transport that can compute reference results.
func Verifiable(t DebugTransport) *Link {
	return &Link{kind: KindSim, t: t, debugger: t}
}

func (l *Link) Kind() Kind {
	return l.kind
}

func (l *Link) Transport() Transport {
	return l.t
}

// Debugger returns the debug capability and whether the link has one.
func (l *Link) Debugger() (Debugger, bool) {
	return l.debugger, l.debugger != nil
}

func (l *Link) Close() error {
	return l.t.Close()
}
