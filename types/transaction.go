package types

import (
	"math/big"
	"sync"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

type TransactionKind int

const (
	TransactionDeploy TransactionKind = iota + 1
	TransactionTransfer
)

func (k TransactionKind) String() string {
	switch k {
	case TransactionDeploy:
		return "deploy"
	case TransactionTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// TransactionIntent holds the logical parameters of a deploy or transfer.
// Destination and Amount are nil for deploys.
type TransactionIntent struct {
	Kind        TransactionKind
	Account     uint32
	Destination *address.Address
	Amount      *big.Int
	Seqno       uint32
	ValidUntil  uint32
	SendMode    uint8
}

// TransactionResult is a signed transaction whose external message is built
// on first use. Later calls return the same cell and bytes.
type TransactionResult struct {
	intent TransactionIntent
	build  func() (*cell.Cell, error)

	once  sync.Once
	query *cell.Cell
	raw   []byte
	err   error
}

func NewTransactionResult(intent TransactionIntent, build func() (*cell.Cell, error)) *TransactionResult {
	return &TransactionResult{
		intent: intent,
		build:  build,
	}
}

func (r *TransactionResult) Intent() TransactionIntent {
	return r.intent
}

func (r *TransactionResult) materialize() {
	r.once.Do(func() {
		r.query, r.err = r.build()
		if r.err == nil {
			r.raw = r.query.ToBOC()
		}
	})
}

// Query returns the external message cell.
func (r *TransactionResult) Query() (*cell.Cell, error) {
	r.materialize()
	return r.query, r.err
}

// BOC returns the serialized external message, ready to broadcast.
func (r *TransactionResult) BOC() ([]byte, error) {
	r.materialize()
	if r.err != nil {
		return nil, r.err
	}

	return append([]byte{}, r.raw...), nil
}
