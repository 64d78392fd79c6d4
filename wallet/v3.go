package wallet

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"math/big"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	tonwallet "github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

const (
	// DefaultWalletID is the subwallet id used by wallet v3 in workchain 0.
	DefaultWalletID = tonwallet.DefaultSubwallet

	// DefaultSendMode pays transfer fees separately and ignores action errors.
	DefaultSendMode = 3

	// NoExpiry is the valid-until value used by the first message of a wallet.
	NoExpiry = 0xFFFFFFFF
)

var (
	ErrBadPublicKey   = errors.New("public key must be 32 bytes")
	ErrNilDestination = errors.New("nil destination address")
)

// Transfer describes a single outgoing internal message.
type Transfer struct {
	Destination *address.Address
	Amount      *big.Int
	Seqno       uint32
	ValidUntil  uint32
	SendMode    uint8
}

// V3 is the wallet v3 revision 2 contract bound to a public key.
type V3 struct {
	publicKey ed25519.PublicKey
	workchain int8
	walletID  uint32
	stateInit *tlb.StateInit
}

func NewV3(publicKey ed25519.PublicKey, workchain int8) (*V3, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, ErrBadPublicKey
	}

	walletID := uint32(int64(DefaultWalletID) + int64(workchain))
	stateInit, err := tonwallet.GetStateInit(publicKey, tonwallet.V3R2, walletID)
	if err != nil {
		return nil, err
	}

	return &V3{
		publicKey: append(ed25519.PublicKey{}, publicKey...),
		workchain: workchain,
		walletID:  walletID,
		stateInit: stateInit,
	}, nil
}

func (w *V3) PublicKey() ed25519.PublicKey {
	return append(ed25519.PublicKey{}, w.publicKey...)
}

func (w *V3) Workchain() int8 {
	return w.workchain
}

func (w *V3) WalletID() uint32 {
	return w.walletID
}

// Code returns the contract code cell.
func (w *V3) Code() *cell.Cell {
	return w.stateInit.Code
}

// Data returns the initial persistent data: seqno 0, wallet id and public key.
func (w *V3) Data() *cell.Cell {
	return w.stateInit.Data
}

func (w *V3) StateInit() (*cell.Cell, error) {
	return tlb.ToCell(w.stateInit)
}

// Address returns the bounceable address derived from the state init hash.
func (w *V3) Address() *address.Address {
	return w.stateInit.CalcAddress(int(w.workchain))
}

func (w *V3) signingMessage(seqno, validUntil uint32) *cell.Builder {
	return cell.BeginCell().
		MustStoreUInt(uint64(w.walletID), 32).
		MustStoreUInt(uint64(validUntil), 32).
		MustStoreUInt(uint64(seqno), 32)
}

// DeploySigningMessage returns the message signed to initialize the wallet.
func (w *V3) DeploySigningMessage() *cell.Cell {
	return w.signingMessage(0, NoExpiry).EndCell()
}

// TransferSigningMessage returns the message signed to send t.
func (w *V3) TransferSigningMessage(t *Transfer) (*cell.Cell, error) {
	order, err := InternalMessage(t.Destination, t.Amount)
	if err != nil {
		return nil, err
	}

	b := w.signingMessage(t.Seqno, t.ValidUntil).MustStoreUInt(uint64(t.SendMode), 8)
	if err := b.StoreRef(order); err != nil {
		return nil, err
	}

	return b.EndCell(), nil
}

// InternalMessage builds the outgoing message carrying amount to dest with an
// empty body. The bounce flag follows the destination address.
func InternalMessage(dest *address.Address, amount *big.Int) (*cell.Cell, error) {
	if dest == nil {
		return nil, ErrNilDestination
	}
	if amount == nil {
		amount = new(big.Int)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount %s", ErrBadAmount, amount)
	}

	return tlb.ToCell(&tlb.InternalMessage{
		IHRDisabled: true,
		Bounce:      dest.IsBounceable(),
		SrcAddr:     address.NewAddressNone(),
		DstAddr:     dest,
		Amount:      tlb.FromNanoTON(amount),
		IHRFee:      tlb.ZeroCoins,
		FwdFee:      tlb.ZeroCoins,
		Body:        cell.BeginCell().EndCell(),
	})
}

// ExternalMessage wraps a signed signing message into the inbound external
// message sent to the wallet. withStateInit attaches the contract state init.
func (w *V3) ExternalMessage(signingMessage *cell.Cell, signature []byte, withStateInit bool) (*cell.Cell, error) {
	if len(signature) != ed25519.SignatureSize {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", ed25519.SignatureSize, len(signature))
	}

	body := cell.BeginCell().MustStoreSlice(signature, 512)
	if err := body.StoreBuilder(signingMessage.ToBuilder()); err != nil {
		return nil, err
	}

	msg := &tlb.ExternalMessage{
		SrcAddr:   address.NewAddressNone(),
		DstAddr:   w.Address(),
		ImportFee: tlb.ZeroCoins,
		Body:      body.EndCell(),
	}
	if withStateInit {
		msg.StateInit = w.stateInit
	}

	return tlb.ToCell(msg)
}

// DeployMessage signs and assembles the wallet initialization message.
func (w *V3) DeployMessage(key ed25519.PrivateKey) (*cell.Cell, error) {
	msg := w.DeploySigningMessage()
	return w.ExternalMessage(msg, Sign(key, msg), true)
}

// TransferMessage signs and assembles a transfer. The state init is attached
// when the seqno is zero.
func (w *V3) TransferMessage(key ed25519.PrivateKey, t *Transfer) (*cell.Cell, error) {
	msg, err := w.TransferSigningMessage(t)
	if err != nil {
		return nil, err
	}

	return w.ExternalMessage(msg, Sign(key, msg), t.Seqno == 0)
}

// Sign signs the representation hash of msg.
func Sign(key ed25519.PrivateKey, msg *cell.Cell) []byte {
	return msg.Sign(key)
}

// VerifySignature checks sig over the representation hash of msg.
func VerifySignature(publicKey ed25519.PublicKey, msg *cell.Cell, sig []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}

	return msg.Verify(publicKey, sig)
}
