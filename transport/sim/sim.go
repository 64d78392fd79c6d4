package sim

import (
	"crypto/ed25519"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/xssnick/tonutils-go/tvm/cell"

	tonledger "github.com/status-im/ton-ledger-go"
	"github.com/status-im/ton-ledger-go/apdu"
	"github.com/status-im/ton-ledger-go/derivationpath"
	"github.com/status-im/ton-ledger-go/transport"
	"github.com/status-im/ton-ledger-go/types"
	"github.com/status-im/ton-ledger-go/wallet"
)

// DefaultVersion is the app version reported by the simulator.
var DefaultVersion = [3]byte{2, 0, 0}

// Transport emulates the TON app of a hardware wallet in process. It answers
// APDU frames like the device does and can compute reference results directly
// from its keys.
type Transport struct {
	seed         []byte
	version      [3]byte
	workchain    int8
	corruptDebug bool
	logger       log.Logger

	mu     sync.Mutex
	closed bool
}

type Option func(*Transport)

func WithVersion(major, minor, patch byte) Option {
	return func(t *Transport) {
		t.version = [3]byte{major, minor, patch}
	}
}

// WithWorkchain sets the workchain of the wallets built by the debug path.
func WithWorkchain(wc int8) Option {
	return func(t *Transport) {
		t.workchain = wc
	}
}

// WithCorruptDebug flips one byte of every debug signature.
func WithCorruptDebug() Option {
	return func(t *Transport) {
		t.corruptDebug = true
	}
}

func WithLogger(logger log.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

func New(seed []byte, opts ...Option) (*Transport, error) {
	if len(seed) < minSeedLength || len(seed) > maxSeedLength {
		return nil, ErrInvalidSeed
	}

	t := &Transport{
		seed:    append([]byte{}, seed...),
		version: DefaultVersion,
		logger:  log.New("package", "ton-ledger-go/transport/sim"),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

func NewFromMnemonic(mnemonic, passphrase string, opts ...Option) (*Transport, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}

	return New(seed, opts...)
}

// Link returns t as a link that supports cross verification.
func (t *Transport) Link() *transport.Link {
	return transport.Verifiable(t)
}

func (t *Transport) key(account uint32) (ed25519.PrivateKey, error) {
	if account > tonledger.MaxAccount {
		return nil, &tonledger.EncodingError{Field: "account", Reason: "not lower than 2^31"}
	}

	return deriveKey(t.seed, derivationpath.TonAccountPath(account))
}

func (t *Transport) wallet(key ed25519.PrivateKey) (*wallet.V3, error) {
	return wallet.NewV3(key.Public().(ed25519.PublicKey), t.workchain)
}

func (t *Transport) Exchange(frame []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, &transport.Error{Op: "exchange", Err: transport.ErrClosed}
	}

	return t.handle(frame).Serialize(), nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true

	return nil
}

func (t *Transport) handle(frame []byte) *apdu.Response {
	cmd, err := apdu.ParseCommand(frame)
	if err != nil {
		return apdu.NewResponse(nil, apdu.SwWrongLength)
	}

	if cmd.Cla != tonledger.ClaTon {
		return apdu.NewResponse(nil, apdu.SwClaNotSupported)
	}

	var data []byte

	switch cmd.Ins {
	case tonledger.InsGetAppConfiguration:
		data, err = t.getAppConfiguration(cmd)
	case tonledger.InsGetAddress:
		data, err = t.getAddress(cmd)
	case tonledger.InsDeploy:
		data, err = t.deploy(cmd)
	case tonledger.InsTransfer:
		data, err = t.transfer(cmd)
	default:
		return apdu.NewResponse(nil, apdu.SwInsNotSupported)
	}

	if err != nil {
		t.logger.Debug("Command rejected", "ins", cmd.Ins, "err", err)
		return apdu.NewResponse(nil, statusFor(err))
	}

	return apdu.NewResponse(data, apdu.SwOK)
}

func statusFor(err error) uint16 {
	switch {
	case errors.Is(err, tonledger.ErrWrongCla):
		return apdu.SwClaNotSupported
	case errors.Is(err, tonledger.ErrWrongIns):
		return apdu.SwInsNotSupported
	case errors.Is(err, tonledger.ErrWrongLength):
		return apdu.SwWrongLength
	case errors.Is(err, tonledger.ErrWrongP1P2):
		return apdu.SwWrongP1P2
	case errors.Is(err, tonledger.ErrWrongData):
		return apdu.SwWrongData
	default:
		return apdu.SwUnknown
	}
}

func (t *Transport) getAppConfiguration(cmd *apdu.Command) ([]byte, error) {
	if err := tonledger.ParseGetAppConfigurationCommand(cmd); err != nil {
		return nil, err
	}

	return (&types.AppConfiguration{Version: t.version}).Serialize(), nil
}

func (t *Transport) getAddress(cmd *apdu.Command) ([]byte, error) {
	params, err := tonledger.ParseGetAddressCommand(cmd)
	if err != nil {
		return nil, err
	}

	key, err := t.key(params.Account)
	if err != nil {
		return nil, err
	}

	if params.Display {
		w, err := t.wallet(key)
		if err != nil {
			return nil, err
		}

		t.logger.Info("Address displayed", "account", params.Account, "address", params.Format.Render(w.Address()))
	}

	return types.SerializePublicKey(key.Public().(ed25519.PublicKey)), nil
}

func (t *Transport) deploy(cmd *apdu.Command) ([]byte, error) {
	account, err := tonledger.ParseDeployCommand(cmd)
	if err != nil {
		return nil, err
	}

	key, err := t.key(account)
	if err != nil {
		return nil, err
	}

	w, err := t.wallet(key)
	if err != nil {
		return nil, err
	}

	return types.SerializeSignature(wallet.Sign(key, w.DeploySigningMessage())), nil
}

func (t *Transport) transfer(cmd *apdu.Command) ([]byte, error) {
	params, err := tonledger.ParseTransferCommand(cmd)
	if err != nil {
		return nil, err
	}

	key, err := t.key(params.Account)
	if err != nil {
		return nil, err
	}

	w, err := t.wallet(key)
	if err != nil {
		return nil, err
	}

	msg, err := w.TransferSigningMessage(&wallet.Transfer{
		Destination: params.Destination,
		Amount:      params.Amount,
		Seqno:       params.Seqno,
		ValidUntil:  params.ValidUntil,
		SendMode:    params.SendMode,
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("Transfer confirmed", "account", params.Account, "to", params.Destination.String(), "amount", wallet.FromNano(params.Amount), "seqno", params.Seqno)

	return types.SerializeSignature(wallet.Sign(key, msg)), nil
}

func (t *Transport) DebugConfig() (*types.AppConfiguration, error) {
	return &types.AppConfiguration{Version: t.version}, nil
}

func (t *Transport) DebugAddress(account uint32) (ed25519.PublicKey, error) {
	key, err := t.key(account)
	if err != nil {
		return nil, err
	}

	return key.Public().(ed25519.PublicKey), nil
}

func (t *Transport) DebugDeploy(account uint32) (*types.TransactionResult, error) {
	key, err := t.key(account)
	if err != nil {
		return nil, err
	}

	w, err := t.wallet(key)
	if err != nil {
		return nil, err
	}

	intent := types.TransactionIntent{
		Kind:       types.TransactionDeploy,
		Account:    account,
		ValidUntil: wallet.NoExpiry,
	}

	return types.NewTransactionResult(intent, func() (*cell.Cell, error) {
		msg := w.DeploySigningMessage()
		return w.ExternalMessage(msg, t.sign(key, msg), true)
	}), nil
}

func (t *Transport) DebugTransfer(intent types.TransactionIntent) (*types.TransactionResult, error) {
	key, err := t.key(intent.Account)
	if err != nil {
		return nil, err
	}

	w, err := t.wallet(key)
	if err != nil {
		return nil, err
	}

	return types.NewTransactionResult(intent, func() (*cell.Cell, error) {
		msg, err := w.TransferSigningMessage(&wallet.Transfer{
			Destination: intent.Destination,
			Amount:      intent.Amount,
			Seqno:       intent.Seqno,
			ValidUntil:  intent.ValidUntil,
			SendMode:    intent.SendMode,
		})
		if err != nil {
			return nil, err
		}

		return w.ExternalMessage(msg, t.sign(key, msg), intent.Seqno == 0)
	}), nil
}

func (t *Transport) sign(key ed25519.PrivateKey, msg *cell.Cell) []byte {
	sig := wallet.Sign(key, msg)
	if t.corruptDebug {
		sig[len(sig)-1] ^= 0xFF
	}

	return sig
}
