package tonledger

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/status-im/ton-ledger-go/apdu"
	"github.com/status-im/ton-ledger-go/transport"
	"github.com/status-im/ton-ledger-go/types"
	"github.com/status-im/ton-ledger-go/wallet"
)

// DefaultMessageTTL is added to the current time to compute the valid-until
// field of transfers.
const DefaultMessageTTL = 60 * time.Second

// Wallet binds an account index to the public key returned by the device and
// to the wallet contract built from it. It is produced by GetAddress.
type Wallet struct {
	account   uint32
	publicKey ed25519.PublicKey
	contract  *wallet.V3
	address   *address.Address
}

func (w *Wallet) Account() uint32 {
	return w.account
}

func (w *Wallet) PublicKey() ed25519.PublicKey {
	return append(ed25519.PublicKey{}, w.publicKey...)
}

func (w *Wallet) Address() *address.Address {
	return w.address
}

func (w *Wallet) Contract() *wallet.V3 {
	return w.contract
}

// AddressResult is the outcome of GetAddress.
type AddressResult struct {
	Address   *address.Address
	Wallet    *Wallet
	PublicKey ed25519.PublicKey
}

// Session runs the TON app commands over a link. It must be started once with
// Start before any operation.
type Session struct {
	mu sync.Mutex

	link    *transport.Link
	c       types.Channel
	started bool

	clock     func() time.Time
	ttl       time.Duration
	sendMode  uint8
	workchain int8
	debug     bool
	logger    log.Logger
}

type SessionOption func(*Session)

func WithClock(clock func() time.Time) SessionOption {
	return func(s *Session) {
		s.clock = clock
	}
}

func WithMessageTTL(ttl time.Duration) SessionOption {
	return func(s *Session) {
		s.ttl = ttl
	}
}

func WithSendMode(mode uint8) SessionOption {
	return func(s *Session) {
		s.sendMode = mode
	}
}

// WithDebugMode logs every frame sent and received by the session.
func WithDebugMode(debug bool) SessionOption {
	return func(s *Session) {
		s.debug = debug
	}
}

func WithWorkchain(wc int8) SessionOption {
	return func(s *Session) {
		s.workchain = wc
	}
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		clock:    time.Now,
		ttl:      DefaultMessageTTL,
		sendMode: wallet.DefaultSendMode,
		logger:   log.New("package", "ton-ledger-go"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start binds the session to link. It can be called only once.
func (s *Session) Start(link *transport.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	if link == nil || link.Transport() == nil {
		return ErrNoLink
	}

	c := transport.NewChannel(link.Transport())
	c.SetDebugMode(s.debug)

	s.link = link
	s.c = c
	s.started = true

	s.logger.Debug("session started", "transport", link.Kind())

	return nil
}

func (s *Session) Link() *transport.Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.link
}

// Verifier returns a cross verifier when the link can compute reference
// results.
func (s *Session) Verifier() (*Verifier, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, false
	}

	d, ok := s.link.Debugger()
	if !ok {
		return nil, false
	}

	return NewVerifier(d), true
}

func (s *Session) GetAppConfiguration() (*types.AppConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	cmd := NewCommandGetAppConfiguration()
	resp, err := s.c.Send(cmd)
	if err = s.checkOK(opGetAppConfiguration, resp, err); err != nil {
		return nil, err
	}

	conf, err := types.ParseAppConfiguration(resp.Data)
	if err != nil {
		return nil, decodeError(opGetAppConfiguration, err)
	}

	return conf, nil
}

// GetAddress asks the device for the public key of account and derives the
// wallet address from it. When display is true the device shows the address
// for confirmation.
func (s *Session) GetAddress(account uint32, display bool) (*AddressResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	cmd, err := NewCommandGetAddress(account, display, types.DefaultAddressFormat)
	if err != nil {
		return nil, err
	}

	resp, err := s.c.Send(cmd)
	if err = s.checkOK(opGetAddress, resp, err); err != nil {
		return nil, err
	}

	pub, err := types.ParsePublicKey(resp.Data)
	if err != nil {
		return nil, decodeError(opGetAddress, err)
	}

	contract, err := wallet.NewV3(pub, s.workchain)
	if err != nil {
		return nil, decodeError(opGetAddress, err)
	}

	addr := contract.Address()

	return &AddressResult{
		Address: addr,
		Wallet: &Wallet{
			account:   account,
			publicKey: pub,
			contract:  contract,
			address:   addr,
		},
		PublicKey: pub,
	}, nil
}

// Deploy asks the device to sign the initialization message of w.
func (s *Session) Deploy(account uint32, w *Wallet) (*types.TransactionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	if err := checkWallet(account, w); err != nil {
		return nil, err
	}

	cmd, err := NewCommandDeploy(account)
	if err != nil {
		return nil, err
	}

	msg := w.contract.DeploySigningMessage()

	sig, err := s.sign(opDeploy, cmd, w, msg)
	if err != nil {
		return nil, err
	}

	intent := types.TransactionIntent{
		Kind:       types.TransactionDeploy,
		Account:    account,
		ValidUntil: wallet.NoExpiry,
	}

	return types.NewTransactionResult(intent, func() (*cell.Cell, error) {
		return w.contract.ExternalMessage(msg, sig, true)
	}), nil
}

// Transfer asks the device to sign a transfer of amount nanotons from w to
// destination. A zero seqno means the wallet is not deployed yet: the message
// never expires and carries the state init.
func (s *Session) Transfer(account uint32, w *Wallet, destination string, amount *big.Int, seqno uint32) (*types.TransactionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	if err := checkWallet(account, w); err != nil {
		return nil, err
	}

	dest, err := wallet.ParseAddress(destination)
	if err != nil {
		return nil, &EncodingError{Field: "destination", Reason: err.Error()}
	}

	validUntil := uint32(wallet.NoExpiry)
	if seqno != 0 {
		validUntil = uint32(s.clock().Add(s.ttl).Unix())
	}

	params := &TransferParams{
		Account:     account,
		Seqno:       seqno,
		ValidUntil:  validUntil,
		Amount:      amount,
		Destination: dest,
		SendMode:    s.sendMode,
	}

	cmd, err := NewCommandTransfer(params)
	if err != nil {
		return nil, err
	}

	transfer := &wallet.Transfer{
		Destination: dest,
		Amount:      amount,
		Seqno:       seqno,
		ValidUntil:  validUntil,
		SendMode:    s.sendMode,
	}

	msg, err := w.contract.TransferSigningMessage(transfer)
	if err != nil {
		return nil, err
	}

	sig, err := s.sign(opTransfer, cmd, w, msg)
	if err != nil {
		return nil, err
	}

	intent := types.TransactionIntent{
		Kind:        types.TransactionTransfer,
		Account:     account,
		Destination: dest,
		Amount:      new(big.Int).Set(amount),
		Seqno:       seqno,
		ValidUntil:  validUntil,
		SendMode:    s.sendMode,
	}

	return types.NewTransactionResult(intent, func() (*cell.Cell, error) {
		return w.contract.ExternalMessage(msg, sig, seqno == 0)
	}), nil
}

// sign sends cmd and checks the returned signature over msg against the
// public key of w.
func (s *Session) sign(op string, cmd *apdu.Command, w *Wallet, msg *cell.Cell) ([]byte, error) {
	resp, err := s.c.Send(cmd)
	if err = s.checkOK(op, resp, err); err != nil {
		return nil, err
	}

	sig, err := types.ParseSignature(resp.Data)
	if err != nil {
		return nil, decodeError(op, err)
	}

	if !wallet.VerifySignature(w.publicKey, msg, sig) {
		return nil, &ProtocolError{Op: op, Err: ErrSignatureMismatch}
	}

	return sig, nil
}

func (s *Session) checkOK(op string, resp *apdu.Response, err error) error {
	if errors.Is(err, apdu.ErrBadRawResponse) {
		return decodeError(op, err)
	}

	if err != nil {
		return err
	}

	if err := checkResponse(op, resp); err != nil {
		s.logger.Debug("command failed", "op", op, "sw", fmt.Sprintf("%04x", resp.Sw))
		return err
	}

	return nil
}

func checkWallet(account uint32, w *Wallet) error {
	if w == nil {
		return &EncodingError{Field: "wallet", Reason: "missing"}
	}

	if w.account != account {
		return &EncodingError{Field: "wallet", Reason: fmt.Sprintf("derived for account %d, not %d", w.account, account)}
	}

	return nil
}
