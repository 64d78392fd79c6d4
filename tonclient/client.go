// Package tonclient queries wallet state and broadcasts messages through the
// toncenter JSON-RPC API.
package tonclient

import (
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"
)

const (
	DefaultEndpoint        = "https://toncenter.com/api/v2/jsonRPC"
	DefaultTestnetEndpoint = "https://testnet.toncenter.com/api/v2/jsonRPC"

	AccountActive        = "active"
	AccountUninitialized = "uninitialized"
)

var ErrBadBalance = errors.New("invalid balance")

// WalletInfo is the result of getWalletInformation.
type WalletInfo struct {
	Wallet       bool        `json:"wallet"`
	Balance      json.Number `json:"balance"`
	AccountState string      `json:"account_state"`
	WalletType   string      `json:"wallet_type"`
	Seqno        uint32      `json:"seqno"`
	WalletID     uint32      `json:"wallet_id"`
}

// BalanceNano returns the balance in nanotons.
func (i *WalletInfo) BalanceNano() (*big.Int, error) {
	if i.Balance == "" {
		return new(big.Int), nil
	}

	v, ok := new(big.Int).SetString(i.Balance.String(), 10)
	if !ok {
		return nil, errors.Wrapf(ErrBadBalance, "%q", i.Balance.String())
	}

	return v, nil
}

// NextSeqno returns the seqno to sign the next transfer with. Accounts that
// are not deployed yet report 0 and get 1.
func NextSeqno(info *WalletInfo) uint32 {
	if info == nil || info.Seqno == 0 {
		return 1
	}

	return info.Seqno
}

type Client struct {
	rpc        jsonrpc.RPCClient
	httpClient *http.Client
	logger     log.Logger
}

type options struct {
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*options)

// WithAPIKey sends key in the X-API-Key header.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithHTTPClient sends requests through a copy of c.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithTimeout bounds each request. It overrides the timeout of the client
// given to WithHTTPClient regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

func New(endpoint string, opts ...Option) *Client {
	o := &options{httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(o)
	}

	base := o.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	httpClient := *o.httpClient
	httpClient.Transport = &normalizer{next: base}
	if o.timeout > 0 {
		httpClient.Timeout = o.timeout
	}

	headers := map[string]string{}
	if o.apiKey != "" {
		headers["X-API-Key"] = o.apiKey
	}

	return &Client{
		rpc: jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
			HTTPClient:    &httpClient,
			CustomHeaders: headers,
		}),
		httpClient: &httpClient,
		logger:     log.New("package", "ton-ledger-go/tonclient"),
	}
}

type addressParams struct {
	Address string `json:"address"`
}

type bocParams struct {
	Boc string `json:"boc"`
}

func (c *Client) call(method string, params interface{}, out interface{}) error {
	res, err := c.rpc.Call(method, params)
	if err != nil {
		return errors.Wrapf(err, "%s failed", method)
	}

	if res.Error != nil {
		return errors.Wrapf(res.Error, "%s rejected", method)
	}

	if out == nil {
		return nil
	}

	if err := res.GetObject(out); err != nil {
		return errors.Wrapf(err, "cannot decode %s result", method)
	}

	return nil
}

// GetWalletInfo returns the state of the wallet at addr.
func (c *Client) GetWalletInfo(addr string) (*WalletInfo, error) {
	info := &WalletInfo{}
	if err := c.call("getWalletInformation", &addressParams{Address: addr}, info); err != nil {
		return nil, err
	}

	c.logger.Debug("wallet information", "address", addr, "state", info.AccountState, "seqno", info.Seqno)

	return info, nil
}

// SendBoc broadcasts a serialized external message.
func (c *Client) SendBoc(boc []byte) error {
	if err := c.call("sendBoc", &bocParams{Boc: base64.StdEncoding.EncodeToString(boc)}, nil); err != nil {
		return err
	}

	c.logger.Info("message sent", "size", len(boc))

	return nil
}
