package tonclient

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"
)

type request struct {
	Method string            `json:"method"`
	Params map[string]string `json:"params"`
}

func newServer(t *testing.T, handle func(req *request) string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		req := &request{}
		require.NoError(t, json.Unmarshal(body, req))

		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, handle(req))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestGetWalletInfo(t *testing.T) {
	srv := newServer(t, func(req *request) string {
		assert.Equal(t, "getWalletInformation", req.Method)
		assert.Equal(t, "EQBj7C05t2CL7nheg9NxP2TDJMRHLsWH2AKfx3e4rrNyH0XU", req.Params["address"])

		return `{"ok":true,"result":{"wallet":true,"balance":"1500000000","account_state":"active","wallet_type":"wallet v3 r2","seqno":7,"wallet_id":698983191,"last_transaction_id":{"@type":"internal.transactionId","lt":"1","hash":"AA=="}},"@extra":"1.2","id":0,"jsonrpc":"2.0"}`
	})

	c := New(srv.URL, WithAPIKey("secret"))

	info, err := c.GetWalletInfo("EQBj7C05t2CL7nheg9NxP2TDJMRHLsWH2AKfx3e4rrNyH0XU")
	require.NoError(t, err)
	assert.True(t, info.Wallet)
	assert.Equal(t, AccountActive, info.AccountState)
	assert.Equal(t, uint32(7), info.Seqno)
	assert.Equal(t, uint32(698983191), info.WalletID)
	assert.Equal(t, uint32(7), NextSeqno(info))

	balance, err := info.BalanceNano()
	require.NoError(t, err)
	assert.Equal(t, "1500000000", balance.String())
}

func TestGetWalletInfoUninitialized(t *testing.T) {
	srv := newServer(t, func(req *request) string {
		return `{"ok":true,"result":{"wallet":false,"balance":0,"account_state":"uninitialized"},"id":0,"jsonrpc":"2.0"}`
	})

	info, err := New(srv.URL, WithAPIKey("secret")).GetWalletInfo("EQBj7C05t2CL7nheg9NxP2TDJMRHLsWH2AKfx3e4rrNyH0XU")
	require.NoError(t, err)
	assert.Equal(t, AccountUninitialized, info.AccountState)
	assert.Equal(t, uint32(1), NextSeqno(info))
	assert.Equal(t, uint32(1), NextSeqno(nil))

	balance, err := info.BalanceNano()
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Int64())
}

func TestSendBoc(t *testing.T) {
	boc := []byte{0xb5, 0xee, 0x9c, 0x72, 0x01}

	srv := newServer(t, func(req *request) string {
		assert.Equal(t, "sendBoc", req.Method)
		assert.Equal(t, base64.StdEncoding.EncodeToString(boc), req.Params["boc"])

		return `{"ok":true,"result":{"@type":"ok","@extra":"1.2"},"jsonrpc":"2.0","id":0}`
	})

	assert.NoError(t, New(srv.URL, WithAPIKey("secret")).SendBoc(boc))
}

func TestRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"ok":false,"error":"LITE_SERVER_UNKNOWN: cannot apply external message","code":500,"jsonrpc":"2.0","id":0}`)
	}))
	defer srv.Close()

	err := New(srv.URL).SendBoc([]byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sendBoc rejected")

	var rpcErr *jsonrpc.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, 500, rpcErr.Code)
	assert.Contains(t, rpcErr.Message, "LITE_SERVER_UNKNOWN")
}

func TestNormalize(t *testing.T) {
	out, ok := normalize([]byte(`{"ok":true,"result":5,"@extra":"x","id":3,"jsonrpc":"2.0"}`), http.StatusOK)
	require.True(t, ok)
	assert.JSONEq(t, `{"jsonrpc":"2.0","result":5,"id":3}`, string(out))

	out, ok = normalize([]byte(`{"jsonrpc":"2.0","error":{"code":-32601,"message":"no such method"},"id":1}`), http.StatusOK)
	require.True(t, ok)
	assert.JSONEq(t, `{"jsonrpc":"2.0","error":{"code":-32601,"message":"no such method"},"id":1}`, string(out))

	out, ok = normalize([]byte(`{"ok":false,"error":"","code":429}`), http.StatusTooManyRequests)
	require.True(t, ok)
	assert.JSONEq(t, `{"jsonrpc":"2.0","error":{"code":429,"message":"Too Many Requests"},"id":0}`, string(out))

	_, ok = normalize([]byte("<html>"), http.StatusBadGateway)
	assert.False(t, ok)
}

func TestTimeoutDoesNotTouchCallerClient(t *testing.T) {
	own := &http.Client{Timeout: 5 * time.Second}

	for _, opts := range [][]Option{
		{WithTimeout(time.Second), WithHTTPClient(own)},
		{WithHTTPClient(own), WithTimeout(time.Second)},
	} {
		c := New(DefaultEndpoint, opts...)
		assert.Equal(t, time.Second, c.httpClient.Timeout)
		assert.Equal(t, 5*time.Second, own.Timeout)
		assert.Nil(t, own.Transport)
	}

	c := New(DefaultEndpoint, WithHTTPClient(own))
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
}
