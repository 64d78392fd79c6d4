package tonclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// envelope is the reply shape of the toncenter JSON-RPC endpoint. Besides the
// standard members it carries "ok" and "@extra", and failures put a plain
// string in "error" with the code next to it.
type envelope struct {
	OK      *bool           `json:"ok"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   json.RawMessage `json:"error"`
	Code    int             `json:"code"`
	ID      json.RawMessage `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcReply struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// normalizer rewrites toncenter replies into plain JSON-RPC 2.0 responses so
// they can be decoded by a strict client.
type normalizer struct {
	next http.RoundTripper
}

func (n *normalizer) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := n.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	if out, ok := normalize(body, resp.StatusCode); ok {
		body = out
		// errors travel in the body
		resp.StatusCode = http.StatusOK
		resp.Status = http.StatusText(http.StatusOK)
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Del("Content-Length")

	return resp, nil
}

func normalize(body []byte, status int) ([]byte, bool) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}

	reply := rpcReply{JSONRPC: "2.0", ID: env.ID}
	if len(reply.ID) == 0 {
		reply.ID = json.RawMessage("0")
	}

	failed := env.OK != nil && !*env.OK
	if len(env.Error) != 0 && string(env.Error) != "null" {
		failed = true
	}

	if failed {
		reply.Error = decodeError(env, status)
	} else {
		reply.Result = env.Result
	}

	out, err := json.Marshal(reply)
	if err != nil {
		return nil, false
	}

	return out, true
}

func decodeError(env envelope, status int) *rpcError {
	e := &rpcError{}
	if err := json.Unmarshal(env.Error, e); err == nil && e.Message != "" {
		return e
	}

	var msg string
	if err := json.Unmarshal(env.Error, &msg); err != nil || msg == "" {
		msg = http.StatusText(status)
	}

	code := env.Code
	if code == 0 {
		code = status
	}

	return &rpcError{Code: code, Message: msg}
}
