// Package httpledger talks to a devnet served over HTTP by
// "spbuadmin devnet serve".
package httpledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/logging"
)

const DefaultTimeout = 15 * time.Second

type callRequest struct {
	Function string `json:"function"`
	Args     []any  `json:"args"`
}

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

var _ ledger.Client = (*Client)(nil)

// New returns a client for the devnet at baseURL. A nil httpClient gets a
// default one with DefaultTimeout.
func New(baseURL string, httpClient *http.Client, log logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log.With("component", "httpledger"),
	}
}

func (c *Client) Read(ctx context.Context, call ledger.Call) (any, error) {
	var out struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.post(ctx, "/v1/read", call, &out); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(out.Result))
	dec.UseNumber()
	var result any
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: decode result: %w", call.Function, err)
	}
	return result, nil
}

func (c *Client) Simulate(ctx context.Context, call ledger.Call) error {
	return c.post(ctx, "/v1/simulate", call, nil)
}

func (c *Client) Write(ctx context.Context, call ledger.Call) (ledger.TxResult, error) {
	var tx ledger.TxResult
	if err := c.post(ctx, "/v1/write", call, &tx); err != nil {
		return ledger.TxResult{}, err
	}
	c.log.Info(ctx, "ledger write", "function", call.Function, "tx", tx.Hash, "block", tx.Block)
	return tx, nil
}

func (c *Client) SimulateThenWrite(ctx context.Context, call ledger.Call) (ledger.TxResult, error) {
	if err := c.Simulate(ctx, call); err != nil {
		return ledger.TxResult{}, err
	}
	return c.Write(ctx, call)
}

// Ping checks that the devnet answers and returns its head block.
func (c *Client) Ping(ctx context.Context) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("devnet unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("devnet health: status %d", resp.StatusCode)
	}
	var body struct {
		Head uint64 `json:"head"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("devnet health: %w", err)
	}
	return body.Head, nil
}

func (c *Client) post(ctx context.Context, path string, call ledger.Call, out any) error {
	args := call.Args
	if args == nil {
		args = []any{}
	}
	raw, err := json.Marshal(callRequest{Function: call.Function, Args: args})
	if err != nil {
		return fmt.Errorf("%s: encode args: %w", call.Function, ledger.ErrBadArguments)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", call.Function, err)
	}
	defer resp.Body.Close()
	c.log.Debug(ctx, "devnet call", "path", path, "function", call.Function,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return decodeError(call.Function, resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", call.Function, err)
	}
	return nil
}

// decodeError maps an error body back onto the ledger sentinels.
func decodeError(fn string, resp *http.Response) error {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Code == "" {
		return fmt.Errorf("%s: devnet returned status %d", fn, resp.StatusCode)
	}
	switch body.Code {
	case "REVERTED":
		return &ledger.RevertError{Function: fn, Reason: body.Reason}
	case "UNKNOWN_FUNCTION":
		return fmt.Errorf("%s: %w", fn, ledger.ErrUnknownFunction)
	case "BAD_REQUEST":
		return fmt.Errorf("%s: %s: %w", fn, body.Error, ledger.ErrBadArguments)
	}
	return errors.New(fn + ": " + body.Error)
}
