// Package rpc provides a minimal JSON-RPC 2.0 client for Ethereum nodes.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/mrz1836/scout/internal/chain"
	scouterr "github.com/mrz1836/scout/pkg/errors"
)

const (
	// maxResponseBodySize caps how much of a node response is read.
	maxResponseBodySize = 4 << 20

	// latestBlock is the block tag used for read-only calls.
	latestBlock = "latest"
)

var (
	// ErrRPCRequest indicates an RPC request failed.
	ErrRPCRequest = &scouterr.ScoutError{
		Code:     "RPC_REQUEST_FAILED",
		Message:  "RPC request failed",
		ExitCode: scouterr.ExitUnavailable,
	}

	// ErrRPCResponse indicates an invalid RPC response.
	ErrRPCResponse = &scouterr.ScoutError{
		Code:     "RPC_INVALID_RESPONSE",
		Message:  "invalid RPC response",
		ExitCode: scouterr.ExitUnavailable,
	}

	// ErrEndpointRequired indicates the client was created without any URL.
	ErrEndpointRequired = &scouterr.ScoutError{
		Code:     "RPC_URL_REQUIRED",
		Message:  "RPC URL is required",
		ExitCode: scouterr.ExitConfig,
	}
)

// Observer is notified after every RPC attempt.
type Observer func(method string, duration time.Duration, err error)

// Client is a minimal Ethereum JSON-RPC client with endpoint fallback.
type Client struct {
	endpoints  []string
	httpClient *http.Client
	limiter    *chain.RateLimiter
	retry      chain.RetryConfig
	observer   Observer
	idCounter  atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimiter throttles requests per endpoint host.
func WithRateLimiter(rl *chain.RateLimiter) Option {
	return func(c *Client) {
		c.limiter = rl
	}
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(cfg chain.RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithFallbacks adds endpoints tried in order when the primary is unreachable.
func WithFallbacks(urls ...string) Option {
	return func(c *Client) {
		for _, u := range urls {
			if u != "" {
				c.endpoints = append(c.endpoints, u)
			}
		}
	}
}

// WithObserver registers a callback for call metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a new RPC client for the given primary endpoint.
func NewClient(url string, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, ErrEndpointRequired
	}

	c := &Client{
		endpoints:  []string{url},
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retry:      chain.RetryConfig{MaxAttempts: 1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoints returns the configured endpoints, primary first.
func (c *Client) Endpoints() []string {
	out := make([]string, len(c.endpoints))
	copy(out, c.endpoints)
	return out
}

// request represents a JSON-RPC 2.0 request.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

// response represents a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object returned by the node.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Call performs a JSON-RPC call, walking the fallback endpoints when an
// endpoint fails with a transient error.
func (c *Client) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		result, err := chain.RetryWithConfig(ctx, c.retry, func() (json.RawMessage, error) {
			return c.callOnce(ctx, endpoint, method, params)
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !chain.IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) callOnce(ctx context.Context, endpoint, method string, params []any) (raw json.RawMessage, err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer(method, time.Since(start), err)
		}
	}()

	if c.limiter != nil {
		if err = c.limiter.Wait(ctx, endpoint); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.idCounter.Add(1),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq) //nolint:gosec // endpoint comes from validated config
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, chain.WrapRetryable(scouterr.WithCause(ErrRPCRequest, err))
	}
	defer func() { _ = httpResp.Body.Close() }()

	switch {
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return nil, chain.RateLimitedError(chain.ParseRetryAfter(httpResp.Header.Get("Retry-After")))
	case httpResp.StatusCode >= http.StatusInternalServerError:
		return nil, chain.WrapRetryable(scouterr.WithDetails(ErrRPCRequest, map[string]string{
			"status": httpResp.Status,
		}))
	case httpResp.StatusCode != http.StatusOK:
		return nil, scouterr.WithDetails(ErrRPCRequest, map[string]string{
			"status": httpResp.Status,
		})
	}

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBodySize))
	if err != nil {
		return nil, chain.WrapRetryable(fmt.Errorf("reading response body: %w", err))
	}

	var resp response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, scouterr.WithCause(ErrRPCResponse, err)
	}

	if resp.Error != nil {
		return nil, resp.Error
	}

	return resp.Result, nil
}

// ChainID returns the chain ID.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	result, err := c.Call(ctx, "eth_chainId")
	if err != nil {
		return nil, err
	}

	var hexVal string
	if err := json.Unmarshal(result, &hexVal); err != nil {
		return nil, fmt.Errorf("parsing chain ID: %w", err)
	}

	n, err := hexutil.DecodeBig(hexVal)
	if err != nil {
		return nil, scouterr.WithCause(ErrRPCResponse, err)
	}
	return n, nil
}

// CallMsg represents the parameters for eth_call.
type CallMsg struct {
	To   common.Address
	Data []byte
}

// MarshalJSON implements custom JSON marshaling for CallMsg.
func (m CallMsg) MarshalJSON() ([]byte, error) {
	type callMsgJSON struct {
		To   string `json:"to"`
		Data string `json:"data,omitempty"`
	}

	msg := callMsgJSON{To: m.To.Hex()}
	if len(m.Data) > 0 {
		msg.Data = hexutil.Encode(m.Data)
	}
	return json.Marshal(msg)
}

// EthCall performs a read-only eth_call against the latest block.
func (c *Client) EthCall(ctx context.Context, msg CallMsg) ([]byte, error) {
	result, err := c.Call(ctx, "eth_call", msg, latestBlock)
	if err != nil {
		return nil, err
	}

	var hexVal string
	if err := json.Unmarshal(result, &hexVal); err != nil {
		return nil, fmt.Errorf("parsing call result: %w", err)
	}

	if hexVal == "" || hexVal == "0x" {
		return []byte{}, nil
	}
	out, err := hexutil.Decode(hexVal)
	if err != nil {
		return nil, scouterr.WithCause(ErrRPCResponse, err)
	}
	return out, nil
}

// IsExecutionReverted reports whether err is a node-side revert of an eth_call.
func IsExecutionReverted(err error) bool {
	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		return false
	}
	return rpcErr.Code == 3 || strings.Contains(rpcErr.Message, "revert")
}
