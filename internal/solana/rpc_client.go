package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// TokenProgramID is the SPL token program used for getTokenAccountsByOwner.
const TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// LamportsPerSOL converts getBalance output to SOL.
const LamportsPerSOL = 1e9

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 5
	DefaultRetryDelay = 1 * time.Second
)

// HTTPClient implements RPCClient using HTTP JSON-RPC 2.0.
//
// Retry policy is two-tier: HTTP 429 is retried with exponentially doubling
// delay up to the attempt ceiling; every other failure propagates
// immediately. Backoff is reserved for rate-limit signals so real upstream
// errors are not masked behind silent retries.
type HTTPClient struct {
	endpoint   string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	requestID  atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets the rate-limit retry ceiling.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the initial backoff delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new Solana RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Call performs a JSON-RPC call. Only rate-limit responses are retried.
func (c *HTTPClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			// The only retryable condition.
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}

		if rpcResp.Error != nil {
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.maxRetries, ErrRateLimited)
}

// GetSignaturesForAddress retrieves signatures for an address with pagination.
func (c *HTTPClient) GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error) {
	config := make(map[string]interface{})
	if opts != nil {
		if opts.Before != "" {
			config["before"] = opts.Before
		}
		if opts.Limit > 0 {
			config["limit"] = opts.Limit
		}
	}

	params := []interface{}{address}
	if len(config) > 0 {
		params = append(params, config)
	}

	var result []SignatureInfo
	if err := c.Call(ctx, "getSignaturesForAddress", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTransaction retrieves a jsonParsed transaction by signature.
// Returns nil without error when the transaction is not found.
func (c *HTTPClient) GetTransaction(ctx context.Context, signature string) (*TransactionDetail, error) {
	params := []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "jsonParsed",
			"maxSupportedTransactionVersion": 0,
		},
	}

	var raw json.RawMessage
	if err := c.Call(ctx, "getTransaction", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var detail TransactionDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	detail.Signature = signature
	detail.Raw = raw
	return &detail, nil
}

// tokenAccountsResult is the raw RPC response for getTokenAccountsByOwner.
type tokenAccountsResult struct {
	Value []struct {
		Pubkey  string `json:"pubkey"`
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						Mint        string `json:"mint"`
						Owner       string `json:"owner"`
						TokenAmount struct {
							Amount   string `json:"amount"`
							Decimals int    `json:"decimals"`
						} `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}

// GetTokenAccountsByOwner retrieves all SPL token accounts of an owner,
// with raw amounts scaled to human-readable units.
func (c *HTTPClient) GetTokenAccountsByOwner(ctx context.Context, owner string) ([]TokenAccount, error) {
	params := []interface{}{
		owner,
		map[string]interface{}{"programId": TokenProgramID},
		map[string]interface{}{"encoding": "jsonParsed"},
	}

	var result tokenAccountsResult
	if err := c.Call(ctx, "getTokenAccountsByOwner", params, &result); err != nil {
		return nil, err
	}

	accounts := make([]TokenAccount, 0, len(result.Value))
	for _, v := range result.Value {
		info := v.Account.Data.Parsed.Info
		raw, err := strconv.ParseFloat(info.TokenAmount.Amount, 64)
		if err != nil {
			// Malformed amounts are skipped, not fatal.
			continue
		}
		accounts = append(accounts, TokenAccount{
			Pubkey:   v.Pubkey,
			Mint:     info.Mint,
			Owner:    info.Owner,
			Amount:   raw / pow10(info.TokenAmount.Decimals),
			Decimals: info.TokenAmount.Decimals,
		})
	}
	return accounts, nil
}

// balanceResult is the raw RPC response for getBalance.
type balanceResult struct {
	Value uint64 `json:"value"`
}

// GetBalance retrieves the owner's native balance in SOL.
func (c *HTTPClient) GetBalance(ctx context.Context, owner string) (float64, error) {
	params := []interface{}{owner}

	var result balanceResult
	if err := c.Call(ctx, "getBalance", params, &result); err != nil {
		return 0, err
	}
	return float64(result.Value) / LamportsPerSOL, nil
}

func pow10(n int) float64 {
	p := 1.0
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
