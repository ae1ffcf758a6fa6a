// Package pricing fetches market quotes for token mints from an HTTP
// price-quote service.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for quote retrieval.
const (
	DefaultQuoteBatchSize = 100
	DefaultQuoteDelay     = 1 * time.Second
	DefaultCacheEntries   = 2048
	DefaultCacheTTL       = 5 * time.Minute
)

// Quoter resolves current prices for a set of mints. Mints the service has
// no quote for are absent from the result.
type Quoter interface {
	Prices(ctx context.Context, mints []string) (map[string]float64, error)
}

// Client is an HTTP Quoter. Requests carry up to batchSize comma-joined
// mint identifiers; batches are spaced by a fixed pause.
type Client struct {
	httpClient *http.Client
	baseURL    string
	batchSize  int
	batchDelay time.Duration
	cache      *quoteCache
	logger     zerolog.Logger
}

// ClientOption configures a pricing Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithQuoteBatchSize overrides the per-request mint limit.
func WithQuoteBatchSize(n int) ClientOption {
	return func(c *Client) { c.batchSize = n }
}

// WithQuoteDelay overrides the pause between batches.
func WithQuoteDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.batchDelay = d }
}

// WithCache overrides cache capacity and TTL. Zero entries disables caching.
func WithCache(maxEntries int, ttl time.Duration) ClientOption {
	return func(c *Client) { c.cache = newQuoteCache(maxEntries, ttl) }
}

// WithLogger overrides the default no-op logger.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a quote client for the given service URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		batchSize:  DefaultQuoteBatchSize,
		batchDelay: DefaultQuoteDelay,
		cache:      newQuoteCache(DefaultCacheEntries, DefaultCacheTTL),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type quoteEntry struct {
	Price float64 `json:"price"`
}

// Prices resolves quotes for the mints, serving cached entries first and
// fetching the rest in batches. A mint without a quote is simply absent.
func (c *Client) Prices(ctx context.Context, mints []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(mints))
	var missing []string
	seen := make(map[string]bool, len(mints))
	for _, mint := range mints {
		if mint == "" || seen[mint] {
			continue
		}
		seen[mint] = true
		if price, ok := c.cache.Get(mint); ok {
			prices[mint] = price
			continue
		}
		missing = append(missing, mint)
	}

	for start := 0; start < len(missing); start += c.batchSize {
		end := start + c.batchSize
		if end > len(missing) {
			end = len(missing)
		}
		if start > 0 {
			if err := sleep(ctx, c.batchDelay); err != nil {
				return nil, err
			}
		}
		batch, err := c.fetchBatch(ctx, missing[start:end])
		if err != nil {
			return nil, err
		}
		for mint, price := range batch {
			prices[mint] = price
			c.cache.Add(mint, price)
		}
	}

	c.logger.Debug().
		Int("requested", len(seen)).
		Int("fetched", len(missing)).
		Int("priced", len(prices)).
		Msg("quotes resolved")
	return prices, nil
}

func (c *Client) fetchBatch(ctx context.Context, mints []string) (map[string]float64, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse quote url: %w", err)
	}
	q := u.Query()
	q.Set("ids", strings.Join(mints, ","))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create quote request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read quote response: %w", err)
	}

	var entries map[string]*quoteEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parse quote response: %w", err)
	}

	prices := make(map[string]float64, len(entries))
	for mint, entry := range entries {
		if entry == nil {
			continue
		}
		prices[mint] = entry.Price
	}
	return prices, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
