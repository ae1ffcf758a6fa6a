package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solana-whale-scan/internal/solana"
)

// Defaults for detail resolution.
const (
	DefaultBatchSize   = 45
	DefaultDetailTries = 3
	DefaultDetailDelay = 1 * time.Second
	DefaultBatchDelay  = 1 * time.Second
)

// DetailFetcher resolves full transaction details for a set of signatures in
// concurrent fixed-size batches. Individual failures are tolerated: a
// signature whose detail cannot be fetched is simply absent from the result.
type DetailFetcher struct {
	rpc        solana.RPCClient
	batchSize  int
	tries      int
	retryDelay time.Duration
	batchDelay time.Duration
	logger     zerolog.Logger
}

// DetailOption configures a DetailFetcher.
type DetailOption func(*DetailFetcher)

// WithBatchSize overrides the concurrent batch width.
func WithBatchSize(n int) DetailOption {
	return func(f *DetailFetcher) { f.batchSize = n }
}

// WithDetailTries overrides the per-signature attempt count.
func WithDetailTries(n int) DetailOption {
	return func(f *DetailFetcher) { f.tries = n }
}

// WithDetailRetryDelay overrides the fixed pause between attempts.
func WithDetailRetryDelay(d time.Duration) DetailOption {
	return func(f *DetailFetcher) { f.retryDelay = d }
}

// WithBatchDelay overrides the pause between batches.
func WithBatchDelay(d time.Duration) DetailOption {
	return func(f *DetailFetcher) { f.batchDelay = d }
}

// WithDetailLogger overrides the default no-op logger.
func WithDetailLogger(l zerolog.Logger) DetailOption {
	return func(f *DetailFetcher) { f.logger = l }
}

// NewDetailFetcher creates a fetcher with production defaults.
func NewDetailFetcher(rpc solana.RPCClient, opts ...DetailOption) *DetailFetcher {
	f := &DetailFetcher{
		rpc:        rpc,
		batchSize:  DefaultBatchSize,
		tries:      DefaultDetailTries,
		retryDelay: DefaultDetailDelay,
		batchDelay: DefaultBatchDelay,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Resolve fetches details for every signature, keyed by signature. Signatures
// that fail all attempts, or that the node no longer has, are left out of the
// map; the caller decides how to account for the shortfall.
func (f *DetailFetcher) Resolve(ctx context.Context, sigs []solana.SignatureInfo) (map[string]*solana.TransactionDetail, error) {
	details := make(map[string]*solana.TransactionDetail, len(sigs))
	var mu sync.Mutex

	for start := 0; start < len(sigs); start += f.batchSize {
		end := start + f.batchSize
		if end > len(sigs) {
			end = len(sigs)
		}
		batch := sigs[start:end]

		var wg sync.WaitGroup
		for _, sig := range batch {
			wg.Add(1)
			go func(sig solana.SignatureInfo) {
				defer wg.Done()
				detail := f.fetchOne(ctx, sig.Signature)
				if detail == nil {
					return
				}
				mu.Lock()
				details[sig.Signature] = detail
				mu.Unlock()
			}(sig)
		}
		wg.Wait()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f.logger.Debug().
			Int("batch_start", start).
			Int("batch_len", len(batch)).
			Int("resolved", len(details)).
			Msg("detail batch done")
		if end < len(sigs) {
			if err := sleep(ctx, f.batchDelay); err != nil {
				return nil, err
			}
		}
	}
	return details, nil
}

// fetchOne attempts a single signature up to the configured number of tries
// with a fixed pause between attempts. It returns nil when every attempt
// failed or the transaction was not found.
func (f *DetailFetcher) fetchOne(ctx context.Context, signature string) *solana.TransactionDetail {
	var lastErr error
	for attempt := 1; attempt <= f.tries; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, f.retryDelay); err != nil {
				return nil
			}
		}
		detail, err := f.rpc.GetTransaction(ctx, signature)
		if err == nil {
			return detail
		}
		lastErr = err
	}
	f.logger.Warn().
		Err(lastErr).
		Str("signature", signature).
		Int("attempts", f.tries).
		Msg("transaction detail unavailable, skipping")
	return nil
}
