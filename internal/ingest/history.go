package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"solana-whale-scan/internal/solana"
)

// Defaults for history retrieval.
const (
	DefaultPageSize   = 1000
	DefaultPageDelay  = 1 * time.Second
	DefaultWindowSecs = 1800
)

// HistoryFetcher pages through the signature history of an address and
// narrows it to a recent activity window anchored at the oldest record.
type HistoryFetcher struct {
	rpc        solana.RPCClient
	pageSize   int
	pageDelay  time.Duration
	windowSecs int64
	logger     zerolog.Logger
}

// HistoryOption configures a HistoryFetcher.
type HistoryOption func(*HistoryFetcher)

// WithPageSize overrides the per-request signature limit.
func WithPageSize(n int) HistoryOption {
	return func(f *HistoryFetcher) { f.pageSize = n }
}

// WithPageDelay overrides the pause between pagination requests.
func WithPageDelay(d time.Duration) HistoryOption {
	return func(f *HistoryFetcher) { f.pageDelay = d }
}

// WithWindow overrides the activity window, in seconds.
func WithWindow(secs int64) HistoryOption {
	return func(f *HistoryFetcher) { f.windowSecs = secs }
}

// WithHistoryLogger overrides the default no-op logger.
func WithHistoryLogger(l zerolog.Logger) HistoryOption {
	return func(f *HistoryFetcher) { f.logger = l }
}

// NewHistoryFetcher creates a fetcher with production defaults.
func NewHistoryFetcher(rpc solana.RPCClient, opts ...HistoryOption) *HistoryFetcher {
	f := &HistoryFetcher{
		rpc:        rpc,
		pageSize:   DefaultPageSize,
		pageDelay:  DefaultPageDelay,
		windowSecs: DefaultWindowSecs,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchWindow retrieves the complete signature history for address, newest
// first, then keeps only successful records whose block time falls within
// the window anchored at the oldest fetched record. A rate-limit ceiling or
// any other RPC failure aborts the run.
func (f *HistoryFetcher) FetchWindow(ctx context.Context, address string) ([]solana.SignatureInfo, error) {
	all, err := f.fetchAll(ctx, address)
	if err != nil {
		return nil, err
	}
	kept := f.filterWindow(all)
	f.logger.Info().
		Int("fetched", len(all)).
		Int("in_window", len(kept)).
		Str("address", address).
		Msg("signature history fetched")
	return kept, nil
}

func (f *HistoryFetcher) fetchAll(ctx context.Context, address string) ([]solana.SignatureInfo, error) {
	var all []solana.SignatureInfo
	before := ""
	for page := 1; ; page++ {
		sigs, err := f.rpc.GetSignaturesForAddress(ctx, address, &solana.SignaturesOpts{
			Before: before,
			Limit:  f.pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("fetch signatures page %d: %w", page, err)
		}
		all = append(all, sigs...)
		f.logger.Debug().Int("page", page).Int("count", len(sigs)).Msg("signature page")
		if len(sigs) < f.pageSize {
			break
		}
		before = sigs[len(sigs)-1].Signature
		if err := sleep(ctx, f.pageDelay); err != nil {
			return nil, err
		}
	}
	return all, nil
}

// filterWindow keeps successful records with a block time inside
// [refTime, refTime+window], where refTime is the block time of the oldest
// fetched record. Records without a block time cannot be placed in the
// window and are dropped.
func (f *HistoryFetcher) filterWindow(all []solana.SignatureInfo) []solana.SignatureInfo {
	refTime := int64(0)
	found := false
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].BlockTime != nil {
			refTime = *all[i].BlockTime
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	var kept []solana.SignatureInfo
	for _, s := range all {
		if s.Err != nil || s.BlockTime == nil {
			continue
		}
		bt := *s.BlockTime
		if bt >= refTime && bt <= refTime+f.windowSecs {
			kept = append(kept, s)
		}
	}
	return kept
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
