// Package enrich turns qualifying owners into persisted portfolio entries:
// it fetches live holdings and balances, merges them into the ledger,
// backfills market prices, and reconciles derived totals.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/pricing"
	"solana-whale-scan/internal/solana"
	"solana-whale-scan/internal/storage"
)

// Defaults for enrichment.
const (
	DefaultMinBalance   = 20_000
	DefaultTopHoldings  = 20
	DefaultOwnersPerSec = 30
)

// PortfolioEnricher runs the per-owner Fetching → Filtering → Merging
// sequence, then a store-wide price backfill and reconciliation.
type PortfolioEnricher struct {
	rpc         solana.RPCClient
	quoter      pricing.Quoter
	store       storage.PortfolioStore
	trackedMint string
	minBalance  float64
	topHoldings int
	ownerDelay  time.Duration
	logger      zerolog.Logger
}

// EnricherOption configures a PortfolioEnricher.
type EnricherOption func(*PortfolioEnricher)

// WithMinBalance overrides the holding retention floor.
func WithMinBalance(v float64) EnricherOption {
	return func(e *PortfolioEnricher) { e.minBalance = v }
}

// WithTopHoldings overrides the retained-holdings cap.
func WithTopHoldings(n int) EnricherOption {
	return func(e *PortfolioEnricher) { e.topHoldings = n }
}

// WithOwnersPerSec overrides the per-owner fetch rate ceiling.
func WithOwnersPerSec(n int) EnricherOption {
	return func(e *PortfolioEnricher) {
		if n > 0 {
			e.ownerDelay = time.Second / time.Duration(n)
		} else {
			e.ownerDelay = 0
		}
	}
}

// WithEnricherLogger overrides the default no-op logger.
func WithEnricherLogger(l zerolog.Logger) EnricherOption {
	return func(e *PortfolioEnricher) { e.logger = l }
}

// NewPortfolioEnricher creates an enricher with production defaults.
func NewPortfolioEnricher(rpc solana.RPCClient, quoter pricing.Quoter, store storage.PortfolioStore, trackedMint string, opts ...EnricherOption) *PortfolioEnricher {
	e := &PortfolioEnricher{
		rpc:         rpc,
		quoter:      quoter,
		store:       store,
		trackedMint: trackedMint,
		minBalance:  DefaultMinBalance,
		topHoldings: DefaultTopHoldings,
		ownerDelay:  time.Second / DefaultOwnersPerSec,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result reports what one enrichment run did.
type Result struct {
	Enriched int
	Skipped  int
}

// Run enriches every owner in stats order, then backfills prices and
// reconciles totals across the whole store. Per-owner failures are logged
// and skipped; only store access and the backfill itself are fatal.
func (e *PortfolioEnricher) Run(ctx context.Context, stats []*domain.OwnerStats) (*Result, error) {
	res := &Result{}
	for i, s := range stats {
		if i > 0 {
			if err := sleep(ctx, e.ownerDelay); err != nil {
				return nil, err
			}
		}
		if err := e.enrichOwner(ctx, s); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			res.Skipped++
			e.logger.Warn().Err(err).Str("owner", s.Owner).Msg("owner enrichment skipped")
			continue
		}
		res.Enriched++
	}

	if err := e.BackfillPrices(ctx); err != nil {
		return nil, err
	}
	if err := e.Reconcile(ctx); err != nil {
		return nil, err
	}

	e.logger.Info().
		Int("enriched", res.Enriched).
		Int("skipped", res.Skipped).
		Msg("enrichment run complete")
	return res, nil
}

// enrichOwner runs Fetching → Filtering → Merging for one owner.
func (e *PortfolioEnricher) enrichOwner(ctx context.Context, stats *domain.OwnerStats) error {
	accounts, err := e.rpc.GetTokenAccountsByOwner(ctx, stats.Owner)
	if err != nil {
		return fmt.Errorf("fetch token accounts: %w", err)
	}
	solBalance, err := e.rpc.GetBalance(ctx, stats.Owner)
	if err != nil {
		return fmt.Errorf("fetch native balance: %w", err)
	}

	holdings, mintAmount := e.filterHoldings(stats.Owner, accounts)
	return e.merge(ctx, stats, holdings, mintAmount, solBalance)
}

// filterHoldings keeps mandatory-mint accounts unconditionally and other
// accounts at or above the balance floor, sorted descending and capped.
// It also returns the owner's mandatory-mint total: every mandatory account
// (stables, wrapped SOL, tracked mint) feeds the amount that accumulates
// into CurrentAmount.
func (e *PortfolioEnricher) filterHoldings(owner string, accounts []solana.TokenAccount) ([]*domain.TokenHolding, float64) {
	mandatory := domain.MandatoryMints(e.trackedMint)
	mintAmount := 0.0
	var holdings []*domain.TokenHolding
	for _, acc := range accounts {
		if mandatory[acc.Mint] {
			mintAmount += acc.Amount
		}
		if !mandatory[acc.Mint] && acc.Amount < e.minBalance {
			continue
		}
		holdings = append(holdings, &domain.TokenHolding{
			Mint:   acc.Mint,
			Owner:  owner,
			Amount: acc.Amount,
		})
	}

	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Amount > holdings[j].Amount
	})
	if len(holdings) > e.topHoldings {
		holdings = holdings[:e.topHoldings]
	}
	return holdings, mintAmount
}

// merge writes the owner's refreshed entry: holdings and balances are
// replaced wholesale, CurrentAmount accumulates across runs.
func (e *PortfolioEnricher) merge(ctx context.Context, stats *domain.OwnerStats, holdings []*domain.TokenHolding, mintAmount, solBalance float64) error {
	entry, err := e.store.Get(ctx, stats.Owner)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("load ledger entry: %w", err)
		}
		entry = &domain.OwnerPortfolio{Owner: stats.Owner}
	}

	// Lifetime accumulation: each run adds the freshly observed
	// mandatory-mint total instead of replacing it.
	entry.CurrentAmount += mintAmount
	entry.SOLBalance = solBalance
	entry.Accounts = holdings
	entry.Stats = stats

	// Balances are derived before the wrapped-SOL synthesis so the native
	// balance is not counted into TotalSOLBalance twice.
	entry.RecomputeBalances()
	entry.RecomputeTotalSPL(domain.MandatoryMints(e.trackedMint))
	e.ensureWrappedSOL(entry)

	if err := e.store.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("persist ledger entry: %w", err)
	}
	return nil
}

// ensureWrappedSOL synthesizes a wrapped-SOL holding carrying the native
// balance when the owner has none on chain, so the backfill values the
// owner's SOL alongside the SPL holdings.
func (e *PortfolioEnricher) ensureWrappedSOL(entry *domain.OwnerPortfolio) {
	for _, h := range entry.Accounts {
		if h.Mint == domain.WSOLMint {
			return
		}
	}
	entry.Accounts = append(entry.Accounts, &domain.TokenHolding{
		Mint:   domain.WSOLMint,
		Owner:  entry.Owner,
		Amount: entry.SOLBalance,
	})
}

// BackfillPrices collects the distinct mints across all persisted entries,
// resolves their quotes, and recomputes TotalPrice on every holding. A mint
// without a quote has its price cleared, keeping only the last computed
// TotalPrice.
func (e *PortfolioEnricher) BackfillPrices(ctx context.Context) error {
	entries, err := e.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	mintSet := make(map[string]bool)
	for _, entry := range entries {
		for _, h := range entry.Accounts {
			mintSet[h.Mint] = true
		}
	}
	mints := make([]string, 0, len(mintSet))
	for mint := range mintSet {
		mints = append(mints, mint)
	}
	sort.Strings(mints)

	prices, err := e.quoter.Prices(ctx, mints)
	if err != nil {
		return fmt.Errorf("fetch quotes: %w", err)
	}

	for _, entry := range entries {
		for _, h := range entry.Accounts {
			if price, ok := prices[h.Mint]; ok {
				p := price
				h.Price = &p
			} else {
				h.Price = nil
			}
			h.RecomputeTotal()
		}
	}
	if err := e.store.UpsertBulk(ctx, entries); err != nil {
		return fmt.Errorf("persist backfilled ledger: %w", err)
	}

	e.logger.Info().
		Int("mints", len(mints)).
		Int("priced", len(prices)).
		Int("owners", len(entries)).
		Msg("price backfill complete")
	return nil
}

// Reconcile recomputes every entry's TotalSPL from its priced holdings,
// guarding against drift from runs interrupted between merge and backfill.
func (e *PortfolioEnricher) Reconcile(ctx context.Context) error {
	entries, err := e.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	mandatory := domain.MandatoryMints(e.trackedMint)
	for _, entry := range entries {
		entry.RecomputeTotalSPL(mandatory)
	}
	if err := e.store.UpsertBulk(ctx, entries); err != nil {
		return fmt.Errorf("persist reconciled ledger: %w", err)
	}
	return nil
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
