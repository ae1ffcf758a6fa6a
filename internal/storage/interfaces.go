package storage

import (
	"context"

	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/solana"
)

// PortfolioStore persists the per-owner enriched ledger.
//
// Every owner appears at most once. Merge semantics live in the enricher;
// the store only loads and upserts entries. Backends that persist the whole
// mapping in one document are single-writer: concurrent writers silently
// discard each other's changes.
type PortfolioStore interface {
	// Get retrieves one owner's entry. Returns ErrNotFound if absent.
	Get(ctx context.Context, owner string) (*domain.OwnerPortfolio, error)

	// GetAll retrieves every persisted entry.
	GetAll(ctx context.Context) ([]*domain.OwnerPortfolio, error)

	// Upsert inserts or replaces one owner's entry.
	Upsert(ctx context.Context, p *domain.OwnerPortfolio) error

	// UpsertBulk inserts or replaces multiple entries.
	UpsertBulk(ctx context.Context, entries []*domain.OwnerPortfolio) error
}

// ArtifactStore persists the intermediate pipeline artifacts: raw
// transactions by venue, per-venue normalized trades, and the aggregated
// trade dump. All writes are full-document overwrites.
type ArtifactStore interface {
	// WriteRawVenue persists the raw transactions classified to a venue
	// (including Unknown).
	WriteRawVenue(ctx context.Context, venue domain.Venue, details []*solana.TransactionDetail) error

	// WriteNormalized persists one venue's decoded trades.
	WriteNormalized(ctx context.Context, venue domain.Venue, trades []*domain.NormalizedTrade) error

	// WriteAggregated persists the combined normalized trades of all venues.
	WriteAggregated(ctx context.Context, trades []*domain.NormalizedTrade) error

	// ReadAggregated loads a previously written aggregated dump.
	// Returns ErrNotFound if no dump exists.
	ReadAggregated(ctx context.Context) ([]*domain.NormalizedTrade, error)
}

// TradeArchive records normalized trades for later analytics.
type TradeArchive interface {
	// InsertTrades appends a batch of normalized trades.
	InsertTrades(ctx context.Context, trades []*domain.NormalizedTrade) error
}
