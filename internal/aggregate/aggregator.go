// Package aggregate folds normalized trades into per-owner statistics and
// selects large net accumulators.
package aggregate

import (
	"github.com/rs/zerolog"

	"solana-whale-scan/internal/domain"
)

// DefaultThreshold is the minimum net token amount that qualifies an owner
// as an accumulator. It selects large net buyers, not merely active traders.
const DefaultThreshold = 2_000_000

// TraderAggregator folds trades into OwnerStats and filters by threshold.
type TraderAggregator struct {
	threshold float64
	logger    zerolog.Logger
}

// AggregatorOption configures a TraderAggregator.
type AggregatorOption func(*TraderAggregator)

// WithThreshold overrides the accumulation threshold.
func WithThreshold(t float64) AggregatorOption {
	return func(a *TraderAggregator) { a.threshold = t }
}

// WithAggregatorLogger overrides the default no-op logger.
func WithAggregatorLogger(l zerolog.Logger) AggregatorOption {
	return func(a *TraderAggregator) { a.logger = l }
}

// NewTraderAggregator creates an aggregator with the default threshold.
func NewTraderAggregator(opts ...AggregatorOption) *TraderAggregator {
	a := &TraderAggregator{
		threshold: DefaultThreshold,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate folds the trades per owner and returns the stats of owners
// whose net token amount meets the threshold. The fold is commutative, so
// trade order does not matter; output order is unspecified.
func (a *TraderAggregator) Aggregate(trades []*domain.NormalizedTrade) []*domain.OwnerStats {
	byOwner := make(map[string]*domain.OwnerStats)
	for _, t := range trades {
		if t == nil || t.Owner == "" {
			continue
		}
		stats, ok := byOwner[t.Owner]
		if !ok {
			stats = &domain.OwnerStats{Owner: t.Owner}
			byOwner[t.Owner] = stats
		}
		stats.Apply(t)
	}

	var qualified []*domain.OwnerStats
	for _, stats := range byOwner {
		if stats.NetTokenAmount >= a.threshold {
			qualified = append(qualified, stats)
		}
	}
	a.logger.Info().
		Int("owners", len(byOwner)).
		Int("qualified", len(qualified)).
		Float64("threshold", a.threshold).
		Msg("trades aggregated")
	return qualified
}
