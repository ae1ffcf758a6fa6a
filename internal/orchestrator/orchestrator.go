// Package orchestrator provides E2E pipeline orchestration.
// It coordinates: history → details → classification → decoding →
// aggregation → enrichment, persisting intermediate artifacts between
// stages.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"solana-whale-scan/internal/aggregate"
	"solana-whale-scan/internal/decode"
	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/enrich"
	"solana-whale-scan/internal/ingest"
	"solana-whale-scan/internal/solana"
	"solana-whale-scan/internal/storage"
)

// Orchestrator coordinates the full scan pipeline. Each stage completes
// and persists its artifact before the next begins, so an interrupted run
// leaves inspectable intermediate state.
type Orchestrator struct {
	history   *ingest.HistoryFetcher
	details   *ingest.DetailFetcher
	registry  *decode.Registry
	agg       *aggregate.TraderAggregator
	enricher  *enrich.PortfolioEnricher
	artifacts storage.ArtifactStore
	archive   storage.TradeArchive

	trackedMint string
	logger      zerolog.Logger
}

// Options for creating an Orchestrator.
type Options struct {
	// Required stages
	History  *ingest.HistoryFetcher
	Details  *ingest.DetailFetcher
	Registry *decode.Registry
	Agg      *aggregate.TraderAggregator
	Enricher *enrich.PortfolioEnricher

	// Required stores
	Artifacts storage.ArtifactStore

	// Optional trade archive; archive failures are logged, not fatal.
	Archive storage.TradeArchive

	TrackedMint string
	Logger      zerolog.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		history:     opts.History,
		details:     opts.Details,
		registry:    opts.Registry,
		agg:         opts.Agg,
		enricher:    opts.Enricher,
		artifacts:   opts.Artifacts,
		archive:     opts.Archive,
		trackedMint: opts.TrackedMint,
		logger:      opts.Logger,
	}
}

// RunResult contains processed and skipped counts per stage. Skipped units
// are tolerated mid-pipeline but always reported, never silently folded
// into the processed counts.
type RunResult struct {
	SignaturesInWindow int
	DetailsResolved    int
	DetailsSkipped     int
	TradesDecoded      int
	OwnersQualified    int
	OwnersEnriched     int
	OwnersSkipped      int
}

// Run executes the full pipeline.
// Phases:
//  1. Fetch the signature history window
//  2. Resolve transaction details (partial-failure tolerant)
//  3. Classify by venue and persist raw dumps
//  4. Decode per venue, persist normalized and aggregated dumps
//  5. Fold trades into owner stats, filter by threshold
//  6. Enrich qualifying owners (holdings, prices, reconciliation)
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	o.logger.Info().Str("mint", o.trackedMint).Msg("phase 1: fetching signature history")
	sigs, err := o.history.FetchWindow(ctx, o.trackedMint)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (history) failed: %w", err)
	}
	result.SignaturesInWindow = len(sigs)
	if len(sigs) == 0 {
		o.logger.Info().Msg("no signatures in window, nothing to do")
		return result, nil
	}

	o.logger.Info().Int("signatures", len(sigs)).Msg("phase 2: resolving transaction details")
	detailsBySig, err := o.details.Resolve(ctx, sigs)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (details) failed: %w", err)
	}
	result.DetailsResolved = len(detailsBySig)
	result.DetailsSkipped = len(sigs) - len(detailsBySig)

	o.logger.Info().
		Int("resolved", result.DetailsResolved).
		Int("skipped", result.DetailsSkipped).
		Msg("phase 3: classifying venues")
	byVenue := o.classify(sigs, detailsBySig)
	for venue, details := range byVenue {
		if err := o.artifacts.WriteRawVenue(ctx, venue, details); err != nil {
			return nil, fmt.Errorf("phase 3 (raw %s dump) failed: %w", venue, err)
		}
	}

	o.logger.Info().Msg("phase 4: decoding trades")
	allTrades, err := o.decodeVenues(ctx, byVenue)
	if err != nil {
		return nil, err
	}
	result.TradesDecoded = len(allTrades)
	if err := o.artifacts.WriteAggregated(ctx, allTrades); err != nil {
		return nil, fmt.Errorf("phase 4 (aggregated dump) failed: %w", err)
	}
	o.archiveTrades(ctx, allTrades)

	o.logger.Info().Int("trades", len(allTrades)).Msg("phase 5: aggregating owners")
	qualified := o.agg.Aggregate(allTrades)
	result.OwnersQualified = len(qualified)

	o.logger.Info().Int("owners", len(qualified)).Msg("phase 6: enriching portfolios")
	enrichRes, err := o.enricher.Run(ctx, qualified)
	if err != nil {
		return nil, fmt.Errorf("phase 6 (enrichment) failed: %w", err)
	}
	result.OwnersEnriched = enrichRes.Enriched
	result.OwnersSkipped = enrichRes.Skipped

	o.logger.Info().
		Int("signatures", result.SignaturesInWindow).
		Int("trades", result.TradesDecoded).
		Int("qualified", result.OwnersQualified).
		Int("enriched", result.OwnersEnriched).
		Int("skipped_details", result.DetailsSkipped).
		Int("skipped_owners", result.OwnersSkipped).
		Msg("pipeline completed")
	return result, nil
}

// classify groups resolved details by venue, preserving the signatures'
// newest-first order within each venue.
func (o *Orchestrator) classify(sigs []solana.SignatureInfo, detailsBySig map[string]*solana.TransactionDetail) map[domain.Venue][]*solana.TransactionDetail {
	byVenue := make(map[domain.Venue][]*solana.TransactionDetail)
	for _, sig := range sigs {
		detail, ok := detailsBySig[sig.Signature]
		if !ok {
			continue
		}
		venue := ingest.Classify(detail.LogMessages())
		byVenue[venue] = append(byVenue[venue], detail)
	}
	return byVenue
}

// decodeVenues runs each classified venue through its decoder and persists
// the per-venue normalized dumps. Unknown transactions are dumped raw only.
func (o *Orchestrator) decodeVenues(ctx context.Context, byVenue map[domain.Venue][]*solana.TransactionDetail) ([]*domain.NormalizedTrade, error) {
	var all []*domain.NormalizedTrade
	for _, venue := range domain.KnownVenues {
		details := byVenue[venue]
		if len(details) == 0 {
			continue
		}
		trades := o.registry.Decode(venue, details)
		if err := o.artifacts.WriteNormalized(ctx, venue, trades); err != nil {
			return nil, fmt.Errorf("phase 4 (normalized %s dump) failed: %w", venue, err)
		}
		o.logger.Debug().
			Str("venue", string(venue)).
			Int("transactions", len(details)).
			Int("trades", len(trades)).
			Msg("venue decoded")
		all = append(all, trades...)
	}
	return all, nil
}

// archiveTrades records the run's trades in the analytics archive when one
// is configured. Archive failure never fails the run.
func (o *Orchestrator) archiveTrades(ctx context.Context, trades []*domain.NormalizedTrade) {
	if o.archive == nil || len(trades) == 0 {
		return
	}
	if err := o.archive.InsertTrades(ctx, trades); err != nil {
		o.logger.Warn().Err(err).Msg("trade archive insert failed, continuing")
	}
}
