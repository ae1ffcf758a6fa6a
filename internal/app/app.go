// Package app aggregates configuration and shared dependencies for the CLI
// commands and wires the pipeline together.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"solana-whale-scan/internal/aggregate"
	"solana-whale-scan/internal/config"
	"solana-whale-scan/internal/decode"
	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/enrich"
	"solana-whale-scan/internal/ingest"
	"solana-whale-scan/internal/orchestrator"
	"solana-whale-scan/internal/pricing"
	"solana-whale-scan/internal/solana"
	"solana-whale-scan/internal/storage"
	"solana-whale-scan/internal/storage/clickhouse"
	"solana-whale-scan/internal/storage/file"
	"solana-whale-scan/internal/storage/memory"
	"solana-whale-scan/internal/storage/migrations"
	"solana-whale-scan/internal/storage/postgres"
	"solana-whale-scan/internal/watch"
)

// App is the application handle shared by the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newRPCClient() *solana.HTTPClient {
	return solana.NewHTTPClient(a.Config.RPC.Endpoint,
		solana.WithMaxRetries(a.Config.RPC.MaxRetries),
		solana.WithRetryDelay(a.Config.RPC.RetryDelay),
		solana.WithTimeout(a.Config.RPC.Timeout),
	)
}

func (a *App) newQuoter() pricing.Quoter {
	return pricing.NewClient(a.Config.Pricing.BaseURL,
		pricing.WithQuoteBatchSize(a.Config.Pricing.BatchSize),
		pricing.WithQuoteDelay(a.Config.Pricing.BatchDelay),
		pricing.WithCache(a.Config.Pricing.CacheEntries, a.Config.Pricing.CacheTTL),
		pricing.WithLogger(a.Logger),
	)
}

func (a *App) newRegistry() *decode.Registry {
	registry := decode.NewRegistry()
	for _, venue := range domain.KnownVenues {
		registry.Register(venue, decode.NewBalanceDeltaDecoder(a.Config.Scan.Mint, venue,
			decode.WithOwnerFilter(solana.IsOnCurve)))
	}
	return registry
}

// openPortfolioStore opens the configured ledger backend. The returned
// cleanup releases backend resources and is never nil.
func (a *App) openPortfolioStore(ctx context.Context) (storage.PortfolioStore, func(), error) {
	switch a.Config.Storage.Backend {
	case "file":
		return file.NewPortfolioStore(a.Config.Storage.File.Path), func() {}, nil
	case "memory":
		return memory.NewPortfolioStore(), func() {}, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, a.Config.Storage.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return postgres.NewPortfolioStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", a.Config.Storage.Backend)
	}
}

// openArchive opens the optional clickhouse trade archive. A disabled
// archive yields a nil store.
func (a *App) openArchive(ctx context.Context) (storage.TradeArchive, func(), error) {
	if !a.Config.Storage.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	conn, err := clickhouse.NewConn(ctx, a.Config.Storage.ClickHouse.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
	}
	return clickhouse.NewTradeArchiveStore(conn), func() { conn.Close() }, nil
}

func (a *App) newEnricher(store storage.PortfolioStore, rpc solana.RPCClient) *enrich.PortfolioEnricher {
	return enrich.NewPortfolioEnricher(rpc, a.newQuoter(), store, a.Config.Scan.Mint,
		enrich.WithMinBalance(a.Config.Enrichment.MinBalance),
		enrich.WithTopHoldings(a.Config.Enrichment.TopHoldings),
		enrich.WithOwnersPerSec(a.Config.Enrichment.OwnersPerSec),
		enrich.WithEnricherLogger(a.Logger),
	)
}

// Scan runs the full pipeline: history, details, classification, decoding,
// aggregation, enrichment.
func (a *App) Scan(ctx context.Context) error {
	rpc := a.newRPCClient()

	store, closeStore, err := a.openPortfolioStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	archive, closeArchive, err := a.openArchive(ctx)
	if err != nil {
		return err
	}
	defer closeArchive()

	o := orchestrator.New(orchestrator.Options{
		History: ingest.NewHistoryFetcher(rpc,
			ingest.WithPageSize(a.Config.Scan.PageSize),
			ingest.WithPageDelay(a.Config.Scan.PageDelay),
			ingest.WithWindow(a.Config.Scan.WindowSecs),
			ingest.WithHistoryLogger(a.Logger),
		),
		Details: ingest.NewDetailFetcher(rpc,
			ingest.WithBatchSize(a.Config.Scan.BatchSize),
			ingest.WithDetailTries(a.Config.Scan.DetailTries),
			ingest.WithDetailRetryDelay(a.Config.Scan.DetailDelay),
			ingest.WithBatchDelay(a.Config.Scan.BatchDelay),
			ingest.WithDetailLogger(a.Logger),
		),
		Registry: a.newRegistry(),
		Agg: aggregate.NewTraderAggregator(
			aggregate.WithThreshold(a.Config.Scan.Threshold),
			aggregate.WithAggregatorLogger(a.Logger),
		),
		Enricher:    a.newEnricher(store, rpc),
		Artifacts:   file.NewArtifactStore(a.Config.Scan.ArtifactsDir),
		Archive:     archive,
		TrackedMint: a.Config.Scan.Mint,
		Logger:      a.Logger,
	})

	result, err := o.Run(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info().
		Int("signatures", result.SignaturesInWindow).
		Int("trades", result.TradesDecoded).
		Int("enriched", result.OwnersEnriched).
		Msg("scan complete")
	return nil
}

// Enrich re-runs aggregation and enrichment from the persisted aggregated
// dump, without re-ingesting history.
func (a *App) Enrich(ctx context.Context) error {
	artifacts := file.NewArtifactStore(a.Config.Scan.ArtifactsDir)
	trades, err := artifacts.ReadAggregated(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no aggregated dump in %s, run a scan first", a.Config.Scan.ArtifactsDir)
		}
		return err
	}

	store, closeStore, err := a.openPortfolioStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	agg := aggregate.NewTraderAggregator(
		aggregate.WithThreshold(a.Config.Scan.Threshold),
		aggregate.WithAggregatorLogger(a.Logger),
	)
	qualified := agg.Aggregate(trades)

	rpc := a.newRPCClient()
	res, err := a.newEnricher(store, rpc).Run(ctx, qualified)
	if err != nil {
		return err
	}
	a.Logger.Info().
		Int("qualified", len(qualified)).
		Int("enriched", res.Enriched).
		Int("skipped", res.Skipped).
		Msg("enrichment complete")
	return nil
}

// Watch streams live venue activity for the tracked mint until ctx is
// cancelled.
func (a *App) Watch(ctx context.Context) error {
	endpoint := a.Config.RPC.WSEndpoint
	if endpoint == "" {
		return fmt.Errorf("rpc.ws_endpoint must be configured for watch")
	}

	ws, err := solana.NewWSClient(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("connect websocket: %w", err)
	}
	defer ws.Close()

	watcher := watch.New(ws, a.Config.Scan.Mint, a.Logger)
	events, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	for range events {
		// Events are logged by the watcher; drain until shutdown.
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
