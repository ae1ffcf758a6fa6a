package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"solana-whale-scan/internal/aggregate"
	"solana-whale-scan/internal/decode"
	decodestub "solana-whale-scan/internal/decode/stub"
	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/enrich"
	"solana-whale-scan/internal/ingest"
	"solana-whale-scan/internal/pricing"
	"solana-whale-scan/internal/solana"
	solanastub "solana-whale-scan/internal/solana/stub"
	"solana-whale-scan/internal/storage/file"
	"solana-whale-scan/internal/storage/memory"
)

const (
	trackedMint = "MintAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	ownerX      = "OwnerXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"
)

type fixedQuoter struct{}

func (fixedQuoter) Prices(_ context.Context, mints []string) (map[string]float64, error) {
	return map[string]float64{}, nil
}

var _ pricing.Quoter = fixedQuoter{}

func detailWithLogs(sig string, bt int64, logs ...string) *solana.TransactionDetail {
	return &solana.TransactionDetail{
		Signature: sig,
		BlockTime: &bt,
		Meta:      &solana.TransactionMeta{LogMessages: logs},
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	rpc := solanastub.NewRPCClient()
	bt := int64(1000)
	for _, sig := range []string{"jup-buy", "ray-sell", "other"} {
		rpc.Signatures[trackedMint] = append(rpc.Signatures[trackedMint], solana.SignatureInfo{
			Signature: sig,
			BlockTime: &bt,
		})
	}
	rpc.Transactions["jup-buy"] = detailWithLogs("jup-buy", bt,
		"Program "+ingest.JupiterV6+" invoke [1]")
	rpc.Transactions["ray-sell"] = detailWithLogs("ray-sell", bt,
		"Program "+ingest.RaydiumAMMV4+" invoke [1]")
	rpc.Transactions["other"] = detailWithLogs("other", bt,
		"Program 11111111111111111111111111111111 invoke [1]")
	rpc.TokenAccounts[ownerX] = []solana.TokenAccount{
		{Mint: trackedMint, Owner: ownerX, Amount: 2_500_000},
	}
	rpc.Balances[ownerX] = 5

	jupDecoder := decodestub.NewDecoder()
	jupDecoder.Add("jup-buy", &domain.NormalizedTrade{
		Owner: ownerX, Action: domain.ActionBuy, OutputAmount: 3_000_000,
		Venue: domain.VenueJupiter, Signature: "jup-buy",
	})
	rayDecoder := decodestub.NewDecoder()
	rayDecoder.Add("ray-sell", &domain.NormalizedTrade{
		Owner: ownerX, Action: domain.ActionSell, InputAmount: 500_000,
		Venue: domain.VenueRaydium, Signature: "ray-sell",
	})
	registry := decode.NewRegistry()
	registry.Register(domain.VenueJupiter, jupDecoder)
	registry.Register(domain.VenueRaydium, rayDecoder)

	store := memory.NewPortfolioStore()
	dir := t.TempDir()
	artifacts := file.NewArtifactStore(dir)

	o := New(Options{
		History:  ingest.NewHistoryFetcher(rpc, ingest.WithPageDelay(0)),
		Details:  ingest.NewDetailFetcher(rpc, ingest.WithBatchDelay(0), ingest.WithDetailRetryDelay(0)),
		Registry: registry,
		Agg:      aggregate.NewTraderAggregator(),
		Enricher: enrich.NewPortfolioEnricher(rpc, fixedQuoter{}, store, trackedMint,
			enrich.WithOwnersPerSec(0)),
		Artifacts:   artifacts,
		TrackedMint: trackedMint,
	})

	result, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.SignaturesInWindow != 3 {
		t.Errorf("signatures = %d, want 3", result.SignaturesInWindow)
	}
	if result.DetailsResolved != 3 || result.DetailsSkipped != 0 {
		t.Errorf("details = %d/%d, want 3/0", result.DetailsResolved, result.DetailsSkipped)
	}
	if result.TradesDecoded != 2 {
		t.Errorf("trades = %d, want 2", result.TradesDecoded)
	}
	if result.OwnersQualified != 1 {
		t.Errorf("qualified = %d, want 1", result.OwnersQualified)
	}
	if result.OwnersEnriched != 1 || result.OwnersSkipped != 0 {
		t.Errorf("enriched/skipped = %d/%d, want 1/0", result.OwnersEnriched, result.OwnersSkipped)
	}

	// Net 2.5M passes the threshold, so owner X is enriched exactly once.
	entry, err := store.Get(context.Background(), ownerX)
	if err != nil {
		t.Fatalf("Get(ownerX) error = %v", err)
	}
	if entry.CurrentAmount != 2_500_000 {
		t.Errorf("CurrentAmount = %v, want 2500000", entry.CurrentAmount)
	}
	if entry.Stats == nil || entry.Stats.NetTokenAmount != 2_500_000 {
		t.Errorf("stats net = %+v, want 2500000", entry.Stats)
	}

	// Artifacts: per-venue raw dumps, the unknown dump, per-venue
	// normalized dumps, and the aggregated dump.
	for _, name := range []string{
		"jupiter_raw.json",
		"raydium_raw.json",
		"unknown_transactions.json",
		"jupiter_processed.json",
		"raydium_processed.json",
		"aggregated_trades.json",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("artifact %s missing: %v", name, err)
		}
	}

	aggregated, err := artifacts.ReadAggregated(context.Background())
	if err != nil {
		t.Fatalf("ReadAggregated() error = %v", err)
	}
	if len(aggregated) != 2 {
		t.Errorf("aggregated dump has %d trades, want 2", len(aggregated))
	}
}

func TestPipelineEmptyWindow(t *testing.T) {
	rpc := solanastub.NewRPCClient()
	store := memory.NewPortfolioStore()

	o := New(Options{
		History:  ingest.NewHistoryFetcher(rpc, ingest.WithPageDelay(0)),
		Details:  ingest.NewDetailFetcher(rpc, ingest.WithBatchDelay(0), ingest.WithDetailRetryDelay(0)),
		Registry: decode.NewRegistry(),
		Agg:      aggregate.NewTraderAggregator(),
		Enricher: enrich.NewPortfolioEnricher(rpc, fixedQuoter{}, store, trackedMint,
			enrich.WithOwnersPerSec(0)),
		Artifacts:   file.NewArtifactStore(t.TempDir()),
		TrackedMint: trackedMint,
	})

	result, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.SignaturesInWindow != 0 || result.TradesDecoded != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestPipelineHistoryFailureFatal(t *testing.T) {
	rpc := solanastub.NewRPCClient()
	// The stub cannot fail pagination, so exercise the fatal path through a
	// cancelled context instead.
	bt := int64(1000)
	for _, sig := range []string{"sig-0", "sig-1"} {
		rpc.Signatures[trackedMint] = append(rpc.Signatures[trackedMint], solana.SignatureInfo{
			Signature: sig, BlockTime: &bt,
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := New(Options{
		History:     ingest.NewHistoryFetcher(rpc, ingest.WithPageSize(1)),
		Details:     ingest.NewDetailFetcher(rpc),
		Registry:    decode.NewRegistry(),
		Agg:         aggregate.NewTraderAggregator(),
		Enricher:    enrich.NewPortfolioEnricher(rpc, fixedQuoter{}, memory.NewPortfolioStore(), trackedMint),
		Artifacts:   file.NewArtifactStore(t.TempDir()),
		TrackedMint: trackedMint,
	})

	if _, err := o.Run(ctx); err == nil {
		t.Fatal("expected run to fail when pagination cannot proceed")
	}
}
