package aggregate

import (
	"testing"

	"solana-whale-scan/internal/domain"
)

func TestAggregateFold(t *testing.T) {
	trades := []*domain.NormalizedTrade{
		{Owner: "A", Action: domain.ActionBuy, OutputAmount: 100},
		{Owner: "A", Action: domain.ActionSell, InputAmount: 30},
	}

	a := NewTraderAggregator(WithThreshold(0))
	got := a.Aggregate(trades)
	if len(got) != 1 {
		t.Fatalf("got %d owners, want 1", len(got))
	}
	stats := got[0]
	if stats.NetTokenAmount != 70 {
		t.Errorf("netTokenAmount = %v, want 70", stats.NetTokenAmount)
	}
	if stats.TotalBuys != 1 || stats.TotalSells != 1 {
		t.Errorf("buys/sells = %d/%d, want 1/1", stats.TotalBuys, stats.TotalSells)
	}
	if stats.TotalBuyAmount != 100 || stats.TotalSellAmount != 30 {
		t.Errorf("buy/sell amounts = %v/%v, want 100/30", stats.TotalBuyAmount, stats.TotalSellAmount)
	}
}

func TestAggregateThreshold(t *testing.T) {
	trades := []*domain.NormalizedTrade{
		{Owner: "whale", Action: domain.ActionBuy, OutputAmount: 3_000_000},
		{Owner: "whale", Action: domain.ActionSell, InputAmount: 500_000},
		{Owner: "minnow", Action: domain.ActionBuy, OutputAmount: 1_999_999},
	}

	a := NewTraderAggregator()
	got := a.Aggregate(trades)
	if len(got) != 1 {
		t.Fatalf("got %d owners, want 1", len(got))
	}
	if got[0].Owner != "whale" {
		t.Errorf("owner = %q, want whale", got[0].Owner)
	}
	if got[0].NetTokenAmount != 2_500_000 {
		t.Errorf("netTokenAmount = %v, want 2500000", got[0].NetTokenAmount)
	}
}

func TestAggregateExactThresholdQualifies(t *testing.T) {
	trades := []*domain.NormalizedTrade{
		{Owner: "edge", Action: domain.ActionBuy, OutputAmount: DefaultThreshold},
	}

	got := NewTraderAggregator().Aggregate(trades)
	if len(got) != 1 {
		t.Fatalf("got %d owners, want 1", len(got))
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	forward := []*domain.NormalizedTrade{
		{Owner: "A", Action: domain.ActionBuy, OutputAmount: 10},
		{Owner: "A", Action: domain.ActionSell, InputAmount: 4},
		{Owner: "A", Action: domain.ActionBuy, OutputAmount: 6},
	}
	reversed := []*domain.NormalizedTrade{forward[2], forward[1], forward[0]}

	a := NewTraderAggregator(WithThreshold(0))
	f := a.Aggregate(forward)
	r := a.Aggregate(reversed)
	if len(f) != 1 || len(r) != 1 {
		t.Fatalf("got %d/%d owners, want 1/1", len(f), len(r))
	}
	if f[0].NetTokenAmount != r[0].NetTokenAmount {
		t.Errorf("net differs by order: %v vs %v", f[0].NetTokenAmount, r[0].NetTokenAmount)
	}
}
