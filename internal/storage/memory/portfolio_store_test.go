package memory

import (
	"context"
	"errors"
	"testing"

	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/storage"
)

func TestPortfolioStoreUpsertAndGet(t *testing.T) {
	store := NewPortfolioStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, &domain.OwnerPortfolio{Owner: "owner-a", CurrentAmount: 5}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.Get(ctx, "owner-a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.CurrentAmount != 5 {
		t.Errorf("CurrentAmount = %v, want 5", got.CurrentAmount)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestPortfolioStoreGetAllOrdered(t *testing.T) {
	store := NewPortfolioStore()
	ctx := context.Background()

	for _, owner := range []string{"c", "a", "b"} {
		if err := store.Upsert(ctx, &domain.OwnerPortfolio{Owner: owner}); err != nil {
			t.Fatalf("Upsert(%s) error = %v", owner, err)
		}
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].Owner != want {
			t.Errorf("all[%d].Owner = %q, want %q", i, all[i].Owner, want)
		}
	}
}

func TestPortfolioStoreReturnsCopies(t *testing.T) {
	store := NewPortfolioStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, &domain.OwnerPortfolio{Owner: "owner-a", CurrentAmount: 1}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.Get(ctx, "owner-a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got.CurrentAmount = 999

	again, err := store.Get(ctx, "owner-a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.CurrentAmount != 1 {
		t.Error("mutating a returned entry should not affect the store")
	}
}
