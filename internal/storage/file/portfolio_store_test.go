package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/storage"
)

func newTestStore(t *testing.T) *PortfolioStore {
	t.Helper()
	return NewPortfolioStore(filepath.Join(t.TempDir(), "portfolios.json"))
}

func TestPortfolioStoreUpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := &domain.OwnerPortfolio{
		Owner:         "owner-a",
		CurrentAmount: 1000,
		SOLBalance:    2.5,
		Accounts: []*domain.TokenHolding{
			{Mint: "MintA", Owner: "owner-a", Amount: 50},
		},
	}
	if err := store.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.Get(ctx, "owner-a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.CurrentAmount != 1000 || got.SOLBalance != 2.5 {
		t.Errorf("got %+v, want persisted values", got)
	}
	if len(got.Accounts) != 1 || got.Accounts[0].Mint != "MintA" {
		t.Errorf("accounts = %+v, want MintA holding", got.Accounts)
	}
}

func TestPortfolioStoreGetNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestPortfolioStoreOwnerAppearsOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		err := store.Upsert(ctx, &domain.OwnerPortfolio{
			Owner:         "owner-a",
			CurrentAmount: float64(i * 100),
		})
		if err != nil {
			t.Fatalf("Upsert() #%d error = %v", i, err)
		}
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d entries, want 1", len(all))
	}
	if all[0].CurrentAmount != 300 {
		t.Errorf("CurrentAmount = %v, want 300 (latest write)", all[0].CurrentAmount)
	}
}

func TestPortfolioStoreDocumentFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolios.json")
	store := NewPortfolioStore(path)
	ctx := context.Background()

	// Inserted out of order; the document is sorted by owner.
	for _, owner := range []string{"owner-c", "owner-a", "owner-b"} {
		if err := store.Upsert(ctx, &domain.OwnerPortfolio{Owner: owner}); err != nil {
			t.Fatalf("Upsert(%s) error = %v", owner, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if !strings.HasPrefix(string(data), "[\n  {") {
		t.Error("document should be a pretty-printed array")
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("document should end with a newline")
	}

	var entries []*domain.OwnerPortfolio
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("parse document: %v", err)
	}
	for i, want := range []string{"owner-a", "owner-b", "owner-c"} {
		if entries[i].Owner != want {
			t.Errorf("entries[%d].Owner = %q, want %q", i, entries[i].Owner, want)
		}
	}
}

func TestPortfolioStoreUpsertBulk(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, &domain.OwnerPortfolio{Owner: "owner-a", CurrentAmount: 1}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	err := store.UpsertBulk(ctx, []*domain.OwnerPortfolio{
		{Owner: "owner-a", CurrentAmount: 10},
		{Owner: "owner-b", CurrentAmount: 20},
	})
	if err != nil {
		t.Fatalf("UpsertBulk() error = %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d entries, want 2", len(all))
	}
	if all[0].CurrentAmount != 10 || all[1].CurrentAmount != 20 {
		t.Errorf("amounts = %v/%v, want 10/20", all[0].CurrentAmount, all[1].CurrentAmount)
	}
}

func TestPortfolioStoreInvalidInput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Upsert(nil) error = %v, want ErrInvalidInput", err)
	}
	if err := store.Upsert(ctx, &domain.OwnerPortfolio{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Upsert(empty owner) error = %v, want ErrInvalidInput", err)
	}
	if _, err := store.Get(ctx, ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Get(empty) error = %v, want ErrInvalidInput", err)
	}
}
