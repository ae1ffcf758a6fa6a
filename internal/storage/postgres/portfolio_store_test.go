package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/storage"
)

func TestPortfolioStore_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPortfolioStore(pool)
	ctx := context.Background()

	entry := &domain.OwnerPortfolio{
		Owner:           "owner-001",
		CurrentAmount:   2500000,
		SOLBalance:      12.5,
		TotalSOLBalance: 14,
		TotalStables:    350,
		TotalSPL:        1200,
		Accounts: []*domain.TokenHolding{
			{
				Mint:       "MintA",
				Owner:      "owner-001",
				Amount:     50,
				Price:      ptr(2.0),
				TotalPrice: ptr(100.0),
			},
			{Mint: domain.WSOLMint, Owner: "owner-001", Amount: 1.5},
		},
		Stats: &domain.OwnerStats{
			Owner:          "owner-001",
			TotalBuys:      3,
			TotalSells:     1,
			NetTokenAmount: 2500000,
		},
	}

	require.NoError(t, store.Upsert(ctx, entry))

	got, err := store.Get(ctx, "owner-001")
	require.NoError(t, err)

	assert.Equal(t, entry.Owner, got.Owner)
	assert.Equal(t, entry.CurrentAmount, got.CurrentAmount)
	assert.Equal(t, entry.SOLBalance, got.SOLBalance)
	assert.Equal(t, entry.TotalSOLBalance, got.TotalSOLBalance)
	assert.Equal(t, entry.TotalStables, got.TotalStables)
	assert.Equal(t, entry.TotalSPL, got.TotalSPL)
	require.Len(t, got.Accounts, 2)
	assert.Equal(t, "MintA", got.Accounts[0].Mint)
	require.NotNil(t, got.Accounts[0].Price)
	assert.Equal(t, 2.0, *got.Accounts[0].Price)
	require.NotNil(t, got.Stats)
	assert.Equal(t, 3, got.Stats.TotalBuys)
}

func TestPortfolioStore_UpsertReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPortfolioStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &domain.OwnerPortfolio{
		Owner:         "owner-002",
		CurrentAmount: 1000,
	}))
	require.NoError(t, store.Upsert(ctx, &domain.OwnerPortfolio{
		Owner:         "owner-002",
		CurrentAmount: 2000,
		SOLBalance:    3,
	}))

	got, err := store.Get(ctx, "owner-002")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, got.CurrentAmount)
	assert.Equal(t, 3.0, got.SOLBalance)

	// Owner appears at most once.
	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPortfolioStore_GetNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPortfolioStore(pool)
	_, err := store.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPortfolioStore_UpsertBulk(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPortfolioStore(pool)
	ctx := context.Background()

	entries := []*domain.OwnerPortfolio{
		{Owner: "bulk-a", CurrentAmount: 1},
		{Owner: "bulk-b", CurrentAmount: 2},
		{Owner: "bulk-c", CurrentAmount: 3},
	}
	require.NoError(t, store.UpsertBulk(ctx, entries))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// GetAll orders by owner.
	assert.Equal(t, "bulk-a", all[0].Owner)
	assert.Equal(t, "bulk-c", all[2].Owner)
}

func TestPortfolioStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPortfolioStore(pool)
	ctx := context.Background()

	assert.True(t, errors.Is(store.Upsert(ctx, nil), storage.ErrInvalidInput))
	assert.True(t, errors.Is(store.Upsert(ctx, &domain.OwnerPortfolio{}), storage.ErrInvalidInput))
	_, err := store.Get(ctx, "")
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))
}
