// Package memory provides in-memory store implementations for tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/storage"
)

// PortfolioStore is an in-memory implementation of storage.PortfolioStore.
type PortfolioStore struct {
	mu   sync.RWMutex
	data map[string]*domain.OwnerPortfolio
}

// NewPortfolioStore creates a new in-memory portfolio store.
func NewPortfolioStore() *PortfolioStore {
	return &PortfolioStore{
		data: make(map[string]*domain.OwnerPortfolio),
	}
}

// Compile-time interface check.
var _ storage.PortfolioStore = (*PortfolioStore)(nil)

// Get retrieves one owner's entry. Returns ErrNotFound if absent.
func (s *PortfolioStore) Get(_ context.Context, owner string) (*domain.OwnerPortfolio, error) {
	if owner == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[owner]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// GetAll retrieves every entry, ordered by owner for determinism.
func (s *PortfolioStore) GetAll(_ context.Context) ([]*domain.OwnerPortfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.OwnerPortfolio, 0, len(s.data))
	for _, p := range s.data {
		cp := *p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Owner < result[j].Owner
	})
	return result, nil
}

// Upsert inserts or replaces one owner's entry.
func (s *PortfolioStore) Upsert(_ context.Context, p *domain.OwnerPortfolio) error {
	if p == nil || p.Owner == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.data[p.Owner] = &cp
	return nil
}

// UpsertBulk inserts or replaces multiple entries.
func (s *PortfolioStore) UpsertBulk(ctx context.Context, entries []*domain.OwnerPortfolio) error {
	for _, p := range entries {
		if err := s.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
