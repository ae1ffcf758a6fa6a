// Package file implements storage on pretty-printed JSON documents,
// one full-document overwrite per write.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/storage"
)

// PortfolioStore is a storage.PortfolioStore backed by one JSON document.
//
// Every access is whole-file read followed by whole-file write, so each
// write is atomic only with respect to the file's own prior contents.
// Exactly one writer process at a time is a precondition: a concurrent
// writer's read-then-write silently discards the other's changes.
type PortfolioStore struct {
	path string
}

// NewPortfolioStore creates a JSON-document portfolio store at path.
func NewPortfolioStore(path string) *PortfolioStore {
	return &PortfolioStore{path: path}
}

// Compile-time interface check.
var _ storage.PortfolioStore = (*PortfolioStore)(nil)

func (s *PortfolioStore) load() ([]*domain.OwnerPortfolio, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read portfolio store: %w", err)
	}

	var entries []*domain.OwnerPortfolio
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse portfolio store: %w", err)
	}
	return entries, nil
}

func (s *PortfolioStore) save(entries []*domain.OwnerPortfolio) error {
	// Deterministic document order for stable diffs.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Owner < entries[j].Owner
	})

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal portfolio store: %w", err)
	}

	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write portfolio store: %w", err)
	}
	return nil
}

// Get retrieves one owner's entry. Returns ErrNotFound if absent.
func (s *PortfolioStore) Get(_ context.Context, owner string) (*domain.OwnerPortfolio, error) {
	if owner == "" {
		return nil, storage.ErrInvalidInput
	}

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Owner == owner {
			return e, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetAll retrieves every persisted entry.
func (s *PortfolioStore) GetAll(_ context.Context) ([]*domain.OwnerPortfolio, error) {
	return s.load()
}

// Upsert inserts or replaces one owner's entry, rewriting the whole document.
func (s *PortfolioStore) Upsert(_ context.Context, p *domain.OwnerPortfolio) error {
	if p == nil || p.Owner == "" {
		return storage.ErrInvalidInput
	}

	entries, err := s.load()
	if err != nil {
		return err
	}

	replaced := false
	for i, e := range entries {
		if e.Owner == p.Owner {
			entries[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, p)
	}

	return s.save(entries)
}

// UpsertBulk inserts or replaces multiple entries in one document rewrite.
func (s *PortfolioStore) UpsertBulk(_ context.Context, updates []*domain.OwnerPortfolio) error {
	if len(updates) == 0 {
		return nil
	}

	entries, err := s.load()
	if err != nil {
		return err
	}

	byOwner := make(map[string]int, len(entries))
	for i, e := range entries {
		byOwner[e.Owner] = i
	}

	for _, p := range updates {
		if p == nil || p.Owner == "" {
			return storage.ErrInvalidInput
		}
		if i, ok := byOwner[p.Owner]; ok {
			entries[i] = p
		} else {
			byOwner[p.Owner] = len(entries)
			entries = append(entries, p)
		}
	}

	return s.save(entries)
}
