package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/solana"
	"solana-whale-scan/internal/storage"
)

// Artifact file names inside the output directory.
const (
	aggregatedFile = "aggregated_trades.json"
	unknownFile    = "unknown_transactions.json"
)

// ArtifactStore writes the pipeline's intermediate JSON artifacts into a
// directory, one pretty-printed document per artifact.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates an artifact store rooted at dir.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Compile-time interface check.
var _ storage.ArtifactStore = (*ArtifactStore)(nil)

func (s *ArtifactStore) write(name string, v interface{}) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	return nil
}

func venueSlug(venue domain.Venue) string {
	switch venue {
	case domain.VenueJupiter:
		return "jupiter"
	case domain.VenueRaydium:
		return "raydium"
	case domain.VenuePumpFun:
		return "pumpfun"
	default:
		return "unknown"
	}
}

// WriteRawVenue persists the raw transactions classified to a venue. Each
// record is the provider-shaped result as fetched; the parsed envelope is a
// fallback for records without one.
func (s *ArtifactStore) WriteRawVenue(_ context.Context, venue domain.Venue, details []*solana.TransactionDetail) error {
	records := make([]json.RawMessage, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		if len(d.Raw) > 0 {
			records = append(records, d.Raw)
			continue
		}
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal transaction %s: %w", d.Signature, err)
		}
		records = append(records, data)
	}

	if venue == domain.VenueUnknown {
		return s.write(unknownFile, records)
	}
	return s.write(venueSlug(venue)+"_raw.json", records)
}

// WriteNormalized persists one venue's decoded trades.
func (s *ArtifactStore) WriteNormalized(_ context.Context, venue domain.Venue, trades []*domain.NormalizedTrade) error {
	return s.write(venueSlug(venue)+"_processed.json", trades)
}

// WriteAggregated persists the combined normalized trades of all venues.
func (s *ArtifactStore) WriteAggregated(_ context.Context, trades []*domain.NormalizedTrade) error {
	return s.write(aggregatedFile, trades)
}

// ReadAggregated loads a previously written aggregated dump.
func (s *ArtifactStore) ReadAggregated(_ context.Context) ([]*domain.NormalizedTrade, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, aggregatedFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("read aggregated dump: %w", err)
	}

	var trades []*domain.NormalizedTrade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, fmt.Errorf("parse aggregated dump: %w", err)
	}
	return trades, nil
}
