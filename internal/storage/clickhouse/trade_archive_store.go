package clickhouse

import (
	"context"
	"fmt"

	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/storage"
)

// TradeArchiveStore implements storage.TradeArchive using ClickHouse.
// The archive is append-only; re-running a scan over the same window
// re-appends, which is acceptable for analytics (dedupe at query time
// by signature).
type TradeArchiveStore struct {
	conn *Conn
}

// NewTradeArchiveStore creates a new TradeArchiveStore.
func NewTradeArchiveStore(conn *Conn) *TradeArchiveStore {
	return &TradeArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeArchive = (*TradeArchiveStore)(nil)

// InsertTrades appends a batch of normalized trades.
func (s *TradeArchiveStore) InsertTrades(ctx context.Context, trades []*domain.NormalizedTrade) error {
	if len(trades) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_archive (
			owner, action, venue, signature, input_amount, output_amount, block_time
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range trades {
		err = batch.Append(
			t.Owner, string(t.Action), string(t.Venue), t.Signature,
			t.InputAmount, t.OutputAmount, t.BlockTime,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// CountByOwner returns the number of archived trades for one owner.
func (s *TradeArchiveStore) CountByOwner(ctx context.Context, owner string) (uint64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count() FROM trade_archive WHERE owner = ?`, owner,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count archived trades: %w", err)
	}
	return count, nil
}
