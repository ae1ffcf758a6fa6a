package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/storage"
)

// PortfolioStore implements storage.PortfolioStore using PostgreSQL.
// Unlike the JSON-document backend, every write is an atomic per-owner
// upsert, so concurrent enrichment runs do not clobber each other.
type PortfolioStore struct {
	pool *Pool
}

// NewPortfolioStore creates a new PortfolioStore.
func NewPortfolioStore(pool *Pool) *PortfolioStore {
	return &PortfolioStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PortfolioStore = (*PortfolioStore)(nil)

const upsertQuery = `
	INSERT INTO portfolios (
		owner, current_amount, sol_balance, total_sol_balance,
		total_stables, total_spl, accounts, stats
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (owner) DO UPDATE SET
		current_amount = EXCLUDED.current_amount,
		sol_balance = EXCLUDED.sol_balance,
		total_sol_balance = EXCLUDED.total_sol_balance,
		total_stables = EXCLUDED.total_stables,
		total_spl = EXCLUDED.total_spl,
		accounts = EXCLUDED.accounts,
		stats = EXCLUDED.stats,
		updated_at = now()
`

// Upsert inserts or replaces one owner's entry.
func (s *PortfolioStore) Upsert(ctx context.Context, p *domain.OwnerPortfolio) error {
	if p == nil || p.Owner == "" {
		return storage.ErrInvalidInput
	}

	accounts, stats, err := marshalPayloads(p)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, upsertQuery,
		p.Owner,
		p.CurrentAmount,
		p.SOLBalance,
		p.TotalSOLBalance,
		p.TotalStables,
		p.TotalSPL,
		accounts,
		stats,
	)
	if err != nil {
		return fmt.Errorf("upsert portfolio: %w", err)
	}
	return nil
}

// UpsertBulk inserts or replaces multiple entries atomically.
func (s *PortfolioStore) UpsertBulk(ctx context.Context, entries []*domain.OwnerPortfolio) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range entries {
		if p == nil || p.Owner == "" {
			return storage.ErrInvalidInput
		}
		accounts, stats, err := marshalPayloads(p)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, upsertQuery,
			p.Owner, p.CurrentAmount, p.SOLBalance, p.TotalSOLBalance,
			p.TotalStables, p.TotalSPL, accounts, stats,
		)
		if err != nil {
			return fmt.Errorf("upsert portfolio in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Get retrieves one owner's entry. Returns ErrNotFound if absent.
func (s *PortfolioStore) Get(ctx context.Context, owner string) (*domain.OwnerPortfolio, error) {
	if owner == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT owner, current_amount, sol_balance, total_sol_balance,
		       total_stables, total_spl, accounts, stats
		FROM portfolios
		WHERE owner = $1
	`

	row := s.pool.QueryRow(ctx, query, owner)
	p, err := scanPortfolio(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	return p, nil
}

// GetAll retrieves every entry, ordered by owner.
func (s *PortfolioStore) GetAll(ctx context.Context) ([]*domain.OwnerPortfolio, error) {
	query := `
		SELECT owner, current_amount, sol_balance, total_sol_balance,
		       total_stables, total_spl, accounts, stats
		FROM portfolios
		ORDER BY owner ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all portfolios: %w", err)
	}
	defer rows.Close()

	var result []*domain.OwnerPortfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("scan portfolio: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func marshalPayloads(p *domain.OwnerPortfolio) ([]byte, []byte, error) {
	accounts, err := json.Marshal(p.Accounts)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal accounts: %w", err)
	}

	var stats []byte
	if p.Stats != nil {
		stats, err = json.Marshal(p.Stats)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal stats: %w", err)
		}
	}
	return accounts, stats, nil
}

func scanPortfolio(row pgx.Row) (*domain.OwnerPortfolio, error) {
	var p domain.OwnerPortfolio
	var accounts, stats []byte

	err := row.Scan(
		&p.Owner, &p.CurrentAmount, &p.SOLBalance, &p.TotalSOLBalance,
		&p.TotalStables, &p.TotalSPL, &accounts, &stats,
	)
	if err != nil {
		return nil, err
	}

	if len(accounts) > 0 {
		if err := json.Unmarshal(accounts, &p.Accounts); err != nil {
			return nil, fmt.Errorf("unmarshal accounts: %w", err)
		}
	}
	if len(stats) > 0 {
		if err := json.Unmarshal(stats, &p.Stats); err != nil {
			return nil, fmt.Errorf("unmarshal stats: %w", err)
		}
	}
	return &p, nil
}
