package repository

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner runs entity writes in a single transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// WithTx commits when fn returns nil and rolls back otherwise.
func (r *TxRunner) WithTx(ctx context.Context, fn func(repo *EntityRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(NewEntityRepositoryWithTx(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// Import inserts records in order, all or nothing, and returns how many
// rows went into each entity type. Callers order organizations first.
func (r *TxRunner) Import(ctx context.Context, records []*domain.EntityRecord) (map[domain.ResultType]int, error) {
	counts := make(map[domain.ResultType]int)
	err := r.WithTx(ctx, func(repo *EntityRepository) error {
		for _, rec := range records {
			if err := repo.Create(ctx, rec); err != nil {
				return fmt.Errorf("insert %s %q: %w", rec.Type, rec.Title, err)
			}
			counts[rec.Type]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
