// Package postgres owns the pgx connection pool and the transactional unit
// of work used by the domain services.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"archiva/pkg/platform/tx"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx so stores run the
// same queries inside and outside a unit of work.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// New opens a pgx pool from a DSN.
func New(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 8
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Querent resolves the querier for ctx: the ambient transaction when a unit
// of work is open, the pool otherwise.
func Querent(ctx context.Context, pool *pgxpool.Pool) Querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return pool
}

// TxRunner scopes a callback to a single database transaction. The
// transaction travels in the context (pkg/platform/tx) so every store call
// inside fn joins it. Rollback on error, commit on nil.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner constructs a transactional unit-of-work runner.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := tx.From(ctx); ok {
		// Already inside a unit of work; join it.
		return fn(ctx)
	}
	t, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = t.Rollback(ctx)
	}()
	if err := fn(tx.WithTx(ctx, t)); err != nil {
		return err
	}
	if err := t.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
