// Package tx carries a database transaction through context so stores inside
// a unit of work observe the same transaction without explicit plumbing.
package tx

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a pgx transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a pgx transaction from context if present.
func From(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}
