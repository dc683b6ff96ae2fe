//go:build integration

package containers

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors the production migrations closely enough for store tests.
const schema = `
CREATE TABLE IF NOT EXISTS records (
	pid                  TEXT PRIMARY KEY,
	owner_id             UUID NOT NULL,
	title                TEXT NOT NULL DEFAULT '',
	default_community_id UUID,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS record_communities (
	record_pid   TEXT NOT NULL REFERENCES records(pid) ON DELETE CASCADE,
	community_id UUID NOT NULL,
	position     INTEGER NOT NULL,
	PRIMARY KEY (record_pid, community_id)
);

CREATE TABLE IF NOT EXISTS communities (
	id         UUID PRIMARY KEY,
	slug       TEXT NOT NULL UNIQUE,
	title      TEXT NOT NULL,
	owner_id   UUID NOT NULL,
	curators   TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS inclusion_requests (
	id           UUID PRIMARY KEY,
	record_pid   TEXT NOT NULL,
	community_id UUID NOT NULL,
	status       TEXT NOT NULL,
	message      TEXT NOT NULL DEFAULT '',
	created_by   UUID NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	decided_at   TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_inclusion_requests_record
	ON inclusion_requests (record_pid, community_id);
`

// PostgresContainer wraps a testcontainers Postgres instance with a pgx pool
// bound to a schema-initialized database.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	Pool      *pgxpool.Pool
}

// NewPostgresContainer starts Postgres and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("archiva_test"),
		tcpostgres.WithUsername("archiva"),
		tcpostgres.WithPassword("archiva"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres DSN: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to create pgx pool: %v", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, Pool: pool}
}

// TruncateTables empties the named tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	_, err := p.Pool.Exec(ctx, stmt)
	return err
}
