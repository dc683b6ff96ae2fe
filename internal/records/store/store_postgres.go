package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"archiva/internal/platform/postgres"
	"archiva/internal/records/models"
	id "archiva/pkg/domain"
	"archiva/pkg/platform/sentinel"
)

// PostgresStore persists records in PostgreSQL. The store is pure I/O;
// membership rules live in the models and the service. All statements honor
// an ambient unit of work (pkg/platform/tx).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Resolve(ctx context.Context, recordID id.RecordID) (*models.Record, error) {
	q := postgres.Querent(ctx, s.pool)

	query := `
		SELECT pid, owner_id, title, default_community_id, created_at, updated_at
		FROM records
		WHERE pid = $1
	`
	var rec models.Record
	var pid string
	var defaultCommunity *id.CommunityID
	err := q.QueryRow(ctx, query, recordID.String()).Scan(
		&pid, &rec.OwnerID, &rec.Title, &defaultCommunity, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("resolve record: %w", err)
	}
	rec.ID = id.RecordID(pid)
	rec.Parent.Communities.Default = defaultCommunity

	rows, err := q.Query(ctx, `
		SELECT community_id
		FROM record_communities
		WHERE record_pid = $1
		ORDER BY position
	`, recordID.String())
	if err != nil {
		return nil, fmt.Errorf("load record communities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cid id.CommunityID
		if err := rows.Scan(&cid); err != nil {
			return nil, fmt.Errorf("scan record community: %w", err)
		}
		rec.Parent.Communities.IDs = append(rec.Parent.Communities.IDs, cid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record communities: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) Create(ctx context.Context, rec *models.Record) error {
	q := postgres.Querent(ctx, s.pool)

	tag, err := q.Exec(ctx, `
		INSERT INTO records (pid, owner_id, title, default_community_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (pid) DO NOTHING
	`, rec.ID.String(), rec.OwnerID, rec.Title, rec.Parent.Communities.Default, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrConflict
	}
	return s.saveCommunities(ctx, rec)
}

// Save persists the full record state. The community set is replaced
// wholesale; per-item diffing is not worth it at the batch sizes this
// service handles.
func (s *PostgresStore) Save(ctx context.Context, rec *models.Record) error {
	q := postgres.Querent(ctx, s.pool)

	tag, err := q.Exec(ctx, `
		UPDATE records
		SET owner_id = $2, title = $3, default_community_id = $4, updated_at = $5
		WHERE pid = $1
	`, rec.ID.String(), rec.OwnerID, rec.Title, rec.Parent.Communities.Default, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return s.saveCommunities(ctx, rec)
}

func (s *PostgresStore) saveCommunities(ctx context.Context, rec *models.Record) error {
	q := postgres.Querent(ctx, s.pool)

	if _, err := q.Exec(ctx, `DELETE FROM record_communities WHERE record_pid = $1`, rec.ID.String()); err != nil {
		return fmt.Errorf("clear record communities: %w", err)
	}
	for i, cid := range rec.Parent.Communities.IDs {
		_, err := q.Exec(ctx, `
			INSERT INTO record_communities (record_pid, community_id, position)
			VALUES ($1, $2, $3)
		`, rec.ID.String(), cid, i)
		if err != nil {
			return fmt.Errorf("insert record community: %w", err)
		}
	}
	return nil
}
