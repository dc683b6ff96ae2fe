package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"archiva/internal/platform/postgres"
	"archiva/internal/requests/models"
	id "archiva/pkg/domain"
	"archiva/pkg/platform/sentinel"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) q(ctx context.Context) postgres.Querier {
	return postgres.Querent(ctx, s.pool)
}

func (s *PostgresStore) Create(ctx context.Context, req *models.InclusionRequest) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO inclusion_requests (id, record_pid, community_id, status, message, created_by, created_at, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		req.ID, req.RecordID, req.CommunityID, req.Status, req.Message, req.CreatedBy, req.CreatedAt, req.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inclusion request: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, requestID id.RequestID) (*models.InclusionRequest, error) {
	row := s.q(ctx).QueryRow(ctx, `
		SELECT id, record_pid, community_id, status, message, created_by, created_at, decided_at
		FROM inclusion_requests WHERE id = $1`, requestID)
	return scanRequest(row)
}

func (s *PostgresStore) Update(ctx context.Context, req *models.InclusionRequest) error {
	tag, err := s.q(ctx).Exec(ctx, `
		UPDATE inclusion_requests SET status = $2, decided_at = $3 WHERE id = $1`,
		req.ID, req.Status, req.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("update inclusion request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindOpen(ctx context.Context, recordID id.RecordID, communityID id.CommunityID) (*models.InclusionRequest, error) {
	row := s.q(ctx).QueryRow(ctx, `
		SELECT id, record_pid, community_id, status, message, created_by, created_at, decided_at
		FROM inclusion_requests
		WHERE record_pid = $1 AND community_id = $2 AND status = $3`,
		recordID, communityID, models.StatusSubmitted)
	return scanRequest(row)
}

func (s *PostgresStore) ListByRecord(ctx context.Context, recordID id.RecordID) ([]*models.InclusionRequest, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT id, record_pid, community_id, status, message, created_by, created_at, decided_at
		FROM inclusion_requests WHERE record_pid = $1
		ORDER BY created_at DESC`, recordID)
	if err != nil {
		return nil, fmt.Errorf("list inclusion requests: %w", err)
	}
	defer rows.Close()

	var out []*models.InclusionRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (*models.InclusionRequest, error) {
	var req models.InclusionRequest
	err := row.Scan(&req.ID, &req.RecordID, &req.CommunityID, &req.Status, &req.Message, &req.CreatedBy, &req.CreatedAt, &req.DecidedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan inclusion request: %w", err)
	}
	return &req, nil
}
