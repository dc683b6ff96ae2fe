package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"archiva/internal/communities/models"
	"archiva/internal/platform/postgres"
	id "archiva/pkg/domain"
	"archiva/pkg/platform/sentinel"
)

// PostgresStore persists communities in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, communityID id.CommunityID) (*models.Community, error) {
	q := postgres.Querent(ctx, s.pool)
	return scanCommunity(ctx, q, `
		SELECT id, slug, title, owner_id, curators, created_at, updated_at
		FROM communities
		WHERE id = $1
	`, communityID)
}

func (s *PostgresStore) GetBySlug(ctx context.Context, slug string) (*models.Community, error) {
	q := postgres.Querent(ctx, s.pool)
	return scanCommunity(ctx, q, `
		SELECT id, slug, title, owner_id, curators, created_at, updated_at
		FROM communities
		WHERE slug = $1
	`, slug)
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Community) error {
	q := postgres.Querent(ctx, s.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO communities (id, slug, title, owner_id, curators, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Slug, c.Title, c.OwnerID, curatorStrings(c.Curators), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create community: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Community) error {
	q := postgres.Querent(ctx, s.pool)
	tag, err := q.Exec(ctx, `
		UPDATE communities
		SET slug = $2, title = $3, owner_id = $4, curators = $5, updated_at = $6
		WHERE id = $1
	`, c.ID, c.Slug, c.Title, c.OwnerID, curatorStrings(c.Curators), c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update community: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanCommunity(ctx context.Context, q postgres.Querier, query string, arg any) (*models.Community, error) {
	var c models.Community
	var curators []string
	err := q.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.Slug, &c.Title, &c.OwnerID, &curators, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get community: %w", err)
	}
	for _, cur := range curators {
		userID, err := id.ParseUserID(cur)
		if err != nil {
			return nil, fmt.Errorf("corrupt curator id %q: %w", cur, err)
		}
		c.Curators = append(c.Curators, userID)
	}
	return &c, nil
}

func curatorStrings(curators []id.UserID) []string {
	out := make([]string, 0, len(curators))
	for _, c := range curators {
		out = append(out, c.String())
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
