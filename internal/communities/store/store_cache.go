package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"archiva/internal/communities/models"
	id "archiva/pkg/domain"
)

// Store is the community persistence contract the cache decorates.
type Store interface {
	Get(ctx context.Context, communityID id.CommunityID) (*models.Community, error)
	GetBySlug(ctx context.Context, slug string) (*models.Community, error)
	Create(ctx context.Context, c *models.Community) error
	Update(ctx context.Context, c *models.Community) error
}

// CachedStore is a Redis read-through decorator over a community store.
// Cache failures degrade to the inner store; they are logged, never surfaced.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(inner Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func cacheKey(communityID id.CommunityID) string {
	return "archiva:community:" + communityID.String()
}

func (s *CachedStore) Get(ctx context.Context, communityID id.CommunityID) (*models.Community, error) {
	raw, err := s.client.Get(ctx, cacheKey(communityID)).Bytes()
	if err == nil {
		var c models.Community
		if err := json.Unmarshal(raw, &c); err == nil {
			return &c, nil
		}
		// Corrupt entry: drop it and fall through to the inner store.
		_ = s.client.Del(ctx, cacheKey(communityID)).Err()
	} else if !errors.Is(err, redis.Nil) {
		s.logger.WarnContext(ctx, "community cache read failed", "error", err)
	}

	c, err := s.inner.Get(ctx, communityID)
	if err != nil {
		return nil, err
	}
	s.set(ctx, c)
	return c, nil
}

// GetBySlug bypasses the cache; slug lookups are rare admin paths.
func (s *CachedStore) GetBySlug(ctx context.Context, slug string) (*models.Community, error) {
	return s.inner.GetBySlug(ctx, slug)
}

func (s *CachedStore) Create(ctx context.Context, c *models.Community) error {
	if err := s.inner.Create(ctx, c); err != nil {
		return err
	}
	s.set(ctx, c)
	return nil
}

func (s *CachedStore) Update(ctx context.Context, c *models.Community) error {
	if err := s.inner.Update(ctx, c); err != nil {
		return err
	}
	if err := s.client.Del(ctx, cacheKey(c.ID)).Err(); err != nil {
		s.logger.WarnContext(ctx, "community cache invalidation failed", "error", err, "community_id", c.ID)
	}
	return nil
}

func (s *CachedStore) set(ctx context.Context, c *models.Community) {
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, cacheKey(c.ID), raw, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "community cache write failed", "error", err, "community_id", c.ID)
	}
}

var _ Store = (*CachedStore)(nil)
var _ Store = (*InMemory)(nil)
var _ Store = (*PostgresStore)(nil)
