//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"archiva/internal/communities/models"
	"archiva/internal/communities/store"
	id "archiva/pkg/domain"
	"archiva/pkg/platform/sentinel"
	"archiva/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgresStore(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "communities"))
}

func newTestCommunity(slug string) *models.Community {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Community{
		ID:        id.NewCommunityID(),
		Slug:      slug,
		Title:     "Community " + slug,
		OwnerID:   id.NewUserID(),
		Curators:  []id.UserID{id.NewUserID(), id.NewUserID()},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	c := newTestCommunity("astro")
	s.Require().NoError(s.store.Create(ctx, c))

	got, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.Slug, got.Slug)
	s.Equal(c.Curators, got.Curators, "curator list survives the text[] round trip")

	bySlug, err := s.store.GetBySlug(ctx, "astro")
	s.Require().NoError(err)
	s.Equal(c.ID, bySlug.ID)
}

func (s *PostgresStoreSuite) TestDuplicateSlugConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newTestCommunity("geo")))

	err := s.store.Create(ctx, newTestCommunity("geo"))
	s.Require().True(errors.Is(err, sentinel.ErrConflict), "got %v", err)
}

func (s *PostgresStoreSuite) TestGetUnknown() {
	_, err := s.store.Get(context.Background(), id.NewCommunityID())
	s.Require().True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	c := newTestCommunity("bio")
	s.Require().NoError(s.store.Create(ctx, c))

	c.Title = "Biosciences"
	c.Curators = append(c.Curators, id.NewUserID())
	s.Require().NoError(s.store.Update(ctx, c))

	got, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("Biosciences", got.Title)
	s.Len(got.Curators, 3)
}
