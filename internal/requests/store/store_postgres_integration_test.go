//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"archiva/internal/requests/models"
	"archiva/internal/requests/store"
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
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "inclusion_requests"))
}

func (s *PostgresStoreSuite) newRequest(pid string) *models.InclusionRequest {
	now := time.Now().UTC().Truncate(time.Microsecond)
	req, err := models.NewInclusionRequest(id.NewRequestID(), id.RecordID(pid), id.NewCommunityID(), id.NewUserID(), "please", now)
	s.Require().NoError(err)
	return req
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	req := s.newRequest("rec-1")
	s.Require().NoError(s.store.Create(ctx, req))

	got, err := s.store.Get(ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(req.RecordID, got.RecordID)
	s.Equal(models.StatusSubmitted, got.Status)
	s.Nil(got.DecidedAt)
}

func (s *PostgresStoreSuite) TestUpdateDecision() {
	ctx := context.Background()
	req := s.newRequest("rec-2")
	s.Require().NoError(s.store.Create(ctx, req))

	s.Require().NoError(req.Accept(time.Now().UTC().Truncate(time.Microsecond)))
	s.Require().NoError(s.store.Update(ctx, req))

	got, err := s.store.Get(ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusAccepted, got.Status)
	s.NotNil(got.DecidedAt)

	_, err = s.store.FindOpen(ctx, req.RecordID, req.CommunityID)
	s.Require().True(errors.Is(err, sentinel.ErrNotFound), "decided request is no longer open")
}

func (s *PostgresStoreSuite) TestFindOpen() {
	ctx := context.Background()
	req := s.newRequest("rec-3")
	s.Require().NoError(s.store.Create(ctx, req))

	got, err := s.store.FindOpen(ctx, req.RecordID, req.CommunityID)
	s.Require().NoError(err)
	s.Equal(req.ID, got.ID)
}

func (s *PostgresStoreSuite) TestListByRecordOrdersNewestFirst() {
	ctx := context.Background()
	recordID := id.RecordID("rec-4")

	older, err := models.NewInclusionRequest(id.NewRequestID(), recordID, id.NewCommunityID(), id.NewUserID(), "", time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond))
	s.Require().NoError(err)
	newer, err := models.NewInclusionRequest(id.NewRequestID(), recordID, id.NewCommunityID(), id.NewUserID(), "", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, older))
	s.Require().NoError(s.store.Create(ctx, newer))

	reqs, err := s.store.ListByRecord(ctx, recordID)
	s.Require().NoError(err)
	s.Require().Len(reqs, 2)
	s.Equal(newer.ID, reqs[0].ID)
	s.Equal(older.ID, reqs[1].ID)
}
