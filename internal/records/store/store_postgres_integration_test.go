//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"archiva/internal/platform/postgres"
	"archiva/internal/records/models"
	"archiva/internal/records/store"
	id "archiva/pkg/domain"
	"archiva/pkg/platform/sentinel"
	"archiva/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	runner   *postgres.TxRunner
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
	s.runner = postgres.NewTxRunner(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "record_communities", "records"))
}

func newTestRecord(pid string) *models.Record {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Record{
		ID:        id.RecordID(pid),
		OwnerID:   id.NewUserID(),
		Title:     "Test record",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresStoreSuite) TestCreateAndResolve() {
	ctx := context.Background()
	rec := newTestRecord("rec-roundtrip")
	s.Require().NoError(rec.Parent.Communities.Add(id.NewCommunityID(), true))
	s.Require().NoError(rec.Parent.Communities.Add(id.NewCommunityID(), false))
	s.Require().NoError(s.store.Create(ctx, rec))

	got, err := s.store.Resolve(ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(rec.OwnerID, got.OwnerID)
	s.Equal(rec.Parent.Communities.IDs, got.Parent.Communities.IDs, "membership order is preserved")

	def, ok := got.Parent.Communities.DefaultID()
	s.Require().True(ok)
	s.Equal(rec.Parent.Communities.IDs[0], def)
}

func (s *PostgresStoreSuite) TestResolveUnknownRecord() {
	_, err := s.store.Resolve(context.Background(), id.RecordID("ghost"))
	s.Require().True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestSaveReplacesCommunitySet() {
	ctx := context.Background()
	rec := newTestRecord("rec-save")
	first := id.NewCommunityID()
	s.Require().NoError(rec.Parent.Communities.Add(first, true))
	s.Require().NoError(s.store.Create(ctx, rec))

	second := id.NewCommunityID()
	s.Require().NoError(rec.Parent.Communities.Remove(first))
	s.Require().NoError(rec.Parent.Communities.Add(second, false))
	s.Require().NoError(s.store.Save(ctx, rec))

	got, err := s.store.Resolve(ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal([]id.CommunityID{second}, got.Parent.Communities.IDs)
	_, ok := got.Parent.Communities.DefaultID()
	s.False(ok, "default cleared with the removed community")
}

func (s *PostgresStoreSuite) TestRollbackDiscardsChanges() {
	ctx := context.Background()
	rec := newTestRecord("rec-tx")
	s.Require().NoError(s.store.Create(ctx, rec))

	boom := errors.New("boom")
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		inTx, err := s.store.Resolve(ctx, rec.ID)
		if err != nil {
			return err
		}
		if err := inTx.Parent.Communities.Add(id.NewCommunityID(), false); err != nil {
			return err
		}
		if err := s.store.Save(ctx, inTx); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	got, err := s.store.Resolve(ctx, rec.ID)
	s.Require().NoError(err)
	s.Empty(got.Parent.Communities.IDs, "rolled-back membership must not persist")
}
