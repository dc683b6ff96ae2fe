package components_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"archiva/internal/identity"
	"archiva/internal/records/communities/components"
	ccmodels "archiva/internal/records/communities/models"
	recordmodels "archiva/internal/records/models"
	id "archiva/pkg/domain"
)

// recordingComponent implements every hook and logs invocations.
type recordingComponent struct {
	name  string
	calls *[]string
	err   error
}

func (c *recordingComponent) Add(_ context.Context, _ identity.Identity, _ *recordmodels.Record, _ *[]ccmodels.CommunityRef) error {
	*c.calls = append(*c.calls, c.name+".add")
	return c.err
}

func (c *recordingComponent) Remove(_ context.Context, _ identity.Identity, _ *recordmodels.Record, _ *[]ccmodels.CommunityRef) error {
	*c.calls = append(*c.calls, c.name+".remove")
	return c.err
}

// addOnlyComponent implements just the add hook.
type addOnlyComponent struct {
	calls *[]string
}

func (c *addOnlyComponent) Add(_ context.Context, _ identity.Identity, _ *recordmodels.Record, refs *[]ccmodels.CommunityRef) error {
	*c.calls = append(*c.calls, "addonly.add")
	return nil
}

// filterComponent drops the first entry of the payload.
type filterComponent struct{}

func (filterComponent) Add(_ context.Context, _ identity.Identity, _ *recordmodels.Record, refs *[]ccmodels.CommunityRef) error {
	*refs = (*refs)[1:]
	return nil
}

// substituteComponent redirects set-default to a fixed community.
type substituteComponent struct {
	target id.CommunityID
}

func (c substituteComponent) SetDefault(_ context.Context, _ identity.Identity, _ *recordmodels.Record, communityID *id.CommunityID) error {
	*communityID = c.target
	return nil
}

type PipelineSuite struct {
	suite.Suite
	actor  identity.Identity
	record *recordmodels.Record
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupTest() {
	s.actor = identity.User(id.NewUserID())
	s.record = &recordmodels.Record{ID: id.RecordID("rec-1")}
}

func (s *PipelineSuite) TestRunsInRegistrationOrder() {
	var calls []string
	p := components.NewPipeline(
		&recordingComponent{name: "first", calls: &calls},
		&addOnlyComponent{calls: &calls},
		&recordingComponent{name: "second", calls: &calls},
	)

	refs := []ccmodels.CommunityRef{{ID: id.NewCommunityID()}}
	s.Require().NoError(p.RunAdd(context.Background(), s.actor, s.record, &refs))
	s.Equal([]string{"first.add", "addonly.add", "second.add"}, calls)

	calls = nil
	s.Require().NoError(p.RunRemove(context.Background(), s.actor, s.record, &refs))
	s.Equal([]string{"first.remove", "second.remove"}, calls, "components without the hook are skipped")
}

func (s *PipelineSuite) TestFirstErrorAborts() {
	var calls []string
	boom := errors.New("boom")
	p := components.NewPipeline(
		&recordingComponent{name: "first", calls: &calls, err: boom},
		&recordingComponent{name: "second", calls: &calls},
	)

	refs := []ccmodels.CommunityRef{{ID: id.NewCommunityID()}}
	err := p.RunAdd(context.Background(), s.actor, s.record, &refs)
	s.Require().ErrorIs(err, boom)
	s.Equal([]string{"first.add"}, calls)
}

func (s *PipelineSuite) TestPayloadMutationIsShared() {
	keep := id.NewCommunityID()
	refs := []ccmodels.CommunityRef{{ID: id.NewCommunityID()}, {ID: keep}}

	p := components.NewPipeline(filterComponent{})
	s.Require().NoError(p.RunAdd(context.Background(), s.actor, s.record, &refs))
	s.Require().Len(refs, 1)
	s.Equal(keep, refs[0].ID)
}

func (s *PipelineSuite) TestSetDefaultSubstitution() {
	target := id.NewCommunityID()
	p := components.NewPipeline(substituteComponent{target: target})

	communityID := id.NewCommunityID()
	s.Require().NoError(p.RunSetDefault(context.Background(), s.actor, s.record, &communityID))
	s.Equal(target, communityID)
}

func (s *PipelineSuite) TestEmptyPipeline() {
	p := components.NewPipeline()
	refs := []ccmodels.CommunityRef{}
	s.NoError(p.RunAdd(context.Background(), s.actor, s.record, &refs))
	recordIDs := []id.RecordID{"rec-1"}
	setDefault := false
	s.NoError(p.RunBulkAdd(context.Background(), s.actor, id.NewCommunityID(), &recordIDs, &setDefault))
}
