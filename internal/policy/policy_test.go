package policy_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	communitymodels "archiva/internal/communities/models"
	"archiva/internal/identity"
	"archiva/internal/policy"
	recordmodels "archiva/internal/records/models"
	id "archiva/pkg/domain"
	dErrors "archiva/pkg/domain-errors"
)

type PolicySuite struct {
	suite.Suite
	checker   *policy.Checker
	owner     id.UserID
	curator   id.UserID
	stranger  id.UserID
	record    *recordmodels.Record
	community *communitymodels.Community
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicySuite))
}

func (s *PolicySuite) SetupTest() {
	s.checker = policy.NewChecker()
	s.owner = id.NewUserID()
	s.curator = id.NewUserID()
	s.stranger = id.NewUserID()
	s.record = &recordmodels.Record{ID: id.RecordID("rec-1"), OwnerID: s.owner}
	s.community = &communitymodels.Community{
		ID:       id.NewCommunityID(),
		OwnerID:  id.NewUserID(),
		Curators: []id.UserID{s.curator},
	}
}

func (s *PolicySuite) res() policy.Resource {
	return policy.Resource{Record: s.record, Community: s.community}
}

func (s *PolicySuite) TestBypass() {
	for _, action := range []policy.Action{
		policy.ActionAddCommunity, policy.ActionRemoveCommunity,
		policy.ActionBulkAdd, policy.ActionManage, policy.ActionIncludeDirectly,
	} {
		s.NoError(s.checker.Can(identity.System(), action, policy.Resource{}), "system should pass %s", action)
		s.NoError(s.checker.Can(identity.User(id.NewUserID(), identity.RoleAdmin), action, policy.Resource{}), "admin should pass %s", action)

		err := s.checker.Can(identity.Identity{}, action, s.res())
		s.Require().Error(err, "anonymous should fail %s", action)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	}
}

func (s *PolicySuite) TestAddCommunity() {
	s.NoError(s.checker.Can(identity.User(s.owner), policy.ActionAddCommunity, s.res()))
	s.Error(s.checker.Can(identity.User(s.stranger), policy.ActionAddCommunity, s.res()))
	s.Error(s.checker.Can(identity.User(s.curator), policy.ActionAddCommunity, s.res()))
}

func (s *PolicySuite) TestRemoveAndManage() {
	for _, action := range []policy.Action{policy.ActionRemoveCommunity, policy.ActionManage} {
		s.NoError(s.checker.Can(identity.User(s.owner), action, s.res()), "record owner should pass %s", action)
		s.NoError(s.checker.Can(identity.User(s.curator), action, s.res()), "curator should pass %s", action)
		s.Error(s.checker.Can(identity.User(s.stranger), action, s.res()), "stranger should fail %s", action)
	}
}

func (s *PolicySuite) TestCuratorOnlyActions() {
	for _, action := range []policy.Action{policy.ActionBulkAdd, policy.ActionIncludeDirectly} {
		s.True(s.checker.Allowed(identity.User(s.curator), action, s.res()), "curator should pass %s", action)
		s.True(s.checker.Allowed(identity.User(s.community.OwnerID), action, s.res()), "community owner should pass %s", action)
		s.False(s.checker.Allowed(identity.User(s.owner), action, s.res()), "record owner should fail %s", action)
	}
}
