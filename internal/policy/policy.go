package policy

import (
	"fmt"

	communitymodels "archiva/internal/communities/models"
	"archiva/internal/identity"
	recordmodels "archiva/internal/records/models"
	dErrors "archiva/pkg/domain-errors"
)

// Action names a permission checked before a service operation runs.
type Action string

const (
	ActionAddCommunity    Action = "add_community"
	ActionRemoveCommunity Action = "remove_community"
	ActionBulkAdd         Action = "bulk_add"
	ActionManage          Action = "manage"
	ActionIncludeDirectly Action = "include_directly"
)

// Resource carries whatever the rule for an action needs. Fields not
// relevant to the action may be nil.
type Resource struct {
	Record    *recordmodels.Record
	Community *communitymodels.Community
}

// Checker evaluates role-based rules. The system identity and platform
// admins bypass every rule.
type Checker struct{}

func NewChecker() *Checker { return &Checker{} }

// Can returns a permission-denied domain error when the actor may not
// perform the action, nil otherwise.
func (c *Checker) Can(actor identity.Identity, action Action, res Resource) error {
	if c.allowed(actor, action, res) {
		return nil
	}
	return dErrors.New(dErrors.CodePermissionDenied, fmt.Sprintf("permission denied: %s", action))
}

// Allowed is the boolean form of Can, for call sites that branch rather
// than abort.
func (c *Checker) Allowed(actor identity.Identity, action Action, res Resource) bool {
	return c.allowed(actor, action, res)
}

func (c *Checker) allowed(actor identity.Identity, action Action, res Resource) bool {
	if actor.IsSystem() || actor.HasRole(identity.RoleAdmin) {
		return true
	}
	if actor.IsAnonymous() {
		return false
	}

	switch action {
	case ActionAddCommunity:
		// Any authenticated user may ask to include a record they own.
		return res.Record != nil && res.Record.OwnerID == actor.UserID
	case ActionRemoveCommunity, ActionManage:
		// Record owners and community curators may both act.
		if res.Record != nil && res.Record.OwnerID == actor.UserID {
			return true
		}
		return res.Community != nil && res.Community.IsCurator(actor.UserID)
	case ActionBulkAdd, ActionIncludeDirectly:
		return res.Community != nil && res.Community.IsCurator(actor.UserID)
	default:
		return false
	}
}
