// Package identity models the acting principal for domain operations.
package identity

import (
	id "archiva/pkg/domain"
)

// Role is a global role attached to an identity. Community-scoped roles
// (owner, curator) are derived from the community itself, not carried here.
type Role string

const (
	RoleAdmin Role = "admin"
)

// Identity is the principal on whose behalf an operation runs. The zero value
// is an anonymous identity with no privileges.
type Identity struct {
	UserID id.UserID
	Roles  []Role

	// system marks the trusted platform identity that bypasses permission
	// checks. Only constructable through System().
	system bool
}

// System returns the trusted platform identity used by internal processes
// (migrations, harvesters, fixups). It bypasses per-operation authorization.
func System() Identity {
	return Identity{system: true}
}

// User returns an identity for a regular user.
func User(userID id.UserID, roles ...Role) Identity {
	return Identity{UserID: userID, Roles: roles}
}

// IsSystem reports whether this is the trusted platform identity.
func (i Identity) IsSystem() bool { return i.system }

// HasRole reports whether the identity carries the given global role.
func (i Identity) HasRole(role Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAnonymous reports whether the identity carries no user and no system flag.
func (i Identity) IsAnonymous() bool { return !i.system && i.UserID.IsNil() }

// String identifies the principal for logging and audit.
func (i Identity) String() string {
	if i.system {
		return "system"
	}
	if i.UserID.IsNil() {
		return "anonymous"
	}
	return i.UserID.String()
}
