package models

import (
	"time"

	id "archiva/pkg/domain"
	dErrors "archiva/pkg/domain-errors"
)

// Record is a published research record. Community membership lives on the
// parent so every version of a record shares the same associations.
type Record struct {
	ID        id.RecordID
	OwnerID   id.UserID
	Title     string
	Parent    Parent
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Parent holds version-independent record state.
type Parent struct {
	Communities CommunitySet
}

// CommunitySet is the set of communities a record belongs to plus an optional
// default community pointer. The default, when set, always names a member.
type CommunitySet struct {
	IDs     []id.CommunityID
	Default *id.CommunityID
}

// Has reports membership.
func (s *CommunitySet) Has(communityID id.CommunityID) bool {
	for _, c := range s.IDs {
		if c == communityID {
			return true
		}
	}
	return false
}

// Add inserts a community into the set. Adding an existing member is an
// invariant violation; callers check Has first and report a domain error.
func (s *CommunitySet) Add(communityID id.CommunityID, isDefault bool) error {
	if s.Has(communityID) {
		return dErrors.New(dErrors.CodeInvariantViolation, "community already included")
	}
	s.IDs = append(s.IDs, communityID)
	if isDefault {
		c := communityID
		s.Default = &c
	}
	return nil
}

// Remove deletes a community from the set, clearing the default pointer when
// it referenced the removed community.
func (s *CommunitySet) Remove(communityID id.CommunityID) error {
	for i, c := range s.IDs {
		if c == communityID {
			s.IDs = append(s.IDs[:i], s.IDs[i+1:]...)
			if s.Default != nil && *s.Default == communityID {
				s.Default = nil
			}
			return nil
		}
	}
	return dErrors.New(dErrors.CodeInvariantViolation, "community not included")
}

// SetDefault points the default at an existing member.
func (s *CommunitySet) SetDefault(communityID id.CommunityID) error {
	if !s.Has(communityID) {
		return dErrors.New(dErrors.CodeInvariantViolation, "default community must be included first")
	}
	c := communityID
	s.Default = &c
	return nil
}

// DefaultID returns the default community, if any.
func (s *CommunitySet) DefaultID() (id.CommunityID, bool) {
	if s.Default == nil {
		return id.CommunityID{}, false
	}
	return *s.Default, true
}

// HasCommunity reports whether the record belongs to the community.
func (r *Record) HasCommunity(communityID id.CommunityID) bool {
	return r.Parent.Communities.Has(communityID)
}

// Clone returns a deep copy so stores can hand out records without aliasing
// internal state.
func (r *Record) Clone() *Record {
	cp := *r
	cp.Parent.Communities.IDs = append([]id.CommunityID(nil), r.Parent.Communities.IDs...)
	if r.Parent.Communities.Default != nil {
		d := *r.Parent.Communities.Default
		cp.Parent.Communities.Default = &d
	}
	return &cp
}
