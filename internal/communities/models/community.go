package models

import (
	"strings"
	"time"

	id "archiva/pkg/domain"
	dErrors "archiva/pkg/domain-errors"
)

// Community is an organizational grouping records can belong to.
type Community struct {
	ID        id.CommunityID
	Slug      string
	Title     string
	OwnerID   id.UserID
	Curators  []id.UserID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCommunity constructs a community, validating invariants.
func NewCommunity(communityID id.CommunityID, slug, title string, ownerID id.UserID, now time.Time) (*Community, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	title = strings.TrimSpace(title)
	if communityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "community id is required")
	}
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "community slug is required")
	}
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "community title is required")
	}
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "community owner is required")
	}
	return &Community{
		ID:        communityID,
		Slug:      slug,
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsCurator reports whether the user curates this community. The owner
// curates implicitly.
func (c *Community) IsCurator(userID id.UserID) bool {
	if userID.IsNil() {
		return false
	}
	if c.OwnerID == userID {
		return true
	}
	for _, cur := range c.Curators {
		if cur == userID {
			return true
		}
	}
	return false
}
