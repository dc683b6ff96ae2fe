package store

import (
	"context"
	"sync"

	"archiva/internal/communities/models"
	id "archiva/pkg/domain"
	"archiva/pkg/platform/sentinel"
)

// InMemory keeps communities in a map for unit tests and demo mode.
type InMemory struct {
	mu          sync.RWMutex
	communities map[id.CommunityID]*models.Community
	slugs       map[string]id.CommunityID
}

func NewInMemory() *InMemory {
	return &InMemory{
		communities: make(map[id.CommunityID]*models.Community),
		slugs:       make(map[string]id.CommunityID),
	}
}

func (s *InMemory) Get(_ context.Context, communityID id.CommunityID) (*models.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.communities[communityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	cp.Curators = append([]id.UserID(nil), c.Curators...)
	return &cp, nil
}

func (s *InMemory) GetBySlug(_ context.Context, slug string) (*models.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cid, ok := s.slugs[slug]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.communities[cid]
	cp.Curators = append([]id.UserID(nil), cp.Curators...)
	return &cp, nil
}

func (s *InMemory) Create(_ context.Context, c *models.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.communities[c.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.slugs[c.Slug]; exists {
		return sentinel.ErrConflict
	}
	cp := *c
	cp.Curators = append([]id.UserID(nil), c.Curators...)
	s.communities[c.ID] = &cp
	s.slugs[c.Slug] = c.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, c *models.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.communities[c.ID]; !exists {
		return sentinel.ErrNotFound
	}
	cp := *c
	cp.Curators = append([]id.UserID(nil), c.Curators...)
	s.communities[c.ID] = &cp
	return nil
}
