package store

import (
	"context"
	"sort"
	"sync"

	"archiva/internal/requests/models"
	id "archiva/pkg/domain"
	"archiva/pkg/platform/sentinel"
)

// InMemory keeps inclusion requests in a map for unit tests and demo mode.
type InMemory struct {
	mu       sync.RWMutex
	requests map[id.RequestID]*models.InclusionRequest
}

func NewInMemory() *InMemory {
	return &InMemory{requests: make(map[id.RequestID]*models.InclusionRequest)}
}

func (s *InMemory) Create(_ context.Context, req *models.InclusionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[req.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *InMemory) Get(_ context.Context, requestID id.RequestID) (*models.InclusionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *InMemory) Update(_ context.Context, req *models.InclusionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[req.ID]; !exists {
		return sentinel.ErrNotFound
	}
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

// FindOpen returns the open request for a (record, community) pair, if any.
func (s *InMemory) FindOpen(_ context.Context, recordID id.RecordID, communityID id.CommunityID) (*models.InclusionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, req := range s.requests {
		if req.RecordID == recordID && req.CommunityID == communityID && req.IsOpen() {
			cp := *req
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// ListByRecord returns all requests for a record, newest first.
func (s *InMemory) ListByRecord(_ context.Context, recordID id.RecordID) ([]*models.InclusionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.InclusionRequest
	for _, req := range s.requests {
		if req.RecordID == recordID {
			cp := *req
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
