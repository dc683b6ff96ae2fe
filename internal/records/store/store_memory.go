package store

import (
	"context"
	"sync"

	"archiva/internal/records/models"
	id "archiva/pkg/domain"
	"archiva/pkg/platform/sentinel"
)

// InMemory keeps records in a map for unit tests and demo mode.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.RecordID]*models.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.RecordID]*models.Record)}
}

// Resolve looks a record up by its persistent identifier.
func (s *InMemory) Resolve(_ context.Context, recordID id.RecordID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

// Create inserts a new record.
func (s *InMemory) Create(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return sentinel.ErrConflict
	}
	s.records[rec.ID] = rec.Clone()
	return nil
}

// Save persists the full record state, community set included.
func (s *InMemory) Save(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.records[rec.ID] = rec.Clone()
	return nil
}
