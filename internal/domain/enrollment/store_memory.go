package enrollment

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by unit tests and local wiring.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*Enrollment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*Enrollment)}
}

func (s *MemoryStore) Create(ctx context.Context, e *Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.items[e.ID] = &cp
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) MarkProcessed(ctx context.Context, id, message string) (bool, error) {
	return s.transition(id, StatusProcessed, message)
}

func (s *MemoryStore) MarkFailed(ctx context.Context, id, message string) (bool, error) {
	return s.transition(id, StatusFailed, message)
}

func (s *MemoryStore) transition(id string, to Status, message string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok || e.Status != StatusPending {
		return false, nil
	}
	e.Status = to
	e.Message = message
	e.UpdatedAt = time.Now()
	return true, nil
}
