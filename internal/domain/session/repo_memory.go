package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
}

func NewMemoryRepo() Repository {
	return &memoryRepo{records: make(map[uuid.UUID]Record)}
}

func (m *memoryRepo) Create(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = *r
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id uuid.UUID) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}
