package settings

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu  sync.RWMutex
	ps  PointsSettings
	set bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (s *memoryStore) Get(ctx context.Context) (PointsSettings, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ps, s.set, nil
}

func (s *memoryStore) Put(ctx context.Context, ps PointsSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps.UpdatedAt = time.Now().UTC()
	s.ps = ps
	s.set = true
	return nil
}
