package memory

import (
	"context"
	"sync"

	"artquiz-service/internal/domain"
)

// ProgressStore keeps progress records in a map. Nothing survives a restart.
type ProgressStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{values: make(map[string][]byte)}
}

func (s *ProgressStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *ProgressStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}
