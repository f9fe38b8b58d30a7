package store

import (
	"context"
	"sync"
)

// MemoryStore keeps runs in memory. It is used by tests and when no
// persistence is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	recs []RunRecord
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, rec RunRecord) error {
	s.mu.Lock()
	s.recs = append(s.recs, rec)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q RunQuery) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []RunRecord
	for _, r := range s.recs {
		if q.match(r) {
			res = append(res, r)
		}
	}
	return q.trim(res), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (RunRecord, error) {
	return getByID(ctx, s, id)
}

func (s *MemoryStore) Close() error { return nil }
