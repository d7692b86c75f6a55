package viewstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
)

type viewRecord struct {
	payload   dashboard.StoredView
	expiresAt time.Time
}

// MemoryStore keeps session views in process memory for tests/dev.
type MemoryStore struct {
	mu    sync.RWMutex
	views map[string]viewRecord
	now   func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		views: make(map[string]viewRecord),
		now:   time.Now,
	}
}

// SaveView implements dashboard.ViewStore.
func (s *MemoryStore) SaveView(_ context.Context, view dashboard.StoredView, ttl time.Duration) error {
	if view.SessionID == "" {
		return nil
	}
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[view.SessionID] = viewRecord{payload: view, expiresAt: exp}
	return nil
}

// GetView implements dashboard.ViewStore.
func (s *MemoryStore) GetView(_ context.Context, sessionID string) (dashboard.StoredView, bool, error) {
	s.mu.RLock()
	record, ok := s.views[sessionID]
	s.mu.RUnlock()
	if !ok {
		return dashboard.StoredView{}, false, nil
	}
	if !record.expiresAt.IsZero() && record.expiresAt.Before(s.now()) {
		s.mu.Lock()
		delete(s.views, sessionID)
		s.mu.Unlock()
		return dashboard.StoredView{}, false, nil
	}
	return record.payload, true, nil
}

// DeleteView implements dashboard.ViewStore.
func (s *MemoryStore) DeleteView(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, sessionID)
	return nil
}

var _ dashboard.ViewStore = (*MemoryStore)(nil)
