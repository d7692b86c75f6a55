package interactionlog

import (
	"context"
	"sync"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
)

// MemoryLog is an in-memory InteractionLog used for tests/dev. Entries per session are
// capped at limit, oldest dropped first.
type MemoryLog struct {
	mu      sync.RWMutex
	limit   int
	entries map[string][]dashboard.Interaction
}

// NewMemoryLog constructs a log keeping at most limit entries per session.
func NewMemoryLog(limit int) *MemoryLog {
	if limit <= 0 {
		limit = 200
	}
	return &MemoryLog{limit: limit, entries: make(map[string][]dashboard.Interaction)}
}

// Record implements dashboard.InteractionLog.
func (l *MemoryLog) Record(_ context.Context, entry dashboard.Interaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := append(l.entries[entry.SessionID], entry)
	if len(items) > l.limit {
		items = items[len(items)-l.limit:]
	}
	l.entries[entry.SessionID] = items
	return nil
}

// Recent returns the newest entries first.
func (l *MemoryLog) Recent(_ context.Context, sessionID string, limit int) ([]dashboard.Interaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	items := l.entries[sessionID]
	out := make([]dashboard.Interaction, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, items[i])
	}
	return out, nil
}

var _ dashboard.InteractionLog = (*MemoryLog)(nil)
