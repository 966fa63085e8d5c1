package history

import (
	"context"
	"sync"
)

const defaultMemoryCap = 100

// Memory keeps the latest entries in process.
type Memory struct {
	mu      sync.RWMutex
	limit   int
	entries []Entry
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = defaultMemoryCap
	}
	return &Memory{limit: capacity}
}

func (m *Memory) Save(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].MatchID == e.MatchID {
			m.entries[i] = e
			return nil
		}
	}
	m.entries = append(m.entries, e)
	if len(m.entries) > m.limit {
		m.entries = append([]Entry(nil), m.entries[len(m.entries)-m.limit:]...)
	}
	return nil
}

func (m *Memory) Recent(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]Entry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}
