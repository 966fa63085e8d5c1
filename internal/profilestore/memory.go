package profilestore

import (
	"context"
	"strings"
	"sync"

	"github.com/park285/cheese-arena/internal/domain"
)

// Memory keeps profiles for the lifetime of the process. Used when no
// Redis or Postgres is configured.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string]domain.RatingRecord
}

func NewMemory() *Memory {
	return &Memory{profiles: make(map[string]domain.RatingRecord)}
}

func (m *Memory) Load(_ context.Context, playerName string) (*domain.RatingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.profiles[profileKey(playerName)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) Save(_ context.Context, rec domain.RatingRecord) error {
	m.mu.Lock()
	m.profiles[profileKey(rec.PlayerName)] = rec
	m.mu.Unlock()
	return nil
}

func profileKey(playerName string) string {
	return strings.ToLower(strings.TrimSpace(playerName))
}
