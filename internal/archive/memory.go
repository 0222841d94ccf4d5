package archive

import (
	"context"
	"sync"

	"github.com/thearst3rd/chess-tournament/internal/domain"
)

// MemoryRepository keeps games in memory, used when no database is
// configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	games map[string]*domain.GameRecord
	order []string // insertion order, oldest first
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{games: make(map[string]*domain.GameRecord)}
}

func (m *MemoryRepository) SaveGame(_ context.Context, rec *domain.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *rec
	if _, exists := m.games[rec.ID]; !exists {
		m.order = append(m.order, rec.ID)
	}
	m.games[rec.ID] = &stored
	return nil
}

func (m *MemoryRepository) GetGame(_ context.Context, id string) (*domain.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

func (m *MemoryRepository) ListRecent(_ context.Context, limit int) ([]*domain.GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.GameRecord, 0, limit)
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		rec := *m.games[m.order[i]]
		out = append(out, &rec)
	}
	return out, nil
}
