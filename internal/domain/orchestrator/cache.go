package orchestrator

import (
	"context"

	"github.com/okian/pulse/internal/domain/model"
)

// CoordinateCache keeps one coordinate per student id. A stored entry
// remembers its scheme; Put for a different scheme replaces it.
type CoordinateCache interface {
	Get(ctx context.Context, studentID int64) (model.Coordinate, bool, error)
	Put(ctx context.Context, studentID int64, c model.Coordinate) error
	Len(ctx context.Context) (int, error)
}

// memoryCache is an unbounded map. It is owned by one Orchestrator and is
// not safe for concurrent use.
type memoryCache struct {
	entries map[int64]model.Coordinate
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() CoordinateCache {
	return &memoryCache{entries: make(map[int64]model.Coordinate)}
}

func (m *memoryCache) Get(_ context.Context, studentID int64) (model.Coordinate, bool, error) {
	c, ok := m.entries[studentID]
	return c, ok, nil
}

func (m *memoryCache) Put(_ context.Context, studentID int64, c model.Coordinate) error {
	m.entries[studentID] = c
	return nil
}

func (m *memoryCache) Len(context.Context) (int, error) {
	return len(m.entries), nil
}
