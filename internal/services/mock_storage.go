package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/azurepeak/cultivation-engine/pkg/game"
)

// MockStorage is an in-memory Storage implementation for testing.
type MockStorage struct {
	mu     sync.RWMutex
	states map[uuid.UUID]*game.FullGameState

	// Optional overrides for failure injection
	SaveFunc func(ctx context.Context, id uuid.UUID, gs *game.FullGameState) error
	LoadFunc func(ctx context.Context, id uuid.UUID) (*game.FullGameState, error)
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		states: make(map[uuid.UUID]*game.FullGameState),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }
func (m *MockStorage) Close() error                   { return nil }

func (m *MockStorage) CreateGameState(ctx context.Context, gs *game.FullGameState) (uuid.UUID, error) {
	id := uuid.New()
	gs.GameID = &id
	if err := m.SaveGameState(ctx, id, gs); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (m *MockStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *game.FullGameState) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, id, gs)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[id] = gs.DeepCopy()
	return nil
}

func (m *MockStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*game.FullGameState, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	gs, ok := m.states[id]
	if !ok {
		return nil, nil
	}
	return gs.DeepCopy(), nil
}

func (m *MockStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}
