package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/azurepeak/cultivation-engine/pkg/game"
)

// HealthChecker defines basic health check capabilities.
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities.
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for game state persistence.
type Storage interface {
	HealthChecker
	Closer

	// CreateGameState assigns a new ID, stamps it onto the state and
	// persists it.
	CreateGameState(ctx context.Context, gs *game.FullGameState) (uuid.UUID, error)

	// SaveGameState saves a game state under the given ID.
	SaveGameState(ctx context.Context, id uuid.UUID, gs *game.FullGameState) error

	// LoadGameState retrieves a game state by ID.
	// Returns nil if the game state doesn't exist.
	LoadGameState(ctx context.Context, id uuid.UUID) (*game.FullGameState, error)

	// DeleteGameState removes a game state by ID.
	DeleteGameState(ctx context.Context, id uuid.UUID) error
}
