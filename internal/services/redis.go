package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/azurepeak/cultivation-engine/pkg/game"
)

const gameStateKeyPrefix = "cultivation:game:"

// RedisStorage implements the Storage interface using Redis. Saves are
// stored as JSON blobs keyed by UUID with no expiry.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance.
func NewRedisStorage(addr string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

// Client exposes the underlying Redis client so other Redis-backed
// services (the pending-input queue) can share the connection.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available during startup.
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func gameStateKey(id uuid.UUID) string {
	return gameStateKeyPrefix + id.String()
}

func (r *RedisStorage) CreateGameState(ctx context.Context, gs *game.FullGameState) (uuid.UUID, error) {
	id := uuid.New()
	gs.GameID = &id
	if err := r.SaveGameState(ctx, id, gs); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *RedisStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *game.FullGameState) error {
	gs.UpdatedAt = time.Now()

	data, err := json.Marshal(gs)
	if err != nil {
		r.logger.Error("Failed to marshal game state", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	if err := r.client.Set(ctx, gameStateKey(id), string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save game state", "uuid", id, "error", err)
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*game.FullGameState, error) {
	cmd := r.client.Get(ctx, gameStateKey(id))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Game state not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load game state", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}

	var gs game.FullGameState
	if err := json.Unmarshal([]byte(cmd.Val()), &gs); err != nil {
		r.logger.Error("Failed to unmarshal game state", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	return &gs, nil
}

func (r *RedisStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, gameStateKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete game state", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete game state: %w", err)
	}
	return nil
}
