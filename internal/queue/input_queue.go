// Package queue holds player inputs that arrive while a turn is already
// in flight. One turn runs per game at a time; anything submitted in the
// meantime is parked in a Redis list until the caller drains it.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// InputQueue manages pending player inputs per game.
type InputQueue struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewInputQueue(rdb *redis.Client, logger *slog.Logger) *InputQueue {
	return &InputQueue{
		rdb:    rdb,
		logger: logger,
	}
}

func queueKey(gameID uuid.UUID) string {
	return fmt.Sprintf("cultivation:pending-input:%s", gameID.String())
}

// Enqueue appends a player input to the end of the pending queue.
func (q *InputQueue) Enqueue(ctx context.Context, gameID uuid.UUID, input string) error {
	if err := q.rdb.RPush(ctx, queueKey(gameID), input).Err(); err != nil {
		return fmt.Errorf("failed to enqueue player input: %w", err)
	}
	q.logger.Debug("Player input queued", "game_id", gameID.String(), "input", input)
	return nil
}

// Requeue returns a dequeued input to the head of the queue, so an
// input that could not be processed keeps its place in line.
func (q *InputQueue) Requeue(ctx context.Context, gameID uuid.UUID, input string) error {
	if err := q.rdb.LPush(ctx, queueKey(gameID), input).Err(); err != nil {
		return fmt.Errorf("failed to requeue player input: %w", err)
	}
	q.logger.Debug("Player input requeued", "game_id", gameID.String(), "input", input)
	return nil
}

// DequeueNext removes and returns the oldest pending input. The second
// return value is false when the queue is empty.
func (q *InputQueue) DequeueNext(ctx context.Context, gameID uuid.UUID) (string, bool, error) {
	input, err := q.rdb.LPop(ctx, queueKey(gameID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to dequeue player input: %w", err)
	}
	return input, true, nil
}

// Peek returns up to limit pending inputs without removing them. A
// non-positive limit returns all of them.
func (q *InputQueue) Peek(ctx context.Context, gameID uuid.UUID, limit int) ([]string, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1
	}
	inputs, err := q.rdb.LRange(ctx, queueKey(gameID), 0, end).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to peek player inputs: %w", err)
	}
	return inputs, nil
}

// Len reports the number of pending inputs for a game.
func (q *InputQueue) Len(ctx context.Context, gameID uuid.UUID) (int64, error) {
	n, err := q.rdb.LLen(ctx, queueKey(gameID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to count player inputs: %w", err)
	}
	return n, nil
}

// Clear removes all pending inputs for a game.
func (q *InputQueue) Clear(ctx context.Context, gameID uuid.UUID) error {
	if err := q.rdb.Del(ctx, queueKey(gameID)).Err(); err != nil {
		return fmt.Errorf("failed to clear pending inputs: %w", err)
	}
	return nil
}
