package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestQueue(t *testing.T) (*InputQueue, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	return NewInputQueue(rdb, logger), mr
}

func TestInputQueue_EnqueueAndDequeue(t *testing.T) {
	q, mr := setupTestQueue(t)
	defer mr.Close()

	ctx := context.Background()
	gameID := uuid.New()

	inputs := []string{
		"meditate by the waterfall",
		"challenge the senior disciple",
		"search the archive for the manual",
	}
	for _, in := range inputs {
		require.NoError(t, q.Enqueue(ctx, gameID, in))
	}

	n, err := q.Len(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// FIFO order
	for _, want := range inputs {
		got, ok, err := q.DequeueNext(ctx, gameID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok, err := q.DequeueNext(ctx, gameID)
	require.NoError(t, err)
	assert.False(t, ok, "empty queue reports no input, not an error")
}

func TestInputQueue_Peek(t *testing.T) {
	q, mr := setupTestQueue(t)
	defer mr.Close()

	ctx := context.Background()
	gameID := uuid.New()

	require.NoError(t, q.Enqueue(ctx, gameID, "first"))
	require.NoError(t, q.Enqueue(ctx, gameID, "second"))

	got, err := q.Peek(ctx, gameID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, got)

	all, err := q.Peek(ctx, gameID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, all)

	// Peek must not consume
	n, err := q.Len(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestInputQueue_RequeueKeepsOrder(t *testing.T) {
	q, mr := setupTestQueue(t)
	defer mr.Close()

	ctx := context.Background()
	gameID := uuid.New()

	require.NoError(t, q.Enqueue(ctx, gameID, "first"))
	require.NoError(t, q.Enqueue(ctx, gameID, "second"))

	got, ok, err := q.DequeueNext(ctx, gameID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "first", got)

	// A dequeued input that could not be processed goes back to the
	// head, not behind later arrivals.
	require.NoError(t, q.Requeue(ctx, gameID, got))

	all, err := q.Peek(ctx, gameID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, all)
}

func TestInputQueue_Clear(t *testing.T) {
	q, mr := setupTestQueue(t)
	defer mr.Close()

	ctx := context.Background()
	gameID := uuid.New()

	require.NoError(t, q.Enqueue(ctx, gameID, "anything"))
	require.NoError(t, q.Clear(ctx, gameID))

	n, err := q.Len(ctx, gameID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInputQueue_IsolatedPerGame(t *testing.T) {
	q, mr := setupTestQueue(t)
	defer mr.Close()

	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, q.Enqueue(ctx, a, "for game a"))

	got, ok, err := q.DequeueNext(ctx, b)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}
