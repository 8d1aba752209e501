package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real Redis when FLOWI_TEST_REDIS_ADDR is set
func TestRedisIdempotencyStore(t *testing.T) {
	addr := os.Getenv("FLOWI_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FLOWI_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := NewRedisIdempotencyStore(ctx, RedisOptions{Addr: addr})
	require.NoError(t, err)
	defer store.Close()

	key := "test:" + uuid.NewString()

	claimed, err := store.MarkProcessed(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.MarkProcessed(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, store.Forget(ctx, key))
	processed, err := store.IsProcessed(ctx, key)
	require.NoError(t, err)
	assert.False(t, processed)
}
