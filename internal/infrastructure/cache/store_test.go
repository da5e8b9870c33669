package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type storedSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStore_SetGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var got storedSummary
	found, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "k", storedSummary{Name: "a", Count: 3}, time.Minute))
	found, err = store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, storedSummary{Name: "a", Count: 3}, got)

	require.NoError(t, store.Delete(ctx, "k"))
	found, err = store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_Expiry(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	store.now = clock.Now
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", 1, time.Second))
	require.NoError(t, store.Set(ctx, "forever", 2, 0))

	clock.Advance(2 * time.Second)

	var v int
	found, err := store.Get(ctx, "short", &v)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = store.Get(ctx, "forever", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_DecodeError(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", "text", time.Minute))

	var n int
	found, err := store.Get(ctx, "k", &n)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNewStore_FallsBackToMemory(t *testing.T) {
	store := NewStore(false, RedisConfig{}, zap.NewNop())
	assert.IsType(t, &MemoryStore{}, store)

	// Nothing listens on port 1.
	store = NewStore(true, RedisConfig{Host: "127.0.0.1", Port: 1}, nil)
	assert.IsType(t, &MemoryStore{}, store)
}
