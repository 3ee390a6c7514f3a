package tokencache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheMissWhenEmpty(t *testing.T) {
	cache := NewMemoryCache(nil)

	_, ok := cache.Get(context.Background())
	assert.False(t, ok)
}

func TestMemoryCacheHitWithinTTL(t *testing.T) {
	now := time.Now()
	cache := NewMemoryCache(func() time.Time { return now })

	require.NoError(t, cache.Put(context.Background(), "bearer-1", 50*time.Minute))

	now = now.Add(49 * time.Minute)
	token, ok := cache.Get(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "bearer-1", token)
}

func TestMemoryCacheExpires(t *testing.T) {
	now := time.Now()
	cache := NewMemoryCache(func() time.Time { return now })

	require.NoError(t, cache.Put(context.Background(), "bearer-1", 50*time.Minute))

	now = now.Add(50 * time.Minute)
	_, ok := cache.Get(context.Background())
	assert.False(t, ok)
}

func TestMemoryCachePutOverwrites(t *testing.T) {
	now := time.Now()
	cache := NewMemoryCache(func() time.Time { return now })

	require.NoError(t, cache.Put(context.Background(), "bearer-1", time.Minute))
	require.NoError(t, cache.Put(context.Background(), "bearer-2", time.Hour))

	now = now.Add(30 * time.Minute)
	token, ok := cache.Get(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "bearer-2", token)
}
