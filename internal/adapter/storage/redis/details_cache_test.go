package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailsCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewDetailsCache(client)
	ctx := context.Background()

	walletID := uuid.New()
	payload := []byte(`{"wallet":{"balance":5000}}`)

	// Get before set => miss
	result, err := cache.Get(ctx, walletID)
	assert.NoError(t, err)
	assert.Nil(t, result)

	err = cache.Set(ctx, walletID, payload, 30*time.Second)
	require.NoError(t, err)

	result, err = cache.Get(ctx, walletID)
	require.NoError(t, err)
	assert.Equal(t, payload, result)
}

func TestDetailsCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewDetailsCache(client)
	ctx := context.Background()

	walletID := uuid.New()
	require.NoError(t, cache.Set(ctx, walletID, []byte("view"), time.Second))

	s.FastForward(2 * time.Second)

	result, err := cache.Get(ctx, walletID)
	assert.NoError(t, err)
	assert.Nil(t, result, "expired view should return nil")
}

func TestDetailsCache_Invalidate(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewDetailsCache(client)
	ctx := context.Background()

	walletID := uuid.New()
	require.NoError(t, cache.Set(ctx, walletID, []byte("stale"), time.Hour))

	require.NoError(t, cache.Invalidate(ctx, walletID))

	result, err := cache.Get(ctx, walletID)
	assert.NoError(t, err)
	assert.Nil(t, result)

	// Invalidating a missing key is not an error.
	assert.NoError(t, cache.Invalidate(ctx, uuid.New()))
}

func TestRateLimitStore_Allow(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewRateLimitStore(client)
	ctx := context.Background()

	var lastRemaining int64
	for i := 0; i < 3; i++ {
		result, err := store.Allow(ctx, "admin-1:adjust", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		lastRemaining = result.Remaining
	}
	assert.Equal(t, int64(0), lastRemaining)

	result, err := store.Allow(ctx, "admin-1:adjust", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	// A different key has its own window.
	other, err := store.Allow(ctx, "admin-2:adjust", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}
