package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credential struct {
	Crumb   string
	Cookies []string
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()

	require.NoError(t, mc.Set(ctx, "cred", credential{Crumb: "abc"}, time.Hour))

	var got credential
	require.NoError(t, mc.Get(ctx, "cred", &got))
	assert.Equal(t, "abc", got.Crumb)

	var wrong int
	assert.Error(t, mc.Get(ctx, "cred", &wrong))
	assert.Error(t, mc.Get(ctx, "cred", got))
}

func TestMemoryCache_PointerValue(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	require.NoError(t, mc.Set(ctx, "cred", &credential{Crumb: "p"}, 0))

	var got credential
	require.NoError(t, mc.Get(ctx, "cred", &got))
	assert.Equal(t, "p", got.Crumb)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mc := NewMemoryCache(WithMemoryClock(func() time.Time { return now }))

	require.NoError(t, mc.Set(ctx, "k", "v", time.Minute))
	now = now.Add(2 * time.Minute)

	var s string
	assert.ErrorIs(t, mc.Get(ctx, "k", &s), ErrCacheMiss)
	assert.Zero(t, mc.Len())
}

func TestMemoryCache_DeleteAndEviction(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryClock(func() time.Time { return now }))

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", 2, 0))
	now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "c", 3, 0))

	var v int
	assert.ErrorIs(t, mc.Get(ctx, "a", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "c", &v))
	assert.Equal(t, 3, v)

	require.NoError(t, mc.Delete(ctx, "b", "c"))
	assert.Zero(t, mc.Len())
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(WithRedisHost("127.0.0.1"), WithRedisPort(1))
	assert.ErrorContains(t, err, "redis ping")
}
