package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openingcoach/openingcoach/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobKey(t *testing.T) {
	id := uuid.MustParse("4b2f7b3e-9a1c-4f6d-8e2a-1c9d3f5b7a90")
	assert.Equal(t, "job:4b2f7b3e-9a1c-4f6d-8e2a-1c9d3f5b7a90", cache.JobKey(id))
}

func TestRateLimitKey(t *testing.T) {
	assert.Equal(t, "ratelimit:10.0.0.1", cache.RateLimitKey("10.0.0.1"))
}

func TestNoopCache(t *testing.T) {
	c := cache.NewNoopCache()
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "noop cache never reports a hit")

	require.NoError(t, c.Delete(ctx, "k"))

	n, err := c.IncrWithExpiry(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := cache.NewRedisCache("not-a-redis-url")
	assert.Error(t, err)
}
