package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheFromClient(client), mr
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	require.NoError(t, c.Set(ctx, "user:1", payload{Name: "Dana"}, time.Minute))

	var got payload
	require.NoError(t, c.Get(ctx, "user:1", &got))
	assert.Equal(t, "Dana", got.Name)

	require.NoError(t, c.Delete(ctx, "user:1"))
	assert.ErrorIs(t, c.Get(ctx, "user:1", &got), ErrCacheMiss)
}

func TestRedisCache_SetNXExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "volunteer_location:vol-1", 1, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "volunteer_location:vol-1", 1, 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(11 * time.Second)

	ok, err = c.SetNX(ctx, "volunteer_location:vol-1", 1, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache_IncrementWindow(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := c.IncrementWindow(ctx, "rate_limit:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	ttl, err := c.GetTTL(ctx, "rate_limit:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	mr.FastForward(time.Minute + time.Second)
	n, err := c.IncrementWindow(ctx, "rate_limit:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
