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

type brandList struct {
	Names []string `json:"names"`
}

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, 10*time.Minute), mr
}

func TestRedisCache_Get(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	t.Run("Hit", func(t *testing.T) {
		require.NoError(t, mr.Set(cacheKey("brands:all"), `{"names":["Hugo","Armani"]}`))

		var got brandList
		require.NoError(t, c.Get(ctx, "brands:all", &got))
		assert.Equal(t, []string{"Hugo", "Armani"}, got.Names)
	})

	t.Run("Miss", func(t *testing.T) {
		var got brandList
		assert.ErrorIs(t, c.Get(ctx, "nonexistent", &got), ErrCacheMiss)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		require.NoError(t, mr.Set(cacheKey("broken"), `{"names":[`))

		var got brandList
		assert.ErrorContains(t, c.Get(ctx, "broken", &got), "unmarshal broken failed")
	})

	t.Run("RedisDown", func(t *testing.T) {
		mr.SetError("server down")
		defer mr.SetError("")

		var got brandList
		err := c.Get(ctx, "brands:all", &got)
		assert.ErrorContains(t, err, "redis get failed")
		assert.NotErrorIs(t, err, ErrCacheMiss)
	})
}

func TestRedisCache_SetWithTTL(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "brands:all", brandList{Names: []string{"Boss"}}))

	stored, err := mr.Get(cacheKey("brands:all"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"names":["Boss"]}`, stored)

	ttl := mr.TTL(cacheKey("brands:all"))
	assert.True(t, ttl >= 10*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl < 11*time.Minute, "TTL should be base + max jitter")
}

func TestRedisCache_Delete(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(cacheKey("a"), "1"))
	require.NoError(t, mr.Set(cacheKey("b"), "2"))

	require.NoError(t, c.Delete(ctx, "a", "b", "missing"))
	assert.False(t, mr.Exists(cacheKey("a")))
	assert.False(t, mr.Exists(cacheKey("b")))

	assert.NoError(t, c.Delete(ctx))
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", 1))
	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "suitup:brands:all", cacheKey("brands:all"))
}
