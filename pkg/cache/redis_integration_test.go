//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciocoder/FastEndpoints/pkg/cache"
	"github.com/sciocoder/FastEndpoints/pkg/redis"
)

type profile struct {
	Email string `json:"email"`
	Plan  string `json:"plan"`
}

func redisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	cfg := redis.Config{URL: os.Getenv("REDIS_URL")}
	if cfg.URL == "" {
		cfg.URL = "redis://localhost:6379/0"
	}

	client, err := redis.Connect(context.Background(), cfg)
	require.NoError(t, err, "redis must be reachable for integration tests")

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}

func TestRedisRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := cache.NewRedis[profile](redisClient(t), nil, cache.WithPrefix("profiles"))

	want := profile{Email: "jo@example.com", Plan: "pro"}
	require.NoError(t, c.Set(ctx, "jo", want, time.Minute))

	got, err := c.Get(ctx, "jo")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ok, err := c.Has(ctx, "jo")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "jo"))

	_, err = c.Get(ctx, "jo")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRedisMiss(t *testing.T) {
	t.Parallel()

	c := cache.NewRedis[string](redisClient(t), nil, cache.WithPrefix("miss"))

	_, err := c.Get(context.Background(), "absent")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRedisTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("entry expires", func(t *testing.T) {
		t.Parallel()
		c := cache.NewRedis[string](redisClient(t), nil, cache.WithPrefix("ttl"))

		require.NoError(t, c.Set(ctx, "k", "v", 50*time.Millisecond))
		time.Sleep(100 * time.Millisecond)

		_, err := c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("zero TTL uses the configured default", func(t *testing.T) {
		t.Parallel()
		client := redisClient(t)
		c := cache.NewRedis[string](client, nil,
			cache.WithPrefix("ttl-default"),
			cache.WithRedisDefaultTTL(time.Hour),
		)

		require.NoError(t, c.Set(ctx, "k", "v", 0))

		ttl, err := client.TTL(ctx, "ttl-default:k").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Minute)
	})

	t.Run("negative TTL stores without expiry", func(t *testing.T) {
		t.Parallel()
		client := redisClient(t)
		c := cache.NewRedis[string](client, nil, cache.WithPrefix("ttl-pin"))

		require.NoError(t, c.Set(ctx, "k", "v", -1))

		ttl, err := client.TTL(ctx, "ttl-pin:k").Result()
		require.NoError(t, err)
		assert.Equal(t, time.Duration(-1), ttl, "-1 means no expiry")
	})
}

func TestRedisClearRespectsPrefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := redisClient(t)
	mine := cache.NewRedis[string](client, nil, cache.WithPrefix("mine"))
	other := cache.NewRedis[string](client, nil, cache.WithPrefix("other"))

	require.NoError(t, mine.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, mine.Set(ctx, "b", "2", time.Minute))
	require.NoError(t, other.Set(ctx, "a", "3", time.Minute))

	require.NoError(t, mine.Clear(ctx))

	_, err := mine.Get(ctx, "a")
	require.ErrorIs(t, err, cache.ErrNotFound)

	got, err := other.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "3", got, "clear must not cross prefixes")
}

func TestRedisMarshalerErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := redisClient(t)
	c := cache.NewRedis[profile](client, nil, cache.WithPrefix("codec"))

	// Plant a payload the JSON marshaler cannot decode into profile.
	require.NoError(t, client.Set(ctx, "codec:bad", "not-json", time.Minute).Err())

	_, err := c.Get(ctx, "bad")
	require.ErrorIs(t, err, cache.ErrUnmarshal)
}

func TestRedisGetOrSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := cache.NewRedis[profile](redisClient(t), nil, cache.WithPrefix("loader"))

	loads := 0
	load := func(context.Context) (profile, time.Duration, error) {
		loads++
		return profile{Email: "jo@example.com"}, time.Minute, nil
	}

	first, err := cache.GetOrSet(ctx, c, "jo", load)
	require.NoError(t, err)
	second, err := cache.GetOrSet(ctx, c, "jo", load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads, "second call must be served from redis")
}
