package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlanBelekov/auth-service/internal/infrastructure/redis"
)

const blockTime = 180 * time.Second

func newCounter(t *testing.T) (*redis.AttemptCounter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redis.NewAttemptCounter(redis.Wrap(rdb), blockTime), mr
}

func TestAttemptCounter_GetAbsentIsZero(t *testing.T) {
	c, _ := newCounter(t)

	n, err := c.Get(context.Background(), "login_attempts:nobody@x.com")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAttemptCounter_SetWithTTL(t *testing.T) {
	c, mr := newCounter(t)
	ctx := context.Background()

	require.NoError(t, c.SetWithTTL(ctx, "login_attempts:a@x.com", 1, blockTime))

	n, err := c.Get(ctx, "login_attempts:a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, blockTime, mr.TTL("login_attempts:a@x.com"))
}

func TestAttemptCounter_SetWithTTL_ExistingWindowIsCharged(t *testing.T) {
	c, mr := newCounter(t)
	ctx := context.Background()
	key := "login_attempts:a@x.com"

	require.NoError(t, c.SetWithTTL(ctx, key, 1, blockTime))
	mr.FastForward(30 * time.Second)

	// a second first-attempt racing the first one
	require.NoError(t, c.SetWithTTL(ctx, key, 1, blockTime))

	n, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 150*time.Second, mr.TTL(key), "window must not restart")
}

func TestAttemptCounter_ConcurrentFirstAttempts(t *testing.T) {
	c, mr := newCounter(t)
	ctx := context.Background()
	key := "login_attempts:a@x.com"

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.SetWithTTL(ctx, key, 1, blockTime))
		}()
	}
	wg.Wait()

	n, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 10, n, "every first attempt is charged")
	assert.Equal(t, blockTime, mr.TTL(key))
}

func TestAttemptCounter_IncrementKeepsTTL(t *testing.T) {
	c, mr := newCounter(t)
	ctx := context.Background()
	key := "login_attempts:a@x.com"

	require.NoError(t, c.SetWithTTL(ctx, key, 1, blockTime))
	mr.FastForward(60 * time.Second)

	n, err := c.Increment(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 120*time.Second, mr.TTL(key), "increment must not refresh the window")
}

func TestAttemptCounter_WindowExpires(t *testing.T) {
	c, mr := newCounter(t)
	ctx := context.Background()
	key := "login_attempts:a@x.com"

	require.NoError(t, c.SetWithTTL(ctx, key, 1, blockTime))
	for range 4 {
		_, err := c.Increment(ctx, key)
		require.NoError(t, err)
	}

	mr.FastForward(blockTime)

	n, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAttemptCounter_IncrementOrphanGetsTTL(t *testing.T) {
	c, mr := newCounter(t)
	key := "login_attempts:a@x.com"

	n, err := c.Increment(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, blockTime, mr.TTL(key))
}

func TestAttemptCounter_Delete(t *testing.T) {
	c, mr := newCounter(t)
	ctx := context.Background()
	key := "login_attempts:a@x.com"

	require.NoError(t, c.SetWithTTL(ctx, key, 3, blockTime))
	require.NoError(t, c.Delete(ctx, key))
	assert.False(t, mr.Exists(key))

	// deleting an absent key is not an error
	require.NoError(t, c.Delete(ctx, key))
}

func TestAttemptCounter_ConcurrentIncrements(t *testing.T) {
	c, _ := newCounter(t)
	ctx := context.Background()
	key := "login_attempts:a@x.com"
	require.NoError(t, c.SetWithTTL(ctx, key, 1, blockTime))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Increment(ctx, key)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 21, n)
}

func TestAttemptCounter_GetGarbageValue(t *testing.T) {
	c, mr := newCounter(t)
	require.NoError(t, mr.Set("login_attempts:a@x.com", "lots"))

	_, err := c.Get(context.Background(), "login_attempts:a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestAttemptCounter_ServerDown(t *testing.T) {
	c, mr := newCounter(t)
	mr.Close()

	_, err := c.Get(context.Background(), "login_attempts:a@x.com")
	require.Error(t, err)
}

func TestAttemptCounter_CountAtLeast(t *testing.T) {
	c, mr := newCounter(t)
	require.NoError(t, mr.Set("login_attempts:a@x.com", "5"))
	require.NoError(t, mr.Set("login_attempts:b@x.com", "2"))
	require.NoError(t, mr.Set("login_attempts:c@x.com", "7"))
	require.NoError(t, mr.Set("other:d@x.com", "9"))

	n, err := c.CountAtLeast(context.Background(), "login_attempts:*", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := redis.NewClient(context.Background(), redis.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redis.NewClient(context.Background(), redis.Config{Addr: addr})
	require.Error(t, err)
}
