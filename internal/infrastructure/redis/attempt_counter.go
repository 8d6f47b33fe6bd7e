package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// incrScript increments and, only if the key has no expiry, sets one.
// A key that expired between the caller's GET and this INCR is recreated by
// INCR without a TTL and would otherwise never expire.
var incrScript = goredis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("TTL", KEYS[1]) == -1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// AttemptCounter keeps login attempt counts as plain Redis integers.
// INCR and SET EX are atomic on the server, which is all the throttle relies on.
type AttemptCounter struct {
	client    *Client
	orphanTTL time.Duration
}

// NewAttemptCounter returns a counter; orphanTTL is applied by Increment to
// keys that have lost their expiry.
func NewAttemptCounter(client *Client, orphanTTL time.Duration) *AttemptCounter {
	return &AttemptCounter{client: client, orphanTTL: orphanTTL}
}

func (c *AttemptCounter) Get(ctx context.Context, key string) (int, error) {
	val, err := c.client.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", key, err)
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

// SetWithTTL opens a window with SET NX EX. When a concurrent first attempt
// already opened it, this attempt is charged to that window with Increment
// and the TTL is left alone.
func (c *AttemptCounter) SetWithTTL(ctx context.Context, key string, value int, ttl time.Duration) error {
	created, err := c.client.rdb.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if created {
		return nil
	}
	if _, err := c.Increment(ctx, key); err != nil {
		return err
	}
	return nil
}

// Increment leaves an existing TTL untouched.
func (c *AttemptCounter) Increment(ctx context.Context, key string) (int, error) {
	n, err := incrScript.Run(ctx, c.client.rdb, []string{key}, int(c.orphanTTL.Seconds())).Int64()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	return int(n), nil
}

func (c *AttemptCounter) Delete(ctx context.Context, key string) error {
	if err := c.client.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// CountAtLeast scans keys matching pattern and counts those whose value is >= limit.
func (c *AttemptCounter) CountAtLeast(ctx context.Context, pattern string, limit int) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := c.client.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return 0, fmt.Errorf("scan %s: %w", pattern, err)
		}

		if len(keys) > 0 {
			vals, err := c.client.rdb.MGet(ctx, keys...).Result()
			if err != nil {
				return 0, fmt.Errorf("mget: %w", err)
			}
			for _, v := range vals {
				s, ok := v.(string)
				if !ok {
					continue // expired between SCAN and MGET
				}
				if n, err := strconv.Atoi(s); err == nil && n >= limit {
					total++
				}
			}
		}

		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}
