package repository

import (
	"context"
	"time"
)

// AttemptCounter is a key/value store of integer counters with expiry.
// Implementations must make SetWithTTL and Increment atomic per key;
// the auth usecase does no locking of its own.
type AttemptCounter interface {
	// Get returns the current value, or 0 if the key is absent or expired.
	Get(ctx context.Context, key string) (int, error)

	// SetWithTTL writes value and starts the key's expiry clock.
	SetWithTTL(ctx context.Context, key string, value int, ttl time.Duration) error

	// Increment adds one to the key without touching its remaining TTL.
	Increment(ctx context.Context, key string) (int, error)

	Delete(ctx context.Context, key string) error
}
