package cache

import (
	"context"
	"time"
)

// Store is the key-value cache shared by session caching and rate limiting.
// A zero ttl stores the value without expiry.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Purger is implemented by stores that need expired entries removed out of band.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}
