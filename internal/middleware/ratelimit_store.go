package middleware

import (
	"context"
	"time"

	"github.com/charlesng35/botspace/internal/cache"
)

// RateStore coordinates rate limiting counters for a specific key.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

// storeRateStore counts requests in a cache.Store, so Redis and the database-backed
// store share one implementation.
type storeRateStore struct {
	store cache.Store
}

// NewRateStore wraps a cache store in a RateStore. A nil store yields nil.
func NewRateStore(store cache.Store) RateStore {
	if store == nil {
		return nil
	}
	return &storeRateStore{store: store}
}

func (s *storeRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	count, ttl, err := s.store.IncrementWithTTL(ctx, "ratelimit:"+key, window)
	return int(count), ttl, err
}
