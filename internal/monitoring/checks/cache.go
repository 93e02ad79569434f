package checks

import (
	"context"
	"time"

	"github.com/charlesng35/botspace/internal/monitoring"
)

// Pinger is satisfied by cache.RedisStore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Redis returns a probe for the Redis cache. A nil pinger means the database-backed
// cache is in use, which the database probe already covers.
func Redis(client Pinger, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		if client == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "redis disabled"}
		}

		start := time.Now()
		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout))
		defer cancel()

		return monitoring.ResultFromError(client.Ping(probeCtx), time.Since(start))
	})
}
