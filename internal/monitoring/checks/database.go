package checks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/botspace/internal/database"
	"github.com/charlesng35/botspace/internal/monitoring"
)

const defaultTimeout = 2 * time.Second

// Database returns a probe that pings the database handle.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout))
		defer cancel()

		return monitoring.ResultFromError(database.Ping(probeCtx, db), time.Since(start))
	})
}

func chooseTimeout(provided time.Duration) time.Duration {
	if provided <= 0 {
		return defaultTimeout
	}
	return provided
}
