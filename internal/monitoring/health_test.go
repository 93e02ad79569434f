package monitoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/botspace/internal/cache"
	"github.com/charlesng35/botspace/internal/database/testutil"
	"github.com/charlesng35/botspace/internal/monitoring"
	"github.com/charlesng35/botspace/internal/monitoring/checks"
)

func TestCheckerEvaluate(t *testing.T) {
	checker := monitoring.NewChecker(
		monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
			return monitoring.ProbeResult{Status: monitoring.StatusUp}
		}),
		monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "connection refused"}
		}),
		monitoring.NewCheck("", nil),
	)

	report := checker.Evaluate(context.Background())
	require.False(t, report.Success)
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "redis", report.Checks[1].Component)
}

func TestCheckerRecoversPanickingProbe(t *testing.T) {
	checker := monitoring.NewChecker(monitoring.NewCheck("boom", func(ctx context.Context) monitoring.ProbeResult {
		panic("probe exploded")
	}))

	report := checker.Evaluate(context.Background())
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Equal(t, "probe exploded", report.Checks[0].Details)
	require.Equal(t, "boom", report.Checks[0].Component)
}

func TestResultFromErrorTreatsTimeoutAsDegraded(t *testing.T) {
	require.Equal(t, monitoring.StatusUp, monitoring.ResultFromError(nil, time.Millisecond).Status)
	require.Equal(t, monitoring.StatusDegraded, monitoring.ResultFromError(context.DeadlineExceeded, 0).Status)
	require.Equal(t, monitoring.StatusDown, monitoring.ResultFromError(errors.New("refused"), 0).Status)
}

func TestDatabaseCheck(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	check := checks.Database(db, 0)

	require.Equal(t, monitoring.StatusUp, check.Run(context.Background()).Status)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	require.Equal(t, monitoring.StatusDown, check.Run(context.Background()).Status)
}

func TestRedisCheck(t *testing.T) {
	require.Equal(t, monitoring.StatusUp, checks.Redis(nil, 0).Run(context.Background()).Status)

	mr := miniredis.RunT(t)
	store, err := cache.NewRedisStore(context.Background(), cache.RedisConfig{Address: mr.Addr(), Timeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	check := checks.Redis(store, time.Second)
	require.Equal(t, monitoring.StatusUp, check.Run(context.Background()).Status)

	mr.Close()
	require.NotEqual(t, monitoring.StatusUp, check.Run(context.Background()).Status)
}
