package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/botspace/internal/cache"
	"github.com/charlesng35/botspace/pkg/logger"
	"github.com/charlesng35/botspace/pkg/metrics"
)

const (
	defaultCachePurgeSpec    = "@every 10m"
	defaultSessionsGaugeSpec = "@every 1m"
)

// ActiveSessionCounter reports how many sessions are ACTIVE and unexpired.
type ActiveSessionCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

// Cleaner coordinates background housekeeping: purging expired rows of the database-backed
// cache and refreshing the active session gauge. Session rows are never deleted here.
type Cleaner struct {
	purger   cache.Purger
	sessions ActiveSessionCounter
	cron     *cron.Cron
	log      *zap.Logger
	enabled  bool

	cachePurgeSchedule    string
	sessionsGaugeSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithCachePurgeSchedule overrides the cron specification for the cache purge.
func WithCachePurgeSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cachePurgeSchedule = spec
		}
	}
}

// WithSessionsGaugeSchedule overrides the cron specification for the gauge refresh.
func WithSessionsGaugeSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionsGaugeSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil dependency skips the corresponding job.
func NewCleaner(purger cache.Purger, sessions ActiveSessionCounter, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		purger:                purger,
		sessions:              sessions,
		cachePurgeSchedule:    defaultCachePurgeSpec,
		sessionsGaugeSchedule: defaultSessionsGaugeSpec,
		log:                   logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.purger != nil || cleaner.sessions != nil

	return cleaner
}

// Start registers jobs with the cron scheduler and launches it if at least one job is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.purger != nil {
		if _, err := c.cron.AddFunc(c.cachePurgeSchedule, func() {
			if err := c.purgeCache(context.Background()); err != nil {
				c.log.Warn("cache purge failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.sessions != nil {
		if _, err := c.cron.AddFunc(c.sessionsGaugeSchedule, func() {
			if err := c.refreshSessionsGauge(context.Background()); err != nil {
				c.log.Warn("active session gauge refresh failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, returning a context that is done once running jobs finish.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every configured job sequentially.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.purger != nil {
		errs = multierr.Append(errs, c.purgeCache(ctx))
	}

	if c.sessions != nil {
		errs = multierr.Append(errs, c.refreshSessionsGauge(ctx))
	}

	return errs
}

func (c *Cleaner) purgeCache(ctx context.Context) error {
	removed, err := c.purger.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		c.log.Debug("purged expired cache entries", zap.Int64("removed", removed))
	}
	return nil
}

func (c *Cleaner) refreshSessionsGauge(ctx context.Context) error {
	active, err := c.sessions.CountActive(ctx)
	if err != nil {
		return err
	}
	metrics.ActiveSessions.Set(float64(active))
	return nil
}
