package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/botspace/internal/auth"
	"github.com/charlesng35/botspace/internal/auth/providers"
	"github.com/charlesng35/botspace/internal/cache"
	"github.com/charlesng35/botspace/internal/database"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig("testdata")
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "staging", cfg.Server.Environment)
	require.False(t, cfg.Server.Development())

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "redis.example.com:6380", cfg.Cache.Redis.Address)
	require.Equal(t, 2, cfg.Cache.Redis.DB)
	require.Equal(t, 3*time.Second, cfg.Cache.Redis.Timeout)
	require.Equal(t, "botspace:", cfg.Cache.Redis.KeyPrefix)

	require.Equal(t, 48*time.Hour, cfg.Auth.Session.Duration)
	require.True(t, cfg.Auth.Session.CacheEnabled)
	require.Equal(t, 3, cfg.Auth.Session.MaxActive)
	require.Equal(t, "botspace.example.com", cfg.Auth.Cookies.RootDomain)
	require.Equal(t, 7, cfg.Auth.Local.LockoutThreshold)
	require.Equal(t, 20*time.Minute, cfg.Auth.Local.LockoutDuration)
	require.Equal(t, 50, cfg.Auth.RateLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.Auth.RateLimit.Window)

	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/internal/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.True(t, cfg.Monitoring.Health.Enabled)

	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@every 5m", cfg.Maintenance.CachePurge)
	require.Equal(t, "@every 1m", cfg.Maintenance.SessionsGauge)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "production", cfg.Server.Environment)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 5*24*time.Hour, cfg.Auth.Session.Duration)
	require.False(t, cfg.Auth.Session.CacheEnabled)
	require.Equal(t, 5, cfg.Auth.Session.MaxActive)
	require.False(t, cfg.Cache.Redis.Enabled)
}

func TestLoadConfigLegacyEnvironment(t *testing.T) {
	t.Setenv("USE_REDIS", "true")
	t.Setenv("SESSION_EXPIRATION", "1w")
	t.Setenv("NODE_ENV", "development")
	t.Setenv("DOMAIN", "botspace.io")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.True(t, cfg.Auth.Session.CacheEnabled)
	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, 7*24*time.Hour, cfg.Auth.Session.Duration)
	require.True(t, cfg.Server.Development())
	require.Equal(t, "botspace.io", cfg.Auth.Cookies.RootDomain)
}

func TestLoadConfigPrefixedEnvironmentWins(t *testing.T) {
	t.Setenv("SESSION_EXPIRATION", "1w")
	t.Setenv("BOTSPACE_AUTH_SESSION_DURATION", "36h")
	t.Setenv("BOTSPACE_SERVER_PORT", "7070")

	cfg, err := LoadConfig("testdata")
	require.NoError(t, err)

	require.Equal(t, 36*time.Hour, cfg.Auth.Session.Duration)
	require.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BOTSPACE_SERVER_LOG_LEVEL=warn\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("BOTSPACE_SERVER_LOG_LEVEL") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Server.LogLevel)
}

func TestLoadConfigRejectsInvalidDuration(t *testing.T) {
	t.Setenv("BOTSPACE_AUTH_SESSION_DURATION", "forever")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
}

func TestAuthConfigAdapters(t *testing.T) {
	cfg := Config{
		Server: ServerConfig{Environment: "production"},
		Auth: AuthConfig{
			Session: SessionSettings{Duration: 10 * time.Hour, MaxActive: 3},
			Cookies: CookieSettings{RootDomain: "botspace.io"},
			Local: LocalAuthSettings{
				LockoutThreshold: 4,
				LockoutDuration:  10 * time.Minute,
			},
			RateLimit: RateLimitSettings{Requests: 10, Window: 30 * time.Second},
		},
	}

	require.Equal(t, auth.SessionConfig{
		Duration:  10 * time.Hour,
		MaxActive: 3,
		Cookies:   auth.CookieConfig{Environment: "production", RootDomain: "botspace.io"},
	}, cfg.SessionServiceConfig())

	require.Equal(t, providers.LocalConfig{
		LockoutThreshold: 4,
		LockoutDuration:  10 * time.Minute,
	}, cfg.Auth.LocalProviderConfig())

	requests, window := cfg.Auth.RateLimitPolicy()
	require.Equal(t, 10, requests)
	require.Equal(t, 30*time.Second, window)
}

func TestAuthConfigAdaptersFallback(t *testing.T) {
	var cfg Config

	sessionCfg := cfg.SessionServiceConfig()
	require.Equal(t, auth.DefaultSessionDuration, sessionCfg.Duration)
	require.Equal(t, auth.DefaultMaxActiveSessions, sessionCfg.MaxActive)

	localCfg := cfg.Auth.LocalProviderConfig()
	require.Equal(t, defaultLockoutThreshold, localCfg.LockoutThreshold)
	require.Equal(t, defaultLockoutDuration, localCfg.LockoutDuration)

	requests, window := cfg.Auth.RateLimitPolicy()
	require.Equal(t, defaultRateLimit, requests)
	require.Equal(t, defaultRateWindow, window)
}

func TestCacheConfigAdapter(t *testing.T) {
	cfg := CacheConfig{Redis: RedisCacheConfig{
		Address:   " 127.0.0.1:6379 ",
		Password:  "pw",
		DB:        1,
		Timeout:   time.Second,
		KeyPrefix: "bs:",
	}}

	require.Equal(t, cache.RedisConfig{
		Address:   "127.0.0.1:6379",
		Password:  "pw",
		DB:        1,
		Timeout:   time.Second,
		KeyPrefix: "bs:",
	}, cfg.RedisClientConfig())
}

func TestDatabaseConfigAdapter(t *testing.T) {
	sqlite := DatabaseConfig{Path: "./data/test.sqlite"}.ConnectionConfig()
	require.Equal(t, database.Config{Driver: "sqlite", Path: "./data/test.sqlite"}, sqlite)

	pg := DatabaseConfig{
		Driver:   "PostgreSQL",
		Postgres: DBAuthConfig{Host: "db", Port: 5432, Database: "botspace", Username: "bs", Password: "pw"},
	}.ConnectionConfig()
	require.Equal(t, "postgres", pg.Driver)
	require.Equal(t, "db", pg.Host)
	require.Equal(t, 5432, pg.Port)
	require.Equal(t, "botspace", pg.Name)
	require.Equal(t, "bs", pg.User)
	require.Equal(t, "pw", pg.Password)

	mysql := DatabaseConfig{Driver: "mysql", MySQL: DBAuthConfig{Host: "mysql", Port: 3306}}.ConnectionConfig()
	require.Equal(t, "mysql", mysql.Host)
	require.Equal(t, 3306, mysql.Port)
}
