package app

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/xhit/go-str2duration/v2"
)

const envPrefix = "BOTSPACE"

// Config represents the runtime configuration for the botspace backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`
	Environment string `mapstructure:"environment"`
}

// Development reports whether the server runs in development mode.
func (c ServerConfig) Development() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "development")
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Address   string        `mapstructure:"address"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TLS       bool          `mapstructure:"tls"`
	Timeout   time.Duration `mapstructure:"timeout"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// AuthConfig captures all authentication-related settings.
type AuthConfig struct {
	Session   SessionSettings   `mapstructure:"session"`
	Cookies   CookieSettings    `mapstructure:"cookies"`
	Local     LocalAuthSettings `mapstructure:"local"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
}

// SessionSettings configures session lifetime and the user snapshot cache.
type SessionSettings struct {
	Duration     time.Duration `mapstructure:"duration"`
	CacheEnabled bool          `mapstructure:"cache_enabled"`
	MaxActive    int           `mapstructure:"max_active"`
}

// CookieSettings configures the auth cookie domain.
type CookieSettings struct {
	RootDomain string `mapstructure:"root_domain"`
}

// LocalAuthSettings defines controls for the local auth provider.
type LocalAuthSettings struct {
	LockoutThreshold int           `mapstructure:"lockout_threshold"`
	LockoutDuration  time.Duration `mapstructure:"lockout_duration"`
}

// RateLimitSettings bounds requests per client on the auth endpoints.
type RateLimitSettings struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MaintenanceConfig schedules background housekeeping.
type MaintenanceConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	CachePurge    string `mapstructure:"cache_purge_schedule"`
	SessionsGauge string `mapstructure:"sessions_gauge_schedule"`
}

// legacyEnv maps configuration keys to the unprefixed variable names older deployments set.
var legacyEnv = map[string]string{
	"auth.session.cache_enabled": "USE_REDIS",
	"cache.redis.enabled":        "USE_REDIS",
	"auth.session.duration":      "SESSION_EXPIRATION",
	"server.environment":         "NODE_ENV",
	"auth.cookies.root_domain":   "DOMAIN",
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
// A .env file in the working directory or any of paths is loaded first; variables already
// present in the environment win.
func LoadConfig(paths ...string) (*Config, error) {
	if err := loadDotEnv(paths...); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("config: bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func loadDotEnv(paths ...string) error {
	candidates := []string{".env"}
	for _, path := range paths {
		candidates = append(candidates, filepath.Join(path, ".env"))
	}

	for _, file := range candidates {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.environment", "production")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/botspace.sqlite")

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")
	v.SetDefault("cache.redis.key_prefix", "")

	v.SetDefault("auth.session.duration", "5d")
	v.SetDefault("auth.session.cache_enabled", false)
	v.SetDefault("auth.session.max_active", 5)
	v.SetDefault("auth.cookies.root_domain", "")
	v.SetDefault("auth.local.lockout_threshold", 5)
	v.SetDefault("auth.local.lockout_duration", "15m")
	v.SetDefault("auth.rate_limit.enabled", true)
	v.SetDefault("auth.rate_limit.requests", 20)
	v.SetDefault("auth.rate_limit.window", "1m")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.cache_purge_schedule", "@every 10m")
	v.SetDefault("maintenance.sessions_gauge_schedule", "@every 1m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			stringToDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// stringToDurationHookFunc accepts day and week units ("5d", "1w2d") on top of time.ParseDuration.
func stringToDurationHookFunc() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != durationType {
			return data, nil
		}

		raw, ok := data.(string)
		if !ok {
			return data, nil
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return time.Duration(0), nil
		}
		d, err := str2duration.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		return d, nil
	}
}
