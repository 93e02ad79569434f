package app

import (
	"time"

	"github.com/charlesng35/botspace/internal/auth"
	"github.com/charlesng35/botspace/internal/auth/providers"
)

const (
	defaultLockoutThreshold = 5
	defaultLockoutDuration  = 15 * time.Minute
	defaultRateLimit        = 20
	defaultRateWindow       = time.Minute
)

// SessionServiceConfig converts the session and cookie settings into SessionService parameters.
// The cache is attached by the caller once a store is available.
func (c *Config) SessionServiceConfig() auth.SessionConfig {
	duration := c.Auth.Session.Duration
	if duration <= 0 {
		duration = auth.DefaultSessionDuration
	}

	maxActive := c.Auth.Session.MaxActive
	if maxActive <= 0 {
		maxActive = auth.DefaultMaxActiveSessions
	}

	return auth.SessionConfig{
		Duration:  duration,
		MaxActive: maxActive,
		Cookies:   c.CookieConfig(),
	}
}

// CookieConfig returns the attributes used for identity cookies.
func (c *Config) CookieConfig() auth.CookieConfig {
	return auth.CookieConfig{
		Environment: c.Server.Environment,
		RootDomain:  c.Auth.Cookies.RootDomain,
	}
}

// LocalProviderConfig converts AuthConfig into LocalProvider parameters.
func (c AuthConfig) LocalProviderConfig() providers.LocalConfig {
	duration := c.Local.LockoutDuration
	if duration <= 0 {
		duration = defaultLockoutDuration
	}

	threshold := c.Local.LockoutThreshold
	if threshold <= 0 {
		threshold = defaultLockoutThreshold
	}

	return providers.LocalConfig{
		LockoutThreshold: threshold,
		LockoutDuration:  duration,
	}
}

// RateLimitPolicy returns the request budget for auth endpoints, falling back to defaults
// for unset values.
func (c AuthConfig) RateLimitPolicy() (int, time.Duration) {
	requests := c.RateLimit.Requests
	if requests <= 0 {
		requests = defaultRateLimit
	}
	window := c.RateLimit.Window
	if window <= 0 {
		window = defaultRateWindow
	}
	return requests, window
}
