package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/botspace/internal/models"
	apperrors "github.com/charlesng35/botspace/pkg/errors"
	"github.com/charlesng35/botspace/pkg/logger"
	"github.com/charlesng35/botspace/pkg/metrics"
)

const (
	// DefaultSessionDuration is the session lifetime used when none is configured.
	DefaultSessionDuration = 5 * 24 * time.Hour
	// DefaultMaxActiveSessions caps concurrent ACTIVE sessions per user.
	DefaultMaxActiveSessions = 5
)

var (
	// ErrNoSessionToken is returned when neither an override nor the auth cookie provides a token.
	ErrNoSessionToken = apperrors.ErrNoSessionToken
	// ErrSessionNotFound is returned when no ACTIVE session matches the token.
	ErrSessionNotFound = apperrors.ErrSessionNotFound
)

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	Duration       time.Duration
	MaxActive      int
	Cookies        CookieConfig
	Clock          func() time.Time
	Cache          SessionCache
	TokenGenerator func() string
}

// IssuedSession is returned to the caller that just authenticated.
type IssuedSession struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// CheckedSession is the outcome of a successful validation. ExpiresAt is zero when the
// user was served from the cache; Refreshed is set when an expired session was extended
// and the auth cookie reissued.
type CheckedSession struct {
	User      *models.User `json:"user"`
	ExpiresAt time.Time    `json:"expires_at,omitempty"`
	FromCache bool         `json:"-"`
	Refreshed bool         `json:"-"`
}

// SessionService issues, rotates and validates cookie-borne sessions.
type SessionService struct {
	db        *gorm.DB
	duration  time.Duration
	maxActive int
	cookies   CookieConfig
	now       func() time.Time
	cache     SessionCache
	newToken  func() string
	log       *zap.Logger
}

// NewSessionService constructs a session manager backed by the provided database.
func NewSessionService(db *gorm.DB, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service: db is required")
	}

	duration := cfg.Duration
	if duration <= 0 {
		duration = DefaultSessionDuration
	}

	maxActive := cfg.MaxActive
	if maxActive <= 0 {
		maxActive = DefaultMaxActiveSessions
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	newToken := GenerateSessionToken
	if cfg.TokenGenerator != nil {
		newToken = cfg.TokenGenerator
	}

	return &SessionService{
		db:        db,
		duration:  duration,
		maxActive: maxActive,
		cookies:   cfg.Cookies,
		now:       clock,
		cache:     cfg.Cache,
		newToken:  newToken,
		log:       logger.WithModule("session"),
	}, nil
}

// Duration returns the configured session lifetime.
func (s *SessionService) Duration() time.Duration {
	return s.duration
}

// Cookies returns the cookie attributes used by the service.
func (s *SessionService) Cookies() CookieConfig {
	return s.cookies
}

// CreateSession issues a new ACTIVE session for user. When the user already holds the
// maximum number of ACTIVE sessions the oldest ones are deactivated in the same transaction.
func (s *SessionService) CreateSession(ctx context.Context, rc *RequestContext, user *models.User) (IssuedSession, error) {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return IssuedSession{}, errors.New("session service: user is required")
	}

	token := s.newToken()
	now := s.now()
	expiresAt := now.Add(s.duration)
	meta := ParseClientMetadata(rc)

	var rotated int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// serialises creations per user on drivers with row locks
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Take(&models.User{}, "id = ?", user.ID).Error; err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		var activeIDs []string
		if err := tx.Model(&models.Session{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND status = ?", user.ID, models.SessionStatusActive).
			Order("created_at DESC").
			Pluck("id", &activeIDs).Error; err != nil {
			return fmt.Errorf("list active sessions: %w", err)
		}

		if len(activeIDs) >= s.maxActive {
			stale := activeIDs[s.maxActive-1:]
			result := tx.Model(&models.Session{}).
				Where("id IN ?", stale).
				Update("status", models.SessionStatusInactive)
			if result.Error != nil {
				return fmt.Errorf("deactivate sessions: %w", result.Error)
			}
			rotated = result.RowsAffected
		}

		session := &models.Session{
			UserID:       user.ID,
			SessionToken: token,
			Status:       models.SessionStatusActive,
			ExpiresAt:    expiresAt,
			CreatedAt:    now,
			OS:           meta.OS,
			Device:       meta.Device,
			Browser:      meta.Browser,
			IPAddress:    meta.IPAddress,
			Details:      datatypes.JSONMap(meta.details()),
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return IssuedSession{}, fmt.Errorf("session service: %w", err)
	}

	metrics.SessionsCreated.Inc()
	if rotated > 0 {
		metrics.SessionsRotated.Add(float64(rotated))
		s.log.Debug("deactivated oldest sessions", zap.String("user_id", user.ID), zap.Int64("count", rotated))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, token, user, s.duration); err != nil {
			s.log.Warn("failed to cache session user", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return IssuedSession{SessionToken: token, ExpiresAt: expiresAt}, nil
}

// CheckSession resolves the user behind the request's session token. tokenOverride, when
// non-nil, is used instead of the auth cookie.
//
// A cached snapshot is trusted without consulting the database. An ACTIVE session whose expiry
// has passed is extended by the session duration and its cookie reissued.
func (s *SessionService) CheckSession(ctx context.Context, rc *RequestContext, tokenOverride *string) (*CheckedSession, error) {
	token := ""
	if tokenOverride != nil {
		token = *tokenOverride
	} else if value, ok := rc.Cookie(AuthCookieName); ok {
		token = value
	}

	if s.cache != nil && token != "" {
		user, err := s.cache.Get(ctx, token)
		switch {
		case err == nil && user != nil:
			metrics.SessionChecks.WithLabelValues("cache", "success").Inc()
			return &CheckedSession{User: user, FromCache: true}, nil
		case err != nil && !errors.Is(err, errSessionCacheMiss):
			s.log.Warn("session cache lookup failed", zap.Error(err))
		}
	}

	if token == "" {
		metrics.SessionChecks.WithLabelValues("database", "no_token").Inc()
		return nil, ErrNoSessionToken
	}

	now := s.now()
	var (
		session   models.Session
		refreshed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("User").
			Where("session_token = ? AND status = ?", token, models.SessionStatusActive).
			Take(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("session service: find session: %w", err)
		}

		if session.IsExpired(now) {
			session.ExpiresAt = now.Add(s.duration)
			if err := tx.Model(&models.Session{}).
				Where("id = ?", session.ID).
				Update("expires_at", session.ExpiresAt).Error; err != nil {
				return fmt.Errorf("session service: extend session: %w", err)
			}
			refreshed = true
		}
		return nil
	})
	if err != nil {
		metrics.SessionChecks.WithLabelValues("database", "failure").Inc()
		return nil, err
	}
	if session.User == nil {
		metrics.SessionChecks.WithLabelValues("database", "failure").Inc()
		return nil, ErrSessionNotFound
	}

	if refreshed {
		s.SetSessionCookie(rc, token, session.ExpiresAt)
	}

	metrics.SessionChecks.WithLabelValues("database", "success").Inc()
	return &CheckedSession{
		User:      session.User,
		ExpiresAt: session.ExpiresAt,
		Refreshed: refreshed,
	}, nil
}

// SetSessionCookie writes the auth cookie for token.
func (s *SessionService) SetSessionCookie(rc *RequestContext, token string, expiresAt time.Time) {
	rc.SetCookie(s.cookies.SessionCookie(token, expiresAt))
}

// ClearSessionCookie removes the auth cookie. The session row is left as is.
func (s *SessionService) ClearSessionCookie(rc *RequestContext) {
	rc.SetCookie(s.cookies.ExpiredSessionCookie())
}

// ListActiveSessions returns the user's ACTIVE sessions, newest first.
func (s *SessionService) ListActiveSessions(ctx context.Context, userID string) ([]models.Session, error) {
	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.SessionStatusActive).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("session service: list sessions: %w", err)
	}
	return sessions, nil
}

// CountActive counts ACTIVE sessions that have not yet expired.
func (s *SessionService) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("status = ? AND expires_at >= ?", models.SessionStatusActive, s.now()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("session service: count active sessions: %w", err)
	}
	return count, nil
}
