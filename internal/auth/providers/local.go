package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/botspace/internal/models"
	"github.com/charlesng35/botspace/pkg/crypto"
	apperrors "github.com/charlesng35/botspace/pkg/errors"
)

var (
	// ErrUserNotFound is returned when no user owns the supplied email.
	ErrUserNotFound = apperrors.ErrUserNotFound
	// ErrInvalidPassword is returned when the password does not match.
	ErrInvalidPassword = apperrors.ErrInvalidPassword
	// ErrAccountLocked signals that the user has exceeded the permitted failed attempts.
	ErrAccountLocked = apperrors.ErrAccountLocked
	// ErrAccountDisabled signals that the user has been deactivated.
	ErrAccountDisabled = apperrors.New("ACCOUNT_DISABLED", "Account is disabled", http.StatusForbidden)
	// ErrUserAlreadyExists is returned when registering an email that is taken.
	ErrUserAlreadyExists = apperrors.ErrUserAlreadyExists
)

// LocalConfig defines tunable behaviour for the local provider.
type LocalConfig struct {
	LockoutThreshold int
	LockoutDuration  time.Duration
	Clock            func() time.Time
}

// AuthenticateInput carries an email/password pair.
type AuthenticateInput struct {
	Email    string
	Password string
}

// RegisterInput captures the details required to register a new local user.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Avatar   string
}

// LocalProvider implements email/password authentication with account lockout controls.
type LocalProvider struct {
	db        *gorm.DB
	clock     func() time.Time
	threshold int
	duration  time.Duration
}

// NewLocalProvider builds a provider with sane defaults.
func NewLocalProvider(db *gorm.DB, cfg LocalConfig) (*LocalProvider, error) {
	if db == nil {
		return nil, errors.New("local provider: db is required")
	}

	threshold := cfg.LockoutThreshold
	if threshold <= 0 {
		threshold = 5
	}

	duration := cfg.LockoutDuration
	if duration <= 0 {
		duration = 15 * time.Minute
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &LocalProvider{
		db:        db,
		clock:     clock,
		threshold: threshold,
		duration:  duration,
	}, nil
}

// FindByEmail loads the user owning email.
func (p *LocalProvider) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, ErrUserNotFound
	}

	var user models.User
	err := p.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("local provider: query user: %w", err)
	}
	return &user, nil
}

// Authenticate verifies the supplied credentials and returns the associated user when successful.
func (p *LocalProvider) Authenticate(ctx context.Context, input AuthenticateInput) (*models.User, error) {
	user, err := p.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	now := p.clock()
	db := p.db.WithContext(ctx)

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, ErrAccountLocked
	}

	// lockout elapsed
	if user.LockedUntil != nil {
		user.LockedUntil = nil
		user.FailedAttempts = 0
		if err := db.Model(user).Updates(map[string]any{
			"locked_until":    nil,
			"failed_attempts": 0,
		}).Error; err != nil {
			return nil, fmt.Errorf("local provider: reset lock state: %w", err)
		}
	}

	if input.Password == "" || !crypto.VerifyPassword(user.Password, input.Password) {
		return nil, p.handleFailedAttempt(db, user, now)
	}

	if user.FailedAttempts > 0 {
		user.FailedAttempts = 0
		if err := db.Model(user).Update("failed_attempts", 0).Error; err != nil {
			return nil, fmt.Errorf("local provider: reset failed attempts: %w", err)
		}
	}

	return user, nil
}

func (p *LocalProvider) handleFailedAttempt(db *gorm.DB, user *models.User, now time.Time) error {
	user.FailedAttempts++

	updates := map[string]any{
		"failed_attempts": user.FailedAttempts,
	}

	if user.FailedAttempts >= p.threshold {
		lockUntil := now.Add(p.duration)
		user.LockedUntil = &lockUntil
		updates["locked_until"] = lockUntil
	}

	if err := db.Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("local provider: update failed attempts: %w", err)
	}

	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return ErrAccountLocked
	}

	return ErrInvalidPassword
}

// Register creates a new user. An empty password is allowed for identities vouched for by an
// external provider; such accounts cannot sign in with a password.
func (p *LocalProvider) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := models.NormalizeEmail(input.Email)
	if email == "" {
		return nil, errors.New("local provider: email is required")
	}

	hashed := ""
	if input.Password != "" {
		var err error
		hashed, err = crypto.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("local provider: hash password: %w", err)
		}
	}

	user := &models.User{
		Email:    email,
		Password: hashed,
		Name:     strings.TrimSpace(input.Name),
		Avatar:   strings.TrimSpace(input.Avatar),
		IsActive: true,
	}

	if err := p.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("local provider: create user: %w", err)
	}

	return user, nil
}
