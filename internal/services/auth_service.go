package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/botspace/internal/auth"
	"github.com/charlesng35/botspace/internal/auth/providers"
	"github.com/charlesng35/botspace/internal/models"
	apperrors "github.com/charlesng35/botspace/pkg/errors"
	"github.com/charlesng35/botspace/pkg/logger"
	"github.com/charlesng35/botspace/pkg/metrics"
)

// AuthAction names what authenticate was called for.
type AuthAction string

const (
	ActionSignUp AuthAction = "SIGN_UP"
	ActionSignIn AuthAction = "SIGN_IN"
)

// IdentityProvider names who vouched for an identity in SignUpOrIn.
type IdentityProvider string

const (
	ProviderCredentials IdentityProvider = ""
	ProviderGoogle      IdentityProvider = "GOOGLE"
	ProviderGitHub      IdentityProvider = "GITHUB"
)

// SignInFailurePath is where failed authentication redirects land. The reason is fixed so
// the redirect never tells which check failed.
const SignInFailurePath = "/auth/sign-in?error=AUTH_FAILED&reason=SESSION_INVALID"

// SignUpInput is the registration payload.
type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,notblank,max=120"`
	Avatar   string `json:"avatar" validate:"omitempty,url"`
}

// SignInInput is the credential payload.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthPayload is returned by successful sign-up and sign-in. User never carries the
// password hash.
type AuthPayload struct {
	Action  AuthAction         `json:"action"`
	Session auth.IssuedSession `json:"session"`
	User    *models.User       `json:"user"`
}

// AuthService implements the sign-up, sign-in and sign-out flows on top of SessionService.
type AuthService struct {
	db       *gorm.DB
	sessions *auth.SessionService
	local    *providers.LocalProvider
	now      func() time.Time
	log      *zap.Logger
}

// NewAuthService wires the authentication flows.
func NewAuthService(db *gorm.DB, sessions *auth.SessionService, local *providers.LocalProvider, clock func() time.Time) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if sessions == nil {
		return nil, errors.New("auth service: session service is required")
	}
	if local == nil {
		return nil, errors.New("auth service: local provider is required")
	}
	if clock == nil {
		clock = time.Now
	}

	return &AuthService{
		db:       db,
		sessions: sessions,
		local:    local,
		now:      clock,
		log:      logger.WithModule("auth"),
	}, nil
}

// SignUp registers a user and signs them in. skipCheck bypasses the existing-email check
// for callers that already performed it.
func (s *AuthService) SignUp(ctx context.Context, rc *auth.RequestContext, input SignUpInput, skipCheck bool) Result[*AuthPayload] {
	return Execute(ctx, "SIGN_UP_FAILED", func(ctx context.Context) (*AuthPayload, error) {
		return s.signUp(ctx, rc, input, skipCheck)
	})
}

// SignIn verifies email and password and opens a session.
func (s *AuthService) SignIn(ctx context.Context, rc *auth.RequestContext, input SignInInput) Result[*AuthPayload] {
	return Execute(ctx, "SIGN_IN_FAILED", func(ctx context.Context) (*AuthPayload, error) {
		return s.signIn(ctx, rc, input)
	})
}

// SignUpOrIn signs an existing user in, or registers a new one. Identities vouched for by
// Google are trusted without a password check.
func (s *AuthService) SignUpOrIn(ctx context.Context, rc *auth.RequestContext, input SignUpInput, provider IdentityProvider) Result[*AuthPayload] {
	return Execute(ctx, "SIGN_UP_OR_IN_FAILED", func(ctx context.Context) (*AuthPayload, error) {
		user, err := s.local.FindByEmail(ctx, input.Email)
		switch {
		case err == nil:
			if provider != ProviderGoogle {
				return s.signIn(ctx, rc, SignInInput{Email: input.Email, Password: input.Password})
			}
			return s.authenticate(ctx, rc, ActionSignIn, user)
		case errors.Is(err, providers.ErrUserNotFound):
			return s.signUp(ctx, rc, input, true)
		default:
			return nil, err
		}
	})
}

// AuthUser resolves the signed-in user. When redirectOnFail is set a failure also clears
// the auth cookie and returns the sign-in redirect target.
func (s *AuthService) AuthUser(ctx context.Context, rc *auth.RequestContext, redirectOnFail bool) (Result[*models.User], string) {
	result := Execute(ctx, "AUTH_USER_FAILED", func(ctx context.Context) (*models.User, error) {
		checked, err := s.sessions.CheckSession(ctx, rc, nil)
		if err != nil {
			return nil, err
		}
		return checked.User, nil
	})

	if result.Success || !redirectOnFail {
		return result, ""
	}
	return result, s.SignOut(rc, SignInFailurePath)
}

// SignOut deletes the auth cookie and returns where the client should go next. The session
// row stays ACTIVE until it expires or is rotated out.
func (s *AuthService) SignOut(rc *auth.RequestContext, returnTo string) string {
	s.sessions.ClearSessionCookie(rc)
	return safeReturnPath(returnTo)
}

func (s *AuthService) signUp(ctx context.Context, rc *auth.RequestContext, input SignUpInput, skipCheck bool) (*AuthPayload, error) {
	if !skipCheck {
		_, err := s.local.FindByEmail(ctx, input.Email)
		if err == nil {
			metrics.AuthAttempts.WithLabelValues(string(ActionSignUp), "failure").Inc()
			return nil, apperrors.ErrUserAlreadyExists
		}
		if !errors.Is(err, providers.ErrUserNotFound) {
			return nil, err
		}
	}

	user, err := s.local.Register(ctx, providers.RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Avatar:   input.Avatar,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(string(ActionSignUp), "failure").Inc()
		return nil, err
	}

	return s.authenticate(ctx, rc, ActionSignUp, user)
}

func (s *AuthService) signIn(ctx context.Context, rc *auth.RequestContext, input SignInInput) (*AuthPayload, error) {
	user, err := s.local.Authenticate(ctx, providers.AuthenticateInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(string(ActionSignIn), "failure").Inc()
		return nil, err
	}
	return s.authenticate(ctx, rc, ActionSignIn, user)
}

func (s *AuthService) authenticate(ctx context.Context, rc *auth.RequestContext, action AuthAction, user *models.User) (*AuthPayload, error) {
	issued, err := s.sessions.CreateSession(ctx, rc, user)
	if err != nil {
		return nil, err
	}
	s.sessions.SetSessionCookie(rc, issued.SessionToken, issued.ExpiresAt)

	now := s.now()
	ip := rc.ClientIP()
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{"last_logged_at": now, "last_login_ip": ip}).Error; err != nil {
		return nil, fmt.Errorf("auth service: record login: %w", err)
	}
	user.LastLoggedAt = &now
	user.LastLoginIP = ip

	metrics.AuthAttempts.WithLabelValues(string(action), "success").Inc()
	s.log.Info("user authenticated", zap.String("action", string(action)), zap.String("user_id", user.ID))

	safe := *user
	safe.Password = ""
	return &AuthPayload{Action: action, Session: issued, User: &safe}, nil
}

// safeReturnPath only allows same-site relative targets.
func safeReturnPath(returnTo string) string {
	returnTo = strings.TrimSpace(returnTo)
	if returnTo == "" || !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") || strings.HasPrefix(returnTo, "/\\") {
		return "/"
	}
	parsed, err := url.Parse(returnTo)
	if err != nil || parsed.IsAbs() || parsed.Host != "" {
		return "/"
	}
	return returnTo
}
