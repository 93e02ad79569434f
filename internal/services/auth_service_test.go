package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/botspace/internal/auth"
	"github.com/charlesng35/botspace/internal/models"
	"github.com/charlesng35/botspace/pkg/crypto"
)

func TestSignUpCreatesUserAndSession(t *testing.T) {
	f := newAuthFixture(t)
	rc, rec := newRequest()

	result := f.svc.SignUp(t.Context(), rc, SignUpInput{
		Email:    "Ada@Example.com",
		Password: "password123",
		Name:     "Ada",
	}, false)
	require.True(t, result.Success, result.Error)

	payload := result.Data
	require.Equal(t, ActionSignUp, payload.Action)
	require.Equal(t, "ada@example.com", payload.User.Email)
	require.Empty(t, payload.User.Password)
	require.Len(t, payload.Session.SessionToken, 64)
	require.True(t, payload.Session.ExpiresAt.Equal(f.clock.Now().Add(24*time.Hour)))

	cookie := findCookie(rec, auth.AuthCookieName)
	require.NotNil(t, cookie)
	require.Equal(t, payload.Session.SessionToken, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)

	var stored models.User
	require.NoError(t, f.db.Take(&stored, "email = ?", "ada@example.com").Error)
	require.True(t, crypto.VerifyPassword(stored.Password, "password123"))
	require.NotNil(t, stored.LastLoggedAt)
	require.True(t, stored.LastLoggedAt.Equal(f.clock.Now()))
	require.Equal(t, "192.0.2.10", stored.LastLoginIP)
}

func TestSignUpRejectsExistingEmail(t *testing.T) {
	f := newAuthFixture(t)
	mustSignUp(t, f, "taken@example.com")

	rc, _ := newRequest()
	result := f.svc.SignUp(t.Context(), rc, SignUpInput{Email: "taken@example.com", Password: "password123", Name: "Dup"}, false)

	require.False(t, result.Success)
	require.Equal(t, "USER_ALREADY_EXISTS", result.Error)
	require.Nil(t, result.Data)
	require.Equal(t, int64(1), countUsers(t, f.db))
}

func TestSignUpSkipCheckStillHonoursUniqueness(t *testing.T) {
	f := newAuthFixture(t)
	mustSignUp(t, f, "race@example.com")

	rc, _ := newRequest()
	result := f.svc.SignUp(t.Context(), rc, SignUpInput{Email: "race@example.com", Password: "password123", Name: "Dup"}, true)

	require.False(t, result.Success)
	require.Equal(t, "USER_ALREADY_EXISTS", result.Error)
}

func TestSignInSuccess(t *testing.T) {
	f := newAuthFixture(t)
	signedUp := mustSignUp(t, f, "grace@example.com")

	f.clock.Advance(time.Hour)
	rc, rec := newRequest()
	result := f.svc.SignIn(t.Context(), rc, SignInInput{Email: "grace@example.com", Password: "password123"})
	require.True(t, result.Success, result.Error)
	require.Equal(t, ActionSignIn, result.Data.Action)
	require.Equal(t, signedUp.User.ID, result.Data.User.ID)
	require.NotEqual(t, signedUp.Session.SessionToken, result.Data.Session.SessionToken)
	require.NotNil(t, findCookie(rec, auth.AuthCookieName))
}

func TestSignInFailures(t *testing.T) {
	f := newAuthFixture(t)
	mustSignUp(t, f, "hopper@example.com")

	rc, rec := newRequest()
	result := f.svc.SignIn(t.Context(), rc, SignInInput{Email: "nobody@example.com", Password: "password123"})
	require.False(t, result.Success)
	require.Equal(t, "USER_NOT_FOUND", result.Error)

	result = f.svc.SignIn(t.Context(), rc, SignInInput{Email: "hopper@example.com", Password: "wrong-password"})
	require.False(t, result.Success)
	require.Equal(t, "INVALID_PASSWORD", result.Error)
	require.Nil(t, findCookie(rec, auth.AuthCookieName))
}

func TestSignInLocksAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture(t)
	mustSignUp(t, f, "locked@example.com")

	var result Result[*AuthPayload]
	for i := 0; i < 3; i++ {
		rc, _ := newRequest()
		result = f.svc.SignIn(t.Context(), rc, SignInInput{Email: "locked@example.com", Password: "wrong"})
	}
	require.Equal(t, "ACCOUNT_LOCKED", result.Error)

	rc, _ := newRequest()
	result = f.svc.SignIn(t.Context(), rc, SignInInput{Email: "locked@example.com", Password: "password123"})
	require.Equal(t, "ACCOUNT_LOCKED", result.Error)

	f.clock.Advance(2 * time.Minute)
	result = f.svc.SignIn(t.Context(), rc, SignInInput{Email: "locked@example.com", Password: "password123"})
	require.True(t, result.Success, result.Error)
}

func TestSignUpOrInRegistersNewUser(t *testing.T) {
	f := newAuthFixture(t)
	rc, _ := newRequest()

	result := f.svc.SignUpOrIn(t.Context(), rc, SignUpInput{Email: "new@example.com", Password: "password123", Name: "New"}, ProviderCredentials)
	require.True(t, result.Success, result.Error)
	require.Equal(t, ActionSignUp, result.Data.Action)
	require.Equal(t, int64(1), countUsers(t, f.db))
}

func TestSignUpOrInExistingUserRequiresPassword(t *testing.T) {
	f := newAuthFixture(t)
	mustSignUp(t, f, "existing@example.com")
	rc, _ := newRequest()

	result := f.svc.SignUpOrIn(t.Context(), rc, SignUpInput{Email: "existing@example.com", Password: "bad-password"}, ProviderGitHub)
	require.False(t, result.Success)
	require.Equal(t, "INVALID_PASSWORD", result.Error)

	result = f.svc.SignUpOrIn(t.Context(), rc, SignUpInput{Email: "existing@example.com", Password: "password123"}, ProviderCredentials)
	require.True(t, result.Success, result.Error)
	require.Equal(t, ActionSignIn, result.Data.Action)
}

func TestSignUpOrInGoogleSkipsPassword(t *testing.T) {
	f := newAuthFixture(t)
	mustSignUp(t, f, "google@example.com")
	rc, _ := newRequest()

	result := f.svc.SignUpOrIn(t.Context(), rc, SignUpInput{Email: "google@example.com"}, ProviderGoogle)
	require.True(t, result.Success, result.Error)
	require.Equal(t, ActionSignIn, result.Data.Action)
}

func TestAuthUserResolvesCookieSession(t *testing.T) {
	f := newAuthFixture(t)
	signedUp := mustSignUp(t, f, "me@example.com")

	rc := requestWithCookie(auth.AuthCookieName, signedUp.Session.SessionToken)
	result, redirect := f.svc.AuthUser(t.Context(), rc, true)

	require.True(t, result.Success, result.Error)
	require.Empty(t, redirect)
	require.Equal(t, signedUp.User.ID, result.Data.ID)
}

func TestAuthUserFailureWithoutRedirect(t *testing.T) {
	f := newAuthFixture(t)
	rc, rec := newRequest()

	result, redirect := f.svc.AuthUser(t.Context(), rc, false)
	require.False(t, result.Success)
	require.Equal(t, "NO_SESSION_TOKEN", result.Error)
	require.Empty(t, redirect)
	require.Nil(t, findCookie(rec, auth.AuthCookieName))
}

func TestAuthUserFailureRedirectsWithoutReason(t *testing.T) {
	f := newAuthFixture(t)

	for _, token := range []string{"", auth.GenerateSessionToken()} {
		rc := requestWithCookie(auth.AuthCookieName, token)
		result, redirect := f.svc.AuthUser(t.Context(), rc, true)

		require.False(t, result.Success)
		require.Equal(t, SignInFailurePath, redirect)
		_, stillSet := rc.Cookie(auth.AuthCookieName)
		require.False(t, stillSet)
	}
}

func TestSignOutClearsCookieOnly(t *testing.T) {
	f := newAuthFixture(t)
	signedUp := mustSignUp(t, f, "bye@example.com")

	rc, rec := newRequest()
	target := f.svc.SignOut(rc, "/dashboard")
	require.Equal(t, "/dashboard", target)

	cookie := findCookie(rec, auth.AuthCookieName)
	require.NotNil(t, cookie)
	require.Equal(t, -1, cookie.MaxAge)

	var session models.Session
	require.NoError(t, f.db.Take(&session, "session_token = ?", signedUp.Session.SessionToken).Error)
	require.Equal(t, models.SessionStatusActive, session.Status)
}

func TestSafeReturnPath(t *testing.T) {
	cases := map[string]string{
		"":                     "/",
		"/":                    "/",
		"/chats?id=1":          "/chats?id=1",
		"https://evil.example": "/",
		"//evil.example":       "/",
		"/\\evil.example":      "/",
		"javascript:alert(1)":  "/",
		SignInFailurePath:      SignInFailurePath,
	}
	for in, want := range cases {
		require.Equal(t, want, safeReturnPath(in), in)
	}
}
