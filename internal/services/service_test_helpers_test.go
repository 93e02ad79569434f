package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/botspace/internal/auth"
	"github.com/charlesng35/botspace/internal/auth/providers"
	"github.com/charlesng35/botspace/internal/database/testutil"
	"github.com/charlesng35/botspace/internal/models"
)

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time { return c.current }

func (c *testClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

type authFixture struct {
	db       *gorm.DB
	clock    *testClock
	sessions *auth.SessionService
	svc      *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	clock := &testClock{current: time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC)}

	sessions, err := auth.NewSessionService(db, auth.SessionConfig{
		Duration: 24 * time.Hour,
		Clock:    clock.Now,
		Cookies:  auth.CookieConfig{Environment: "production", RootDomain: "botspace.test"},
	})
	require.NoError(t, err)

	local, err := providers.NewLocalProvider(db, providers.LocalConfig{
		LockoutThreshold: 3,
		LockoutDuration:  time.Minute,
		Clock:            clock.Now,
	})
	require.NoError(t, err)

	svc, err := NewAuthService(db, sessions, local, clock.Now)
	require.NoError(t, err)

	return &authFixture{db: db, clock: clock, sessions: sessions, svc: svc}
}

func newRequest() (*auth.RequestContext, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Real-IP", "192.0.2.10")
	rec := httptest.NewRecorder()
	return auth.NewRequestContext(req, rec), rec
}

func requestWithCookie(name, value string) *auth.RequestContext {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: name, Value: value})
	return auth.NewRequestContext(req, httptest.NewRecorder())
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func mustSignUp(t *testing.T, f *authFixture, email string) *AuthPayload {
	t.Helper()

	rc, _ := newRequest()
	result := f.svc.SignUp(t.Context(), rc, SignUpInput{Email: email, Password: "password123", Name: "Test"}, false)
	require.True(t, result.Success, result.Error)
	return result.Data
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	return count
}
