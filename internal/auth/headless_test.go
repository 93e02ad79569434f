package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeadlessSessionIDReturnsExistingCookie(t *testing.T) {
	headless := NewHeadlessSessions(CookieConfig{Environment: "production"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: HeadlessCookieName, Value: "existing-id"})
	rec := httptest.NewRecorder()

	id := headless.GetOrCreateHeadlessSessionID(NewRequestContext(req, rec))

	require.Equal(t, "existing-id", id)
	require.Empty(t, rec.Result().Cookies())
}

func TestHeadlessSessionIDIssuesCookie(t *testing.T) {
	headless := NewHeadlessSessions(CookieConfig{Environment: "development"})
	rec := httptest.NewRecorder()
	rc := NewRequestContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	id := headless.GetOrCreateHeadlessSessionID(rc)
	require.NotEmpty(t, id)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, HeadlessCookieName, cookies[0].Name)
	require.Equal(t, id, cookies[0].Value)
	require.Equal(t, 30*24*60*60, cookies[0].MaxAge)
	require.True(t, cookies[0].HttpOnly)
	require.False(t, cookies[0].Secure)

	// a second call in the same request reuses the identifier
	require.Equal(t, id, headless.GetOrCreateHeadlessSessionID(rc))
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestHeadlessSessionIDsAreDistinct(t *testing.T) {
	headless := NewHeadlessSessions(CookieConfig{})

	first := headless.GetOrCreateHeadlessSessionID(newRequestContext())
	second := headless.GetOrCreateHeadlessSessionID(newRequestContext())

	require.NotEqual(t, first, second)
}
