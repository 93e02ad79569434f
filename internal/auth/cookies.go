package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	// AuthCookieName holds the session token.
	AuthCookieName = "auth.session.token"
	// HeadlessCookieName holds the anonymous chat correlation identifier.
	HeadlessCookieName = "headless.session.id"

	headlessCookieMaxAge = 30 * 24 * 60 * 60
	developmentDomain    = ".app.localhost"
)

// CookieConfig controls the attributes of cookies issued by the identity layer.
type CookieConfig struct {
	Environment string
	RootDomain  string
}

// Production reports whether cookies must carry the Secure flag.
func (c CookieConfig) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Domain is the cookie domain shared by every tenant subdomain. An empty root domain
// outside development yields a host-only cookie.
func (c CookieConfig) Domain() string {
	if strings.EqualFold(c.Environment, "development") {
		return developmentDomain
	}
	root := strings.Trim(strings.TrimSpace(c.RootDomain), ".")
	if root == "" {
		return ""
	}
	return "." + root
}

// SessionCookie builds the auth cookie carrying token until expiresAt.
func (c CookieConfig) SessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain(),
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   c.Production(),
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie builds a cookie that removes the auth cookie from the browser.
func (c CookieConfig) ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain(),
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Production(),
		SameSite: http.SameSiteLaxMode,
	}
}

// HeadlessCookie builds the 30 day headless identifier cookie.
func (c CookieConfig) HeadlessCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     HeadlessCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   headlessCookieMaxAge,
		HttpOnly: true,
		Secure:   c.Production(),
		SameSite: http.SameSiteLaxMode,
	}
}
