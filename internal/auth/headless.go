package auth

import "github.com/google/uuid"

// HeadlessSessions hands out identifiers correlating anonymous chat visitors across requests.
// The identifier lives only in the visitor's cookie and carries no authority.
type HeadlessSessions struct {
	cookies CookieConfig
	newID   func() string
}

// NewHeadlessSessions builds a HeadlessSessions using random UUIDs.
func NewHeadlessSessions(cookies CookieConfig) *HeadlessSessions {
	return &HeadlessSessions{cookies: cookies, newID: uuid.NewString}
}

// GetOrCreateHeadlessSessionID returns the identifier from the request cookie verbatim, or
// generates one and sets the cookie.
func (h *HeadlessSessions) GetOrCreateHeadlessSessionID(rc *RequestContext) string {
	if id, ok := rc.Cookie(HeadlessCookieName); ok && id != "" {
		return id
	}

	id := h.newID()
	rc.SetCookie(h.cookies.HeadlessCookie(id))
	return id
}
