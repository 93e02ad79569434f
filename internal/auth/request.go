package auth

import (
	"net/http"
	"strings"
)

// UnknownIP is recorded when no forwarding header identifies the client.
const UnknownIP = "Unknown"

// RequestContext carries the request headers and cookies the session layer reads, and the
// response it writes cookies to. Cookies set through it are visible to later reads in the
// same request.
type RequestContext struct {
	header  http.Header
	cookies map[string]string
	writer  http.ResponseWriter
}

// NewRequestContext captures r. w may be nil when no cookies will be written.
func NewRequestContext(r *http.Request, w http.ResponseWriter) *RequestContext {
	rc := &RequestContext{
		header:  http.Header{},
		cookies: map[string]string{},
		writer:  w,
	}
	if r == nil {
		return rc
	}

	rc.header = r.Header.Clone()
	for _, cookie := range r.Cookies() {
		if _, seen := rc.cookies[cookie.Name]; !seen {
			rc.cookies[cookie.Name] = cookie.Value
		}
	}
	return rc
}

// Header returns the first value of the named request header. A nil RequestContext
// behaves as a request without headers or cookies whose cookie writes are dropped.
func (rc *RequestContext) Header(name string) string {
	if rc == nil {
		return ""
	}
	return rc.header.Get(name)
}

// Cookie returns the named cookie value.
func (rc *RequestContext) Cookie(name string) (string, bool) {
	if rc == nil {
		return "", false
	}
	value, ok := rc.cookies[name]
	return value, ok
}

// SetCookie writes cookie to the response. A negative MaxAge removes it.
func (rc *RequestContext) SetCookie(cookie *http.Cookie) {
	if rc == nil || cookie == nil {
		return
	}
	if rc.writer != nil {
		http.SetCookie(rc.writer, cookie)
	}
	if cookie.MaxAge < 0 {
		delete(rc.cookies, cookie.Name)
		return
	}
	rc.cookies[cookie.Name] = cookie.Value
}

// UserAgent returns the raw User-Agent header.
func (rc *RequestContext) UserAgent() string {
	return rc.Header("User-Agent")
}

// ClientIP resolves the client address from X-Forwarded-For (first hop), then X-Real-IP,
// falling back to UnknownIP.
func (rc *RequestContext) ClientIP() string {
	if forwarded := rc.Header("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(rc.Header("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownIP
}
