package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/botspace/internal/api"
	"github.com/charlesng35/botspace/internal/app"
	iauth "github.com/charlesng35/botspace/internal/auth"
	"github.com/charlesng35/botspace/internal/auth/providers"
	"github.com/charlesng35/botspace/internal/cache"
	sharedtestutil "github.com/charlesng35/botspace/internal/database/testutil"
	"github.com/charlesng35/botspace/internal/middleware"
	"github.com/charlesng35/botspace/internal/services"
	"github.com/charlesng35/botspace/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
// Cookies set by responses are replayed on later requests, like a browser would.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Config   *app.Config
	Router   *gin.Engine
	Sessions *iauth.SessionService
	cookies  map[string]*http.Cookie
}

// Option tweaks the configuration before the router is built.
type Option func(cfg *app.Config)

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...Option) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	cfg := &app.Config{
		Server: app.ServerConfig{Environment: "development"},
		Auth: app.AuthConfig{
			Session:   app.SessionSettings{Duration: 24 * time.Hour, CacheEnabled: true, MaxActive: 5},
			RateLimit: app.RateLimitSettings{Enabled: true, Requests: 1000, Window: time.Minute},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store := cache.NewDatabaseStore(db)

	sessionCfg := cfg.SessionServiceConfig()
	if cfg.Auth.Session.CacheEnabled {
		sessionCfg.Cache = iauth.NewSessionCache(store)
	}
	sessions, err := iauth.NewSessionService(db, sessionCfg)
	require.NoError(t, err)

	local, err := providers.NewLocalProvider(db, cfg.Auth.LocalProviderConfig())
	require.NoError(t, err)

	authSvc, err := services.NewAuthService(db, sessions, local, nil)
	require.NoError(t, err)

	workspaces, err := services.NewWorkspaceService(db)
	require.NoError(t, err)

	router, err := api.NewRouter(api.Dependencies{
		DB:         db,
		Config:     cfg,
		Sessions:   sessions,
		Headless:   iauth.NewHeadlessSessions(cfg.CookieConfig()),
		Auth:       authSvc,
		Workspaces: workspaces,
		RateStore:  middleware.NewRateStore(store),
	})
	require.NoError(t, err)

	return &Env{
		T:        t,
		DB:       db,
		Config:   cfg,
		Router:   router,
		Sessions: sessions,
		cookies:  make(map[string]*http.Cookie),
	}
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// SignUp registers a user through the API and keeps the issued session cookie.
func (e *Env) SignUp(email, password, name string) *httptest.ResponseRecorder {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/sign-up", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())
	return w
}

// Cookie returns the cookie currently held for name.
func (e *Env) Cookie(name string) (*http.Cookie, bool) {
	cookie, ok := e.cookies[name]
	return cookie, ok
}

// SetCookie stores a cookie to replay on subsequent requests.
func (e *Env) SetCookie(cookie *http.Cookie) {
	e.cookies[cookie.Name] = cookie
}

// ClearCookies forgets every stored cookie.
func (e *Env) ClearCookies() {
	e.cookies = make(map[string]*http.Cookie)
}

// Request executes an HTTP request against the test router, JSON encoding body and
// replaying stored cookies.
func (e *Env) Request(method, path string, body any) *httptest.ResponseRecorder {
	e.T.Helper()

	buf := bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range e.cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)

	e.captureCookies(w.Result())
	return w
}

func (e *Env) captureCookies(resp *http.Response) {
	for _, cookie := range resp.Cookies() {
		if cookie.MaxAge < 0 {
			delete(e.cookies, cookie.Name)
			continue
		}
		e.cookies[cookie.Name] = cookie
	}
}
