package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/botspace/internal/app"
	iauth "github.com/charlesng35/botspace/internal/auth"
	"github.com/charlesng35/botspace/internal/handlers"
	"github.com/charlesng35/botspace/internal/middleware"
	"github.com/charlesng35/botspace/internal/monitoring"
	"github.com/charlesng35/botspace/internal/monitoring/checks"
	"github.com/charlesng35/botspace/internal/services"
)

const healthCheckTimeout = 2 * time.Second

// Dependencies bundles the services the HTTP surface is built from.
type Dependencies struct {
	DB         *gorm.DB
	Config     *app.Config
	Sessions   *iauth.SessionService
	Headless   *iauth.HeadlessSessions
	Auth       *services.AuthService
	Workspaces *services.WorkspaceService
	RateStore  middleware.RateStore
	// Redis is probed by /health when set.
	Redis      checks.Pinger
}

func (d Dependencies) validate() error {
	switch {
	case d.DB == nil:
		return errors.New("database handle must be provided")
	case d.Config == nil:
		return errors.New("config must be provided")
	case d.Sessions == nil:
		return errors.New("session service must be provided")
	case d.Headless == nil:
		return errors.New("headless sessions must be provided")
	case d.Auth == nil:
		return errors.New("auth service must be provided")
	case d.Workspaces == nil:
		return errors.New("workspace service must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	registerHealthRoutes(r, deps)

	api := r.Group("/api")
	requireSession := middleware.SessionAuth(deps.Sessions)

	registerAuthRoutes(api, deps)
	registerSessionRoutes(api, requireSession, deps)
	registerWorkspaceRoutes(api, requireSession, deps)

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

func registerHealthRoutes(r *gin.Engine, deps Dependencies) {
	monCfg := deps.Config.Monitoring

	if monCfg.Health.Enabled {
		checker := monitoring.NewChecker(
			checks.Database(deps.DB, healthCheckTimeout),
			checks.Redis(deps.Redis, healthCheckTimeout),
		)
		r.GET("/health", handlers.Health(checker))
	}

	if monCfg.Prometheus.Enabled {
		endpoint := strings.TrimSpace(monCfg.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}
}
