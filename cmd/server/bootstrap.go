package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/botspace/internal/api"
	"github.com/charlesng35/botspace/internal/app"
	"github.com/charlesng35/botspace/internal/app/maintenance"
	iauth "github.com/charlesng35/botspace/internal/auth"
	"github.com/charlesng35/botspace/internal/auth/providers"
	"github.com/charlesng35/botspace/internal/cache"
	"github.com/charlesng35/botspace/internal/database"
	"github.com/charlesng35/botspace/internal/middleware"
	"github.com/charlesng35/botspace/internal/services"
	"github.com/charlesng35/botspace/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Cache      cache.Store
	Redis      *cache.RedisStore
	SessionSvc *iauth.SessionService
	Cleaner    *maintenance.Cleaner
	Router     *gin.Engine
}

// bootstrapRuntime initialises the database, cache, services and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dbStore := cache.NewDatabaseStore(stack.DB)
	stack.Cache = dbStore

	if cfg.Cache.Redis.Enabled {
		redisStore, redisErr := cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig())
		if redisErr != nil {
			log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(redisErr))
		} else {
			stack.Redis = redisStore
			stack.Cache = redisStore
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	sessionCfg := cfg.SessionServiceConfig()
	if cfg.Auth.Session.CacheEnabled {
		sessionCfg.Cache = iauth.NewSessionCache(stack.Cache)
	}

	stack.SessionSvc, err = iauth.NewSessionService(stack.DB, sessionCfg)
	if err != nil {
		return nil, fmt.Errorf("initialise session service: %w", err)
	}

	local, err := providers.NewLocalProvider(stack.DB, cfg.Auth.LocalProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise local provider: %w", err)
	}

	authSvc, err := services.NewAuthService(stack.DB, stack.SessionSvc, local, nil)
	if err != nil {
		return nil, fmt.Errorf("initialise auth service: %w", err)
	}

	workspaceSvc, err := services.NewWorkspaceService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise workspace service: %w", err)
	}

	if cfg.Maintenance.Enabled {
		stack.Cleaner = maintenance.NewCleaner(dbStore, stack.SessionSvc,
			maintenance.WithCachePurgeSchedule(cfg.Maintenance.CachePurge),
			maintenance.WithSessionsGaugeSchedule(cfg.Maintenance.SessionsGauge),
		)
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	deps := api.Dependencies{
		DB:         stack.DB,
		Config:     cfg,
		Sessions:   stack.SessionSvc,
		Headless:   iauth.NewHeadlessSessions(cfg.CookieConfig()),
		Auth:       authSvc,
		Workspaces: workspaceSvc,
		RateStore:  middleware.NewRateStore(stack.Cache),
	}
	if stack.Redis != nil {
		deps.Redis = stack.Redis
	}

	stack.Router, err = api.NewRouter(deps)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		select {
		case <-s.Cleaner.Stop().Done():
		case <-ctx.Done():
			log.Warn("maintenance jobs still running at shutdown")
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		closeDatabase(db, logger.WithModule("database"))
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
