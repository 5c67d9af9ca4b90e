package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gratitree/core/internal/config"
	"github.com/gratitree/core/internal/database"
	"github.com/gratitree/core/internal/middleware"
	"github.com/gratitree/core/internal/modules/entry"
	"github.com/gratitree/core/internal/modules/gateway"
	"github.com/gratitree/core/internal/modules/livesync"
	jwtpkg "github.com/gratitree/core/internal/pkg/jwt"
	pkgredis "github.com/gratitree/core/internal/pkg/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	db      *mongo.Database
	rc      *pkgredis.Client
	hub     *gateway.Hub
	manager *livesync.Manager
	logger  *zap.Logger
	cancel  context.CancelFunc
}

// New initializes the application: config → DB → Redis → gateway → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if cfg.JWTSecret != "" {
		jwtpkg.SetSecret(cfg.JWTSecret)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.Redis.URLValue())
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			return originAllowed(patterns, origin)
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	hub := gateway.NewHub(rc, logger, func(token string) bool {
		_, err := jwtpkg.Parse(token)
		return err == nil
	})

	store := entry.NewMongoStore(db)
	entryService := entry.NewService(store)
	manager := livesync.NewManager(store, entryService, hub, logger)
	hub.SetDayListener(manager)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	app := &App{
		cfg:     cfg,
		router:  router,
		db:      db,
		rc:      rc,
		hub:     hub,
		manager: manager,
		logger:  logger,
		cancel:  cancel,
	}
	app.registerRoutes(store, entryService)

	return app, nil
}

// originAllowed matches a request origin against the configured allowlist:
// an exact host[:port] or a "*.domain" suffix wildcard, the two forms
// allowed_origins documents.
func originAllowed(patterns []string, origin string) bool {
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host = u.Host
	}
	for _, pattern := range patterns {
		if pattern == host {
			return true
		}
		if strings.HasPrefix(pattern, "*.") && strings.HasSuffix(host, pattern[1:]) {
			return true
		}
	}
	return false
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops the live subscription, the hub loop and the connections.
func (a *App) Shutdown() {
	a.manager.Shutdown()
	a.cancel()
	if err := a.rc.Close(); err != nil {
		a.logger.Warn("redis close failed", zap.Error(err))
	}
	if err := database.Disconnect(a.db); err != nil {
		a.logger.Warn("mongo disconnect failed", zap.Error(err))
	}
}
