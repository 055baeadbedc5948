package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/config"
	"github.com/rianAnugrah/xyz-portal-backend/internal/database"
	"github.com/rianAnugrah/xyz-portal-backend/internal/middleware"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/analytics"
	pkgcron "github.com/rianAnugrah/xyz-portal-backend/internal/pkg/cron"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/jwt"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/metrics"
	pkgredis "github.com/rianAnugrah/xyz-portal-backend/internal/pkg/redis"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/storage"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the external connections the application runs on. Redis may be
// nil, which disables rate limiting, idempotence and the report cache.
type Deps struct {
	DB    *gorm.DB
	Redis *pkgredis.Client
	Store storage.ObjectStore
}

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	db      *gorm.DB
	rc      *pkgredis.Client
	store   storage.ObjectStore
	queue   *taskqueue.Queue
	metrics *metrics.Metrics
	signer  *jwt.Signer
	logger  *zap.Logger
	sched   *pkgcron.Scheduler
	cancel  context.CancelFunc
}

// New connects to the database, redis (when enabled) and object storage, then
// builds the application on top of them.
func New(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var rc *pkgredis.Client
	if cfg.Redis.Enabled {
		rc, err = pkgredis.Connect(ctx, cfg.Redis.URLValue())
		if err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		_ = database.Close(db)
		if rc != nil {
			_ = rc.Close()
		}
		return nil, fmt.Errorf("storage: %w", err)
	}

	return NewWithDeps(logger, cfg, Deps{DB: db, Redis: rc, Store: store})
}

// NewWithDeps wires routes, middleware and background jobs over deps.
func NewWithDeps(logger *zap.Logger, cfg *config.AppConfig, deps Deps) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if deps.DB == nil {
		return nil, errors.New("database is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch {
	case gin.Mode() == gin.TestMode:
	case cfg.IsDev():
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	queue := taskqueue.New(logger, taskqueue.Options{})

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics(m))
	router.Use(cors.New(corsConfig(cfg)))

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:     cfg,
		router:  router,
		db:      deps.DB,
		rc:      deps.Redis,
		store:   deps.Store,
		queue:   queue,
		metrics: m,
		signer:  jwt.NewSigner(resolveJWTSecret(cfg, logger), cfg.JWTTTL()),
		logger:  logger,
		sched:   pkgcron.New(logger),
		cancel:  cancel,
	}

	analyticsSvc := analytics.NewService(a.db, analytics.Options{
		Queue:     queue,
		Metrics:   m,
		Logger:    logger,
		BatchSize: cfg.Analytics.BatchSize,
	})
	registerCronJobs(a.sched, a.db, a.rc, analyticsSvc, cfg, logger)
	a.registerRoutes(analyticsSvc)

	a.sched.Start(ctx)
	return a, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs, drains queued tasks and closes connections.
func (a *App) Shutdown(ctx context.Context) error {
	a.cancel()
	a.sched.Wait()

	var errs []error
	if err := a.queue.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("task queue: %w", err))
	}
	if a.rc != nil {
		if err := a.rc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if err := database.Close(a.db); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	return errors.Join(errs...)
}
