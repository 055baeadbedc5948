package app

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/middleware"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/auth/auth"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/auth/user"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/content/article"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/content/category"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/content/editorchoice"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/content/headline"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/platform/access"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/platform/platform"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/analytics"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/storage/file"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/system/health"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/mail"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/response"
)

const apiPrefix = "/api"

func (a *App) registerRoutes(analyticsSvc *analytics.Service) {
	r := a.router
	db := a.db
	authMW := middleware.Auth(a.signer)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, response.ErrorBody{Message: "Method not allowed"})
	})

	// Infrastructure
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))
	health.NewHandler(db, a.rc, a.sched, a.queue).RegisterRoutes(r.Group(""), authMW)

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(a.signer))
	api.Use(gzip.Gzip(gzip.DefaultCompression))

	// Analytics: ingestion is rate limited per IP, chart reports are cached.
	ingestMW := []gin.HandlerFunc{
		middleware.RateLimit(a.rc, "analytics", a.cfg.Analytics.IngestRateLimit, a.logger),
	}
	reportMW := []gin.HandlerFunc{
		middleware.ReportCache(a.rc, middleware.ReportCacheOptions{TTL: a.cfg.CacheTTL(), Metrics: a.metrics}),
	}
	analytics.NewHandler(analyticsSvc, ingestMW, reportMW).RegisterRoutes(api, authMW)

	var authOpts []auth.Option
	if a.cfg.Mail.Enable {
		authOpts = append(authOpts, auth.WithResetMail(mail.New(a.cfg.Mail), a.cfg.Mail.ResetURL))
	}
	auth.NewHandler(auth.NewService(db, a.signer, a.logger, authOpts...)).RegisterRoutes(api, authMW)

	// CMS writes reject replays of the same request within a minute.
	cms := api.Group("", middleware.Idempotence(a.rc))

	articleSvc := article.NewService(db, article.Options{
		Location: a.cfg.Location(),
		Cards:    article.CardPresenter{ImageBase: a.cfg.Storage.PublicURL},
	})
	user.NewHandler(user.NewService(db)).RegisterRoutes(cms, authMW)
	article.NewHandler(articleSvc).RegisterRoutes(cms, authMW)
	category.NewHandler(category.NewService(db)).RegisterRoutes(cms, authMW)
	headline.NewHandler(headline.NewService(db, articleSvc)).RegisterRoutes(cms, authMW)
	editorchoice.NewHandler(editorchoice.NewService(db, articleSvc)).RegisterRoutes(cms, authMW)
	platform.NewHandler(platform.NewService(db)).RegisterRoutes(cms, authMW)
	access.NewHandler(access.NewService(db)).RegisterRoutes(cms, authMW)

	if a.store != nil {
		file.NewHandler(a.store, a.cfg.Storage.MaxUploadBytes(), a.logger).RegisterRoutes(cms, authMW)
	}
}
