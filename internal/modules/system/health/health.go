// Package health serves liveness and the admin views over background work.
package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/database"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/cron"
	pkgredis "github.com/rianAnugrah/xyz-portal-backend/internal/pkg/redis"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/response"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/taskqueue"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

type Handler struct {
	db      *gorm.DB
	rc      *pkgredis.Client
	sched   *cron.Scheduler
	queue   *taskqueue.Queue
	started time.Time
}

// NewHandler builds the health handler. rc and queue may be nil.
func NewHandler(db *gorm.DB, rc *pkgredis.Client, sched *cron.Scheduler, queue *taskqueue.Queue) *Handler {
	return &Handler{db: db, rc: rc, sched: sched, queue: queue, started: time.Now()}
}

type status struct {
	Status   string           `json:"status"`
	Database bool             `json:"database"`
	Redis    *bool            `json:"redis,omitempty"`
	Uptime   string           `json:"uptime"`
	Queue    *taskqueue.Stats `json:"queue,omitempty"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/health", h.health)

	admin := rg.Group("/health", authMW)
	admin.GET("/cron", h.cronList)
	admin.POST("/cron/run/:name", h.cronRun)
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	out := status{
		Status:   "ok",
		Database: database.Ping(ctx, h.db) == nil,
		Uptime:   humanizeDuration(time.Since(h.started)),
	}
	healthy := out.Database
	if h.rc != nil {
		redisOK := h.rc.Ping(ctx) == nil
		out.Redis = &redisOK
		healthy = healthy && redisOK
	}
	if h.queue != nil {
		stats := h.queue.Stats()
		out.Queue = &stats
	}

	code := http.StatusOK
	if !healthy {
		out.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, out)
}

func (h *Handler) cronList(c *gin.Context) {
	response.OK(c, "Scheduled jobs", h.sched.List())
}

func (h *Handler) cronRun(c *gin.Context) {
	err := h.sched.Run(c.Request.Context(), c.Param("name"))
	switch {
	case err == nil:
		response.OK(c, "Job finished", nil)
	case errors.Is(err, cron.ErrUnknownJob):
		response.NotFound(c, "Job not found")
	case errors.Is(err, cron.ErrJobRunning):
		response.Conflict(c, "Job is already running")
	default:
		response.InternalError(c, "Job failed", err)
	}
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return d.Truncate(time.Second).String()
	case d < time.Hour:
		return d.Truncate(time.Minute).String()
	case d < 24*time.Hour:
		return d.Truncate(time.Hour).String()
	default:
		return d.Truncate(24 * time.Hour).String()
	}
}
