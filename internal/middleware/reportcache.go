package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/metrics"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/redis"
)

const (
	ReportCachePrefix     = "xyz:report-cache:"
	defaultReportCacheMax = 1 << 20 // 1 MiB
)

// ReportCacheOptions configures ReportCache. A zero TTL disables caching.
type ReportCacheOptions struct {
	TTL          time.Duration
	MaxBodyBytes int
	Metrics      *metrics.Metrics
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	BodyBase64  string `json:"body_base64"`
	Body        []byte `json:"-"`
}

type cacheBodyWriter struct {
	gin.ResponseWriter
	body         []byte
	maxBodyBytes int
	overflow     bool
}

func (w *cacheBodyWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *cacheBodyWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *cacheBodyWriter) capture(data []byte) {
	if w.overflow || len(data) == 0 {
		return
	}
	remaining := w.maxBodyBytes - len(w.body)
	if len(data) > remaining {
		w.overflow = true
		w.body = nil
		return
	}
	w.body = append(w.body, data...)
}

// ReportCache stores successful GET report responses in redis keyed by the
// request URI. Requests with a ts/_t query parameter bypass the cache.
func ReportCache(rc *redis.Client, opts ReportCacheOptions) gin.HandlerFunc {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultReportCacheMax
	}
	return func(c *gin.Context) {
		if rc == nil || opts.TTL <= 0 || c.Request.Method != http.MethodGet || hasBypassTimestamp(c) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := ReportCachePrefix + c.Request.URL.RequestURI()
		if payload, ok := readCachedResponse(ctx, rc, cacheKey); ok {
			if opts.Metrics != nil {
				opts.Metrics.CacheHit()
			}
			c.Header("X-Cache", "HIT")
			c.Data(payload.Status, payload.ContentType, payload.Body)
			c.Abort()
			return
		}
		if opts.Metrics != nil {
			opts.Metrics.CacheMiss()
		}

		buffer := &cacheBodyWriter{ResponseWriter: c.Writer, maxBodyBytes: opts.MaxBodyBytes}
		c.Writer = buffer
		c.Header("X-Cache", "MISS")
		c.Next()

		status := c.Writer.Status()
		if status != http.StatusOK || buffer.overflow || len(buffer.body) == 0 {
			return
		}

		raw, err := json.Marshal(cachedResponse{
			Status:      status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			BodyBase64:  base64.StdEncoding.EncodeToString(buffer.body),
		})
		if err != nil {
			return
		}
		_ = rc.Set(ctx, cacheKey, raw, opts.TTL)
	}
}

// PurgeReportCache drops every cached report.
func PurgeReportCache(ctx context.Context, rc *redis.Client) error {
	if rc == nil {
		return nil
	}
	return rc.DelPrefix(ctx, ReportCachePrefix)
}

func readCachedResponse(ctx context.Context, rc *redis.Client, cacheKey string) (cachedResponse, bool) {
	raw, err := rc.Get(ctx, cacheKey)
	if err != nil || raw == "" {
		return cachedResponse{}, false
	}
	var payload cachedResponse
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return cachedResponse{}, false
	}
	if payload.Status <= 0 {
		payload.Status = http.StatusOK
	}
	if payload.ContentType == "" {
		payload.ContentType = "application/json; charset=utf-8"
	}
	body, err := base64.StdEncoding.DecodeString(payload.BodyBase64)
	if err != nil {
		return cachedResponse{}, false
	}
	payload.Body = body
	return payload, true
}

func hasBypassTimestamp(c *gin.Context) bool {
	query := c.Request.URL.Query()
	for _, key := range []string{"ts", "_t"} {
		if strings.TrimSpace(query.Get(key)) != "" {
			return true
		}
	}
	return false
}
