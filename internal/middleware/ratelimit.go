package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/redis"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/response"
	"go.uber.org/zap"
)

const rateLimitWindow = time.Minute

var rateLimitClock = time.Now

// RateLimit caps anonymous requests per client IP per minute using a fixed
// window redis counter. Redis errors let the request through.
func RateLimit(rc *redis.Client, scope string, max int, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil || max <= 0 || IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		now := rateLimitClock()
		window := now.Truncate(rateLimitWindow)
		key := fmt.Sprintf("xyz:rate_limit:%s:%s:%d", scope, ip, window.Unix())
		count, err := rc.IncrWindow(c.Request.Context(), key, rateLimitWindow+time.Second)
		if err != nil {
			if log != nil {
				log.Warn("rate limit check failed", zap.Error(err))
			}
			c.Next()
			return
		}

		if count > int64(max) {
			retry := int(window.Add(rateLimitWindow).Sub(now).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
