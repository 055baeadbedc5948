package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/redis"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/response"
)

const (
	idempotenceHeader = "X-Idempotence-Key"
	idempotenceTTL    = 60 * time.Second
)

// Idempotence rejects a repeat of the same write (same key header, or same
// body, path, user agent and IP) within 60 seconds with 409.
func Idempotence(rc *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		key, err := resolveIdempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}

		redisKey := fmt.Sprintf("xyz:idempotence:%s", key)
		ctx := c.Request.Context()

		val, err := rc.Get(ctx, redisKey)
		if err != nil {
			c.Next()
			return
		}
		if val != "" {
			msg := "Duplicate request, the same request can only be sent once per minute"
			if val == "0" {
				msg = "The same request is still being processed"
			}
			response.Conflict(c, msg)
			return
		}

		if setErr := rc.Set(ctx, redisKey, "0", idempotenceTTL); setErr != nil {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			_ = rc.SetKeepTTL(ctx, redisKey, "1")
		} else {
			_ = rc.Del(ctx, redisKey)
		}
	}
}

func resolveIdempotenceKey(c *gin.Context) (string, error) {
	if hdr := c.GetHeader(idempotenceHeader); hdr != "" {
		return hdr, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return "", nil
	}

	raw := c.Request.Method + "|" + c.Request.URL.String() + "|" + string(body) + "|" +
		c.Request.UserAgent() + "|" + c.ClientIP() + "|" + NormalizeToken(c.GetHeader("Authorization"))
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:]), nil
}
