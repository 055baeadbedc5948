package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/jwt"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(r *gin.Engine, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	signer := jwt.NewSigner("secret", time.Hour)
	token, err := signer.Sign(7, "desk@xyz.id", "editor")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/private", Auth(signer), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", CurrentUserID(c))
	})
	r.GET("/public", OptionalAuth(signer), func(c *gin.Context) {
		c.String(http.StatusOK, "%t", IsAuthenticated(c))
	})

	tests := []struct {
		name     string
		target   string
		header   string
		wantCode int
		wantBody string
	}{
		{"bearer header", "/private", "Bearer " + token, http.StatusOK, "7"},
		{"lowercase bearer", "/private", "bearer " + token, http.StatusOK, "7"},
		{"query token", "/private?token=" + token, "", http.StatusOK, "7"},
		{"missing", "/private", "", http.StatusUnauthorized, ""},
		{"invalid", "/private", "Bearer nope", http.StatusUnauthorized, ""},
		{"optional anonymous", "/public", "", http.StatusOK, "false"},
		{"optional bad token", "/public", "Bearer nope", http.StatusOK, "false"},
		{"optional signed in", "/public", "Bearer " + token, http.StatusOK, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			rec := serve(r, http.MethodGet, tt.target, headers)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextKeyRequestID)) })

	rec := serve(r, http.MethodGet, "/", map[string]string{"X-Request-ID": "req-1"})
	assert.Equal(t, "req-1", rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))

	rec = serve(r, http.MethodGet, "/", nil)
	assert.Len(t, rec.Body.String(), 36)
}

func TestMetricsLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/articles/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(r, http.MethodGet, "/articles/1", nil)
	serve(r, http.MethodGet, "/articles/2", nil)
	serve(r, http.MethodGet, "/missing", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/articles/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestRedisBackedMiddlewarePassThroughWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(nil, "analytics", 1, nil))
	r.Use(Idempotence(nil))
	r.Use(ReportCache(nil, ReportCacheOptions{TTL: time.Minute}))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rec := serve(r, http.MethodPost, "/", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  Bearer   abc "))
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Equal(t, "", NormalizeToken("   "))
}
