package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/jwt"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, redis.Wrap(rdb)
}

func post(r *gin.Engine, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitPerMinuteWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, rc := newRedis(t)

	now := time.Date(2025, 1, 1, 10, 0, 30, 0, time.UTC)
	rateLimitClock = func() time.Time { return now }
	t.Cleanup(func() { rateLimitClock = time.Now })

	signer := jwt.NewSigner("secret", time.Hour)
	token, err := signer.Sign(1, "desk@xyz.id", "editor")
	require.NoError(t, err)

	r := gin.New()
	r.Use(OptionalAuth(signer))
	r.POST("/analytics", RateLimit(rc, "analytics", 2, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, post(r, "/analytics", "{}", nil).Code)
	now = now.Add(20 * time.Second)
	assert.Equal(t, http.StatusOK, post(r, "/analytics", "{}", nil).Code)

	now = now.Add(5 * time.Second)
	rec := post(r, "/analytics", "{}", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "6", rec.Header().Get("Retry-After"))

	rec = post(r, "/analytics", "{}", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, rec.Code)

	now = now.Add(10 * time.Second)
	assert.Equal(t, http.StatusOK, post(r, "/analytics", "{}", nil).Code)
}

func TestRateLimitSeparatesClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, rc := newRedis(t)

	r := gin.New()
	r.POST("/analytics", RateLimit(rc, "analytics", 1, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/analytics", nil)
		req.RemoteAddr = ip + ":4000"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestIdempotenceRejectsReplay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, rc := newRedis(t)

	calls := 0
	r := gin.New()
	r.Use(Idempotence(rc))
	r.POST("/articles", func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})

	key := map[string]string{"X-Idempotence-Key": "abc"}
	assert.Equal(t, http.StatusCreated, post(r, "/articles", `{"title":"a"}`, key).Code)
	assert.Equal(t, http.StatusConflict, post(r, "/articles", `{"title":"a"}`, key).Code)
	assert.Equal(t, 1, calls)

	got, err := mr.Get("xyz:idempotence:abc")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
	assert.Greater(t, mr.TTL("xyz:idempotence:abc"), time.Duration(0))

	mr.FastForward(61 * time.Second)
	assert.Equal(t, http.StatusCreated, post(r, "/articles", `{"title":"a"}`, key).Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotenceFingerprintsBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, rc := newRedis(t)

	r := gin.New()
	r.Use(Idempotence(rc))
	r.POST("/articles", func(c *gin.Context) { c.Status(http.StatusCreated) })

	assert.Equal(t, http.StatusCreated, post(r, "/articles", `{"title":"a"}`, nil).Code)
	assert.Equal(t, http.StatusConflict, post(r, "/articles", `{"title":"a"}`, nil).Code)
	assert.Equal(t, http.StatusCreated, post(r, "/articles", `{"title":"b"}`, nil).Code)
}

func TestIdempotenceReleasesKeyOnFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, rc := newRedis(t)

	calls := 0
	r := gin.New()
	r.Use(Idempotence(rc))
	r.POST("/articles", func(c *gin.Context) {
		calls++
		c.Status(http.StatusBadRequest)
	})

	key := map[string]string{"X-Idempotence-Key": "retry-me"}
	assert.Equal(t, http.StatusBadRequest, post(r, "/articles", "{}", key).Code)
	assert.False(t, mr.Exists("xyz:idempotence:retry-me"))
	assert.Equal(t, http.StatusBadRequest, post(r, "/articles", "{}", key).Code)
	assert.Equal(t, 2, calls)
}

func TestReportCacheServesHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, rc := newRedis(t)

	calls := 0
	r := gin.New()
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.GET("/chart/daily", ReportCache(rc, ReportCacheOptions{TTL: time.Minute}), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"message": "Daily chart", "data": []int{1, 2}})
	})
	r.GET("/chart/broken", ReportCache(rc, ReportCacheOptions{TTL: time.Minute}), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusInternalServerError, gin.H{"message": "boom"})
	})

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	first := get("/chart/daily")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get("/chart/daily")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.True(t, strings.HasPrefix(second.Header().Get("Content-Type"), "application/json"))
	assert.Equal(t, 1, calls)

	bypass := get("/chart/daily?ts=1")
	assert.Empty(t, bypass.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)

	assert.Equal(t, http.StatusInternalServerError, get("/chart/broken").Code)
	assert.Equal(t, "MISS", get("/chart/broken").Header().Get("X-Cache"))
	assert.Equal(t, 4, calls)

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, "MISS", get("/chart/daily").Header().Get("X-Cache"))
	assert.Equal(t, 5, calls)
}

func TestPurgeReportCache(t *testing.T) {
	mr, rc := newRedis(t)
	require.NoError(t, mr.Set(ReportCachePrefix+"/api/analytics/chart/daily", "{}"))
	require.NoError(t, mr.Set("xyz:other", "keep"))

	require.NoError(t, PurgeReportCache(t.Context(), rc))
	assert.False(t, mr.Exists(ReportCachePrefix+"/api/analytics/chart/daily"))
	assert.True(t, mr.Exists("xyz:other"))
}
