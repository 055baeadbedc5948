package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/system/health"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/cron"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/taskqueue"
	"github.com/rianAnugrah/xyz-portal-backend/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, sched *cron.Scheduler, queue *taskqueue.Queue) *gin.Engine {
	t.Helper()
	r, _ := testsupport.NewRouter()
	pass := func(c *gin.Context) { c.Next() }
	health.NewHandler(testsupport.NewDB(t), nil, sched, queue).RegisterRoutes(r.Group(""), pass)
	return r
}

func TestHealthReportsDatabaseAndQueue(t *testing.T) {
	queue := taskqueue.New(nil, taskqueue.Options{Workers: 1})
	t.Cleanup(func() { _ = queue.Close(context.Background()) })
	r := newRouter(t, cron.New(nil), queue)

	rec, _ := testsupport.Do(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["database"])
	assert.NotContains(t, body, "redis")
	assert.Contains(t, body, "queue")
	assert.NotEmpty(t, body["uptime"])
}

func TestCronRun(t *testing.T) {
	sched := cron.New(nil)
	ran := 0
	sched.Register(cron.Job{Name: "ok", Interval: time.Hour, Fn: func(context.Context) error {
		ran++
		return nil
	}})
	sched.Register(cron.Job{Name: "broken", Interval: time.Hour, Fn: func(context.Context) error {
		return errors.New("boom")
	}})
	r := newRouter(t, sched, nil)

	tests := []struct {
		name string
		job  string
		want int
	}{
		{"runs job", "ok", http.StatusOK},
		{"unknown job", "missing", http.StatusNotFound},
		{"failing job", "broken", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := testsupport.Do(t, r, http.MethodPost, "/health/cron/run/"+tt.job, nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Equal(t, 1, ran)

	_, env := testsupport.Do(t, r, http.MethodGet, "/health/cron", nil)
	var jobs []cron.ListItem
	testsupport.Decode(t, env.Data, &jobs)
	require.Len(t, jobs, 2)
	assert.Equal(t, "broken", jobs[0].Name)
	assert.Equal(t, cron.StatusReject, jobs[0].Status)
	assert.Equal(t, "boom", jobs[0].Message)
	assert.Equal(t, cron.StatusFulfill, jobs[1].Status)
}
