package analytics_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rianAnugrah/xyz-portal-backend/internal/middleware"
	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/analytics"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/jwt"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/metrics"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/taskqueue"
	"github.com/rianAnugrah/xyz-portal-backend/internal/testsupport"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type AnalyticsSuite struct {
	suite.Suite
	db      *gorm.DB
	router  *gin.Engine
	svc     *analytics.Service
	signer  *jwt.Signer
	metrics *metrics.Metrics
}

func TestAnalyticsSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsSuite))
}

func (s *AnalyticsSuite) SetupTest() {
	s.db = testsupport.NewDB(s.T())
	s.metrics = metrics.New()
	s.signer = jwt.NewSigner("test-secret", time.Hour)
	s.svc = analytics.NewService(s.db, analytics.Options{Metrics: s.metrics})

	router, api := testsupport.NewRouter()
	analytics.NewHandler(s.svc, nil, nil).RegisterRoutes(api, middleware.Auth(s.signer))
	s.router = router
}

func (s *AnalyticsSuite) do(method, target string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *AnalyticsSuite) decode(raw json.RawMessage, dst interface{}) {
	s.Require().NoError(json.Unmarshal(raw, dst), string(raw))
}

func ts(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func (s *AnalyticsSuite) seedLog(rec models.AnalyticsLogModel, createdAt string) {
	rec.CreatedAt = ts(createdAt)
	s.Require().NoError(s.db.Create(&rec).Error)
}

func (s *AnalyticsSuite) seedArticle(a models.ArticleModel) {
	s.Require().NoError(s.db.Create(&a).Error)
}

func (s *AnalyticsSuite) articleViews(articleID int64) int64 {
	var a models.ArticleModel
	s.Require().NoError(s.db.Where("article_id = ?", articleID).First(&a).Error)
	return a.Views
}

func (s *AnalyticsSuite) TestIngestStoresEventAndIncrementsViews() {
	s.seedArticle(models.ArticleModel{ArticleID: 123, Title: "Hello", Slug: "hello"})

	w, env := s.do(http.MethodPost, "/api/analytics", map[string]interface{}{
		"visitorId":   "v-1",
		"userAgent":   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Version/17.0 Mobile/15E148 Safari/604.1",
		"url":         "https://xyz.example/hello",
		"type":        "pageview",
		"referrerUrl": "https://www.google.com/",
		"article_id":  "123",
		"duration":    1500,
		"screenWidth": 390,
	})
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(env.Message)

	var logs []models.AnalyticsLogModel
	s.Require().NoError(s.db.Find(&logs).Error)
	s.Require().Len(logs, 1)
	s.Equal("v-1", logs[0].VisitorID)
	s.Equal("123", logs[0].ArticleID)
	s.Equal("Safari", logs[0].Browser)
	s.Equal("iOS", logs[0].OS)
	s.Equal("mobile", logs[0].Device)
	s.Equal("https://www.google.com/", logs[0].ReferrerURL)
	s.Require().NotNil(logs[0].ScreenWidth)
	s.Equal(390, *logs[0].ScreenWidth)
	s.EqualValues(1, s.articleViews(123))
}

func (s *AnalyticsSuite) TestIngestAcceptsNumericArticleID() {
	s.seedArticle(models.ArticleModel{ArticleID: 77, Title: "Numeric", Slug: "numeric"})

	w, _ := s.do(http.MethodPost, "/api/analytics", map[string]interface{}{"visitorId": "v", "article_id": 77})
	s.Equal(http.StatusOK, w.Code)
	s.EqualValues(1, s.articleViews(77))
}

func (s *AnalyticsSuite) TestIngestUnknownArticleStillSucceeds() {
	w, _ := s.do(http.MethodPost, "/api/analytics", map[string]interface{}{"visitorId": "v", "article_id": "999"})
	s.Equal(http.StatusOK, w.Code)

	var count int64
	s.db.Model(&models.AnalyticsLogModel{}).Count(&count)
	s.EqualValues(1, count)
}

func (s *AnalyticsSuite) TestIngestRejectsMalformedJSON() {
	req := httptest.NewRequest(http.MethodPost, "/api/analytics", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *AnalyticsSuite) TestConcurrentIngestKeepsEveryIncrement() {
	s.seedArticle(models.ArticleModel{ArticleID: 5, Title: "Busy", Slug: "busy"})
	queue := taskqueue.New(nil, taskqueue.Options{Workers: 4, Capacity: 64})
	svc := analytics.NewService(s.db, analytics.Options{Queue: queue})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Ingest(context.Background(), &analytics.IngestDTO{VisitorID: "v", ArticleID: "5"}, "10.0.0.1", "")
			s.NoError(err)
		}()
	}
	wg.Wait()
	s.Require().NoError(queue.Close(context.Background()))

	s.EqualValues(20, s.articleViews(5))
	s.EqualValues(20, queue.Stats().Completed)
}

func (s *AnalyticsSuite) TestQueuedIncrementFailureIsCounted() {
	s.Require().NoError(s.db.Migrator().DropTable(&models.ArticleModel{}))
	queue := taskqueue.New(nil, taskqueue.Options{Workers: 1, Capacity: 8})
	svc := analytics.NewService(s.db, analytics.Options{Queue: queue, Metrics: s.metrics})

	_, err := svc.Ingest(context.Background(), &analytics.IngestDTO{VisitorID: "v", ArticleID: "123"}, "10.0.0.1", "")
	s.Require().NoError(err)
	s.Require().NoError(queue.Close(context.Background()))

	s.EqualValues(1, queue.Stats().Failed)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ViewIncrementFailures))
}

func (s *AnalyticsSuite) TestQueryValidation() {
	cases := []string{
		"/api/analytics/articles/views?date_from=2024-13-01",
		"/api/analytics/articles/views?date_from=01-01-2024",
		"/api/analytics/articles/views?date_from=2024-02-01&date_to=2024-01-01",
		"/api/analytics/articles/views?limit=0",
		"/api/analytics/articles/views?limit=abc",
		"/api/analytics/articles/views?limit=1001",
		"/api/analytics/articles/views?order_direction=sideways",
		"/api/analytics/referrers/sources?group_by=country",
		"/api/analytics/chart/date-range?group_by=year",
		"/api/analytics/duration-summary?date_to=yesterday",
	}
	for _, target := range cases {
		w, env := s.do(http.MethodGet, target, nil)
		s.Equal(http.StatusBadRequest, w.Code, target)
		s.NotEmpty(env.Error, target)
	}
}

func (s *AnalyticsSuite) TestUnknownOrderByFallsBack() {
	w, env := s.do(http.MethodGet, "/api/analytics/articles/views?order_by=bogus", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var report analytics.ArticleViewsReport
	s.decode(env.Data, &report)
	s.Equal("view_count", report.Filters.OrderBy)
	s.Equal("desc", report.Filters.OrderDirection)
	s.Equal(50, report.Filters.Limit)
	s.Nil(report.Filters.DateFrom)
}

func (s *AnalyticsSuite) TestDateRangeChartZeroFills() {
	s.seedLog(models.AnalyticsLogModel{VisitorID: "a"}, "2024-01-01T01:00:00Z")
	s.seedLog(models.AnalyticsLogModel{VisitorID: "b"}, "2024-01-01T02:00:00Z")
	s.seedLog(models.AnalyticsLogModel{VisitorID: "a"}, "2024-01-01T03:00:00Z")
	s.seedLog(models.AnalyticsLogModel{VisitorID: "c"}, "2024-01-03T23:59:00Z")
	s.seedLog(models.AnalyticsLogModel{VisitorID: "x"}, "2024-01-04T00:00:01Z")

	w, env := s.do(http.MethodGet, "/api/analytics/chart/date-range?date_from=2024-01-01&date_to=2024-01-03", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var chart analytics.DateRangeChart
	s.decode(env.Data, &chart)
	s.Equal("2024-01-01", chart.DateFrom)
	s.Equal("2024-01-03", chart.DateTo)
	s.Equal("day", chart.GroupBy)
	s.Require().Len(chart.ChartData, 3)
	s.Equal("2024-01-01", chart.ChartData[0].Period)
	s.EqualValues(3, chart.ChartData[0].TotalVisitors)
	s.Equal(2, chart.ChartData[0].UniqueVisitors)
	s.Equal("2024-01-02", chart.ChartData[1].Period)
	s.Zero(chart.ChartData[1].TotalVisitors)
	s.EqualValues(1, chart.ChartData[2].TotalVisitors)
}

func (s *AnalyticsSuite) TestWeeklyChartsAcrossYearBoundary() {
	s.seedLog(models.AnalyticsLogModel{VisitorID: "a"}, "2024-12-23T10:00:00Z")
	s.seedLog(models.AnalyticsLogModel{VisitorID: "a"}, "2024-12-30T10:00:00Z")
	s.seedLog(models.AnalyticsLogModel{VisitorID: "b"}, "2025-01-01T10:00:00Z")

	w, env := s.do(http.MethodGet, "/api/analytics/chart/weekly", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var weeks []analytics.WeekCount
	s.decode(env.Data, &weeks)
	s.Equal([]analytics.WeekCount{{Week: "2024-W52", Count: 1}, {Week: "2025-W01", Count: 2}}, weeks)

	w, env = s.do(http.MethodGet, "/api/analytics/chart/weekly-progress", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var progress []struct {
		Week     string  `json:"week"`
		Current  int64   `json:"current"`
		Previous int64   `json:"previous"`
		Growth   float64 `json:"growth"`
	}
	s.decode(env.Data, &progress)
	s.Require().Len(progress, 2)
	s.Equal(100.0, progress[1].Growth)
}

func (s *AnalyticsSuite) TestDurationSummary() {
	d := func(v int64) *int64 { return &v }
	s.seedLog(models.AnalyticsLogModel{Duration: d(100)}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{Duration: d(200)}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{Duration: d(0)}, "2024-01-01T00:00:00Z")

	w, env := s.do(http.MethodGet, "/api/analytics/duration-summary", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"totalVisit":2,"totalDuration":300,"avgDuration":150}`, string(env.Data))
}

func (s *AnalyticsSuite) TestArticleViewsJoinsAndDropsOrphans() {
	author := uint(3)
	s.Require().NoError(s.db.Create(&models.UserModel{UserID: author, Email: "w@example.com", Fullname: "Writer"}).Error)
	s.seedArticle(models.ArticleModel{ArticleID: 1, Title: "Alpha", Slug: "alpha", AuthorID: &author, Views: 10})
	s.seedArticle(models.ArticleModel{ArticleID: 2, Title: "Beta", Slug: "beta"})

	s.seedLog(models.AnalyticsLogModel{ArticleID: "1"}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{ArticleID: "2"}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{ArticleID: "2"}, "2024-01-02T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{ArticleID: "404"}, "2024-01-02T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{}, "2024-01-02T00:00:00Z")

	w, env := s.do(http.MethodGet, "/api/analytics/articles/views", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var report analytics.ArticleViewsReport
	s.decode(env.Data, &report)
	s.Require().Len(report.Articles, 2)
	s.Equal("Beta", report.Articles[0].Title)
	s.EqualValues(2, report.Articles[0].ViewCount)
	s.Equal("Unknown", report.Articles[0].AuthorName)
	s.Equal("Writer", report.Articles[1].AuthorName)
	s.EqualValues(10, report.Articles[1].TotalCount)
	s.Equal(2, report.Summary.TotalArticles)
	s.EqualValues(3, report.Summary.TotalViews)
	s.Equal(1.5, report.Summary.AvgViewsPerArticle)

	w, env = s.do(http.MethodGet, "/api/analytics/articles/views?order_by=article_title&order_direction=asc&limit=1", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env.Data, &report)
	s.Require().Len(report.Articles, 1)
	s.Equal("Alpha", report.Articles[0].Title)
	s.Equal(1, report.Summary.TotalArticles)
}

func (s *AnalyticsSuite) TestCategoryViewsMatchesNameOrSlug() {
	s.Require().NoError(s.db.Create(&[]models.CategoryModel{
		{CategoryName: "Politik", CategorySlug: "politik"},
		{CategoryName: "Ekonomi", CategorySlug: "ekonomi"},
	}).Error)
	s.seedLog(models.AnalyticsLogModel{CategorySlug: "Politik"}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{CategorySlug: "Politik"}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{CategorySlug: "ekonomi"}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{CategorySlug: "nope"}, "2024-01-01T00:00:00Z")

	w, env := s.do(http.MethodGet, "/api/analytics/categories/views?order_by=created_at", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var report analytics.CategoryViewsReport
	s.decode(env.Data, &report)
	s.Require().Len(report.Categories, 2)
	s.Equal("politik", report.Categories[0].CategorySlug)
	s.EqualValues(2, report.Categories[0].ViewCount)
	s.Equal(1.5, report.Summary.AvgViewsPerCategory)
	s.Equal("created_at", report.Filters.OrderBy)
}

func (s *AnalyticsSuite) TestReferrerSources() {
	s.seedLog(models.AnalyticsLogModel{Referrer: "google", ReferrerURL: "https://www.google.com/"}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{Referrer: "google", ReferrerURL: "https://google.com/search"}, "2024-01-02T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{Referrer: "facebook", ReferrerURL: "https://m.facebook.com/"}, "2024-01-03T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{ReferrerURL: "https://ignored.example/"}, "2024-01-03T00:00:00Z")

	w, env := s.do(http.MethodGet, "/api/analytics/referrers/sources", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var report analytics.ReferrerReport
	s.decode(env.Data, &report)
	s.Require().Len(report.Referrers, 2)
	s.Equal("google", report.Referrers[0].ReferrerName)
	s.Equal(66.67, report.Referrers[0].Percentage)
	s.Equal(33.33, report.Referrers[1].Percentage)
	s.EqualValues(3, report.Summary.TotalVisits)
	s.Require().NotNil(report.Summary.TopReferrer)
	s.Equal("google", report.Summary.TopReferrer.Name)
	s.Equal("referrer", report.Filters.GroupBy)

	w, env = s.do(http.MethodGet, "/api/analytics/referrers/sources?group_by=domain&limit=1", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(env.Data, &report)
	s.Require().Len(report.Referrers, 1)
	s.Equal("google.com", report.Referrers[0].ReferrerName)
	s.Equal(100.0, report.Referrers[0].Percentage)
}

func (s *AnalyticsSuite) TestReferrerDomainsSummaryCoversAllDomains() {
	for i, u := range []string{"https://a.example", "https://a.example/x", "https://b.example", "https://c.example"} {
		s.seedLog(models.AnalyticsLogModel{Referrer: "ref", ReferrerURL: u}, time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC).Format(time.RFC3339))
	}

	w, env := s.do(http.MethodGet, "/api/analytics/referrers/domains?limit=1", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"summary":{"totalDomains":3,"totalVisits":4},"domains":[{"domain":"a.example","visits":2}]}`, string(env.Data))
}

func (s *AnalyticsSuite) TestAdPositionStats() {
	s.seedLog(models.AnalyticsLogModel{AdPosition: "top", EventType: "click"}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{AdPosition: "top", EventType: "Touch"}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{AdPosition: "top", EventType: "click"}, "2024-02-01T00:00:00Z")

	w, env := s.do(http.MethodGet, "/api/analytics/ads/position-stats?date_to=2024-01-01", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{
		"ad_position":{"top":{"click":1,"touch":1,"other":0}},
		"total":{"click":1,"touch":1,"other":0},
		"filters":{"dateFrom":null,"dateTo":"2024-01-01"}
	}`, string(env.Data))
}

func (s *AnalyticsSuite) TestListFiltersNewestFirst() {
	s.seedLog(models.AnalyticsLogModel{VisitorID: "a", Type: "pageview"}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{VisitorID: "a", Type: "pageview"}, "2024-01-02T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{VisitorID: "b", Type: "ad"}, "2024-01-03T00:00:00Z")

	w, env := s.do(http.MethodGet, "/api/analytics?type=pageview&visitorId=a", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var items []models.AnalyticsLogModel
	s.decode(env.Data, &items)
	s.Require().Len(items, 2)
	s.True(items[0].CreatedAt.After(items[1].CreatedAt))
}

func (s *AnalyticsSuite) TestDebugRequiresAuth() {
	w, _ := s.do(http.MethodGet, "/api/analytics/articles/debug", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	s.seedArticle(models.ArticleModel{ArticleID: 1, Title: "Alpha", Slug: "alpha"})
	s.seedLog(models.AnalyticsLogModel{ArticleID: "1"}, "2024-01-01T00:00:00Z")
	s.seedLog(models.AnalyticsLogModel{ArticleID: "abc"}, "2024-01-01T00:00:00Z")
	token, err := s.signer.Sign(1, "admin@example.com", "admin")
	s.Require().NoError(err)

	w, env := s.do(http.MethodGet, "/api/analytics/articles/debug", nil, "Authorization", "Bearer "+token)
	s.Require().Equal(http.StatusOK, w.Code)
	var report analytics.ArticleDebugReport
	s.decode(env.Data, &report)
	s.Equal([]string{"abc"}, report.Articles.MissingArticles)
	s.Len(report.IDMatching, 2)

	w, env = s.do(http.MethodGet, "/api/analytics/categories/debug", nil, "Authorization", "Bearer "+token)
	s.Require().Equal(http.StatusOK, w.Code)
	var cats analytics.CategoryDebugReport
	s.decode(env.Data, &cats)
	s.EqualValues(2, cats.Analytics.AllCategorySlugCounts["NULL_OR_EMPTY"])
}
