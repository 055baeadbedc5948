// Package analytics ingests visit events and serves the reporting endpoints
// built on top of them.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/aggregate"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/joiner"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/timebucket"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/metrics"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options wires the optional collaborators of a Service.
type Options struct {
	Queue     *taskqueue.Queue
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	BatchSize int
}

type Service struct {
	db      *gorm.DB
	reader  LogReader
	joiner  *joiner.Joiner
	queue   *taskqueue.Queue
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(db *gorm.DB, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:      db,
		reader:  NewLogReader(db),
		joiner:  joiner.New(joiner.NewGormStore(db), opts.BatchSize),
		queue:   opts.Queue,
		metrics: opts.Metrics,
		logger:  logger.Named("analytics"),
		now:     time.Now,
	}
}

// observe records how long a report took to build.
func (s *Service) observe(report string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ReportDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

// ListFilter narrows GET /analytics.
type ListFilter struct {
	Type      string
	IP        string
	VisitorID string
	Range     DateRange
	Limit     int
}

// List returns raw visit events, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.AnalyticsLogModel, error) {
	return s.reader.Read(ctx, LogQuery{
		From:        f.Range.From,
		To:          f.Range.To,
		Type:        f.Type,
		IP:          f.IP,
		VisitorID:   f.VisitorID,
		NewestFirst: true,
		Limit:       f.Limit,
	})
}

func (s *Service) DurationSummary(ctx context.Context, rng DateRange) (aggregate.DurationStats, error) {
	defer s.observe("duration_summary", time.Now())
	records, err := s.reader.Read(ctx, LogQuery{
		From:    rng.From,
		To:      rng.To,
		Present: []string{"duration"},
		Columns: []string{"duration", "created_at"},
	})
	if err != nil {
		return aggregate.DurationStats{}, err
	}
	return aggregate.DurationSummary(records), nil
}

func (s *Service) AdPositionStats(ctx context.Context, rng DateRange) (*AdStatsReport, error) {
	defer s.observe("ad_position_stats", time.Now())
	records, err := s.reader.Read(ctx, LogQuery{
		From:    rng.From,
		To:      rng.To,
		Present: []string{"ad_position"},
		Columns: []string{"ad_position", "event_type", "created_at"},
	})
	if err != nil {
		return nil, err
	}
	stats := aggregate.AdPositionBreakdown(records)
	return &AdStatsReport{Positions: stats.Positions, Total: stats.Total, Filters: rangeFilters(rng)}, nil
}

var chartColumns = []string{"created_at", "visitor_id", "duration"}

// DailyChart covers the whole log, one row per day that has visits.
func (s *Service) DailyChart(ctx context.Context) ([]aggregate.VisitRow, error) {
	defer s.observe("chart_daily", time.Now())
	records, err := s.reader.Read(ctx, LogQuery{Columns: chartColumns})
	if err != nil {
		return nil, err
	}
	return aggregate.VisitCounts(records, timebucket.Day), nil
}

func (s *Service) periodCounts(ctx context.Context, g timebucket.Granularity) (map[string]int64, error) {
	records, err := s.reader.Read(ctx, LogQuery{Columns: []string{"created_at"}})
	if err != nil {
		return nil, err
	}
	return aggregate.PeriodCounts(records, g), nil
}

func (s *Service) WeeklyChart(ctx context.Context) ([]WeekCount, error) {
	defer s.observe("chart_weekly", time.Now())
	counts, err := s.periodCounts(ctx, timebucket.Week)
	if err != nil {
		return nil, err
	}
	rows := make([]WeekCount, 0, len(counts))
	for _, key := range sortedKeys(counts) {
		rows = append(rows, WeekCount{Week: key, Count: counts[key]})
	}
	return rows, nil
}

func (s *Service) MonthlyChart(ctx context.Context) ([]MonthCount, error) {
	defer s.observe("chart_monthly", time.Now())
	counts, err := s.periodCounts(ctx, timebucket.Month)
	if err != nil {
		return nil, err
	}
	rows := make([]MonthCount, 0, len(counts))
	for _, key := range sortedKeys(counts) {
		rows = append(rows, MonthCount{Month: key, Count: counts[key]})
	}
	return rows, nil
}

func (s *Service) WeeklyProgress(ctx context.Context) ([]aggregate.GrowthRow, error) {
	defer s.observe("chart_weekly_progress", time.Now())
	counts, err := s.periodCounts(ctx, timebucket.Week)
	if err != nil {
		return nil, err
	}
	return aggregate.WeekOverWeekGrowth(counts), nil
}

// DateRangeChart buckets visits in the window and zero-fills empty periods.
func (s *Service) DateRangeChart(ctx context.Context, cr ChartRange) (*DateRangeChart, error) {
	defer s.observe("chart_date_range", time.Now())
	from, to := cr.From, cr.To
	records, err := s.reader.Read(ctx, LogQuery{From: &from, To: &to, Columns: chartColumns})
	if err != nil {
		return nil, err
	}

	buckets := aggregate.VisitBuckets(records, cr.Granularity)
	filled := timebucket.Fill(buckets, cr.From, cr.To, cr.Granularity, aggregate.NewBucket)
	rows := make([]aggregate.VisitRow, 0, len(filled))
	for _, p := range filled {
		rows = append(rows, p.Value.Row(p.Key))
	}
	return &DateRangeChart{
		DateFrom:  timebucket.DayKey(cr.From),
		DateTo:    timebucket.DayKey(cr.To),
		GroupBy:   string(cr.Granularity),
		ChartData: rows,
	}, nil
}

var articleCountOrder = map[string]string{
	"views":      "views",
	"title":      "title",
	"created_at": "created_at",
}

// ArticleCount ranks articles by their stored view counter.
func (s *Service) ArticleCount(ctx context.Context, p ReportParams) (*ArticleCountReport, error) {
	defer s.observe("article_count", time.Now())
	orderBy := p.OrderBy
	column, ok := articleCountOrder[orderBy]
	if !ok {
		orderBy, column = "views", "views"
	}

	tx := s.db.WithContext(ctx).Model(&models.ArticleModel{}).Preload("Author")
	if p.Range.From != nil {
		tx = tx.Where("created_at >= ?", *p.Range.From)
	}
	if p.Range.To != nil {
		tx = tx.Where("created_at <= ?", *p.Range.To)
	}
	dir := "DESC"
	if p.Direction == aggregate.Asc {
		dir = "ASC"
	}

	var articles []models.ArticleModel
	if err := tx.Order(column + " " + dir).Order("_id ASC").Limit(p.Limit).Find(&articles).Error; err != nil {
		return nil, err
	}

	rows := make([]ArticleCountRow, 0, len(articles))
	for _, a := range articles {
		author := ArticleAuthor{UserID: a.AuthorID, Name: joiner.AuthorName(a.Author), Email: "Unknown"}
		if a.Author != nil {
			author.UserID = &a.Author.UserID
			if a.Author.Email != "" {
				author.Email = a.Author.Email
			}
		}
		rows = append(rows, ArticleCountRow{
			ArticleID: a.ArticleID,
			Title:     a.Title,
			Slug:      a.Slug,
			Views:     a.Views,
			Category:  a.Category,
			CreatedAt: aggregate.FormatTimestamp(a.CreatedAt),
			UpdatedAt: aggregate.FormatTimestamp(a.UpdatedAt),
			Author:    author,
		})
	}
	return &ArticleCountReport{
		Summary:  summarizeArticleCounts(rows),
		Filters:  reportFilters(p, orderBy),
		Articles: rows,
	}, nil
}

var articleViewOrderings = aggregate.Orderings[joiner.ArticleView]{
	"view_count":    func(a, b joiner.ArticleView) int { return aggregate.CompareInt64(a.ViewCount, b.ViewCount) },
	"article_title": func(a, b joiner.ArticleView) int { return aggregate.CompareFold(a.Title, b.Title) },
	"created_at":    func(a, b joiner.ArticleView) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

// ArticleViews counts article views from the visit log and joins article and
// author details. Keys without a matching article are left out.
func (s *Service) ArticleViews(ctx context.Context, p ReportParams) (*ArticleViewsReport, error) {
	defer s.observe("article_views", time.Now())
	records, err := s.reader.Read(ctx, LogQuery{
		From:    p.Range.From,
		To:      p.Range.To,
		Present: []string{"article_id"},
		Columns: []string{"article_id", "article_slug", "created_at"},
	})
	if err != nil {
		return nil, err
	}

	joined, err := s.joiner.JoinArticles(ctx, aggregate.ArticleViews(records))
	if err != nil {
		return nil, err
	}
	rows := joined.Articles
	applied := aggregate.Sort(rows, articleViewOrderings, p.OrderBy, "view_count", p.Direction)
	rows = aggregate.Limit(rows, p.Limit)

	return &ArticleViewsReport{
		Summary:  summarizeArticleViews(rows),
		Filters:  reportFilters(p, applied),
		Articles: rows,
	}, nil
}

var categoryViewOrderings = aggregate.Orderings[joiner.CategoryView]{
	"view_count":    func(a, b joiner.CategoryView) int { return aggregate.CompareInt64(a.ViewCount, b.ViewCount) },
	"category_name": func(a, b joiner.CategoryView) int { return aggregate.CompareFold(a.CategoryName, b.CategoryName) },
}

// CategoryViews counts category views from the visit log. Log rows carry
// either the category name or its slug, so both are matched. created_at
// ordering sorts by view count since rows carry no creation time.
func (s *Service) CategoryViews(ctx context.Context, p ReportParams) (*CategoryViewsReport, error) {
	defer s.observe("category_views", time.Now())
	records, err := s.reader.Read(ctx, LogQuery{
		From:    p.Range.From,
		To:      p.Range.To,
		Present: []string{"category_slug"},
		Columns: []string{"category_slug", "created_at"},
	})
	if err != nil {
		return nil, err
	}

	rows, err := s.joiner.JoinCategories(ctx, aggregate.CategoryViews(records))
	if err != nil {
		return nil, err
	}
	orderBy := p.OrderBy
	if orderBy == "created_at" {
		orderBy = "view_count"
	}
	applied := aggregate.Sort(rows, categoryViewOrderings, orderBy, "view_count", p.Direction)
	if p.OrderBy == "created_at" {
		applied = p.OrderBy
	}
	rows = aggregate.Limit(rows, p.Limit)

	return &CategoryViewsReport{
		Summary:    summarizeCategoryViews(rows),
		Filters:    reportFilters(p, applied),
		Categories: rows,
	}, nil
}

var referrerColumns = []string{"referrer", "referrer_url", "created_at"}

func (s *Service) referrerRecords(ctx context.Context, rng DateRange) ([]models.AnalyticsLogModel, error) {
	return s.reader.Read(ctx, LogQuery{
		From:    rng.From,
		To:      rng.To,
		Present: []string{"referrer"},
		Columns: referrerColumns,
	})
}

// ReferrerSources groups referred visits by referrer, URL or domain. Totals
// and percentages describe the listed rows only.
func (s *Service) ReferrerSources(ctx context.Context, p ReportParams, mode aggregate.ReferrerMode) (*ReferrerReport, error) {
	defer s.observe("referrer_sources", time.Now())
	records, err := s.referrerRecords(ctx, p.Range)
	if err != nil {
		return nil, err
	}

	rows := aggregate.ReferrerBreakdown(records, mode)
	applied := aggregate.Sort(rows, aggregate.ReferrerOrderings, p.OrderBy, "referrer_count", p.Direction)
	rows = aggregate.Limit(rows, p.Limit)
	summary := summarizeReferrers(rows)

	filters := reportFilters(p, applied)
	filters.GroupBy = string(mode)
	return &ReferrerReport{Summary: summary, Filters: filters, Referrers: rows}, nil
}

// ReferrerDomains lists the busiest referring domains. The summary covers
// every domain, not just the listed ones.
func (s *Service) ReferrerDomains(ctx context.Context, rng DateRange, limit int) (*DomainReport, error) {
	defer s.observe("referrer_domains", time.Now())
	records, err := s.referrerRecords(ctx, rng)
	if err != nil {
		return nil, err
	}
	rows, totals := aggregate.DomainCounts(records)
	return &DomainReport{Summary: totals, Domains: aggregate.Limit(rows, limit)}, nil
}

// ReferrerCategories classifies all visits in the range by traffic source.
func (s *Service) ReferrerCategories(ctx context.Context, rng DateRange) (aggregate.SourceCategories, error) {
	defer s.observe("referrer_categories", time.Now())
	records, err := s.reader.Read(ctx, LogQuery{From: rng.From, To: rng.To, Columns: referrerColumns})
	if err != nil {
		return aggregate.SourceCategories{}, err
	}
	return aggregate.ClassifySources(records), nil
}

// PurgeBefore deletes visit events created before cutoff.
func (s *Service) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&models.AnalyticsLogModel{})
	return res.RowsAffected, res.Error
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
