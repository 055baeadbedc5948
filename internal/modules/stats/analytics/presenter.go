package analytics

import (
	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/aggregate"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/joiner"
)

// Filters echoes the effective report parameters. Absent dates render as null.
type Filters struct {
	DateFrom       *string `json:"dateFrom"`
	DateTo         *string `json:"dateTo"`
	GroupBy        string  `json:"groupBy,omitempty"`
	OrderBy        string  `json:"orderBy,omitempty"`
	OrderDirection string  `json:"orderDirection,omitempty"`
	Limit          int     `json:"limit,omitempty"`
}

func optional(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}

func rangeFilters(rng DateRange) Filters {
	return Filters{DateFrom: optional(rng.RawFrom), DateTo: optional(rng.RawTo)}
}

func reportFilters(p ReportParams, orderBy string) Filters {
	f := rangeFilters(p.Range)
	f.OrderBy = orderBy
	f.OrderDirection = string(p.Direction)
	f.Limit = p.Limit
	return f
}

type AdStatsReport struct {
	Positions map[string]aggregate.AdCounts `json:"ad_position"`
	Total     aggregate.AdCounts            `json:"total"`
	Filters   Filters                       `json:"filters"`
}

type WeekCount struct {
	Week  string `json:"week"`
	Count int64  `json:"count"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type DateRangeChart struct {
	DateFrom  string               `json:"dateFrom"`
	DateTo    string               `json:"dateTo"`
	GroupBy   string               `json:"groupBy"`
	ChartData []aggregate.VisitRow `json:"chartData"`
}

// ArticleAuthor is the author block of the article-count report.
type ArticleAuthor struct {
	UserID *uint  `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type ArticleCountRow struct {
	ArticleID int64              `json:"articleId"`
	Title     string             `json:"title"`
	Slug      string             `json:"slug"`
	Views     int64              `json:"views"`
	Category  models.StringArray `json:"category"`
	CreatedAt string             `json:"createdAt"`
	UpdatedAt string             `json:"updatedAt"`
	Author    ArticleAuthor      `json:"author"`
}

type ArticleCountSummary struct {
	TotalArticles      int     `json:"totalArticles"`
	TotalViews         int64   `json:"totalViews"`
	AvgViewsPerArticle float64 `json:"avgViewsPerArticle"`
	MaxViews           int64   `json:"maxViews"`
	MinViews           int64   `json:"minViews"`
}

type ArticleCountReport struct {
	Summary  ArticleCountSummary `json:"summary"`
	Filters  Filters             `json:"filters"`
	Articles []ArticleCountRow   `json:"articles"`
}

func summarizeArticleCounts(rows []ArticleCountRow) ArticleCountSummary {
	s := ArticleCountSummary{TotalArticles: len(rows)}
	for i, r := range rows {
		s.TotalViews += r.Views
		if i == 0 || r.Views > s.MaxViews {
			s.MaxViews = r.Views
		}
		if i == 0 || r.Views < s.MinViews {
			s.MinViews = r.Views
		}
	}
	s.AvgViewsPerArticle = aggregate.Ratio(float64(s.TotalViews), float64(s.TotalArticles))
	return s
}

type ArticleViewsSummary struct {
	TotalArticles      int     `json:"totalArticles"`
	TotalViews         int64   `json:"totalViews"`
	AvgViewsPerArticle float64 `json:"avgViewsPerArticle"`
}

type ArticleViewsReport struct {
	Summary  ArticleViewsSummary  `json:"summary"`
	Filters  Filters              `json:"filters"`
	Articles []joiner.ArticleView `json:"articles"`
}

func summarizeArticleViews(rows []joiner.ArticleView) ArticleViewsSummary {
	s := ArticleViewsSummary{TotalArticles: len(rows)}
	for _, r := range rows {
		s.TotalViews += r.ViewCount
	}
	s.AvgViewsPerArticle = aggregate.Ratio(float64(s.TotalViews), float64(s.TotalArticles))
	return s
}

type CategoryViewsSummary struct {
	TotalCategories     int     `json:"totalCategories"`
	TotalViews          int64   `json:"totalViews"`
	AvgViewsPerCategory float64 `json:"avgViewsPerCategory"`
}

type CategoryViewsReport struct {
	Summary    CategoryViewsSummary  `json:"summary"`
	Filters    Filters               `json:"filters"`
	Categories []joiner.CategoryView `json:"categories"`
}

func summarizeCategoryViews(rows []joiner.CategoryView) CategoryViewsSummary {
	s := CategoryViewsSummary{TotalCategories: len(rows)}
	for _, r := range rows {
		s.TotalViews += r.ViewCount
	}
	s.AvgViewsPerCategory = aggregate.Ratio(float64(s.TotalViews), float64(s.TotalCategories))
	return s
}

type TopReferrer struct {
	Name   string `json:"name"`
	Visits int64  `json:"visits"`
}

type ReferrerSummary struct {
	TotalReferrers       int          `json:"totalReferrers"`
	TotalVisits          int64        `json:"totalVisits"`
	AvgVisitsPerReferrer float64      `json:"avgVisitsPerReferrer"`
	TopReferrer          *TopReferrer `json:"topReferrer"`
}

type ReferrerReport struct {
	Summary   ReferrerSummary         `json:"summary"`
	Filters   Filters                 `json:"filters"`
	Referrers []aggregate.ReferrerRow `json:"referrers"`
}

// summarizeReferrers computes totals over the listed rows and fills in each
// row's share of them.
func summarizeReferrers(rows []aggregate.ReferrerRow) ReferrerSummary {
	s := ReferrerSummary{TotalReferrers: len(rows)}
	for _, r := range rows {
		s.TotalVisits += r.VisitCount
	}
	for i := range rows {
		rows[i].Percentage = aggregate.Ratio(float64(rows[i].VisitCount)*100, float64(s.TotalVisits))
	}
	s.AvgVisitsPerReferrer = aggregate.Ratio(float64(s.TotalVisits), float64(s.TotalReferrers))
	if len(rows) > 0 {
		s.TopReferrer = &TopReferrer{Name: rows[0].ReferrerName, Visits: rows[0].VisitCount}
	}
	return s
}

type DomainReport struct {
	Summary aggregate.DomainTotals `json:"summary"`
	Domains []aggregate.DomainRow  `json:"domains"`
}
