package analytics

import (
	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/modules/stats/aggregate"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/response"
)

const invalidQuery = "Invalid query parameters"

type Handler struct {
	svc      *Service
	ingestMW []gin.HandlerFunc
	reportMW []gin.HandlerFunc
}

// NewHandler builds the analytics handler. ingestMW guards POST /analytics
// (rate limiting); reportMW wraps the chart endpoints (response cache).
func NewHandler(svc *Service, ingestMW, reportMW []gin.HandlerFunc) *Handler {
	return &Handler{svc: svc, ingestMW: ingestMW, reportMW: reportMW}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/analytics")
	ingest := append(append([]gin.HandlerFunc{}, h.ingestMW...), h.ingest)
	g.POST("", ingest...)
	g.GET("", h.list)
	g.GET("/duration-summary", h.durationSummary)
	g.GET("/ads/position-stats", h.adPositionStats)

	charts := g.Group("/chart", h.reportMW...)
	charts.GET("/daily", h.chartDaily)
	charts.GET("/weekly", h.chartWeekly)
	charts.GET("/monthly", h.chartMonthly)
	charts.GET("/weekly-progress", h.chartWeeklyProgress)
	charts.GET("/date-range", h.chartDateRange)

	g.GET("/users/article-count", h.articleCount)
	g.GET("/articles/views", h.articleViews)
	g.GET("/categories/views", h.categoryViews)
	g.GET("/referrers/sources", h.referrerSources)
	g.GET("/referrers/domains", h.referrerDomains)
	g.GET("/referrers/categories", h.referrerCategories)

	debug := g.Group("", authMW)
	debug.GET("/articles/debug", h.articleDebug)
	debug.GET("/categories/debug", h.categoryDebug)
}

func (h *Handler) ingest(c *gin.Context) {
	var dto IngestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Invalid analytics payload", err)
		return
	}
	if _, err := h.svc.Ingest(c.Request.Context(), &dto, c.ClientIP(), c.GetHeader("User-Agent")); err != nil {
		response.InternalError(c, "Failed to save analytics data", err)
		return
	}
	response.OK(c, "Analytics data saved", nil)
}

func (h *Handler) list(c *gin.Context) {
	rng, err := ParseDateRange(c)
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	limit, err := ParseLimit(c, defaultListLimit)
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	items, err := h.svc.List(c.Request.Context(), ListFilter{
		Type:      c.Query("type"),
		IP:        c.Query("ip"),
		VisitorID: c.Query("visitorId"),
		Range:     rng,
		Limit:     limit,
	})
	if err != nil {
		response.InternalError(c, "Failed to fetch analytics data", err)
		return
	}
	response.OK(c, "Analytics data fetched", items)
}

func (h *Handler) durationSummary(c *gin.Context) {
	rng, err := ParseDateRange(c)
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	stats, err := h.svc.DurationSummary(c.Request.Context(), rng)
	if err != nil {
		response.InternalError(c, "Failed to fetch duration data", err)
		return
	}
	response.OK(c, "Duration summary fetched", stats)
}

func (h *Handler) adPositionStats(c *gin.Context) {
	rng, err := ParseDateRange(c)
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	report, err := h.svc.AdPositionStats(c.Request.Context(), rng)
	if err != nil {
		response.InternalError(c, "Failed to fetch ads data", err)
		return
	}
	response.OK(c, "Ad position stats fetched", report)
}

func (h *Handler) chartDaily(c *gin.Context) {
	rows, err := h.svc.DailyChart(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to build chart", err)
		return
	}
	response.OK(c, "Daily chart generated", rows)
}

func (h *Handler) chartWeekly(c *gin.Context) {
	rows, err := h.svc.WeeklyChart(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to build chart", err)
		return
	}
	response.OK(c, "Weekly chart generated", rows)
}

func (h *Handler) chartMonthly(c *gin.Context) {
	rows, err := h.svc.MonthlyChart(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to build chart", err)
		return
	}
	response.OK(c, "Monthly chart generated", rows)
}

func (h *Handler) chartWeeklyProgress(c *gin.Context) {
	rows, err := h.svc.WeeklyProgress(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to build chart", err)
		return
	}
	response.OK(c, "Weekly progress generated", rows)
}

func (h *Handler) chartDateRange(c *gin.Context) {
	cr, err := ParseChartRange(c, h.svc.now())
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	chart, err := h.svc.DateRangeChart(c.Request.Context(), cr)
	if err != nil {
		response.InternalError(c, "Failed to build chart", err)
		return
	}
	response.OK(c, "Chart data fetched", chart)
}

func (h *Handler) articleCount(c *gin.Context) {
	p, err := ParseReportParams(c, defaultReportLimit)
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	report, err := h.svc.ArticleCount(c.Request.Context(), p)
	if err != nil {
		response.InternalError(c, "Failed to fetch articles", err)
		return
	}
	response.OK(c, "Most viewed articles fetched", report)
}

func (h *Handler) articleViews(c *gin.Context) {
	p, err := ParseReportParams(c, defaultReportLimit)
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	report, err := h.svc.ArticleViews(c.Request.Context(), p)
	if err != nil {
		response.InternalError(c, "Failed to fetch article views", err)
		return
	}
	response.OK(c, "Article view stats fetched", report)
}

func (h *Handler) categoryViews(c *gin.Context) {
	p, err := ParseReportParams(c, defaultReportLimit)
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	report, err := h.svc.CategoryViews(c.Request.Context(), p)
	if err != nil {
		response.InternalError(c, "Failed to fetch category views", err)
		return
	}
	response.OK(c, "Category view stats fetched", report)
}

func (h *Handler) referrerSources(c *gin.Context) {
	p, err := ParseReportParams(c, defaultReportLimit)
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	mode, err := aggregate.ParseReferrerMode(c.Query("group_by"))
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	report, err := h.svc.ReferrerSources(c.Request.Context(), p, mode)
	if err != nil {
		response.InternalError(c, "Failed to fetch referrer data", err)
		return
	}
	response.OK(c, "Referrer stats fetched", report)
}

func (h *Handler) referrerDomains(c *gin.Context) {
	rng, err := ParseDateRange(c)
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	limit, err := ParseLimit(c, defaultDomainLimit)
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	report, err := h.svc.ReferrerDomains(c.Request.Context(), rng, limit)
	if err != nil {
		response.InternalError(c, "Failed to fetch referrer domains", err)
		return
	}
	response.OK(c, "Top referrer domains fetched", report)
}

func (h *Handler) referrerCategories(c *gin.Context) {
	rng, err := ParseDateRange(c)
	if err != nil {
		response.BadRequestErr(c, invalidQuery, err)
		return
	}
	report, err := h.svc.ReferrerCategories(c.Request.Context(), rng)
	if err != nil {
		response.InternalError(c, "Failed to classify traffic sources", err)
		return
	}
	response.OK(c, "Traffic sources fetched", report)
}

func (h *Handler) articleDebug(c *gin.Context) {
	report, err := h.svc.ArticleDebug(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Debug error", err)
		return
	}
	response.OK(c, "Article view debug data", report)
}

func (h *Handler) categoryDebug(c *gin.Context) {
	report, err := h.svc.CategoryDebug(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Debug error", err)
		return
	}
	response.OK(c, "Category analytics debug data", report)
}
