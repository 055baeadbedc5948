package article

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/pagination"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/articles")
	g.GET("", h.list)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)

	rg.GET("/most-views", h.mostViews)
}

func (h *Handler) list(c *gin.Context) {
	lq := ListQuery{
		Search:     c.Query("search"),
		Tags:       splitCSV(c.Query("tags")),
		Categories: splitCSV(c.Query("category")),
		Status:     strings.TrimSpace(c.Query("status")),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}
	if raw := strings.TrimSpace(c.Query("platform_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "platform_id must be an integer")
			return
		}
		lq.PlatformID = &id
	}

	articles, meta, err := h.svc.List(c.Request.Context(), pagination.FromContext(c), lq)
	if err != nil {
		response.InternalError(c, "Failed to fetch articles", err)
		return
	}
	response.Paged(c, "Articles retrieved successfully", articles, meta)
}

func (h *Handler) get(c *gin.Context) {
	a, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to fetch article", err)
		return
	}
	if a == nil {
		response.NotFound(c, "Article not found")
		return
	}
	response.OK(c, "Article retrieved successfully", a)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Invalid request body", err)
		return
	}
	a, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errInvalidPlatform),
			errors.Is(err, errSequenceExhausted),
			errors.Is(err, errArticleIDOverflow):
			response.BadRequest(c, err.Error())
		case errors.Is(err, errSlugTaken):
			response.Conflict(c, "Article with slug '"+dto.Slug+"' already exists")
		case errors.Is(err, errArticleIDTaken):
			response.Conflict(c, "Article id is already in use")
		default:
			response.InternalError(c, "Failed to create article", err)
		}
		return
	}
	response.Created(c, "Article created successfully", a)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Invalid request body", err)
		return
	}
	a, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, errSlugTaken) {
			response.Conflict(c, "Slug is already in use")
			return
		}
		response.InternalError(c, "Failed to update article", err)
		return
	}
	if a == nil {
		response.NotFound(c, "Article not found")
		return
	}
	response.OK(c, "Article updated successfully", a)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.SoftDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to delete article", err)
		return
	}
	if !ok {
		response.NotFound(c, "Article not found")
		return
	}
	response.OK(c, "Article deleted successfully", nil)
}

func (h *Handler) mostViews(c *gin.Context) {
	cards, err := h.svc.MostViewed(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to fetch most views", err)
		return
	}
	response.OK(c, "success", cards)
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
