package editorchoice

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/editor-choices")
	g.GET("", h.list)
	g.POST("", authMW, h.upsert)
}

func (h *Handler) list(c *gin.Context) {
	var platformID *int
	if raw := strings.TrimSpace(c.Query("platform_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "platform_id must be an integer")
			return
		}
		platformID = &id
	}
	entries, err := h.svc.List(c.Request.Context(), platformID)
	if err != nil {
		response.InternalError(c, "Failed to fetch editor choices", err)
		return
	}
	response.OK(c, "success", entries)
}

func (h *Handler) upsert(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("platform_id"))
	if raw == "" {
		response.BadRequest(c, "platform_id is required")
		return
	}
	platformID, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(c, "platform_id must be an integer")
		return
	}

	var dto UpsertDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Editor choices must be provided as an array", err)
		return
	}
	entries, err := h.svc.Upsert(c.Request.Context(), platformID, dto.Headlines)
	if err != nil {
		if errors.Is(err, errUnknownArticles) {
			response.BadRequestErr(c, "Some articles do not exist", err)
			return
		}
		response.InternalError(c, "Failed to process editor choices", err)
		return
	}
	response.Created(c, "Editor Choice processed successfully", entries)
}
