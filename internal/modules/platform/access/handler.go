package access

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
	g := rg.Group("/platform-access")
	g.GET("", h.list)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	var f Filter
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "user_id must be a positive integer")
			return
		}
		uid := uint(id)
		f.UserID = &uid
	}
	if raw := strings.TrimSpace(c.Query("platform_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "platform_id must be an integer")
			return
		}
		f.PlatformID = &id
	}
	grants, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		response.InternalError(c, "Failed to fetch platform access", err)
		return
	}
	response.OK(c, "Platform access retrieved successfully", grants)
}

func (h *Handler) get(c *gin.Context) {
	g, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to fetch platform access", err)
		return
	}
	if g == nil {
		response.NotFound(c, "Platform access not found")
		return
	}
	response.OK(c, "Platform access retrieved successfully", g)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateAccessDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Invalid request body", err)
		return
	}
	g, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		h.writeError(c, "Failed to create platform access", err)
		return
	}
	response.Created(c, "Platform access created successfully", g)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateAccessDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Invalid request body", err)
		return
	}
	g, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		h.writeError(c, "Failed to update platform access", err)
		return
	}
	if g == nil {
		response.NotFound(c, "Platform access not found")
		return
	}
	response.OK(c, "Platform access updated successfully", g)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to delete platform access", err)
		return
	}
	if !ok {
		response.NotFound(c, "Platform access not found")
		return
	}
	response.NoContent(c)
}

func (h *Handler) writeError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, errGrantExists):
		response.Conflict(c, "Platform access for this user and platform already exists")
	case errors.Is(err, errUnknownUser), errors.Is(err, errUnknownPlatform):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, msg, err)
	}
}
