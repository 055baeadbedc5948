package platform

import (
	"errors"

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
	g := rg.Group("/platforms")
	g.GET("", h.list)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	platforms, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to fetch platforms", err)
		return
	}
	response.OK(c, "Platforms retrieved successfully", platforms)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to fetch platform", err)
		return
	}
	if p == nil {
		response.NotFound(c, "Platform not found")
		return
	}
	response.OK(c, "Platform retrieved successfully", p)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePlatformDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Invalid request body", err)
		return
	}
	p, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, errPlatformExists) {
			response.Conflict(c, "Platform already exists")
			return
		}
		response.InternalError(c, "Failed to create platform", err)
		return
	}
	response.Created(c, "Platform created successfully", p)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdatePlatformDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Invalid request body", err)
		return
	}
	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		response.InternalError(c, "Failed to update platform", err)
		return
	}
	if p == nil {
		response.NotFound(c, "Platform not found")
		return
	}
	response.OK(c, "Platform updated successfully", p)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to delete platform", err)
		return
	}
	if !ok {
		response.NotFound(c, "Platform not found")
		return
	}
	response.OK(c, "Platform deleted successfully", nil)
}
