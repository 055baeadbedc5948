package category

import (
	"errors"
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
	cats := rg.Group("/categories")
	cats.GET("", h.list)
	cats.GET("/:query", h.getByQuery)

	authed := cats.Group("", authMW)
	authed.POST("", h.create)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id", h.update)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	cats, err := h.svc.List(c.Request.Context(), strings.TrimSpace(c.Query("platform_id")))
	if err != nil {
		response.InternalError(c, "Failed to fetch categories", err)
		return
	}
	response.OK(c, "Categories retrieved successfully", cats)
}

func (h *Handler) getByQuery(c *gin.Context) {
	cat, err := h.svc.GetByQuery(c.Request.Context(), c.Param("query"))
	if err != nil {
		response.InternalError(c, "Failed to fetch category", err)
		return
	}
	if cat == nil {
		response.NotFound(c, "Category not found")
		return
	}
	response.OK(c, "Category retrieved successfully", cat)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Invalid request body", err)
		return
	}
	cat, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, errSlugTaken) {
			response.Conflict(c, "Category slug already exists")
			return
		}
		response.InternalError(c, "Failed to create category", err)
		return
	}
	response.Created(c, "Category created successfully", cat)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Invalid request body", err)
		return
	}
	cat, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, errSlugTaken) {
			response.Conflict(c, "Category slug already exists")
			return
		}
		response.InternalError(c, "Failed to update category", err)
		return
	}
	if cat == nil {
		response.NotFound(c, "Category not found")
		return
	}
	response.OK(c, "Category updated successfully", cat)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to delete category", err)
		return
	}
	if !ok {
		response.NotFound(c, "Category not found")
		return
	}
	response.OK(c, "Category deleted successfully", nil)
}
