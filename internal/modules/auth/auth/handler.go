package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/middleware"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/auth")

	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.POST("/forgot-password", h.forgotPassword)
	a.GET("/me", authMW, h.me)
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Invalid request body", err)
		return
	}
	u, err := h.svc.Register(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			response.Conflict(c, "Email is already registered")
			return
		}
		response.InternalError(c, "Failed to register user", err)
		return
	}
	response.Created(c, "User registered successfully", u)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Invalid request body", err)
		return
	}
	token, u, err := h.svc.Login(c.Request.Context(), dto.Email, dto.Password)
	if err != nil {
		switch {
		case errors.Is(err, errUserNotFound):
			response.BadRequest(c, "User not found")
		case errors.Is(err, errWrongPassword):
			response.Unauthorized(c, "Invalid credentials")
		default:
			response.InternalError(c, "Database error", err)
		}
		return
	}
	response.OK(c, "Login successful", loginResponse{Token: token, User: u})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var dto ForgotPasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequestErr(c, "Invalid request body", err)
		return
	}
	token, err := h.svc.ForgotPassword(c.Request.Context(), dto.Email)
	if err != nil {
		response.InternalError(c, "Failed to create reset token", err)
		return
	}
	response.OK(c, "Password reset link sent", forgotPasswordResponse{Token: token})
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, "Failed to load user", err)
		return
	}
	if u == nil {
		response.NotFound(c, "User not found")
		return
	}
	response.OK(c, "User retrieved successfully", u)
}
