package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the success envelope shared by every endpoint.
type Body struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorBody is the failure envelope. Error carries the upstream detail.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Meta is the list metadata returned by paginated endpoints.
type Meta struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalItems int64  `json:"totalItems"`
	TotalPages int    `json:"totalPages"`
	SortBy     string `json:"sortBy,omitempty"`
	SortOrder  string `json:"sortOrder,omitempty"`
}

type pagedBody struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Meta    Meta        `json:"meta"`
}

// OK sends a 200 response.
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Message: message, Data: data})
}

// Paged sends a 200 response with list metadata.
func Paged(c *gin.Context, message string, data interface{}, meta Meta) {
	c.JSON(http.StatusOK, pagedBody{Message: message, Data: data, Meta: meta})
}

// Created sends a 201 response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Body{Message: message, Data: data})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, message, "")
}

// BadRequestErr sends a 400 with the binding error attached.
func BadRequestErr(c *gin.Context, message string, err error) {
	abort(c, http.StatusBadRequest, message, errText(err))
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	abort(c, http.StatusUnauthorized, message, "")
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Forbidden"
	}
	abort(c, http.StatusForbidden, message, "")
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Not Found"
	}
	abort(c, http.StatusNotFound, message, "")
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	abort(c, http.StatusConflict, message, "")
}

func PayloadTooLarge(c *gin.Context, message string) {
	abort(c, http.StatusRequestEntityTooLarge, message, "")
}

func UnsupportedMediaType(c *gin.Context, message string) {
	abort(c, http.StatusUnsupportedMediaType, message, "")
}

func TooManyRequests(c *gin.Context) {
	abort(c, http.StatusTooManyRequests, "Too many requests", "")
}

// InternalError sends a 500 with the upstream error text verbatim.
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "Internal server error"
	}
	abort(c, http.StatusInternalServerError, message, errText(err))
}

func abort(c *gin.Context, status int, message, detail string) {
	c.AbortWithStatusJSON(status, ErrorBody{Message: message, Error: detail})
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
