package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response body: {code, message, data}.
type Envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PagedData wraps list items with their pagination metadata.
type PagedData struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// OK sends a 200 envelope.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Code: http.StatusOK, Message: "success", Data: data})
}

// Message sends a 200 envelope with a custom message and no data.
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Code: http.StatusOK, Message: message})
}

// Paged sends a 200 envelope wrapping {items, pagination}.
func Paged(c *gin.Context, items interface{}, pagination Pagination) {
	OK(c, PagedData{Items: items, Pagination: pagination})
}

// Created sends a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Code: http.StatusCreated, Message: "created", Data: data})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Code: http.StatusBadRequest, Message: message})
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Code: http.StatusUnauthorized, Message: message})
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "permission denied"
	}
	c.AbortWithStatusJSON(http.StatusForbidden, Envelope{Code: http.StatusForbidden, Message: message})
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "not found"
	}
	c.AbortWithStatusJSON(http.StatusNotFound, Envelope{Code: http.StatusNotFound, Message: message})
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusConflict, Envelope{Code: http.StatusConflict, Message: message})
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context) {
	c.Header("Retry-After", "1")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Envelope{Code: http.StatusTooManyRequests, Message: "too many requests"})
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{Code: http.StatusInternalServerError, Message: err.Error()})
}
