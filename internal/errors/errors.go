package errors

import (
	"net/http"

	"codeberg.org/algopatterns/academy/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.Respond() for errors coming out of services and stores
//   - Use errors.InternalError(), errors.BadRequest(), etc. for handler-level failures
//     These functions handle both logging and HTTP response automatically
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For services/stores/internal packages:
//   - Return the domain sentinels from domain.go, wrapped with fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to log and respond
//   - Do not log errors in non-handler code (avoid double logging)

// standard error codes
const (
	CodeUnauthorized       = "unauthorized"
	CodeNotFound           = "not_found"
	CodeValidationError    = "validation_error"
	CodeServerError        = "server_error"
	CodeBadRequest         = "bad_request"
	CodeTooManyRequests    = "too_many_requests"
	CodeServiceUnavailable = "service_unavailable"
)

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.JSON(http.StatusUnauthorized, newErrorResponse(CodeUnauthorized, message, nil))
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, newErrorResponse(CodeNotFound, message, nil))
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	c.JSON(http.StatusBadRequest, newErrorResponse(CodeBadRequest, message, err))
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, newErrorResponse(CodeValidationError, "validation failed", err))
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	// log full error server-side with context
	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetString("user_id"),
	)

	c.JSON(http.StatusInternalServerError, newErrorResponse(CodeServerError, message, err))
}

// returns a 503 when the backing store cannot be reached
func ServiceUnavailable(c *gin.Context, message string, err error) {
	if message == "" {
		message = "service temporarily unavailable"
	}

	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetString("user_id"),
	)

	c.JSON(http.StatusServiceUnavailable, newErrorResponse(CodeServiceUnavailable, message, err))
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, newErrorResponse(CodeTooManyRequests, message, nil))
}

// maps a service error onto the matching HTTP response
func Respond(c *gin.Context, resource string, err error) {
	category := classifyError(err).category

	switch {
	case category == CategoryValidation:
		ValidationError(c, err)
	case category == CategoryNotFound:
		NotFound(c, resource)
	case category.Transient():
		ServiceUnavailable(c, "", err)
	default:
		InternalError(c, "", err)
	}
}
