// internal/pkg/response/response.go
package response

import (
	"errors"
	"net/http"
	"strings"

	xerrors "isp-billing-service/internal/pkg/errors"
	"isp-billing-service/internal/pkg/pagination"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is returned by endpoints that only acknowledge an action.
type MessageBody struct {
	Message string `json:"message"`
}

// Success writes the payload as-is.
func Success(c *gin.Context, status int, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, data)
}

// Message writes {"message": msg}.
func Message(c *gin.Context, status int, msg string) {
	Success(c, status, MessageBody{Message: msg})
}

// Paginated writes the {data, pagination} envelope.
func Paginated[T any](c *gin.Context, page *pagination.Page[T]) {
	c.JSON(http.StatusOK, page)
}

// Error aborts the chain and writes {"error": message}.
func Error(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorBody{Error: message})
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

type mapping struct {
	target   error
	status   int
	fallback string
}

var mappings = []mapping{
	{xerrors.ErrValidation, http.StatusBadRequest, "Invalid request"},
	{xerrors.ErrWeakPassword, http.StatusBadRequest, "New password must be at least 6 characters"},
	{xerrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{xerrors.ErrInvalidToken, http.StatusUnauthorized, "Invalid token."},
	{xerrors.ErrNotFound, http.StatusNotFound, "Resource not found"},
	{xerrors.ErrConflict, http.StatusConflict, "Conflict"},
	{xerrors.ErrRateLimited, http.StatusTooManyRequests, "Too many attempts, please try again later"},
}

// Status returns the HTTP status and the client-facing message for err.
// Anything outside the taxonomy is a 500 with a generic message.
func Status(err error) (int, string) {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.status, clientMessage(err, m.target, m.fallback)
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// FromError maps a service error to its response. 5xx errors are logged with the cause.
func FromError(c *gin.Context, logger *zap.Logger, err error) {
	status, msg := Status(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	Error(c, status, msg)
}

// clientMessage strips the sentinel suffix added by xerrors helpers,
// "Package not found: resource not found" -> "Package not found".
func clientMessage(err, target error, fallback string) string {
	full := err.Error()
	if full == target.Error() {
		return fallback
	}
	if msg := strings.TrimSuffix(full, ": "+target.Error()); msg != full && msg != "" {
		return msg
	}
	return fallback
}
