package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/cadence/internal/errors"
	"github.com/zfogg/cadence/internal/logger"
	"go.uber.org/zap"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
	// Retryable tells clients the same request may succeed later
	Retryable bool `json:"retryable,omitempty"`
}

// RespondWithAPIError sends a structured API error response
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	fields := []zap.Field{
		zap.String("code", string(apiErr.Code)),
		zap.String("message", apiErr.Message),
		logger.WithStatus(apiErr.Status),
		zap.String("path", c.FullPath()),
	}
	if requestID := c.GetString("request_id"); requestID != "" {
		fields = append(fields, logger.WithRequestID(requestID))
	}
	if cause := apiErr.Unwrap(); cause != nil {
		fields = append(fields, zap.Error(cause))
	}

	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("API error", fields...)
	} else if apiErr.Status >= http.StatusBadRequest {
		logger.Log.Warn("API error", fields...)
	}

	c.AbortWithStatusJSON(apiErr.Status, ErrorResponse{
		Code:      string(apiErr.Code),
		Message:   apiErr.Message,
		Details:   apiErr.Details,
		Retryable: apiErr.Code.Retryable(),
	})
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message ...string) {
	msg := "user not authenticated"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	RespondWithAPIError(c, errors.Unauthorized(msg))
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.NotFound(resource))
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.BadRequest(message))
}

// RespondInternalError sends a 500 response and logs the cause
func RespondInternalError(c *gin.Context, message string, cause error) {
	RespondWithAPIError(c, errors.InternalError(message).Wrap(cause))
}

// RespondMessage sends a 200 response with a single message field
func RespondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// GetUserIDFromContext extracts the authenticated user ID set by the auth middleware.
// If the user is not authenticated, it responds with 401 and returns false.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		RespondUnauthorized(c)
		return "", false
	}
	return userID, true
}
