package errors

import "net/http"

// ErrorCode is the machine-readable "code" field of an error response
type ErrorCode string

// Codes returned by the API. Clients switch on these, so they never change.
const (
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
	CodeRateLimited        ErrorCode = "RATE_LIMITED"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeCanceled           ErrorCode = "CANCELED"
)

// StatusClientClosedRequest is nginx's status for a client that disconnected
// before the response was written
const StatusClientClosedRequest = 499

// StatusCode returns the HTTP status sent with the code
func (e ErrorCode) StatusCode() int {
	switch e {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the same request may succeed later
func (e ErrorCode) Retryable() bool {
	return e == CodeRateLimited || e == CodeServiceUnavailable || e == CodeTimeout
}
