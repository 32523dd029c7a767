package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsSetStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
	}{
		{"not found", NotFound("song"), http.StatusNotFound},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not your song"), http.StatusForbidden},
		{"conflict", Conflict("song already in playlist"), http.StatusConflict},
		{"bad request", BadRequest("invalid song id"), http.StatusBadRequest},
		{"internal", InternalError("boom"), http.StatusInternalServerError},
		{"rate limited", RateLimited(""), http.StatusTooManyRequests},
		{"unavailable", ServiceUnavailable("storage"), http.StatusServiceUnavailable},
		{"timeout", Timeout("search"), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.status, tt.err.Code.StatusCode())
		})
	}

	assert.Equal(t, "song not found", NotFound("song").Message)
	assert.Equal(t, "rate limit exceeded", RateLimited("").Message)
}

func TestUnknownCodeIsInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("NOPE").StatusCode())
}

func TestFromContext(t *testing.T) {
	apiErr := FromContext(fmt.Errorf("recommend: %w", context.DeadlineExceeded), "recommend")
	require.NotNil(t, apiErr)
	assert.Equal(t, CodeTimeout, apiErr.Code)
	assert.ErrorIs(t, apiErr, context.DeadlineExceeded)

	apiErr = FromContext(context.Canceled, "search")
	require.NotNil(t, apiErr)
	assert.Equal(t, StatusClientClosedRequest, apiErr.Status)

	assert.Nil(t, FromContext(stderrors.New("other"), "search"))
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("song"))
	apiErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, apiErr.Code)

	_, ok = As(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestRetryable(t *testing.T) {
	assert.True(t, CodeRateLimited.Retryable())
	assert.True(t, CodeTimeout.Retryable())
	assert.False(t, CodeNotFound.Retryable())
	assert.False(t, CodeInternal.Retryable())
}
