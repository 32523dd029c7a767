package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateServices(t *testing.T) {
	var called []string
	ok := func(name string) Check {
		return func(ctx context.Context) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			called = append(called, name)
			return nil
		}
	}
	checks := map[string]Check{
		"database": ok("database"),
		"s3":       ok("s3"),
		"redis": func(context.Context) error {
			called = append(called, "redis")
			return errors.New("connection refused")
		},
	}

	sv := NewServiceValidator([]string{"database", "unknown", "s3"}, checks)
	require.NoError(t, sv.ValidateServices(context.Background()))
	assert.Equal(t, []string{"database", "s3"}, called)

	called = nil
	err := NewServiceValidator([]string{"redis", "s3"}, checks).ValidateServices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
	assert.Equal(t, []string{"redis"}, called)

	assert.NoError(t, NewServiceValidator(nil, checks).ValidateServices(context.Background()))
}

func TestRequiredFromEnv(t *testing.T) {
	t.Setenv("CADENCE_REQUIRE_DATABASE", "true")
	t.Setenv("CADENCE_REQUIRE_S3", " Yes ")
	t.Setenv("CADENCE_REQUIRE_REDIS", "0")

	assert.Equal(t, []string{"database", "s3"}, RequiredFromEnv())
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on"} {
		assert.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "0", "false", "off", "nope"} {
		assert.False(t, isTruthy(v), v)
	}
}
