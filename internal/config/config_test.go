package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	for _, key := range []string{"DATABASE_URL", "DB_DRIVER", "PORT", "RANKING_PARALLEL_THRESHOLD", "RANKING_TIE_BREAK", "RATE_LIMIT_WINDOW", "OTEL_ENABLED", "CLEANUP_INTERVAL", "CLEANUP_GRACE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8787", cfg.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Contains(t, cfg.Database.URL, "dbname=cadence")
	assert.Equal(t, 2048, cfg.Ranking.ParallelThreshold)
	assert.Equal(t, "reverse-scan", cfg.Ranking.TieBreak)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, time.Hour, cfg.Cleanup.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Cleanup.Grace)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("RANKING_WORKERS", "4")
	t.Setenv("RANKING_TIE_BREAK", "scan-order")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Ranking.Workers)
	assert.Equal(t, "scan-order", cfg.Ranking.TieBreak)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"bad driver", map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "mongo"}},
		{"bad workers", map[string]string{"JWT_SECRET": "s", "RANKING_WORKERS": "many"}},
		{"bad window", map[string]string{"JWT_SECRET": "s", "RATE_LIMIT_WINDOW": "soon"}},
		{"bad cleanup grace", map[string]string{"JWT_SECRET": "s", "CLEANUP_GRACE": "a day"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
