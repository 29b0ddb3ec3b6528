package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"BACKEND_URL", "PORT", "UPSTREAM_TIMEOUT", "HEALTHCHECK_INTERVAL", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.BackendURL)
	assert.Equal(t, "http://localhost:8000/api/predict", cfg.PredictURL())
	assert.Equal(t, "http://localhost:8000/api/health", cfg.HealthURL())
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 15*time.Second, cfg.HealthcheckInterval)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKEND_URL", "https://sentiment.example.com/")
	t.Setenv("PORT", "9090")
	t.Setenv("UPSTREAM_TIMEOUT", "2500ms")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://sentiment.example.com/api/predict", cfg.PredictURL())
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 2500*time.Millisecond, cfg.UpstreamTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"no scheme", "BACKEND_URL", "localhost:8000"},
		{"ftp scheme", "BACKEND_URL", "ftp://example.com"},
		{"bad timeout", "UPSTREAM_TIMEOUT", "soon"},
		{"zero timeout", "UPSTREAM_TIMEOUT", "0s"},
		{"negative interval", "HEALTHCHECK_INTERVAL", "-1s"},
		{"bad level", "LOG_LEVEL", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
