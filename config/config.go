package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	DEFAULT_BACKEND_URL          = "http://localhost:8000"
	DEFAULT_PORT                 = "3000"
	DEFAULT_UPSTREAM_TIMEOUT     = 10 * time.Second
	DEFAULT_HEALTHCHECK_INTERVAL = 15 * time.Second

	// PREDICT_PATH is appended to BACKEND_URL for every forwarded request.
	PREDICT_PATH = "/api/predict"
	HEALTH_PATH  = "/api/health"
)

type Config struct {
	BackendURL          string
	Port                string
	UpstreamTimeout     time.Duration
	HealthcheckInterval time.Duration
	LogLevel            slog.Level
}

// PredictURL is the full upstream endpoint the relay posts to.
func (c Config) PredictURL() string {
	return c.BackendURL + PREDICT_PATH
}

func (c Config) HealthURL() string {
	return c.BackendURL + HEALTH_PATH
}

func (c Config) Addr() string {
	return ":" + c.Port
}

// Load builds a Config from the environment. Unset values fall back to their
// defaults; set but malformed values are errors.
func Load() (Config, error) {
	cfg := Config{
		BackendURL: strings.TrimRight(getEnv("BACKEND_URL", DEFAULT_BACKEND_URL), "/"),
		Port:       getEnv("PORT", DEFAULT_PORT),
	}

	u, err := url.Parse(cfg.BackendURL)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BACKEND_URL %q: %w", cfg.BackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Config{}, fmt.Errorf("invalid BACKEND_URL %q: scheme must be http or https", cfg.BackendURL)
	}
	if u.Host == "" {
		return Config{}, fmt.Errorf("invalid BACKEND_URL %q: missing host", cfg.BackendURL)
	}

	if cfg.UpstreamTimeout, err = getDuration("UPSTREAM_TIMEOUT", DEFAULT_UPSTREAM_TIMEOUT); err != nil {
		return Config{}, err
	}
	if cfg.HealthcheckInterval, err = getDuration("HEALTHCHECK_INTERVAL", DEFAULT_HEALTHCHECK_INTERVAL); err != nil {
		return Config{}, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}
