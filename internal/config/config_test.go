package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brewhub/payment-gateway/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"JWT_SECRET":      "test-secret",
		"BACKEND_API_URL": "",
		"PORT":            "",
	})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5089", cfg.BackendAPIURL)
	require.Equal(t, ":3003", cfg.HTTPAddr())
	require.Equal(t, 5*time.Second, cfg.BackendTimeout)
	require.Equal(t, "json", cfg.LogFormat)
	require.True(t, cfg.MetricsEnabled)
	require.False(t, cfg.TracingEnabled)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"JWT_SECRET": "",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsMalformedBackendURL(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"JWT_SECRET":      "test-secret",
		"BACKEND_API_URL": "not a url",
	})
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"JWT_SECRET":           "test-secret",
		"BACKEND_API_URL":      "https://backend.internal/",
		"PORT":                 "8081",
		"BACKEND_TIMEOUT":      "2s",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"OBS_ENABLE_TRACING":   "true",
	})
	require.NoError(t, err)
	require.Equal(t, "https://backend.internal", cfg.BackendAPIURL)
	require.Equal(t, ":8081", cfg.HTTPAddr())
	require.Equal(t, 2*time.Second, cfg.BackendTimeout)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.True(t, cfg.TracingEnabled)
}
