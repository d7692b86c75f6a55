package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, "http://127.0.0.1:8000", cfg.Upstream.BaseURL)
	require.Equal(t, 30*time.Minute, cfg.Dashboard.SessionTTL)
	require.True(t, cfg.Metrics.Enabled)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
upstream:
  baseUrl: https://api.example.com
  timeout: 3s
dashboard:
  sessionTtl: 5m
  viewStore:
    valkey:
      enabled: true
      addr: localhost:6379
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("UPSTREAM_TIMEOUT", "7s")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DASHBOARD_MAX_SESSIONS", "12")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com", cfg.Upstream.BaseURL)
	require.Equal(t, 7*time.Second, cfg.Upstream.Timeout)
	require.Equal(t, 5*time.Minute, cfg.Dashboard.SessionTTL)
	require.Equal(t, 12, cfg.Dashboard.MaxSessions)
	require.True(t, cfg.Dashboard.ViewStore.Valkey.Enabled)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.HTTP.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"relative upstream", func(c *Config) { c.Upstream.BaseURL = "/api" }, "upstream.baseUrl must be an absolute URL"},
		{"empty upstream", func(c *Config) { c.Upstream.BaseURL = " " }, "upstream.baseUrl cannot be empty"},
		{"valkey without addr", func(c *Config) { c.Dashboard.ViewStore.Valkey.Enabled = true }, "dashboard.viewStore.valkey.addr"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
		{"retry attempts", func(c *Config) { c.HTTP.Retry.Enabled = true; c.HTTP.Retry.MaxAttempts = 0 }, "http.retry.maxAttempts"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.message)
		})
	}
	require.NoError(t, defaultConfig().Validate())
}
