package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwatch-app/finwatch/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "10s", cfg.Server.ReadTimeout)
	assert.Equal(t, "30s", cfg.Server.WriteTimeout)
	assert.False(t, cfg.Sink.Webhook.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Monitors.Budget.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Monitors.Budget.MinSpacing)
	assert.Equal(t, 24*time.Hour, cfg.Monitors.Budget.Cooldown)
	assert.Equal(t, 6*time.Hour, cfg.Monitors.Goal.Interval)
	assert.Equal(t, 2*time.Hour, cfg.Monitors.Reminder.Interval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "default", cfg.Defaults.User)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	data := []byte(`
storage:
  path: /tmp/test.db
server:
  listen: ":9090"
sink:
  webhook:
    enabled: true
    url: https://hooks.example.com/finwatch
    secret: shh
monitors:
  budget:
    interval: 15m
    cooldown: 12h
logging:
  level: debug
defaults:
  user: demo
`)
	err := os.WriteFile(cfgPath, data, 0o644)
	require.NoError(t, err)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.Storage.Path)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.True(t, cfg.Sink.Webhook.Enabled)
	assert.Equal(t, "https://hooks.example.com/finwatch", cfg.Sink.Webhook.URL)
	assert.Equal(t, 15*time.Minute, cfg.Monitors.Budget.Interval)
	assert.Equal(t, 12*time.Hour, cfg.Monitors.Budget.Cooldown)
	// Unset keys keep their defaults.
	assert.Equal(t, 5*time.Minute, cfg.Monitors.Budget.MinSpacing)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "demo", cfg.Defaults.User)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FINWATCH_LOGGING_LEVEL", "error")
	t.Setenv("FINWATCH_SERVER_LISTEN", ":7070")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, ":7070", cfg.Server.Listen)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	err := os.WriteFile(cfgPath, []byte("invalid: [yaml"), 0o644)
	require.NoError(t, err)

	_, err = config.Load(cfgPath)
	assert.Error(t, err)
}
