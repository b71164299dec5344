package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfig, "")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ".permitdesk", "permitdesk.db"), cfg.Database.Path)
	assert.Equal(t, 5, cfg.Tickets.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Database.TxTimeout.Duration)
	assert.False(t, cfg.Approval.RequireCompletedChecklist)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfig, "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".permitdesk"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".permitdesk", "config.yaml"), []byte(`
database:
  path: /var/lib/permitdesk.db
  tx_timeout: 750ms
tickets:
  max_retries: 8
approval:
  require_completed_checklist: true
log:
  level: debug
  format: json
`), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/permitdesk.db", cfg.Database.Path)
	assert.Equal(t, 750*time.Millisecond, cfg.Database.TxTimeout.Duration)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout.Duration, "unset keys keep defaults")
	assert.Equal(t, 8, cfg.Tickets.MaxRetries)
	assert.True(t, cfg.Approval.RequireCompletedChecklist)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvDB, "/tmp/env.db")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/2")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvActor, "clerk@example.org")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Redis.URL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "clerk@example.org", cfg.Actor)
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(t.TempDir(), "elsewhere.yaml")
	require.NoError(t, os.WriteFile(path, []byte("actor: ops\n"), 0644))
	t.Setenv(EnvConfig, path)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "ops", cfg.Actor)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfig, "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".permitdesk"), 0755))

	for name, body := range map[string]string{
		"bad duration": "database:\n  tx_timeout: soon\n",
		"zero retries": "tickets:\n  max_retries: 0\n",
		"bad format":   "log:\n  format: xml\n",
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, ".permitdesk", "config.yaml"), []byte(body), 0644))
			_, err := LoadConfig(dir)
			assert.Error(t, err)
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfig, "")

	cfg := Default(dir)
	cfg.Actor = "admin"
	cfg.Tickets.RetryBackoff = Duration{50 * time.Millisecond}
	require.NoError(t, SaveConfig(dir, cfg))

	data, err := os.ReadFile(filepath.Join(dir, ".permitdesk", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "retry_backoff: 50ms")

	loaded, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
