package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, "premises", cfg.RabbitMQ.RoutingKey)
	assert.Equal(t, TikTokOff, cfg.Platforms.TikTok.Mode)
	require.NotNil(t, cfg.Platforms.TikTok.Browser.Headless)
	assert.True(t, *cfg.Platforms.TikTok.Browser.Headless)
	assert.Equal(t, 30*time.Second, cfg.Platforms.Reddit.Timeout)
	assert.Zero(t, cfg.Sync.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Sync.RunTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_YOUTUBE_KEY", "secret-key")
	t.Setenv("TEST_DB_PASSWORD", "pw")

	cfg, err := Parse([]byte(`
database:
  host: db
  user: app
  password: ${TEST_DB_PASSWORD}
  dbname: premises
  auto_migrate: true
platforms:
  youtube:
    api_key: ${TEST_YOUTUBE_KEY}
  tiktok:
    mode: simulated
    browser:
      headless: false
sync:
  interval: 30m
`))
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.Platforms.YouTube.APIKey)
	assert.Equal(t, TikTokSimulated, cfg.Platforms.TikTok.Mode)
	assert.False(t, *cfg.Platforms.TikTok.Browser.Headless)
	assert.Equal(t, 30*time.Minute, cfg.Sync.Interval)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "host=db port=5432 user=app password=pw dbname=premises sslmode=disable", cfg.Database.DSN())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("storage:\n  driver: sqlite\n"))
	assert.ErrorContains(t, err, "storage driver")

	_, err = Parse([]byte("platforms:\n  tiktok:\n    mode: scrape\n"))
	assert.ErrorContains(t, err, "tiktok mode")

	_, err = Parse([]byte("http: ["))
	assert.ErrorContains(t, err, "parse config")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: memory\nlog_level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")
}
