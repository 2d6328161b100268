package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 20, cfg.Instagram.PostsPerUser)
	assert.Equal(t, 60, cfg.Instagram.RequestsPerMinute)
	assert.Equal(t, "instausername.txt", cfg.Instagram.AccountsFile)
	assert.Equal(t, 10, cfg.YouTube.SearchResults)
	assert.Equal(t, "yt-dlp", cfg.YouTube.Binary)
	assert.Equal(t, 5*time.Second, cfg.Download.DelayBetween)
	assert.Equal(t, "post", cfg.Output.BaseDirectory)
	assert.Equal(t, 4*time.Hour, cfg.Schedule.Interval)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
instagram:
  username: archiver
  accounts_file: accounts/ig.txt
  posts_per_user: 5
youtube:
  search_results: 3
output:
  base_directory: /data/media
schedule:
  interval: 2h
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "archiver", cfg.Instagram.Username)
	assert.Equal(t, "accounts/ig.txt", cfg.Instagram.AccountsFile)
	assert.Equal(t, 5, cfg.Instagram.PostsPerUser)
	assert.Equal(t, 3, cfg.YouTube.SearchResults)
	assert.Equal(t, "/data/media", cfg.Output.BaseDirectory)
	assert.Equal(t, 2*time.Hour, cfg.Schedule.Interval)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched fields keep their defaults.
	assert.Equal(t, "yt-dlp", cfg.YouTube.Binary)
	assert.Equal(t, 60, cfg.Instagram.RequestsPerMinute)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("instagram: [not a map"), 0o644))

	cfg := DefaultConfig()
	require.Error(t, cfg.LoadFromFile(path))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MEDIASYNC_SESSION_ID", "env-session")
	t.Setenv("MEDIASYNC_CSRF_TOKEN", "env-csrf")
	t.Setenv("MEDIASYNC_OUTPUT_DIR", "/env/output")
	t.Setenv("MEDIASYNC_POSTS_PER_USER", "7")
	t.Setenv("MEDIASYNC_SYNC_INTERVAL", "90m")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-session", cfg.Instagram.SessionID)
	assert.Equal(t, "env-csrf", cfg.Instagram.CSRFToken)
	assert.Equal(t, "/env/output", cfg.Output.BaseDirectory)
	assert.Equal(t, 7, cfg.Instagram.PostsPerUser)
	assert.Equal(t, 90*time.Minute, cfg.Schedule.Interval)
}

func TestLoadFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("MEDIASYNC_POSTS_PER_USER", "-2")
	t.Setenv("MEDIASYNC_SYNC_INTERVAL", "soon")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 20, cfg.Instagram.PostsPerUser)
	assert.Equal(t, 4*time.Hour, cfg.Schedule.Interval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero posts per user", func(c *Config) { c.Instagram.PostsPerUser = 0 }},
		{"zero rate limit", func(c *Config) { c.Instagram.RequestsPerMinute = 0 }},
		{"zero search results", func(c *Config) { c.YouTube.SearchResults = 0 }},
		{"zero timeout", func(c *Config) { c.Download.Timeout = 0 }},
		{"negative delay", func(c *Config) { c.Download.DelayBetween = -time.Second }},
		{"empty output dir", func(c *Config) { c.Output.BaseDirectory = "" }},
		{"zero interval", func(c *Config) { c.Schedule.Interval = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestShortsDirectory(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("post", "youtube_shorts"), cfg.ShortsDirectory())

	cfg.Output.BaseDirectory = "/data"
	cfg.Output.ShortsSubdir = "shorts"
	assert.Equal(t, filepath.Join("/data", "shorts"), cfg.ShortsDirectory())
}
