package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the media syncer.
type Config struct {
	// Instagram source settings
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// YouTube Shorts source settings
	YouTube YouTubeConfig `yaml:"youtube" json:"youtube"`

	// Download settings shared by both sources
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output layout
	Output OutputConfig `yaml:"output" json:"output"`

	// Scheduling
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds Instagram-specific configuration. Credentials
// are injected via environment, keyring or config file, never compiled
// in.
type InstagramConfig struct {
	Username     string `yaml:"username" json:"username"`
	SessionID    string `yaml:"session_id" json:"session_id"`
	CSRFToken    string `yaml:"csrf_token" json:"csrf_token"`
	UserAgent    string `yaml:"user_agent" json:"user_agent"`
	AccountsFile string `yaml:"accounts_file" json:"accounts_file"`
	PostsPerUser int    `yaml:"posts_per_user" json:"posts_per_user"`

	// RequestsPerMinute caps API calls against the Instagram endpoints.
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// YouTubeConfig holds YouTube Shorts configuration.
type YouTubeConfig struct {
	AccountsFile  string `yaml:"accounts_file" json:"accounts_file"`
	SearchResults int    `yaml:"search_results" json:"search_results"`
	Binary        string `yaml:"binary" json:"binary"`
}

// DownloadConfig holds download-specific configuration.
type DownloadConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	DelayBetween time.Duration `yaml:"delay_between" json:"delay_between"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig holds the output directory layout.
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	ShortsSubdir  string `yaml:"shorts_subdir" json:"shorts_subdir"`
}

// ScheduleConfig holds the sync cadence.
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval" json:"interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			AccountsFile:      "instausername.txt",
			PostsPerUser:      20,
			RequestsPerMinute: 60,
		},
		YouTube: YouTubeConfig{
			AccountsFile:  "ytaccounts.txt",
			SearchResults: 10,
			Binary:        "yt-dlp",
		},
		Download: DownloadConfig{
			Timeout:      15 * time.Second,
			DelayBetween: 5 * time.Second,
		},
		Output: OutputConfig{
			BaseDirectory: "post",
			ShortsSubdir:  "youtube_shorts",
		},
		Schedule: ScheduleConfig{
			Interval: 4 * time.Hour,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a YAML file. An empty path
// falls back to the standard locations; no file found is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for a config file in standard locations.
func (c *Config) findConfigFile() string {
	locations := []string{
		".mediasync.yaml",
		".mediasync.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "mediasync", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "mediasync", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// LoadFromEnv overrides configuration from environment variables.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("MEDIASYNC_IG_USERNAME"); v != "" {
		c.Instagram.Username = v
	}
	if v := os.Getenv("MEDIASYNC_SESSION_ID"); v != "" {
		c.Instagram.SessionID = v
	}
	if v := os.Getenv("MEDIASYNC_CSRF_TOKEN"); v != "" {
		c.Instagram.CSRFToken = v
	}
	if v := os.Getenv("MEDIASYNC_USER_AGENT"); v != "" {
		c.Instagram.UserAgent = v
	}
	if v := os.Getenv("MEDIASYNC_IG_ACCOUNTS_FILE"); v != "" {
		c.Instagram.AccountsFile = v
	}
	if v := os.Getenv("MEDIASYNC_YT_ACCOUNTS_FILE"); v != "" {
		c.YouTube.AccountsFile = v
	}
	if v := os.Getenv("MEDIASYNC_OUTPUT_DIR"); v != "" {
		c.Output.BaseDirectory = v
	}
	if v := os.Getenv("MEDIASYNC_POSTS_PER_USER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Instagram.PostsPerUser = n
		}
	}
	if v := os.Getenv("MEDIASYNC_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Schedule.Interval = d
		}
	}
	if v := os.Getenv("MEDIASYNC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks if the configuration is consistent.
func (c *Config) Validate() error {
	var errs []error

	if c.Instagram.PostsPerUser <= 0 {
		errs = append(errs, errors.New("posts per user must be positive"))
	}
	if c.Instagram.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.YouTube.SearchResults <= 0 {
		errs = append(errs, errors.New("search results must be positive"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.DelayBetween < 0 {
		errs = append(errs, errors.New("inter-download delay cannot be negative"))
	}
	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Schedule.Interval <= 0 {
		errs = append(errs, errors.New("sync interval must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ShortsDirectory returns the root directory for downloaded Shorts.
func (c *Config) ShortsDirectory() string {
	return filepath.Join(c.Output.BaseDirectory, c.Output.ShortsSubdir)
}

// Load loads configuration from all sources with proper precedence:
// environment variables > .env file > config file > defaults.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".mediasync.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
