package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration. It is constructed once
// at process start and handed to each component; nothing reads ambient
// process state after Load.
type Config struct {
	// FeedURL is the ICS endpoint polled for upcoming events.
	FeedURL string `yaml:"feed_url" json:"feed_url"`

	// Timezone is the IANA civil timezone used for all date-boundary logic
	// (stored event dates, notify-hour gating, week computation).
	Timezone string `yaml:"timezone" json:"timezone"`

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// MetricsListen is the address for the Prometheus exporter. Empty
	// disables the exporter.
	MetricsListen string `yaml:"metrics_listen" json:"metrics_listen"`

	// IngestCron is a cron-style schedule string for the monthly ingestion
	// job (e.g. "0 0 1 * *").
	IngestCron string `yaml:"ingest_cron" json:"ingest_cron"`

	// DailyHour is the civil hour (0-23) at which the daily notify job,
	// ticking hourly, actually acts.
	DailyHour int `yaml:"daily_hour" json:"daily_hour"`

	// WeeklyWeekday is the civil weekday on which the weekly digest job,
	// ticking daily, actually acts. Lowercase English weekday name.
	WeeklyWeekday string `yaml:"weekly_weekday" json:"weekly_weekday"`

	// BotAPIBase is the chat platform REST base URL used for channel
	// destinations (e.g. "https://discord.com/api/v10").
	BotAPIBase string `yaml:"bot_api_base" json:"bot_api_base"`

	// BotToken authorizes channel message posts. Webhook destinations carry
	// their own credentials in the URL and ignore this.
	BotToken string `yaml:"bot_token" json:"bot_token"`

	// HTTPTimeoutSeconds bounds every outbound HTTP call (feed fetch and
	// notification delivery).
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds" json:"http_timeout_seconds"`

	// LogLevel is the minimum log level: debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		FeedURL:            "https://raw.githubusercontent.com/clarencechaan/ufc-cal/ics/UFC.ics",
		Timezone:           "Australia/Sydney",
		DatabaseURL:        "",
		MetricsListen:      "127.0.0.1:9187",
		IngestCron:         "0 0 1 * *",
		DailyHour:          5,
		WeeklyWeekday:      "monday",
		BotAPIBase:         "https://discord.com/api/v10",
		BotToken:           "",
		HTTPTimeoutSeconds: 15,
		LogLevel:           "info",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.FeedURL == "" {
		c.FeedURL = def.FeedURL
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.MetricsListen == "" {
		c.MetricsListen = def.MetricsListen
	}
	if c.IngestCron == "" {
		c.IngestCron = def.IngestCron
	}
	if c.DailyHour < 0 || c.DailyHour > 23 {
		c.DailyHour = def.DailyHour
	}
	switch c.WeeklyWeekday {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
	default:
		c.WeeklyWeekday = def.WeeklyWeekday
	}
	if c.BotAPIBase == "" {
		c.BotAPIBase = def.BotAPIBase
	}
	if c.HTTPTimeoutSeconds <= 0 {
		c.HTTPTimeoutSeconds = def.HTTPTimeoutSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// HTTPTimeout returns the outbound HTTP timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Weekday maps WeeklyWeekday onto time.Weekday.
func (c *Config) Weekday() time.Weekday {
	switch c.WeeklyWeekday {
	case "sunday":
		return time.Sunday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	default:
		return time.Monday
	}
}

// Location resolves the configured civil timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, write a default config with 0600 perms and
//     return it.
//   - If the file exists, read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to path atomically (temp file + rename) with
// 0600 permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".fightcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
