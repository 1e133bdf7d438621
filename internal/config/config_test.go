package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Australia/Sydney", cfg.Timezone)
	assert.Equal(t, 5, cfg.DailyHour)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database_url: postgres://localhost/fightcal\ndaily_hour: 7\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/fightcal", cfg.DatabaseURL)
	assert.Equal(t, 7, cfg.DailyHour)
	// Unset fields fall back to defaults.
	assert.Equal(t, "Australia/Sydney", cfg.Timezone)
	assert.Equal(t, "monday", cfg.WeeklyWeekday)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout())
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	cfg := &Config{DailyHour: 99, WeeklyWeekday: "someday", HTTPTimeoutSeconds: -1}
	cfg.Normalize()

	assert.Equal(t, 5, cfg.DailyHour)
	assert.Equal(t, "monday", cfg.WeeklyWeekday)
	assert.Equal(t, 15, cfg.HTTPTimeoutSeconds)
}

func TestWeekdayMapping(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Monday, cfg.Weekday())

	cfg.WeeklyWeekday = "sunday"
	assert.Equal(t, time.Sunday, cfg.Weekday())
}

func TestLocationResolves(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Australia/Sydney", loc.String())
}
