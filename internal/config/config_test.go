package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/journal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.InactivityDays)
	assert.Equal(t, 500, cfg.CleanupBatchSize)
	assert.Equal(t, 30*time.Minute, cfg.VitalCooldown)
	assert.Equal(t, time.UTC.String(), cfg.DayLocation.String())
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/journal")
	t.Setenv("ENGAGEMENT_TIMEZONE", "Europe/Berlin")
	t.Setenv("INACTIVITY_THRESHOLD_DAYS", "3")
	t.Setenv("CLEANUP_INTERVAL", "90s")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.DayLocation.String())
	assert.Equal(t, 3, cfg.InactivityDays)
	assert.Equal(t, 90*time.Second, cfg.CleanupInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/journal")
	t.Setenv("ENGAGEMENT_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "twelve")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "-5m")

	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.True(t, envBool("X_BOOL", true))
	assert.Equal(t, time.Minute, envDuration("X_DUR", time.Minute))
}
