// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/engagementctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names. Single source of truth, matches migrations.
// --------------------------------------------------------------------------

const (
	EventsTable      = "engagement_events"
	StatsTable       = "engagement_stats"
	DailyLogsTable   = "daily_engagement_logs"
	MilestonesTable  = "milestones"
	AlertsTable      = "alerts"
	PreferencesTable = "notification_preferences"
	SamplesTable     = "wearable_samples"
)

// --------------------------------------------------------------------------
// Config holds settings populated from environment variables.
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Error tracking
	SentryDSN string

	// Engagement
	DayLocation      *time.Location // calendar-day boundary for events and passes
	InactivityDays   int
	PassWorkers      int
	CleanupBatchSize int

	// Scheduler intervals (zero disables a pass)
	DailyReminderInterval time.Duration
	InactivityInterval    time.Duration
	RollupInterval        time.Duration
	StreakInterval        time.Duration
	WeeklySummaryInterval time.Duration
	InsightInterval       time.Duration
	CleanupInterval       time.Duration
	HealthSyncInterval    time.Duration
	CatchUpInterval       time.Duration

	// Push delivery
	ExpoPushURL         string
	ExpoAccessToken     string
	PushRequestsPerSec  int
	FCMCredentialsFile  string
	SymptomDeepLink     string
	PushDispatchTimeout time.Duration

	// Elevated vitals
	RedisURL            string
	VitalCooldown       time.Duration
	WearableReadTimeout time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	tz := envOr("ENGAGEMENT_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("ENGAGEMENT_TIMEZONE %q: %w", tz, err)
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:8081",
			"http://localhost:19006",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		SentryDSN: envOr("SENTRY_DSN", ""),

		DayLocation:      loc,
		InactivityDays:   envInt("INACTIVITY_THRESHOLD_DAYS", 2),
		PassWorkers:      envInt("PASS_WORKERS", 8),
		CleanupBatchSize: envInt("CLEANUP_BATCH_SIZE", 500),

		DailyReminderInterval: envDuration("DAILY_REMINDER_INTERVAL", 24*time.Hour),
		InactivityInterval:    envDuration("INACTIVITY_INTERVAL", 24*time.Hour),
		RollupInterval:        envDuration("ROLLUP_INTERVAL", 6*time.Hour),
		StreakInterval:        envDuration("STREAK_INTERVAL", 24*time.Hour),
		WeeklySummaryInterval: envDuration("WEEKLY_SUMMARY_INTERVAL", 7*24*time.Hour),
		InsightInterval:       envDuration("INSIGHT_INTERVAL", 7*24*time.Hour),
		CleanupInterval:       envDuration("CLEANUP_INTERVAL", 30*time.Minute),
		HealthSyncInterval:    envDuration("HEALTH_SYNC_INTERVAL", 6*time.Hour),
		CatchUpInterval:       envDuration("DISPATCH_CATCHUP_INTERVAL", 5*time.Minute),

		ExpoPushURL:         envOr("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
		ExpoAccessToken:     envOr("EXPO_ACCESS_TOKEN", ""),
		PushRequestsPerSec:  envInt("PUSH_REQUESTS_PER_SEC", 10),
		FCMCredentialsFile:  envOr("FIREBASE_CREDENTIALS_FILE", ""),
		SymptomDeepLink:     envOr("SYMPTOM_DEEP_LINK", "healthjournal://log/symptom"),
		PushDispatchTimeout: envDuration("PUSH_DISPATCH_TIMEOUT", 15*time.Second),

		RedisURL:            envOr("REDIS_URL", ""),
		VitalCooldown:       envDuration("VITAL_COOLDOWN", 30*time.Minute),
		WearableReadTimeout: envDuration("WEARABLE_READ_TIMEOUT", 5*time.Second),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go duration syntax ("90s", "6h"). Invalid values fall
// back to the default.
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
