// Package app wires the stores, services and push transports shared by the
// API server and engagementctl.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/albapepper/healthjournal-engagement/internal/alerts"
	"github.com/albapepper/healthjournal-engagement/internal/config"
	"github.com/albapepper/healthjournal-engagement/internal/db"
	"github.com/albapepper/healthjournal-engagement/internal/engagement"
	"github.com/albapepper/healthjournal-engagement/internal/notifications"
	"github.com/albapepper/healthjournal-engagement/internal/preferences"
	"github.com/albapepper/healthjournal-engagement/internal/scheduler"
	"github.com/albapepper/healthjournal-engagement/internal/vitals"
	"github.com/albapepper/healthjournal-engagement/internal/wearable"
)

// App holds the wired services.
type App struct {
	Engagement  *engagement.Service
	Alerts      *alerts.Service
	Preferences *preferences.Service
	Samples     *wearable.Store
	Dispatcher  *notifications.Dispatcher
	Deliverer   *notifications.Deliverer
	Monitor     *vitals.Monitor

	// Cooldowns is nil when REDIS_URL is unset and the monitor keeps its
	// cooldowns in process memory.
	Cooldowns *vitals.RedisCooldown

	cfg    *config.Config
	redis  *redis.Client
	logger *slog.Logger
}

// New builds every service on top of pool. Push transports that are not
// configured are left out; the dispatcher reports them as unavailable.
func New(ctx context.Context, cfg *config.Config, pool *db.Pool, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	txm := db.NewTxManager(pool.Pool)
	a.Alerts = alerts.NewService(alerts.NewStore(pool.Pool), logger)
	a.Preferences = preferences.NewService(preferences.NewStore(pool.Pool), logger)
	a.Samples = wearable.NewStore(pool.Pool)

	engStore := engagement.NewStore(pool.Pool)
	awarder := engagement.NewAwarder(engStore, a.Alerts, a.Preferences, logger)
	a.Engagement = engagement.NewService(txm, engStore, awarder, cfg.DayLocation, logger)

	// Push transports
	relay := notifications.NewRelayClient(cfg.ExpoPushURL, cfg.ExpoAccessToken, cfg.PushRequestsPerSec, logger)
	var gateway notifications.Transporter
	fcm, err := notifications.NewFCMGateway(ctx, cfg.FCMCredentialsFile, logger)
	switch {
	case err != nil:
		logger.Warn("FCM gateway disabled", "error", err)
	case fcm == nil:
		logger.Info("FCM gateway disabled (no FIREBASE_CREDENTIALS_FILE)")
	default:
		gateway = fcm
	}
	a.Dispatcher = notifications.NewDispatcher(relay, gateway, cfg.PushDispatchTimeout, logger)
	a.Deliverer = notifications.NewDeliverer(notifications.NewStore(pool.Pool), a.Preferences, a.Dispatcher, logger)

	// Heart-rate cooldowns
	var cooldowns vitals.CooldownStore = vitals.NewMemoryCooldown()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		a.redis = redis.NewClient(opts)
		a.Cooldowns = vitals.NewRedisCooldown(a.redis)
		if err := a.Cooldowns.Ping(ctx); err != nil {
			logger.Warn("Redis unreachable at startup, cooldown checks will fail open", "error", err)
		}
		cooldowns = a.Cooldowns
	}
	a.Monitor = vitals.NewMonitor(a.Preferences, cooldowns, a.Deliverer, a.Samples, vitals.Config{
		Cooldown:        cfg.VitalCooldown,
		SymptomDeepLink: cfg.SymptomDeepLink,
		ReadTimeout:     cfg.WearableReadTimeout,
	}, logger)

	return a, nil
}

// Scheduler returns a pass runner over the wired services.
func (a *App) Scheduler() *scheduler.Runner {
	cfg := a.cfg
	return scheduler.NewRunner(scheduler.Deps{
		Engagement:  a.Engagement,
		Alerts:      a.Alerts,
		Preferences: a.Preferences,
		Syncs:       a.Samples,
		Sweeper:     a.Deliverer,
	}, scheduler.Config{
		DailyReminderInterval: cfg.DailyReminderInterval,
		InactivityInterval:    cfg.InactivityInterval,
		RollupInterval:        cfg.RollupInterval,
		StreakInterval:        cfg.StreakInterval,
		WeeklySummaryInterval: cfg.WeeklySummaryInterval,
		InsightInterval:       cfg.InsightInterval,
		CleanupInterval:       cfg.CleanupInterval,
		HealthSyncInterval:    cfg.HealthSyncInterval,
		InactivityDays:        cfg.InactivityDays,
		Workers:               cfg.PassWorkers,
		CleanupBatchSize:      cfg.CleanupBatchSize,
	}, cfg.DayLocation, a.logger)
}

// Close releases the Redis client, if any.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
