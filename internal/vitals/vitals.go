// Package vitals raises an immediate push when a fresh heart-rate reading
// crosses the user's threshold. It keeps its own cooldown store and does not
// write in-app alerts.
package vitals

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/albapepper/healthjournal-engagement/internal/preferences"
	"github.com/albapepper/healthjournal-engagement/internal/wearable"
)

// DefaultCooldown is the minimum spacing between two elevated heart-rate
// notifications for one user.
const DefaultCooldown = 30 * time.Minute

// Outcome describes what a check did.
type Outcome string

const (
	OutcomeNoReading      Outcome = "no_reading"
	OutcomeBelowThreshold Outcome = "below_threshold"
	OutcomeCoolingDown    Outcome = "cooling_down"
	OutcomeNotified       Outcome = "notified"
	OutcomeNotifyFailed   Outcome = "notify_failed"
)

// ThresholdReader returns the user's elevated heart-rate threshold.
type ThresholdReader interface {
	HeartRateThreshold(ctx context.Context, userID string) (int, error)
}

// Notifier pushes a notification to the user's registered device.
type Notifier interface {
	NotifyUser(ctx context.Context, userID, title, body string, data map[string]string) error
}

// CooldownStore hands out one notification slot per user per window.
// TryAcquire must be atomic: of two concurrent callers inside one window, at
// most one gets true. Release gives back a slot taken at the same instant.
type CooldownStore interface {
	TryAcquire(ctx context.Context, userID string, at time.Time, ttl time.Duration) (bool, error)
	Release(ctx context.Context, userID string, at time.Time) error
}

// Config tunes the Monitor.
type Config struct {
	Cooldown        time.Duration
	SymptomDeepLink string
	ReadTimeout     time.Duration
}

// Monitor checks heart-rate readings against the user's threshold.
type Monitor struct {
	thresholds ThresholdReader
	cooldowns  CooldownStore
	notifier   Notifier
	samples    wearable.Provider
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time
}

// NewMonitor creates a Monitor. samples may be nil when only explicit
// readings are checked.
func NewMonitor(thresholds ThresholdReader, cooldowns CooldownStore, notifier Notifier, samples wearable.Provider, cfg Config, logger *slog.Logger) *Monitor {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Second
	}
	return &Monitor{
		thresholds: thresholds,
		cooldowns:  cooldowns,
		notifier:   notifier,
		samples:    samples,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// CheckAndNotify compares bpm against the user's threshold and, outside the
// cooldown window, pushes a prompt to log a symptom. A non-positive bpm means
// no reading. Nothing here returns an error: every failure degrades to an
// outcome.
func (m *Monitor) CheckAndNotify(ctx context.Context, userID string, bpm float64) Outcome {
	if userID == "" || bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return OutcomeNoReading
	}

	threshold, err := m.thresholds.HeartRateThreshold(ctx, userID)
	if err != nil || threshold <= 0 {
		if err != nil {
			m.logger.Warn("Heart-rate threshold unavailable, using default",
				"user_id", userID, "default", preferences.DefaultHeartRateThreshold, "error", err)
		}
		threshold = preferences.DefaultHeartRateThreshold
	}
	if bpm < float64(threshold) {
		return OutcomeBelowThreshold
	}

	now := m.now()
	acquired, err := m.cooldowns.TryAcquire(ctx, userID, now, m.cfg.Cooldown)
	if err != nil {
		m.logger.Warn("Cooldown acquire failed", "user_id", userID, "error", err)
	} else if !acquired {
		m.logger.Debug("Elevated heart rate suppressed by cooldown", "user_id", userID, "bpm", bpm)
		return OutcomeCoolingDown
	}

	rounded := int(math.Round(bpm))
	title := "Elevated heart rate"
	body := fmt.Sprintf("Your heart rate is %d bpm, above your %d bpm threshold. Tap to log how you feel.", rounded, threshold)
	data := map[string]string{
		"type":          "elevated_heart_rate",
		"deep_link":     m.cfg.SymptomDeepLink,
		"bpm":           strconv.Itoa(rounded),
		"threshold_bpm": strconv.Itoa(threshold),
	}
	if err := m.notifier.NotifyUser(ctx, userID, title, body, data); err != nil {
		m.logger.Warn("Elevated heart-rate notification failed", "user_id", userID, "error", err)
		if acquired {
			if err := m.cooldowns.Release(ctx, userID, now); err != nil {
				m.logger.Warn("Cooldown release failed", "user_id", userID, "error", err)
			}
		}
		return OutcomeNotifyFailed
	}

	m.logger.Info("Elevated heart-rate notification sent", "user_id", userID, "bpm", rounded, "threshold", threshold)
	return OutcomeNotified
}

// CheckLatest reads the latest synced heart rate (bounded by the read
// timeout) and checks it.
func (m *Monitor) CheckLatest(ctx context.Context, userID string) Outcome {
	if m.samples == nil {
		return OutcomeNoReading
	}
	s := wearable.LatestWithTimeout(ctx, m.samples, userID, wearable.MetricHeartRate, m.cfg.ReadTimeout)
	if s == nil {
		return OutcomeNoReading
	}
	return m.CheckAndNotify(ctx, userID, s.Value)
}
