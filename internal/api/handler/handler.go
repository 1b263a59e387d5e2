// Package handler provides HTTP handlers for all API endpoints. Handlers
// resolve the caller from the request context, delegate to the engagement,
// alert and preference services, and map their errors to status codes.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/healthjournal-engagement/internal/alerts"
	"github.com/albapepper/healthjournal-engagement/internal/api/respond"
	"github.com/albapepper/healthjournal-engagement/internal/cache"
	"github.com/albapepper/healthjournal-engagement/internal/engagement"
	"github.com/albapepper/healthjournal-engagement/internal/preferences"
	"github.com/albapepper/healthjournal-engagement/internal/vitals"
	"github.com/albapepper/healthjournal-engagement/internal/wearable"
)

// --------------------------------------------------------------------------
// Service surfaces. The concrete services satisfy these.
// --------------------------------------------------------------------------

// Engagement is satisfied by *engagement.Service.
type Engagement interface {
	Today() string
	RecordEvent(ctx context.Context, userID string, cat engagement.Category, day string) (engagement.Result, error)
	Stats(ctx context.Context, userID string) (engagement.Stats, error)
	History(ctx context.Context, userID string, days int) ([]engagement.DayCount, error)
	Milestones(ctx context.Context, userID string) ([]engagement.Milestone, error)
}

// Inbox is satisfied by *alerts.Service.
type Inbox interface {
	Inbox(ctx context.Context, userID string, f alerts.ListFilter) (alerts.Inbox, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Dismiss(ctx context.Context, userID string, id uuid.UUID) error
}

// Preferences is satisfied by *preferences.Service.
type Preferences interface {
	Get(ctx context.Context, userID string) (preferences.Preferences, error)
	Update(ctx context.Context, userID string, patch preferences.Patch) (preferences.Preferences, error)
	SetHeartRateThreshold(ctx context.Context, userID string, bpm int) (preferences.Preferences, error)
	RegisterDeviceToken(ctx context.Context, userID, token string) error
}

// VitalChecker is satisfied by *vitals.Monitor.
type VitalChecker interface {
	CheckAndNotify(ctx context.Context, userID string, bpm float64) vitals.Outcome
}

// SampleRecorder is satisfied by *wearable.Store.
type SampleRecorder interface {
	Record(ctx context.Context, s wearable.Sample) error
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Deps are the handler dependencies. Samples and Cooldowns may be nil.
type Deps struct {
	Engagement  Engagement
	Alerts      Inbox
	Preferences Preferences
	Vitals      VitalChecker
	Samples     SampleRecorder
	Database    Pinger
	Cooldowns   Pinger
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	Deps
	cache  *cache.Cache
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Handler with shared dependencies.
func New(deps Deps, c *cache.Cache, logger *slog.Logger) *Handler {
	if c == nil {
		c = cache.New(false)
	}
	return &Handler{Deps: deps, cache: c, logger: logger, now: time.Now}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Health Journal Engagement API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.Database == nil || h.Database.Ping(r.Context()) != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": h.now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns response cache statistics and the cooldown
// store status.
// @Summary Cache health check
// @Description Returns in-memory cache statistics and whether the Redis cooldown store is reachable.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	status, code, cooldowns := "healthy", http.StatusOK, "memory"
	if h.Cooldowns != nil {
		cooldowns = "redis"
		if err := h.Cooldowns.Ping(r.Context()); err != nil {
			status, code, cooldowns = "degraded", http.StatusServiceUnavailable, "redis unreachable"
		}
	}
	respond.WriteJSONObject(w, code, map[string]interface{}{
		"status":    status,
		"cache":     h.cache.Stats(),
		"cooldowns": cooldowns,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
