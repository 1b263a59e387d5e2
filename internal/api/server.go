package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/healthjournal-engagement/internal/api/handler"
	"github.com/albapepper/healthjournal-engagement/internal/api/identity"
	"github.com/albapepper/healthjournal-engagement/internal/cache"
	"github.com/albapepper/healthjournal-engagement/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps handler.Deps, appCache *cache.Cache, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control", identity.Header},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	h := handler.New(deps, appCache, logger)

	// --- Routes ---

	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(identity.Middleware)

		// Events are accepted without identity and dropped by the service.
		r.Post("/events", h.RecordEvent)

		r.Group(func(r chi.Router) {
			r.Use(identity.Require)

			r.Get("/engagement/stats", h.GetStats)
			r.Get("/engagement/history", h.GetHistory)
			r.Get("/milestones", h.GetMilestones)

			r.Get("/alerts", h.ListAlerts)
			r.Post("/alerts/read-all", h.MarkAllAlertsRead)
			r.Post("/alerts/{id}/read", h.MarkAlertRead)
			r.Delete("/alerts/{id}", h.DismissAlert)

			r.Get("/preferences", h.GetPreferences)
			r.Put("/preferences", h.UpdatePreferences)
			r.Put("/preferences/heart-rate-threshold", h.SetHeartRateThreshold)
			r.Put("/devices/token", h.RegisterDeviceToken)

			r.Post("/vitals/heart-rate", h.ReportHeartRate)
			r.Post("/wearable/samples", h.RecordSamples)
		})
	})

	return r
}
