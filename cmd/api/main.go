// Command api is the health journal engagement server.
//
// Usage:
//
//	engagement-api
//	API_PORT=8080 engagement-api

// @title Health Journal Engagement API
// @version 1.0.0
// @description Engagement counters, milestones, in-app alerts, notification preferences and elevated heart-rate prompts for the health journal app.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Health Journal
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/healthjournal-engagement/internal/api"
	"github.com/albapepper/healthjournal-engagement/internal/api/handler"
	"github.com/albapepper/healthjournal-engagement/internal/app"
	"github.com/albapepper/healthjournal-engagement/internal/cache"
	"github.com/albapepper/healthjournal-engagement/internal/config"
	"github.com/albapepper/healthjournal-engagement/internal/db"
	"github.com/albapepper/healthjournal-engagement/internal/listener"
	"github.com/albapepper/healthjournal-engagement/internal/logger"

	_ "github.com/albapepper/healthjournal-engagement/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, flush := logger.New(logger.Options{
		Production: cfg.IsProduction(),
		Debug:      cfg.Debug,
		SentryDSN:  cfg.SentryDSN,
	})
	defer flush()

	if err := run(cfg, log); err != nil {
		log.Error("Server failed", "error", err)
		flush()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := db.MigrateUp(ctx, cfg.DatabaseURL, log); err != nil {
		return err
	}

	// Connect to database
	log.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns,
		"day_location", cfg.DayLocation.String())

	svc, err := app.New(ctx, cfg, pool, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	appCache := startCache(ctx, cfg.CacheEnabled)
	log.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Real-time delivery of new alerts, with a periodic sweep for any the
	// listener missed
	go listener.Start(ctx, cfg.DatabaseURL, svc.Deliverer, log)
	go svc.Deliverer.StartWorker(ctx, cfg.CatchUpInterval)

	// Scheduled passes
	go svc.Scheduler().Start(ctx)

	deps := handler.Deps{
		Engagement:  svc.Engagement,
		Alerts:      svc.Alerts,
		Preferences: svc.Preferences,
		Vitals:      svc.Monitor,
		Samples:     svc.Samples,
		Database:    handler.PingFunc(pool.HealthCheck),
	}
	if svc.Cooldowns != nil {
		deps.Cooldowns = svc.Cooldowns
	}
	router := api.NewRouter(deps, appCache, cfg, log)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting Health Journal Engagement API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	log.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error", "error", err)
	}
	log.Info("Server stopped")
	return nil
}

// startCache creates the response cache and runs its eviction loop until ctx
// is done.
func startCache(ctx context.Context, enabled bool) *cache.Cache {
	c := cache.New(enabled)
	go c.StartEviction(ctx.Done())
	return c
}
