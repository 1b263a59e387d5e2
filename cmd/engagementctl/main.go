// Command engagementctl is the operator CLI for the engagement service.
//
// Usage:
//
//	engagementctl migrate up
//	engagementctl migrate status
//	engagementctl pass inactivity
//	engagementctl pass all
//	engagementctl push test --token ExponentPushToken[abc]
//	engagementctl vitals check --user u123
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/healthjournal-engagement/internal/app"
	"github.com/albapepper/healthjournal-engagement/internal/config"
	"github.com/albapepper/healthjournal-engagement/internal/db"
	applog "github.com/albapepper/healthjournal-engagement/internal/logger"
	"github.com/albapepper/healthjournal-engagement/internal/scheduler"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "engagementctl",
		Short:         "Health journal engagement operator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(passCmd())
	root.AddCommand(pushCmd())
	root.AddCommand(vitalsCmd())

	if err := root.Execute(); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	steps := []struct {
		use, short string
		fn         func(context.Context, string, *slog.Logger) error
	}{
		{"up", "Apply all pending migrations", db.MigrateUp},
		{"down", "Roll back the most recent migration", db.MigrateDown},
		{"status", "Print applied and pending migrations", db.MigrationStatus},
	}
	for _, s := range steps {
		cmd.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
				defer cancel()
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				return s.fn(ctx, cfg.DatabaseURL, logger)
			},
		})
	}
	return cmd
}

// --------------------------------------------------------------------------
// pass command
// --------------------------------------------------------------------------

func passCmd() *cobra.Command {
	names := append(scheduler.NewRunner(scheduler.Deps{}, scheduler.DefaultConfig(), nil, applog.Discard()).Names(), "all")
	return &cobra.Command{
		Use:       "pass <name>",
		Short:     "Run one scheduled pass now (" + strings.Join(names, ", ") + ")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(func(ctx context.Context, _ *config.Config, a *app.App) error {
				runner := a.Scheduler()
				start := time.Now()

				var results []scheduler.PassResult
				var err error
				if args[0] == "all" {
					results, err = runner.RunAll(ctx)
				} else {
					var res scheduler.PassResult
					res, err = runner.RunPass(ctx, args[0])
					if errors.Is(err, scheduler.ErrUnknownPass) {
						return err
					}
					results = append(results, res)
				}

				for _, res := range results {
					fmt.Println(res.Summary())
					for _, e := range res.Errors {
						logger.Error("pass error", "pass", res.Name, "error", e)
					}
				}
				logger.Info("Passes finished", "count", len(results), "duration", time.Since(start).Round(time.Millisecond))
				return err
			})
		},
	}
}

// --------------------------------------------------------------------------
// push command
// --------------------------------------------------------------------------

func pushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push notification tools",
	}
	cmd.AddCommand(pushTestCmd())
	return cmd
}

func pushTestCmd() *cobra.Command {
	var token, title, body string
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Send a test notification to one device token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("--token is required")
			}
			return runWithApp(func(ctx context.Context, _ *config.Config, a *app.App) error {
				res := a.Dispatcher.Send(ctx, token, title, body, map[string]string{"type": "test"})
				logger.Info("Push test finished",
					"token", applog.TokenPrefix(token),
					"transport", res.Transport,
					"success", res.Success,
					"message_id", res.MessageID)
				if !res.Success {
					return fmt.Errorf("push failed: %s", res.Error)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Device push token (Expo relay or FCM)")
	cmd.Flags().StringVar(&title, "title", "Test notification", "Notification title")
	cmd.Flags().StringVar(&body, "body", "Push delivery is working.", "Notification body")
	return cmd
}

// --------------------------------------------------------------------------
// vitals command
// --------------------------------------------------------------------------

func vitalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vitals",
		Short: "Elevated vital sign tools",
	}
	cmd.AddCommand(vitalsCheckCmd())
	return cmd
}

func vitalsCheckCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a user's latest synced heart rate against their threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			return runWithApp(func(ctx context.Context, _ *config.Config, a *app.App) error {
				outcome := a.Monitor.CheckLatest(ctx, userID)
				logger.Info("Heart-rate check finished", "user_id", userID, "outcome", outcome)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runWithApp handles config loading, DB connection, service wiring and
// context cancellation.
func runWithApp(fn func(ctx context.Context, cfg *config.Config, a *app.App) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, flush := applog.New(applog.Options{Debug: cfg.Debug, SentryDSN: cfg.SentryDSN})
	defer flush()
	logger = log

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	a, err := app.New(ctx, cfg, pool, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, cfg, a)
}
