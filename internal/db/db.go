// Package db provides a pgxpool-based connection pool with prepared statement
// registration, context-carried transactions and embedded goose migrations.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/healthjournal-engagement/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, StmtHealthCheck).Scan(&n)
}

// Prepared statement names. Stores reference these instead of raw SQL for
// the hot per-request reads.
const (
	StmtHealthCheck     = "health_check"
	StmtGetPreferences  = "get_preferences"
	StmtGetStats        = "get_engagement_stats"
	StmtLockStats       = "lock_engagement_stats"
	StmtLatestSample    = "latest_wearable_sample"
	StmtAlertExistsFrom = "alert_exists_since"
)

// registerPreparedStatements registers the statements the request path uses
// on every call. Migrations must have run before the first connection.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		StmtHealthCheck: "SELECT 1",

		StmtGetPreferences: `SELECT user_id, daily_reminder, messages, health_insights, activity_milestones,
			heart_rate_threshold, COALESCE(push_token, ''), updated_at
			FROM notification_preferences WHERE user_id = $1`,

		StmtGetStats: `SELECT user_id, total_entries_logged, total_days_active,
			COALESCE(last_activity_date::text, ''), weekly_entry_count, monthly_entry_count,
			created_at, updated_at
			FROM engagement_stats WHERE user_id = $1`,

		StmtLockStats: `SELECT user_id, total_entries_logged, total_days_active,
			COALESCE(last_activity_date::text, ''), weekly_entry_count, monthly_entry_count,
			created_at, updated_at
			FROM engagement_stats WHERE user_id = $1 FOR UPDATE`,

		StmtLatestSample: `SELECT user_id, metric, value, recorded_at, synced_at
			FROM wearable_samples WHERE user_id = $1 AND metric = $2
			ORDER BY recorded_at DESC LIMIT 1`,

		StmtAlertExistsFrom: `SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE user_id = $1 AND alert_type = $2 AND created_at >= $3
			  AND (expires_at IS NULL OR expires_at > $4)
			  AND ($5 = '' OR metadata->>'kind' = $5))`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
