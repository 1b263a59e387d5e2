package wearable

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/healthjournal-engagement/internal/config"
	"github.com/albapepper/healthjournal-engagement/internal/db"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store keeps synced samples in Postgres. It satisfies Provider.
type Store struct {
	q db.Querier
}

// NewStore creates a Store.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

// Record stores a sample. Re-syncing the same reading is a no-op.
func (s *Store) Record(ctx context.Context, sm Sample) error {
	q := db.QuerierFromCtx(ctx, s.q)
	_, err := q.Exec(ctx, `
		INSERT INTO wearable_samples (user_id, metric, value, recorded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, metric, recorded_at) DO NOTHING`,
		sm.UserID, string(sm.Metric), sm.Value, sm.RecordedAt,
	)
	if err != nil {
		return db.MapError(err, "wearable_sample", sm.UserID)
	}
	return nil
}

func scanSample(row pgx.Row) (Sample, error) {
	var (
		sm     Sample
		metric string
	)
	if err := row.Scan(&sm.UserID, &metric, &sm.Value, &sm.RecordedAt, &sm.SyncedAt); err != nil {
		return Sample{}, err
	}
	sm.Metric = Metric(metric)
	return sm, nil
}

// Latest returns the most recent sample, or ErrNoSamples.
func (s *Store) Latest(ctx context.Context, userID string, m Metric) (*Sample, error) {
	q := db.QuerierFromCtx(ctx, s.q)
	sm, err := scanSample(q.QueryRow(ctx, db.StmtLatestSample, userID, string(m)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSamples
	}
	if err != nil {
		return nil, fmt.Errorf("latest %s sample: %w", m, err)
	}
	return &sm, nil
}

// SamplesInRange returns samples recorded in [from, to), oldest first.
func (s *Store) SamplesInRange(ctx context.Context, userID string, m Metric, from, to time.Time) ([]Sample, error) {
	q := db.QuerierFromCtx(ctx, s.q)
	rows, err := q.Query(ctx, `
		SELECT user_id, metric, value, recorded_at, synced_at
		FROM wearable_samples
		WHERE user_id = $1 AND metric = $2 AND recorded_at >= $3 AND recorded_at < $4
		ORDER BY recorded_at`, userID, string(m), from, to)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		sm, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// LastSync is one user's most recent sync time.
type LastSync struct {
	UserID   string
	SyncedAt time.Time
}

// StaleUsers pages through users with any sample history whose most recent
// sync is older than cutoff, ordered by user ID.
func (s *Store) StaleUsers(ctx context.Context, cutoff time.Time, afterUserID string, limit int) ([]LastSync, error) {
	sqlStr, args, err := psql.Select("user_id", "MAX(synced_at)").
		From(config.SamplesTable).
		Where(sq.Gt{"user_id": afterUserID}).
		GroupBy("user_id").
		Having("MAX(synced_at) < ?", cutoff).
		OrderBy("user_id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stale users query: %w", err)
	}

	q := db.QuerierFromCtx(ctx, s.q)
	rows, err := q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query stale users: %w", err)
	}
	defer rows.Close()

	var out []LastSync
	for rows.Next() {
		var ls LastSync
		if err := rows.Scan(&ls.UserID, &ls.SyncedAt); err != nil {
			return nil, fmt.Errorf("scan stale user: %w", err)
		}
		out = append(out, ls)
	}
	return out, rows.Err()
}
