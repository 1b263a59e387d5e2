package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/healthjournal-engagement/internal/alerts"
	"github.com/albapepper/healthjournal-engagement/internal/db"
)

// Store keeps the dispatch state of alerts: which ones were claimed for
// push and the last delivery error.
type Store struct {
	q db.Querier
}

// NewStore creates a Store.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

// Claim marks one alert as dispatched and returns it. ok is false when the
// alert is gone or another worker already claimed it.
func (s *Store) Claim(ctx context.Context, id uuid.UUID) (alerts.Alert, bool, error) {
	q := db.QuerierFromCtx(ctx, s.q)
	row := q.QueryRow(ctx, `
		UPDATE alerts SET dispatched_at = NOW()
		WHERE id = $1 AND dispatched_at IS NULL
		RETURNING `+alerts.Columns, id)
	a, err := alerts.ScanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return alerts.Alert{}, false, nil
	}
	if err != nil {
		return alerts.Alert{}, false, fmt.Errorf("claim alert %s: %w", id, err)
	}
	return a, true, nil
}

// ClaimStale atomically claims a batch of alerts created in [from, to) that
// no worker dispatched. Uses FOR UPDATE SKIP LOCKED for safe concurrent
// sweeps.
func (s *Store) ClaimStale(ctx context.Context, from, to time.Time, limit int) ([]alerts.Alert, error) {
	q := db.QuerierFromCtx(ctx, s.q)
	rows, err := q.Query(ctx, `
		UPDATE alerts SET dispatched_at = NOW()
		WHERE id IN (
			SELECT id FROM alerts
			WHERE dispatched_at IS NULL AND created_at >= $1 AND created_at < $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+alerts.Columns, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("claim stale alerts: %w", err)
	}
	defer rows.Close()

	var claimed []alerts.Alert
	for rows.Next() {
		a, err := alerts.ScanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claimed: %w", err)
		}
		claimed = append(claimed, a)
	}
	return claimed, rows.Err()
}

// MarkFailed records the last push failure for an alert.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	q := db.QuerierFromCtx(ctx, s.q)
	_, err := q.Exec(ctx, `UPDATE alerts SET dispatch_error = $2 WHERE id = $1`, id, truncate(reason, maxErrorLength))
	return err
}
