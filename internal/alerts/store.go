package alerts

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/healthjournal-engagement/internal/db"
	"github.com/albapepper/healthjournal-engagement/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Columns is the column list ScanRow expects.
const Columns = "id, user_id, alert_type, title, message, priority, read, metadata, created_at, expires_at"

// Store persists alerts in Postgres.
type Store struct {
	q db.Querier
}

// NewStore creates a Store. q is normally the pool; a transaction carried by
// ctx takes precedence.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

// ScanRow scans one row selected with Columns.
func ScanRow(row pgx.Row) (Alert, error) {
	var (
		a             Alert
		typ, priority string
	)
	err := row.Scan(&a.ID, &a.UserID, &typ, &a.Title, &a.Message, &priority,
		&a.Read, &a.Metadata, &a.CreatedAt, &a.ExpiresAt)
	if err != nil {
		return Alert{}, err
	}
	a.Type = Type(typ)
	a.Priority = Priority(priority)
	return a, nil
}

// Insert stores a new alert. The alert_created trigger fans it out to push.
func (s *Store) Insert(ctx context.Context, a Alert) error {
	q := db.QuerierFromCtx(ctx, s.q)
	_, err := q.Exec(ctx, `
		INSERT INTO alerts (id, user_id, alert_type, title, message, priority, read, metadata, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.UserID, string(a.Type), a.Title, a.Message, string(a.Priority),
		a.Read, a.Metadata, a.CreatedAt, a.ExpiresAt,
	)
	if err != nil {
		return db.MapError(err, "alert", a.ID)
	}
	return nil
}

// visible restricts to a user's unexpired alerts.
func visible(userID string, now time.Time) sq.Sqlizer {
	return sq.And{
		sq.Eq{"user_id": userID},
		sq.Or{sq.Eq{"expires_at": nil}, sq.Gt{"expires_at": now}},
	}
}

// List returns one page of a user's unexpired alerts, newest first.
func (s *Store) List(ctx context.Context, userID string, f ListFilter, now time.Time) ([]Alert, error) {
	b := psql.Select(Columns).
		From("alerts").
		Where(visible(userID, now)).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))
	if f.UnreadOnly {
		b = b.Where(sq.Eq{"read": false})
	}

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build alert list: %w", err)
	}

	q := db.QuerierFromCtx(ctx, s.q)
	rows, err := q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		a, err := ScanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count returns the number of a user's unexpired alerts, optionally only the
// unread ones.
func (s *Store) Count(ctx context.Context, userID string, unreadOnly bool, now time.Time) (int, error) {
	b := psql.Select("COUNT(*)").From("alerts").Where(visible(userID, now))
	if unreadOnly {
		b = b.Where(sq.Eq{"read": false})
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build alert count: %w", err)
	}

	var n int
	q := db.QuerierFromCtx(ctx, s.q)
	if err := q.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}
	return n, nil
}

// MarkRead flags one alert as read. Missing or foreign alerts are ErrNotFound.
func (s *Store) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	q := db.QuerierFromCtx(ctx, s.q)
	tag, err := q.Exec(ctx, `UPDATE alerts SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return db.MapError(err, "alert", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// MarkAllRead flags every unread alert of a user as read.
func (s *Store) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	q := db.QuerierFromCtx(ctx, s.q)
	tag, err := q.Exec(ctx, `UPDATE alerts SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete dismisses one alert.
func (s *Store) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	q := db.QuerierFromCtx(ctx, s.q)
	tag, err := q.Exec(ctx, `DELETE FROM alerts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return db.MapError(err, "alert", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ExistsSince reports whether the user has an unexpired alert of type t
// (and kind, when non-empty) created at or after since.
func (s *Store) ExistsSince(ctx context.Context, userID string, t Type, kind string, since, now time.Time) (bool, error) {
	var exists bool
	q := db.QuerierFromCtx(ctx, s.q)
	err := q.QueryRow(ctx, db.StmtAlertExistsFrom, userID, string(t), since, now, kind).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("alert exists: %w", err)
	}
	return exists, nil
}

// DeleteExpiredBatch removes up to limit alerts whose expiry has passed.
func (s *Store) DeleteExpiredBatch(ctx context.Context, now time.Time, limit int) (int64, error) {
	q := db.QuerierFromCtx(ctx, s.q)
	tag, err := q.Exec(ctx, `
		DELETE FROM alerts
		WHERE id IN (
			SELECT id FROM alerts
			WHERE expires_at IS NOT NULL AND expires_at <= $1
			LIMIT $2
		)`, now, limit)
	if err != nil {
		return 0, fmt.Errorf("delete expired alerts: %w", err)
	}
	return tag.RowsAffected(), nil
}
