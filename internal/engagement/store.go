package engagement

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/healthjournal-engagement/internal/config"
	"github.com/albapepper/healthjournal-engagement/internal/db"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var statsColumns = []string{
	"user_id", "total_entries_logged", "total_days_active",
	"COALESCE(last_activity_date::text, '')", "weekly_entry_count", "monthly_entry_count",
	"created_at", "updated_at",
}

// Store is the Postgres repository for events, counters, daily logs and
// milestones. Dates travel as YYYY-MM-DD text and are cast in SQL.
type Store struct {
	q db.Querier
}

// NewStore creates a Store.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

func scanStats(row pgx.Row) (Stats, error) {
	var s Stats
	err := row.Scan(&s.UserID, &s.TotalEntriesLogged, &s.TotalDaysActive, &s.LastActivityDate,
		&s.WeeklyEntryCount, &s.MonthlyEntryCount, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// AppendEvent writes one event to the append-only log.
func (s *Store) AppendEvent(ctx context.Context, e Event) error {
	q := db.QuerierFromCtx(ctx, s.q)
	_, err := q.Exec(ctx, `
		INSERT INTO engagement_events (id, user_id, category, occurred_on, created_at)
		VALUES ($1, $2, $3, $4::date, $5)`,
		e.ID, e.UserID, string(e.Category), e.OccurredOn, e.CreatedAt,
	)
	if err != nil {
		return db.MapError(err, "event", e.ID)
	}
	return nil
}

// LockStats creates a zero stats row if absent and returns it locked FOR
// UPDATE. Must run inside a transaction.
func (s *Store) LockStats(ctx context.Context, userID string, now time.Time) (Stats, error) {
	q := db.QuerierFromCtx(ctx, s.q)
	if _, err := q.Exec(ctx, `
		INSERT INTO engagement_stats (user_id, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (user_id) DO NOTHING`, userID, now); err != nil {
		return Stats{}, fmt.Errorf("init stats %s: %w", userID, err)
	}
	st, err := scanStats(q.QueryRow(ctx, db.StmtLockStats, userID))
	if err != nil {
		return Stats{}, db.MapError(err, "engagement_stats", userID)
	}
	return st, nil
}

// MergeDailyLog adds one event to the (user, day) log and reports whether
// the row was created by this call.
func (s *Store) MergeDailyLog(ctx context.Context, userID, day string, cat Category) (bool, error) {
	var symptom, activity int
	switch cat {
	case CategorySymptom:
		symptom = 1
	case CategoryActivity:
		activity = 1
	}

	q := db.QuerierFromCtx(ctx, s.q)
	var inserted bool
	err := q.QueryRow(ctx, `
		INSERT INTO daily_engagement_logs (
			user_id, log_date, entry_count, symptom_count, activity_count, wellbeing_logged, condition_logged
		) VALUES ($1, $2::date, 1, $3, $4, $5, $6)
		ON CONFLICT (user_id, log_date) DO UPDATE SET
			entry_count = daily_engagement_logs.entry_count + 1,
			symptom_count = daily_engagement_logs.symptom_count + EXCLUDED.symptom_count,
			activity_count = daily_engagement_logs.activity_count + EXCLUDED.activity_count,
			wellbeing_logged = daily_engagement_logs.wellbeing_logged OR EXCLUDED.wellbeing_logged,
			condition_logged = daily_engagement_logs.condition_logged OR EXCLUDED.condition_logged
		RETURNING (xmax = 0)`,
		userID, day, symptom, activity, cat == CategoryWellbeing, cat == CategoryCondition,
	).Scan(&inserted)
	if err != nil {
		return false, db.MapError(err, "daily_log", userID+"/"+day)
	}
	return inserted, nil
}

// SaveStats writes the full counter row.
func (s *Store) SaveStats(ctx context.Context, st Stats) error {
	q := db.QuerierFromCtx(ctx, s.q)
	_, err := q.Exec(ctx, `
		UPDATE engagement_stats SET
			total_entries_logged = $2,
			total_days_active = $3,
			last_activity_date = NULLIF($4, '')::date,
			weekly_entry_count = $5,
			monthly_entry_count = $6,
			updated_at = $7
		WHERE user_id = $1`,
		st.UserID, st.TotalEntriesLogged, st.TotalDaysActive, st.LastActivityDate,
		st.WeeklyEntryCount, st.MonthlyEntryCount, st.UpdatedAt,
	)
	if err != nil {
		return db.MapError(err, "engagement_stats", st.UserID)
	}
	return nil
}

// SaveRollups overwrites the rolling window counts.
func (s *Store) SaveRollups(ctx context.Context, userID string, weekly, monthly int, now time.Time) error {
	q := db.QuerierFromCtx(ctx, s.q)
	_, err := q.Exec(ctx, `
		UPDATE engagement_stats SET weekly_entry_count = $2, monthly_entry_count = $3, updated_at = $4
		WHERE user_id = $1`, userID, weekly, monthly, now)
	if err != nil {
		return db.MapError(err, "engagement_stats", userID)
	}
	return nil
}

// GetStats returns the counters for one user.
func (s *Store) GetStats(ctx context.Context, userID string) (Stats, error) {
	q := db.QuerierFromCtx(ctx, s.q)
	st, err := scanStats(q.QueryRow(ctx, db.StmtGetStats, userID))
	if err != nil {
		return Stats{}, db.MapError(err, "engagement_stats", userID)
	}
	return st, nil
}

// DailyLogs returns the user's logs for [from, to] in date order.
func (s *Store) DailyLogs(ctx context.Context, userID, from, to string) ([]DailyLog, error) {
	q := db.QuerierFromCtx(ctx, s.q)
	rows, err := q.Query(ctx, `
		SELECT user_id, log_date::text, entry_count, symptom_count, activity_count,
			wellbeing_logged, condition_logged
		FROM daily_engagement_logs
		WHERE user_id = $1 AND log_date BETWEEN $2::date AND $3::date
		ORDER BY log_date`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily logs: %w", err)
	}
	defer rows.Close()

	var out []DailyLog
	for rows.Next() {
		var l DailyLog
		if err := rows.Scan(&l.UserID, &l.Date, &l.EntryCount, &l.SymptomCount, &l.ActivityCount,
			&l.WellbeingLogged, &l.ConditionLogged); err != nil {
			return nil, fmt.Errorf("scan daily log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// InsertMilestone stores a milestone unless it exists. It reports whether a
// row was inserted.
func (s *Store) InsertMilestone(ctx context.Context, userID string, t MilestoneType, at time.Time) (bool, error) {
	q := db.QuerierFromCtx(ctx, s.q)
	tag, err := q.Exec(ctx, `
		INSERT INTO milestones (user_id, milestone_type, achieved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, milestone_type) DO NOTHING`, userID, string(t), at)
	if err != nil {
		return false, db.MapError(err, "milestone", string(t))
	}
	return tag.RowsAffected() == 1, nil
}

// Milestones lists a user's milestones, oldest first.
func (s *Store) Milestones(ctx context.Context, userID string) ([]Milestone, error) {
	q := db.QuerierFromCtx(ctx, s.q)
	rows, err := q.Query(ctx, `
		SELECT user_id, milestone_type, achieved_at FROM milestones
		WHERE user_id = $1 ORDER BY achieved_at, milestone_type`, userID)
	if err != nil {
		return nil, fmt.Errorf("query milestones: %w", err)
	}
	defer rows.Close()

	var out []Milestone
	for rows.Next() {
		var (
			m   Milestone
			typ string
		)
		if err := rows.Scan(&m.UserID, &typ, &m.AchievedAt); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		m.Type = MilestoneType(typ)
		m.Title = MilestoneTitle(m.Type)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ScanStats returns one keyset page of stats rows ordered by user ID.
func (s *Store) ScanStats(ctx context.Context, f ScanFilter) ([]Stats, error) {
	qb := psql.Select(statsColumns...).
		From(config.StatsTable).
		Where(sq.Gt{"user_id": f.AfterUserID}).
		OrderBy("user_id").
		Limit(uint64(f.Limit))
	if f.LastActiveOnOrBefore != "" {
		qb = qb.Where("last_activity_date <= ?::date", f.LastActiveOnOrBefore)
	}

	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats scan: %w", err)
	}

	q := db.QuerierFromCtx(ctx, s.q)
	rows, err := q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("scan stats: %w", err)
	}
	defer rows.Close()

	var out []Stats
	for rows.Next() {
		st, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
