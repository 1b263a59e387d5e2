package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/healthjournal-engagement/internal/domain"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

var statsCols = []string{
	"user_id", "total_entries_logged", "total_days_active", "last_activity_date",
	"weekly_entry_count", "monthly_entry_count", "created_at", "updated_at",
}

func TestStore_LockStats(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectExec("INSERT INTO engagement_stats").
		WithArgs("u1", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("lock_engagement_stats").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(statsCols).AddRow("u1", 9, 3, "2026-03-09", 4, 9, now, now))

	st, err := store.LockStats(context.Background(), "u1", now)
	require.NoError(t, err)
	assert.Equal(t, 9, st.TotalEntriesLogged)
	assert.Equal(t, "2026-03-09", st.LastActivityDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_MergeDailyLog_ReportsInsert(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO daily_engagement_logs").
		WithArgs("u1", "2026-03-10", 1, 0, false, false).
		WillReturnRows(pgxmock.NewRows([]string{"inserted"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO daily_engagement_logs").
		WithArgs("u1", "2026-03-10", 0, 0, true, false).
		WillReturnRows(pgxmock.NewRows([]string{"inserted"}).AddRow(false))

	first, err := store.MergeDailyLog(context.Background(), "u1", "2026-03-10", CategorySymptom)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = store.MergeDailyLog(context.Background(), "u1", "2026-03-10", CategoryWellbeing)
	require.NoError(t, err)
	assert.False(t, first)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetStats_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("get_engagement_stats").
		WithArgs("u1").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetStats(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsertMilestone(t *testing.T) {
	store, mock := newMockStore(t)
	at := time.Now()

	mock.ExpectExec("INSERT INTO milestones").
		WithArgs("u1", "entries_10", at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO milestones").
		WithArgs("u1", "entries_10", at).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	ok, err := store.InsertMilestone(context.Background(), "u1", "entries_10", at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.InsertMilestone(context.Background(), "u1", "entries_10", at)
	require.NoError(t, err)
	assert.False(t, ok, "conflict is a no-op")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DailyLogs(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM daily_engagement_logs").
		WithArgs("u1", "2026-03-04", "2026-03-10").
		WillReturnRows(pgxmock.NewRows([]string{
			"user_id", "log_date", "entry_count", "symptom_count", "activity_count",
			"wellbeing_logged", "condition_logged",
		}).
			AddRow("u1", "2026-03-05", 2, 1, 1, false, false).
			AddRow("u1", "2026-03-09", 1, 0, 0, true, false))

	logs, err := store.DailyLogs(context.Background(), "u1", "2026-03-04", "2026-03-10")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "2026-03-09", logs[1].Date)
	assert.True(t, logs[1].WellbeingLogged)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ScanStats(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM engagement_stats WHERE user_id > \$1 AND last_activity_date <= \$2::date ORDER BY user_id LIMIT 50`).
		WithArgs("u1", "2026-03-08").
		WillReturnRows(pgxmock.NewRows(statsCols).AddRow("u2", 1, 1, "2026-03-01", 0, 1, now, now))

	page, err := store.ScanStats(context.Background(), ScanFilter{AfterUserID: "u1", Limit: 50, LastActiveOnOrBefore: "2026-03-08"})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "u2", page[0].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}
