package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
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

func alertRow(id uuid.UUID, now time.Time) *pgxmock.Rows {
	exp := now.Add(time.Hour)
	return pgxmock.NewRows([]string{
		"id", "user_id", "alert_type", "title", "message", "priority",
		"read", "metadata", "created_at", "expires_at",
	}).AddRow(id, "u1", "streak_at_risk", "Keep your streak alive", "msg", "high",
		false, map[string]any{"streak_days": 4}, now, &exp)
}

func TestStore_Insert(t *testing.T) {
	store, mock := newMockStore(t)
	a, err := StreakAtRisk("u1", 4).Build(uuid.New(), t0)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO alerts").
		WithArgs(a.ID, "u1", "streak_at_risk", a.Title, a.Message, "high", false, a.Metadata, a.CreatedAt, a.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Insert(context.Background(), a))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_List(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT .* FROM alerts WHERE .* ORDER BY created_at DESC").
		WithArgs("u1", t0, false).
		WillReturnRows(alertRow(id, t0))

	list, err := store.List(context.Background(), "u1", ListFilter{Limit: 10, UnreadOnly: true}, t0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, TypeStreakAtRisk, list[0].Type)
	assert.Equal(t, PriorityHigh, list[0].Priority)
	assert.Equal(t, 4, list[0].Metadata["streak_days"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_MarkRead_NotFound(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE alerts SET read = TRUE").
		WithArgs(id, "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.MarkRead(context.Background(), "u1", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ExistsSince_UsesPreparedStatement(t *testing.T) {
	store, mock := newMockStore(t)
	since := t0.Add(-24 * time.Hour)

	mock.ExpectQuery("alert_exists_since").
		WithArgs("u1", "inactivity_warning", since, t0, "").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := store.ExistsSince(context.Background(), "u1", TypeInactivityWarning, "", since, t0)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteExpiredBatch(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM alerts").
		WithArgs(t0, 500).
		WillReturnResult(pgxmock.NewResult("DELETE", 500))

	n, err := store.DeleteExpiredBatch(context.Background(), t0, 500)
	require.NoError(t, err)
	assert.EqualValues(t, 500, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
