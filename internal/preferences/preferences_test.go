package preferences

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/healthjournal-engagement/internal/domain"
	"github.com/albapepper/healthjournal-engagement/internal/logger"
)

// repoMock is a Func-field fake in the moq style.
type repoMock struct {
	GetFunc          func(ctx context.Context, userID string) (Preferences, error)
	SaveFunc         func(ctx context.Context, p Preferences) error
	SetPushTokenFunc func(ctx context.Context, userID, token string) error
}

func (m *repoMock) Get(ctx context.Context, userID string) (Preferences, error) {
	return m.GetFunc(ctx, userID)
}

func (m *repoMock) Save(ctx context.Context, p Preferences) error {
	return m.SaveFunc(ctx, p)
}

func (m *repoMock) SetPushToken(ctx context.Context, userID, token string) error {
	return m.SetPushTokenFunc(ctx, userID, token)
}

func notFound(context.Context, string) (Preferences, error) {
	return Preferences{}, domain.ErrNotFound
}

func TestService_Get_DefaultsWhenMissing(t *testing.T) {
	svc := NewService(&repoMock{GetFunc: notFound}, logger.Discard())

	p, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, Defaults("u1"), p)
	assert.Equal(t, 100, p.HeartRateThreshold)
}

func TestService_GetOrDefault_DegradesOnError(t *testing.T) {
	svc := NewService(&repoMock{GetFunc: func(context.Context, string) (Preferences, error) {
		return Preferences{}, errors.New("connection refused")
	}}, logger.Discard())

	p := svc.GetOrDefault(context.Background(), "u1")
	assert.True(t, p.ActivityMilestones)
	assert.Equal(t, DefaultHeartRateThreshold, p.HeartRateThreshold)

	_, err := svc.HeartRateThreshold(context.Background(), "u1")
	assert.Error(t, err, "callers decide how to degrade")
}

func TestService_Update_AppliesPatch(t *testing.T) {
	var saved Preferences
	svc := NewService(&repoMock{
		GetFunc:  notFound,
		SaveFunc: func(_ context.Context, p Preferences) error { saved = p; return nil },
	}, logger.Discard())

	off := false
	p, err := svc.Update(context.Background(), "u1", Patch{HealthInsights: &off})
	require.NoError(t, err)

	assert.False(t, p.HealthInsights)
	assert.True(t, p.DailyReminder, "untouched fields keep defaults")
	assert.Equal(t, p, saved)
}

func TestService_SetHeartRateThreshold_Validates(t *testing.T) {
	saves := 0
	svc := NewService(&repoMock{
		GetFunc:  notFound,
		SaveFunc: func(context.Context, Preferences) error { saves++; return nil },
	}, logger.Discard())

	_, err := svc.SetHeartRateThreshold(context.Background(), "u1", 300)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, saves)

	p, err := svc.SetHeartRateThreshold(context.Background(), "u1", 120)
	require.NoError(t, err)
	assert.Equal(t, 120, p.HeartRateThreshold)
	assert.Equal(t, 1, saves)
}

func TestService_RegisterDeviceToken(t *testing.T) {
	var got string
	svc := NewService(&repoMock{
		SetPushTokenFunc: func(_ context.Context, _, token string) error { got = token; return nil },
	}, logger.Discard())

	assert.ErrorIs(t, svc.RegisterDeviceToken(context.Background(), "u1", "   "), domain.ErrValidation)
	require.NoError(t, svc.RegisterDeviceToken(context.Background(), "u1", " ExponentPushToken[x] "))
	assert.Equal(t, "ExponentPushToken[x]", got)
}

func TestStore_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewStore(mock)
	now := time.Now()

	mock.ExpectQuery("get_preferences").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{
			"user_id", "daily_reminder", "messages", "health_insights", "activity_milestones",
			"heart_rate_threshold", "push_token", "updated_at",
		}).AddRow("u1", false, true, true, true, 110, "tok", now))
	mock.ExpectQuery("get_preferences").
		WithArgs("u2").
		WillReturnError(pgx.ErrNoRows)

	p, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, p.DailyReminder)
	assert.Equal(t, 110, p.HeartRateThreshold)
	assert.Equal(t, "tok", p.PushToken)

	_, err = store.Get(context.Background(), "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetPushToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO notification_preferences").
		WithArgs("u1", "tok").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewStore(mock).SetPushToken(context.Background(), "u1", "tok"))
	require.NoError(t, mock.ExpectationsWereMet())
}
