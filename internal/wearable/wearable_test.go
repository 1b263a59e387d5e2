package wearable

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerMock struct {
	LatestFunc func(ctx context.Context, userID string, m Metric) (*Sample, error)
}

func (p *providerMock) Latest(ctx context.Context, userID string, m Metric) (*Sample, error) {
	return p.LatestFunc(ctx, userID, m)
}

func (p *providerMock) SamplesInRange(context.Context, string, Metric, time.Time, time.Time) ([]Sample, error) {
	return nil, nil
}

func TestLatestWithTimeout(t *testing.T) {
	sample := &Sample{UserID: "u1", Metric: MetricHeartRate, Value: 88}

	t.Run("returns sample", func(t *testing.T) {
		p := &providerMock{LatestFunc: func(context.Context, string, Metric) (*Sample, error) {
			return sample, nil
		}}
		assert.Equal(t, sample, LatestWithTimeout(context.Background(), p, "u1", MetricHeartRate, time.Second))
	})

	t.Run("error is no data", func(t *testing.T) {
		p := &providerMock{LatestFunc: func(context.Context, string, Metric) (*Sample, error) {
			return nil, errors.New("bridge unavailable")
		}}
		assert.Nil(t, LatestWithTimeout(context.Background(), p, "u1", MetricHeartRate, time.Second))
	})

	t.Run("stalled read times out", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		p := &providerMock{LatestFunc: func(context.Context, string, Metric) (*Sample, error) {
			<-release
			return sample, nil
		}}

		start := time.Now()
		got := LatestWithTimeout(context.Background(), p, "u1", MetricHeartRate, 20*time.Millisecond)
		assert.Nil(t, got)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestStore_Latest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewStore(mock)
	now := time.Now()

	mock.ExpectQuery("latest_wearable_sample").
		WithArgs("u1", "heart_rate").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "metric", "value", "recorded_at", "synced_at"}).
			AddRow("u1", "heart_rate", 72.0, now, now))
	mock.ExpectQuery("latest_wearable_sample").
		WithArgs("u2", "heart_rate").
		WillReturnError(pgx.ErrNoRows)

	s, err := store.Latest(context.Background(), "u1", MetricHeartRate)
	require.NoError(t, err)
	assert.Equal(t, 72.0, s.Value)
	assert.Equal(t, MetricHeartRate, s.Metric)

	_, err = store.Latest(context.Background(), "u2", MetricHeartRate)
	assert.ErrorIs(t, err, ErrNoSamples)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_StaleUsers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	cutoff := time.Now().Add(-24 * time.Hour)
	last := cutoff.Add(-6 * time.Hour)

	mock.ExpectQuery(`SELECT user_id, MAX\(synced_at\) FROM wearable_samples WHERE user_id > \$1 GROUP BY user_id HAVING MAX\(synced_at\) < \$2`).
		WithArgs("", cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "max"}).AddRow("u1", last))

	got, err := NewStore(mock).StaleUsers(context.Background(), cutoff, "", 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, last, got[0].SyncedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	at := time.Now()

	mock.ExpectExec("INSERT INTO wearable_samples").
		WithArgs("u1", "heart_rate", 104.0, at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = NewStore(mock).Record(context.Background(), Sample{UserID: "u1", Metric: MetricHeartRate, Value: 104, RecordedAt: at})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
