//go:build integration

package engagement

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/healthjournal-engagement/internal/alerts"
	"github.com/albapepper/healthjournal-engagement/internal/db"
	"github.com/albapepper/healthjournal-engagement/internal/db/dbtest"
	"github.com/albapepper/healthjournal-engagement/internal/domain"
	"github.com/albapepper/healthjournal-engagement/internal/logger"
	"github.com/albapepper/healthjournal-engagement/internal/preferences"
)

func newIntegrationService(t *testing.T) (*Service, *alerts.Service, *db.Pool) {
	t.Helper()
	pool := dbtest.SetupPool(t)
	log := logger.Discard()

	alertSvc := alerts.NewService(alerts.NewStore(pool.Pool), log)
	prefs := preferences.NewService(preferences.NewStore(pool.Pool), log)
	store := NewStore(pool.Pool)
	svc := NewService(db.NewTxManager(pool.Pool), store, NewAwarder(store, alertSvc, prefs, log), nil, log)
	return svc, alertSvc, pool
}

func TestPostgres_RecordEventConcurrentSameDay(t *testing.T) {
	svc, alertSvc, _ := newIntegrationService(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordEvent(ctx, "u1", CategorySymptom, ""); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	st, err := svc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, n, st.TotalEntriesLogged)
	assert.Equal(t, 1, st.TotalDaysActive)
	assert.Equal(t, svc.Today(), st.LastActivityDate)

	logs, err := svc.DailyLogs(ctx, "u1", svc.Today(), svc.Today())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, n, logs[0].EntryCount)
	assert.Equal(t, n, logs[0].SymptomCount)

	ms, err := svc.Milestones(ctx, "u1")
	require.NoError(t, err)
	var types []MilestoneType
	for _, m := range ms {
		types = append(types, m.Type)
	}
	assert.ElementsMatch(t, []MilestoneType{MilestoneFirstEntry, EntriesMilestone(10), EntriesMilestone(50)}, types)

	inbox, err := alertSvc.Inbox(ctx, "u1", alerts.ListFilter{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 3, inbox.Total, "one milestone alert per stored milestone")
}

func TestPostgres_RecordEventDaysAndHistory(t *testing.T) {
	svc, _, _ := newIntegrationService(t)
	ctx := context.Background()
	today := svc.Today()
	yesterday := domain.AddDays(today, -1)

	for _, ev := range []struct {
		day string
		cat Category
	}{
		{yesterday, CategoryActivity},
		{yesterday, CategoryWellbeing},
		{today, CategoryCondition},
	} {
		_, err := svc.RecordEvent(ctx, "u2", ev.cat, ev.day)
		require.NoError(t, err)
	}

	st, err := svc.Stats(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalEntriesLogged)
	assert.Equal(t, 2, st.TotalDaysActive)

	points, err := svc.History(ctx, "u2", 3)
	require.NoError(t, err)
	assert.Equal(t, []DayCount{
		{Date: domain.AddDays(today, -2), Count: 0},
		{Date: yesterday, Count: 2},
		{Date: today, Count: 1},
	}, points)

	got, err := svc.RecomputeRollups(ctx, "u2", today)
	require.NoError(t, err)
	assert.Equal(t, 3, got.WeeklyEntryCount)
	assert.Equal(t, 3, got.MonthlyEntryCount)
}

func TestPostgres_StatsUnknownUserIsZero(t *testing.T) {
	svc, _, _ := newIntegrationService(t)
	st, err := svc.Stats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, Stats{UserID: "nobody"}, st)
}
