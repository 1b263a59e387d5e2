package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/albapepper/healthjournal-engagement/internal/alerts"
	"github.com/albapepper/healthjournal-engagement/internal/domain"
	"github.com/albapepper/healthjournal-engagement/internal/engagement"
	"github.com/albapepper/healthjournal-engagement/internal/wearable"
)

const (
	minAtRiskStreak = 3
	streakLookback  = 100
	insightMinDelta = 0.5
	weekDays        = 7
)

// Streak lengths that earn a streak_achieved alert.
var streakThresholds = map[int]bool{7: true, 14: true, 30: true, 60: true, 100: true}

func (r *Runner) today() (now time.Time, today string) {
	now = r.now()
	return now, domain.Day(now, r.loc)
}

// --------------------------------------------------------------------------
// Reminders
// --------------------------------------------------------------------------

// dailyReminder nudges users who have not logged today. Any inactivity
// warning created today, reminder or not, suppresses it.
func (r *Runner) dailyReminder(ctx context.Context, res *PassResult) error {
	now, today := r.today()
	since := domain.StartOfDay(now, r.loc)
	return r.forEachUser(ctx, res, domain.AddDays(today, -1), func(ctx context.Context, st engagement.Stats) (outcome, error) {
		if st.LastActivityDate == today {
			return outcomeSkipped, nil
		}
		if !r.deps.Preferences.GetOrDefault(ctx, st.UserID).DailyReminder {
			return outcomeSkipped, nil
		}
		_, ok, err := r.deps.Alerts.CreateUnlessTypeRecent(ctx, alerts.DailyReminder(st.UserID), since)
		return created(ok), err
	})
}

// inactivity warns users whose last entry is InactivityDays or more old,
// at most once per 24h. Only an earlier inactivity warning suppresses it; a
// same-day reminder does not.
func (r *Runner) inactivity(ctx context.Context, res *PassResult) error {
	now, today := r.today()
	n := r.cfg.InactivityDays
	since := now.Add(-24 * time.Hour)
	return r.forEachUser(ctx, res, domain.AddDays(today, -n), func(ctx context.Context, st engagement.Stats) (outcome, error) {
		days := domain.DaysBetween(st.LastActivityDate, today)
		if st.LastActivityDate == "" || days < n {
			return outcomeSkipped, nil
		}
		if !r.deps.Preferences.GetOrDefault(ctx, st.UserID).DailyReminder {
			return outcomeSkipped, nil
		}
		_, ok, err := r.deps.Alerts.CreateUnlessRecent(ctx, alerts.InactivityWarning(st.UserID, days), since)
		return created(ok), err
	})
}

// --------------------------------------------------------------------------
// Counters
// --------------------------------------------------------------------------

// rollups recomputes weekly and monthly counts from daily logs for every
// user, correcting drift in the incrementally maintained values.
func (r *Runner) rollups(ctx context.Context, res *PassResult) error {
	_, today := r.today()
	return r.forEachUser(ctx, res, "", func(ctx context.Context, st engagement.Stats) (outcome, error) {
		fixed, err := r.deps.Engagement.RecomputeRollups(ctx, st.UserID, today)
		if err != nil {
			return outcomeSkipped, err
		}
		if fixed.WeeklyEntryCount != st.WeeklyEntryCount || fixed.MonthlyEntryCount != st.MonthlyEntryCount {
			return outcomeUpdated, nil
		}
		return outcomeSkipped, nil
	})
}

// streak warns a user whose streak of 3+ days ended yesterday and who has
// not logged today, and celebrates streaks reaching a threshold today.
func (r *Runner) streak(ctx context.Context, res *PassResult) error {
	now, today := r.today()
	yesterday := domain.AddDays(today, -1)
	since := domain.StartOfDay(now, r.loc)
	return r.forEachUser(ctx, res, today, func(ctx context.Context, st engagement.Stats) (outcome, error) {
		var end string
		switch st.LastActivityDate {
		case today, yesterday:
			end = st.LastActivityDate
		default:
			return outcomeSkipped, nil
		}
		if !r.deps.Preferences.GetOrDefault(ctx, st.UserID).ActivityMilestones {
			return outcomeSkipped, nil
		}
		logs, err := r.deps.Engagement.DailyLogs(ctx, st.UserID, domain.AddDays(end, -streakLookback), end)
		if err != nil {
			return outcomeSkipped, err
		}
		n := engagement.Streak(logs, end)

		var d alerts.Draft
		switch {
		case end == yesterday && n >= minAtRiskStreak:
			d = alerts.StreakAtRisk(st.UserID, n)
		case end == today && streakThresholds[n]:
			d = alerts.StreakAchieved(st.UserID, n)
		default:
			return outcomeSkipped, nil
		}
		_, ok, err := r.deps.Alerts.CreateUnlessRecent(ctx, d, since)
		return created(ok), err
	})
}

// --------------------------------------------------------------------------
// Insights
// --------------------------------------------------------------------------

// weeklySummary reports the last seven days to users who logged in them.
func (r *Runner) weeklySummary(ctx context.Context, res *PassResult) error {
	now, today := r.today()
	from := domain.AddDays(today, -(weekDays - 1))
	since := now.Add(-weekDays * 24 * time.Hour)
	return r.forEachUser(ctx, res, today, func(ctx context.Context, st engagement.Stats) (outcome, error) {
		if st.LastActivityDate < from {
			return outcomeSkipped, nil
		}
		if !r.deps.Preferences.GetOrDefault(ctx, st.UserID).HealthInsights {
			return outcomeSkipped, nil
		}
		logs, err := r.deps.Engagement.DailyLogs(ctx, st.UserID, from, today)
		if err != nil {
			return outcomeSkipped, err
		}
		entries, active := engagement.WindowTotals(logs, from, today)
		if entries == 0 {
			return outcomeSkipped, nil
		}
		_, ok, err := r.deps.Alerts.CreateUnlessRecent(ctx, alerts.WeeklySummary(st.UserID, entries, active), since)
		return created(ok), err
	})
}

// insight flags a 50% or larger change in weekly entry count against the
// previous week. Users with no entries last week have no baseline.
func (r *Runner) insight(ctx context.Context, res *PassResult) error {
	now, today := r.today()
	thisFrom := domain.AddDays(today, -(weekDays - 1))
	lastTo := domain.AddDays(thisFrom, -1)
	lastFrom := domain.AddDays(lastTo, -(weekDays - 1))
	since := now.Add(-weekDays * 24 * time.Hour)
	return r.forEachUser(ctx, res, today, func(ctx context.Context, st engagement.Stats) (outcome, error) {
		if st.LastActivityDate < lastFrom {
			return outcomeSkipped, nil
		}
		if !r.deps.Preferences.GetOrDefault(ctx, st.UserID).HealthInsights {
			return outcomeSkipped, nil
		}
		logs, err := r.deps.Engagement.DailyLogs(ctx, st.UserID, lastFrom, today)
		if err != nil {
			return outcomeSkipped, err
		}
		thisWeek, _ := engagement.WindowTotals(logs, thisFrom, today)
		lastWeek, _ := engagement.WindowTotals(logs, lastFrom, lastTo)
		if lastWeek == 0 || !significantChange(thisWeek, lastWeek) {
			return outcomeSkipped, nil
		}
		_, ok, err := r.deps.Alerts.CreateUnlessRecent(ctx, alerts.EntryTrend(st.UserID, thisWeek, lastWeek), since)
		return created(ok), err
	})
}

func significantChange(thisWeek, lastWeek int) bool {
	delta := float64(thisWeek-lastWeek) / float64(lastWeek)
	return delta >= insightMinDelta || delta <= -insightMinDelta
}

// --------------------------------------------------------------------------
// Housekeeping
// --------------------------------------------------------------------------

// cleanup deletes expired alerts in fixed-size batches until none remain.
func (r *Runner) cleanup(ctx context.Context, res *PassResult) error {
	deleted, batches, err := r.deps.Alerts.PurgeExpired(ctx, r.cfg.CleanupBatchSize)
	res.Deleted = deleted
	if err != nil {
		return fmt.Errorf("purge expired alerts after %d batches: %w", batches, err)
	}
	if deleted > 0 {
		r.logger.Info("Cleanup: purged expired alerts", "count", deleted, "batches", batches)
	}
	return nil
}

// healthSync reminds users whose wearable has not synced within
// SyncStaleAfter, once per day.
func (r *Runner) healthSync(ctx context.Context, res *PassResult) error {
	if r.deps.Syncs == nil {
		r.logger.Debug("Health sync pass skipped, no wearable store")
		return nil
	}
	now := r.now()
	cutoff := now.Add(-r.cfg.SyncStaleAfter)
	since := domain.StartOfDay(now, r.loc)
	fetch := func(ctx context.Context, after string) ([]wearable.LastSync, error) {
		return r.deps.Syncs.StaleUsers(ctx, cutoff, after, r.cfg.PageSize)
	}
	userID := func(ls wearable.LastSync) string { return ls.UserID }
	return forEachPage(ctx, r, res, fetch, userID, func(ctx context.Context, ls wearable.LastSync) (outcome, error) {
		if !r.deps.Preferences.GetOrDefault(ctx, ls.UserID).DailyReminder {
			return outcomeSkipped, nil
		}
		d := alerts.HealthSyncStale(ls.UserID, now.Sub(ls.SyncedAt))
		_, ok, err := r.deps.Alerts.CreateUnlessRecent(ctx, d, since)
		return created(ok), err
	})
}

// catchUp pushes alerts whose creation notification was missed.
func (r *Runner) catchUp(ctx context.Context, res *PassResult) error {
	if r.deps.Sweeper == nil {
		return nil
	}
	sent, failed, err := r.deps.Sweeper.Sweep(ctx)
	res.Scanned, res.Updated, res.Failed = sent+failed, sent, failed
	return err
}
