package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/albapepper/healthjournal-engagement/internal/alerts"
	"github.com/albapepper/healthjournal-engagement/internal/preferences"
)

// --------------------------------------------------------------------------
// Evaluation
// --------------------------------------------------------------------------

// EntriesMilestone names the entry-count milestone for n.
func EntriesMilestone(n int) MilestoneType {
	if n == 1 {
		return MilestoneFirstEntry
	}
	return MilestoneType(fmt.Sprintf("entries_%d", n))
}

// DaysActiveMilestone names the active-days milestone for n.
func DaysActiveMilestone(n int) MilestoneType {
	return MilestoneType(fmt.Sprintf("days_active_%d", n))
}

// Evaluate compares counters before and after one event and returns the
// milestones crossed by it. Entry thresholds fire when prev < N <= next.
// Day thresholds fire when the active-day count just became N.
func Evaluate(prev, next Stats) []MilestoneType {
	var out []MilestoneType
	for _, n := range entryThresholds {
		if prev.TotalEntriesLogged < n && n <= next.TotalEntriesLogged {
			out = append(out, EntriesMilestone(n))
		}
	}
	if next.TotalDaysActive != prev.TotalDaysActive {
		for _, n := range daysActiveThresholds {
			if next.TotalDaysActive == n {
				out = append(out, DaysActiveMilestone(n))
			}
		}
	}
	return out
}

type milestoneCopy struct {
	title   string
	message string
}

var milestoneTemplates = func() map[MilestoneType]milestoneCopy {
	m := map[MilestoneType]milestoneCopy{
		MilestoneFirstEntry: {"First entry logged", "You logged your first journal entry. Great start!"},
	}
	for _, n := range entryThresholds[1:] {
		m[EntriesMilestone(n)] = milestoneCopy{
			title:   fmt.Sprintf("%d entries logged", n),
			message: fmt.Sprintf("You have logged %d journal entries. Keep it up!", n),
		}
	}
	for _, n := range daysActiveThresholds {
		m[DaysActiveMilestone(n)] = milestoneCopy{
			title:   fmt.Sprintf("%d active days", n),
			message: fmt.Sprintf("You have tracked your health on %d different days.", n),
		}
	}
	return m
}()

// MilestoneTitle returns the display title for t.
func MilestoneTitle(t MilestoneType) string {
	if c, ok := milestoneTemplates[t]; ok {
		return c.title
	}
	return string(t)
}

// --------------------------------------------------------------------------
// Awarding
// --------------------------------------------------------------------------

// MilestoneStore inserts write-once milestone records. InsertMilestone
// reports false when the record already existed.
type MilestoneStore interface {
	InsertMilestone(ctx context.Context, userID string, t MilestoneType, at time.Time) (bool, error)
}

// AlertCreator persists in-app alerts.
type AlertCreator interface {
	Create(ctx context.Context, d alerts.Draft) (alerts.Alert, error)
}

// PreferenceReader returns a user's preferences, falling back to defaults.
type PreferenceReader interface {
	GetOrDefault(ctx context.Context, userID string) preferences.Preferences
}

// Awarder stores crossed milestones and raises milestone_reached alerts for
// the ones that were not already stored.
type Awarder struct {
	store  MilestoneStore
	alerts AlertCreator
	prefs  PreferenceReader
	logger *slog.Logger
}

// NewAwarder creates an Awarder.
func NewAwarder(store MilestoneStore, ac AlertCreator, prefs PreferenceReader, logger *slog.Logger) *Awarder {
	return &Awarder{store: store, alerts: ac, prefs: prefs, logger: logger}
}

// Award stores each milestone and returns the ones newly inserted. A failure
// for one milestone does not stop the others; failures are joined.
func (a *Awarder) Award(ctx context.Context, userID string, crossed []MilestoneType, at time.Time) ([]MilestoneType, error) {
	if len(crossed) == 0 {
		return nil, nil
	}

	var (
		awarded []MilestoneType
		errs    []error
		notify  *bool
	)
	for _, m := range crossed {
		inserted, err := a.store.InsertMilestone(ctx, userID, m, at)
		if err != nil {
			errs = append(errs, fmt.Errorf("insert milestone %s: %w", m, err))
			continue
		}
		if !inserted {
			a.logger.Debug("Milestone already awarded", "user_id", userID, "milestone", m)
			continue
		}
		awarded = append(awarded, m)

		if notify == nil {
			on := a.prefs.GetOrDefault(ctx, userID).ActivityMilestones
			notify = &on
		}
		if !*notify {
			continue
		}

		c := milestoneTemplates[m]
		if _, err := a.alerts.Create(ctx, alerts.MilestoneReached(userID, string(m), c.title, c.message)); err != nil {
			errs = append(errs, fmt.Errorf("milestone alert %s: %w", m, err))
		}
	}

	if len(awarded) > 0 {
		a.logger.Info("Milestones awarded", "user_id", userID, "milestones", awarded)
	}
	return awarded, errors.Join(errs...)
}
