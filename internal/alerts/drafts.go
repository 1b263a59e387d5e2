package alerts

import (
	"fmt"
	"math"
	"time"
)

// Dedup kinds stored in metadata["kind"].
const (
	KindDailyReminder   = "daily_reminder"
	KindInactivity      = "inactivity"
	KindEntryTrend      = "entry_trend"
	KindHealthSyncStale = "health_sync_stale"
)

// DailyReminder nudges a user who has not logged anything today.
func DailyReminder(userID string) Draft {
	return Draft{
		UserID:   userID,
		Type:     TypeInactivityWarning,
		Kind:     KindDailyReminder,
		Title:    "Time for your daily check-in",
		Message:  "Take a moment to log how you are feeling today.",
		Priority: PriorityLow,
		TTL:      24 * time.Hour,
	}
}

// InactivityWarning names the exact number of days since the last entry.
func InactivityWarning(userID string, days int) Draft {
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	return Draft{
		UserID:   userID,
		Type:     TypeInactivityWarning,
		Kind:     KindInactivity,
		Message:  fmt.Sprintf("It has been %d %s since your last journal entry. A quick log keeps your history complete.", days, unit),
		Priority: PriorityMedium,
		TTL:      48 * time.Hour,
		Metadata: map[string]any{"days_inactive": days},
	}
}

// StreakAtRisk warns that yesterday's streak ends unless the user logs today.
func StreakAtRisk(userID string, streak int) Draft {
	return Draft{
		UserID:   userID,
		Type:     TypeStreakAtRisk,
		Message:  fmt.Sprintf("You are on a %d-day streak. Log an entry today to keep it going.", streak),
		Metadata: map[string]any{"streak_days": streak},
	}
}

// StreakAchieved celebrates a streak length.
func StreakAchieved(userID string, streak int) Draft {
	return Draft{
		UserID:   userID,
		Type:     TypeStreakAchieved,
		Title:    fmt.Sprintf("%d-day streak!", streak),
		Message:  fmt.Sprintf("You have logged an entry %d days in a row.", streak),
		Metadata: map[string]any{"streak_days": streak},
	}
}

// MilestoneReached announces a newly stored milestone.
func MilestoneReached(userID, milestone, title, message string) Draft {
	return Draft{
		UserID:   userID,
		Type:     TypeMilestoneReached,
		Title:    title,
		Message:  message,
		TTL:      48 * time.Hour,
		Metadata: map[string]any{"milestone": milestone},
	}
}

// WeeklySummary reports the last seven days.
func WeeklySummary(userID string, entries, activeDays int) Draft {
	return Draft{
		UserID:  userID,
		Type:    TypeWeeklySummary,
		Message: fmt.Sprintf("This week you logged %d entries across %d of 7 days.", entries, activeDays),
		Metadata: map[string]any{
			"entries":     entries,
			"active_days": activeDays,
		},
	}
}

// EntryTrend compares this week's entry count with the previous week's.
func EntryTrend(userID string, thisWeek, lastWeek int) Draft {
	change := 0.0
	if lastWeek > 0 {
		change = float64(thisWeek-lastWeek) / float64(lastWeek) * 100
	}
	direction := "up"
	if change < 0 {
		direction = "down"
	}
	return Draft{
		UserID: userID,
		Type:   TypeHealthInsight,
		Kind:   KindEntryTrend,
		Message: fmt.Sprintf("You logged %d entries this week, %s %.0f%% from %d last week.",
			thisWeek, direction, math.Abs(change), lastWeek),
		Metadata: map[string]any{
			"this_week":      thisWeek,
			"last_week":      lastWeek,
			"change_percent": math.Round(change),
		},
	}
}

// HealthSyncStale reminds a user their wearable has not synced recently.
func HealthSyncStale(userID string, staleFor time.Duration) Draft {
	hours := int(staleFor.Hours())
	var since string
	if hours >= 48 {
		since = fmt.Sprintf("%d days", hours/24)
	} else {
		since = fmt.Sprintf("%d hours", hours)
	}
	return Draft{
		UserID:   userID,
		Type:     TypeHealthInsight,
		Kind:     KindHealthSyncStale,
		Title:    "Wearable data out of date",
		Message:  fmt.Sprintf("Your wearable has not synced in %s. Open the app to refresh your health data.", since),
		Priority: PriorityMedium,
		TTL:      24 * time.Hour,
		Metadata: map[string]any{"stale_hours": hours},
	}
}
