package engagement

import (
	"time"

	"github.com/albapepper/healthjournal-engagement/internal/domain"
)

// Apply returns prev advanced by one event dated day. firstOfDay reports
// whether the event opened the user's daily log for that date, so active
// days grow by at most one per date no matter how many events land on it.
// LastActivityDate never moves backwards.
func Apply(prev Stats, day string, firstOfDay bool, now time.Time) Stats {
	next := prev
	next.TotalEntriesLogged++
	next.WeeklyEntryCount++
	next.MonthlyEntryCount++
	if firstOfDay {
		next.TotalDaysActive++
	}
	if next.LastActivityDate == "" || day > next.LastActivityDate {
		next.LastActivityDate = day
	}
	if next.CreatedAt.IsZero() {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	return next
}

// Rollup sums entry counts over the 7 and 30 calendar days ending on today
// (inclusive). Logs outside the windows are ignored.
func Rollup(logs []DailyLog, today string) (weekly, monthly int) {
	weekStart := domain.AddDays(today, -(weekDays - 1))
	monthStart := domain.AddDays(today, -(monthDays - 1))
	for _, l := range logs {
		if l.Date > today || l.Date < monthStart {
			continue
		}
		monthly += l.EntryCount
		if l.Date >= weekStart {
			weekly += l.EntryCount
		}
	}
	return weekly, monthly
}

// Streak counts consecutive active days ending on end.
func Streak(logs []DailyLog, end string) int {
	active := make(map[string]bool, len(logs))
	for _, l := range logs {
		if l.EntryCount > 0 {
			active[l.Date] = true
		}
	}
	n := 0
	for d := end; active[d]; {
		n++
		prev := domain.AddDays(d, -1)
		if prev == d {
			break
		}
		d = prev
	}
	return n
}

// WindowTotals returns the entry sum and the number of active days in the
// window [from, to].
func WindowTotals(logs []DailyLog, from, to string) (entries, activeDays int) {
	for _, l := range logs {
		if l.Date < from || l.Date > to {
			continue
		}
		entries += l.EntryCount
		if l.EntryCount > 0 {
			activeDays++
		}
	}
	return entries, activeDays
}

// History expands sparse daily logs into one point per day from `from` to
// `to`, zero-filling days without a log.
func History(logs []DailyLog, from, to string) []DayCount {
	counts := make(map[string]int, len(logs))
	for _, l := range logs {
		counts[l.Date] += l.EntryCount
	}
	var out []DayCount
	for d := from; d <= to; {
		out = append(out, DayCount{Date: d, Count: counts[d]})
		next := domain.AddDays(d, 1)
		if next == d {
			break
		}
		d = next
	}
	return out
}
