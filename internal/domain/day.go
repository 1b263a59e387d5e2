package domain

import (
	"fmt"
	"time"
)

// DayLayout is the calendar-date form used for event dates and daily logs.
const DayLayout = "2006-01-02"

// Day formats t as a calendar date in loc.
func Day(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// ParseDay validates a YYYY-MM-DD string.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, NewValidationError("date", fmt.Sprintf("%q is not a YYYY-MM-DD date", s))
	}
	return t, nil
}

// AddDays shifts a YYYY-MM-DD date by n days. Invalid input is returned as-is.
func AddDays(day string, n int) string {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return day
	}
	return t.AddDate(0, 0, n).Format(DayLayout)
}

// DaysBetween returns the whole days from `from` to `to`. Negative when `to`
// is earlier. Invalid input yields 0.
func DaysBetween(from, to string) int {
	f, err := time.Parse(DayLayout, from)
	if err != nil {
		return 0
	}
	t, err := time.Parse(DayLayout, to)
	if err != nil {
		return 0
	}
	return int(t.Sub(f).Hours() / 24)
}
