// Package engagement maintains per-user engagement counters from journal
// activity events and awards one-time milestones.
//
// Pipeline: record event → lock stats → merge daily log → apply → evaluate
// milestones → award (outside the transaction) → milestone_reached alert.
// Weekly and monthly counts are periodically recomputed from daily logs.
package engagement

import (
	"time"

	"github.com/google/uuid"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	weekDays        = 7
	monthDays       = 30
	maxHistoryDays  = 365
	scanPageDefault = 200
)

// Entry-count thresholds. The 1-entry case is named first_entry.
var entryThresholds = []int{1, 10, 50, 100, 500}

// Days-active thresholds.
var daysActiveThresholds = []int{7, 30, 100}

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Category is the kind of journal action that produced an event.
type Category string

const (
	CategorySymptom   Category = "symptom"
	CategoryActivity  Category = "activity"
	CategoryWellbeing Category = "wellbeing"
	CategoryCondition Category = "condition"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategorySymptom, CategoryActivity, CategoryWellbeing, CategoryCondition:
		return true
	}
	return false
}

// Event is one append-only activity record.
type Event struct {
	ID         uuid.UUID
	UserID     string
	Category   Category
	OccurredOn string // YYYY-MM-DD
	CreatedAt  time.Time
}

// Stats is the per-user aggregate. LastActivityDate is empty until the first
// event.
type Stats struct {
	UserID             string    `json:"user_id"`
	TotalEntriesLogged int       `json:"total_entries_logged"`
	TotalDaysActive    int       `json:"total_days_active"`
	LastActivityDate   string    `json:"last_activity_date,omitempty"`
	WeeklyEntryCount   int       `json:"weekly_entry_count"`
	MonthlyEntryCount  int       `json:"monthly_entry_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DailyLog is the per-user per-day merge record. It is the source weekly and
// monthly counts are recomputed from.
type DailyLog struct {
	UserID          string `json:"-"`
	Date            string `json:"date"`
	EntryCount      int    `json:"entry_count"`
	SymptomCount    int    `json:"symptom_count"`
	ActivityCount   int    `json:"activity_count"`
	WellbeingLogged bool   `json:"wellbeing_logged"`
	ConditionLogged bool   `json:"condition_logged"`
}

// DayCount is one point of the entry-count history chart.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// MilestoneType names a one-time achievement: first_entry, entries_N or
// days_active_N.
type MilestoneType string

const MilestoneFirstEntry MilestoneType = "first_entry"

// Milestone is a write-once achievement record.
type Milestone struct {
	UserID     string        `json:"-"`
	Type       MilestoneType `json:"type"`
	Title      string        `json:"title"`
	AchievedAt time.Time     `json:"achieved_at"`
}

// Result is returned by RecordEvent. Recorded is false when the event was
// dropped for lack of a user. Milestones lists only newly stored records.
type Result struct {
	Recorded   bool            `json:"recorded"`
	Stats      Stats           `json:"stats"`
	Milestones []MilestoneType `json:"milestones"`
}

// ScanFilter pages through stats rows by user ID.
type ScanFilter struct {
	AfterUserID string
	Limit       int
	// LastActiveOnOrBefore restricts to users whose last activity is on or
	// before this date. Empty means no restriction.
	LastActiveOnOrBefore string
}
