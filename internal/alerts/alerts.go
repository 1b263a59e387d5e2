// Package alerts is the persisted in-app inbox: typed, per-user, optionally
// expiring notifications with read state. Creating an alert is what triggers
// push delivery (see the alert_created trigger and internal/listener).
package alerts

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/healthjournal-engagement/internal/domain"
)

// --------------------------------------------------------------------------
// Alert types and display templates
// --------------------------------------------------------------------------

// Type is the alert variant.
type Type string

const (
	TypeInactivityWarning Type = "inactivity_warning"
	TypeStreakAtRisk      Type = "streak_at_risk"
	TypeStreakAchieved    Type = "streak_achieved"
	TypeMilestoneReached  Type = "milestone_reached"
	TypeWeeklySummary     Type = "weekly_summary"
	TypeHealthInsight     Type = "health_insight"
)

// Priority orders alerts in the client inbox.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Template holds the per-type display defaults.
type Template struct {
	Title    string
	Priority Priority
	TTL      time.Duration
}

var templates = map[Type]Template{
	TypeInactivityWarning: {Title: "We miss you", Priority: PriorityMedium, TTL: 48 * time.Hour},
	TypeStreakAtRisk:      {Title: "Keep your streak alive", Priority: PriorityHigh, TTL: 24 * time.Hour},
	TypeStreakAchieved:    {Title: "Streak achieved", Priority: PriorityMedium, TTL: 48 * time.Hour},
	TypeMilestoneReached:  {Title: "Milestone reached", Priority: PriorityMedium, TTL: 48 * time.Hour},
	TypeWeeklySummary:     {Title: "Your week in review", Priority: PriorityLow, TTL: 7 * 24 * time.Hour},
	TypeHealthInsight:     {Title: "Health insight", Priority: PriorityLow, TTL: 72 * time.Hour},
}

// TemplateFor returns the display defaults for t.
func TemplateFor(t Type) (Template, bool) {
	tpl, ok := templates[t]
	return tpl, ok
}

// Valid reports whether t is a known alert type.
func (t Type) Valid() bool {
	_, ok := templates[t]
	return ok
}

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Alert is a stored notification. Only Read changes after creation.
type Alert struct {
	ID        uuid.UUID      `json:"id"`
	UserID    string         `json:"-"`
	Type      Type           `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Priority  Priority       `json:"priority"`
	Read      bool           `json:"read"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// Expired reports whether a is past its expiry at now.
func (a Alert) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

// Draft is an alert before it is stored. Empty Title, Priority and TTL take
// the type's template. Kind narrows deduplication within a type and is stored
// as metadata["kind"].
type Draft struct {
	UserID   string
	Type     Type
	Kind     string
	Title    string
	Message  string
	Priority Priority
	TTL      time.Duration
	Metadata map[string]any
}

// Build validates d and materializes it as an Alert created at now.
func (d Draft) Build(id uuid.UUID, now time.Time) (Alert, error) {
	var errs []domain.FieldError
	if strings.TrimSpace(d.UserID) == "" {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	tpl, ok := TemplateFor(d.Type)
	if !ok {
		errs = append(errs, domain.FieldError{Field: "type", Message: "unknown alert type " + string(d.Type)})
	}
	if strings.TrimSpace(d.Message) == "" {
		errs = append(errs, domain.FieldError{Field: "message", Message: "required"})
	}
	if d.Priority != "" && !d.Priority.Valid() {
		errs = append(errs, domain.FieldError{Field: "priority", Message: "unknown priority " + string(d.Priority)})
	}
	if len(errs) > 0 {
		return Alert{}, domain.NewValidationErrors(errs)
	}

	a := Alert{
		ID:        id,
		UserID:    d.UserID,
		Type:      d.Type,
		Title:     d.Title,
		Message:   d.Message,
		Priority:  d.Priority,
		Metadata:  make(map[string]any, len(d.Metadata)+1),
		CreatedAt: now,
	}
	if a.Title == "" {
		a.Title = tpl.Title
	}
	if a.Priority == "" {
		a.Priority = tpl.Priority
	}
	for k, v := range d.Metadata {
		a.Metadata[k] = v
	}
	if d.Kind != "" {
		a.Metadata["kind"] = d.Kind
	}

	ttl := d.TTL
	if ttl == 0 {
		ttl = tpl.TTL
	}
	if ttl > 0 {
		exp := now.Add(ttl)
		a.ExpiresAt = &exp
	}
	return a, nil
}

// ListFilter pages the inbox newest first.
type ListFilter struct {
	Limit      int
	Offset     int
	UnreadOnly bool
}

// Inbox is one page of a user's alerts plus counts.
type Inbox struct {
	Alerts      []Alert `json:"alerts"`
	Total       int     `json:"total"`
	UnreadCount int     `json:"unread_count"`
}
