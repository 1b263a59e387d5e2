package preferences

import (
	"context"
	"fmt"

	"github.com/albapepper/healthjournal-engagement/internal/db"
)

// Store persists preferences in Postgres.
type Store struct {
	q db.Querier
}

// NewStore creates a Store.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

// Get returns the stored row. A missing row is domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, userID string) (Preferences, error) {
	var p Preferences
	q := db.QuerierFromCtx(ctx, s.q)
	err := q.QueryRow(ctx, db.StmtGetPreferences, userID).Scan(
		&p.UserID, &p.DailyReminder, &p.Messages, &p.HealthInsights, &p.ActivityMilestones,
		&p.HeartRateThreshold, &p.PushToken, &p.UpdatedAt,
	)
	if err != nil {
		return Preferences{}, db.MapError(err, "preferences", userID)
	}
	return p, nil
}

// Save upserts every toggle and the threshold. The push token is untouched.
func (s *Store) Save(ctx context.Context, p Preferences) error {
	q := db.QuerierFromCtx(ctx, s.q)
	_, err := q.Exec(ctx, `
		INSERT INTO notification_preferences (
			user_id, daily_reminder, messages, health_insights, activity_milestones,
			heart_rate_threshold, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			daily_reminder = EXCLUDED.daily_reminder,
			messages = EXCLUDED.messages,
			health_insights = EXCLUDED.health_insights,
			activity_milestones = EXCLUDED.activity_milestones,
			heart_rate_threshold = EXCLUDED.heart_rate_threshold,
			updated_at = NOW()`,
		p.UserID, p.DailyReminder, p.Messages, p.HealthInsights, p.ActivityMilestones,
		p.HeartRateThreshold,
	)
	if err != nil {
		return fmt.Errorf("save preferences %s: %w", p.UserID, err)
	}
	return nil
}

// SetPushToken registers (or replaces) the user's device token.
func (s *Store) SetPushToken(ctx context.Context, userID, token string) error {
	q := db.QuerierFromCtx(ctx, s.q)
	_, err := q.Exec(ctx, `
		INSERT INTO notification_preferences (user_id, push_token, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET push_token = EXCLUDED.push_token, updated_at = NOW()`,
		userID, token,
	)
	if err != nil {
		return fmt.Errorf("set push token %s: %w", userID, err)
	}
	return nil
}
