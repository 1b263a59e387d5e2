// Package preferences stores per-user notification toggles, the elevated
// heart-rate threshold and the registered push token.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/albapepper/healthjournal-engagement/internal/domain"
)

const (
	// DefaultHeartRateThreshold applies when a user never set one or the
	// preference cannot be read.
	DefaultHeartRateThreshold = 100

	minHeartRateThreshold = 40
	maxHeartRateThreshold = 220
	maxPushTokenLength    = 4096
)

// Preferences is one user's notification settings.
type Preferences struct {
	UserID             string    `json:"-"`
	DailyReminder      bool      `json:"daily_reminder"`
	Messages           bool      `json:"messages"`
	HealthInsights     bool      `json:"health_insights"`
	ActivityMilestones bool      `json:"activity_milestones"`
	HeartRateThreshold int       `json:"heart_rate_threshold_bpm"`
	PushToken          string    `json:"-"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// HasPushToken reports whether a device is registered.
func (p Preferences) HasPushToken() bool { return p.PushToken != "" }

// Defaults returns the settings of a user who never changed anything.
func Defaults(userID string) Preferences {
	return Preferences{
		UserID:             userID,
		DailyReminder:      true,
		Messages:           true,
		HealthInsights:     true,
		ActivityMilestones: true,
		HeartRateThreshold: DefaultHeartRateThreshold,
	}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	DailyReminder      *bool `json:"daily_reminder,omitempty"`
	Messages           *bool `json:"messages,omitempty"`
	HealthInsights     *bool `json:"health_insights,omitempty"`
	ActivityMilestones *bool `json:"activity_milestones,omitempty"`
	HeartRateThreshold *int  `json:"heart_rate_threshold_bpm,omitempty"`
}

// Apply returns p with the patch applied.
func (pt Patch) Apply(p Preferences) Preferences {
	if pt.DailyReminder != nil {
		p.DailyReminder = *pt.DailyReminder
	}
	if pt.Messages != nil {
		p.Messages = *pt.Messages
	}
	if pt.HealthInsights != nil {
		p.HealthInsights = *pt.HealthInsights
	}
	if pt.ActivityMilestones != nil {
		p.ActivityMilestones = *pt.ActivityMilestones
	}
	if pt.HeartRateThreshold != nil {
		p.HeartRateThreshold = *pt.HeartRateThreshold
	}
	return p
}

// Repository is the persistence surface. *Store satisfies it.
type Repository interface {
	Get(ctx context.Context, userID string) (Preferences, error)
	Save(ctx context.Context, p Preferences) error
	SetPushToken(ctx context.Context, userID, token string) error
}

// Service reads and updates preferences.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a preferences Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the stored preferences, or the defaults when none are stored.
func (s *Service) Get(ctx context.Context, userID string) (Preferences, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return Defaults(userID), nil
	}
	if err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// GetOrDefault never fails: a read error is logged and the defaults are
// returned.
func (s *Service) GetOrDefault(ctx context.Context, userID string) Preferences {
	p, err := s.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("Preference read failed, using defaults", "user_id", userID, "error", err)
		return Defaults(userID)
	}
	return p
}

// HeartRateThreshold returns the user's elevated heart-rate threshold.
func (s *Service) HeartRateThreshold(ctx context.Context, userID string) (int, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if p.HeartRateThreshold <= 0 {
		return DefaultHeartRateThreshold, nil
	}
	return p.HeartRateThreshold, nil
}

// Update applies a patch and stores the result.
func (s *Service) Update(ctx context.Context, userID string, patch Patch) (Preferences, error) {
	if patch.HeartRateThreshold != nil {
		if err := validateThreshold(*patch.HeartRateThreshold); err != nil {
			return Preferences{}, err
		}
	}
	p, err := s.Get(ctx, userID)
	if err != nil {
		return Preferences{}, err
	}
	p = patch.Apply(p)
	if err := s.repo.Save(ctx, p); err != nil {
		return Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return p, nil
}

// SetHeartRateThreshold updates only the elevated heart-rate threshold.
func (s *Service) SetHeartRateThreshold(ctx context.Context, userID string, bpm int) (Preferences, error) {
	return s.Update(ctx, userID, Patch{HeartRateThreshold: &bpm})
}

// RegisterDeviceToken stores the push token for the user's device.
func (s *Service) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.NewValidationError("token", "required")
	}
	if len(token) > maxPushTokenLength {
		return domain.NewValidationError("token", "too long")
	}
	return s.repo.SetPushToken(ctx, userID, token)
}

// PushToken returns the registered token, or "" when none is registered.
func (s *Service) PushToken(ctx context.Context, userID string) (string, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return p.PushToken, nil
}

func validateThreshold(bpm int) error {
	if bpm < minHeartRateThreshold || bpm > maxHeartRateThreshold {
		return domain.NewValidationError("heart_rate_threshold_bpm",
			fmt.Sprintf("must be between %d and %d", minHeartRateThreshold, maxHeartRateThreshold))
	}
	return nil
}
