package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/healthjournal-engagement/internal/domain"
)

const (
	defaultPageSize  = 20
	maxPageSize      = 100
	defaultPurgeSize = 500
)

// Repository is the persistence surface the Service needs. *Store satisfies it.
type Repository interface {
	Insert(ctx context.Context, a Alert) error
	List(ctx context.Context, userID string, f ListFilter, now time.Time) ([]Alert, error)
	Count(ctx context.Context, userID string, unreadOnly bool, now time.Time) (int, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	ExistsSince(ctx context.Context, userID string, t Type, kind string, since, now time.Time) (bool, error)
	DeleteExpiredBatch(ctx context.Context, now time.Time, limit int) (int64, error)
}

// Service owns alert creation, deduplication and the inbox operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates an alert Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create validates and stores a draft.
func (s *Service) Create(ctx context.Context, d Draft) (Alert, error) {
	a, err := d.Build(uuid.New(), s.now())
	if err != nil {
		return Alert{}, err
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return Alert{}, fmt.Errorf("create %s alert: %w", a.Type, err)
	}
	s.logger.Debug("Alert created", "user_id", a.UserID, "type", a.Type, "alert_id", a.ID)
	return a, nil
}

// CreateUnlessRecent stores d unless the user already has an unexpired alert
// of the same type (and kind) created at or after since. created is false
// when the draft was skipped.
func (s *Service) CreateUnlessRecent(ctx context.Context, d Draft, since time.Time) (Alert, bool, error) {
	return s.createUnless(ctx, d, d.Kind, since)
}

// CreateUnlessTypeRecent is CreateUnlessRecent ignoring kind: any unexpired
// alert of the same type since `since` suppresses d.
func (s *Service) CreateUnlessTypeRecent(ctx context.Context, d Draft, since time.Time) (Alert, bool, error) {
	return s.createUnless(ctx, d, "", since)
}

func (s *Service) createUnless(ctx context.Context, d Draft, kind string, since time.Time) (Alert, bool, error) {
	exists, err := s.repo.ExistsSince(ctx, d.UserID, d.Type, kind, since, s.now())
	if err != nil {
		return Alert{}, false, err
	}
	if exists {
		return Alert{}, false, nil
	}
	a, err := s.Create(ctx, d)
	if err != nil {
		return Alert{}, false, err
	}
	return a, true, nil
}

// Inbox returns one page of alerts with the total and unread counts.
func (s *Service) Inbox(ctx context.Context, userID string, f ListFilter) (Inbox, error) {
	if strings.TrimSpace(userID) == "" {
		return Inbox{}, domain.ErrUnauthorized
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	now := s.now()
	list, err := s.repo.List(ctx, userID, f, now)
	if err != nil {
		return Inbox{}, err
	}
	total, err := s.repo.Count(ctx, userID, f.UnreadOnly, now)
	if err != nil {
		return Inbox{}, err
	}
	unread := total
	if !f.UnreadOnly {
		if unread, err = s.repo.Count(ctx, userID, true, now); err != nil {
			return Inbox{}, err
		}
	}
	if list == nil {
		list = []Alert{}
	}
	return Inbox{Alerts: list, Total: total, UnreadCount: unread}, nil
}

// UnreadCount returns the badge count.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.Count(ctx, userID, true, s.now())
}

// MarkRead flags one alert as read.
func (s *Service) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllRead flags all of a user's alerts as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Dismiss deletes one alert.
func (s *Service) Dismiss(ctx context.Context, userID string, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

// PurgeExpired deletes expired alerts in batches of batchSize until a batch
// comes back short. Unexpired alerts are never touched.
func (s *Service) PurgeExpired(ctx context.Context, batchSize int) (deleted int64, batches int, err error) {
	if batchSize <= 0 {
		batchSize = defaultPurgeSize
	}
	now := s.now()
	for {
		if err := ctx.Err(); err != nil {
			return deleted, batches, err
		}
		n, err := s.repo.DeleteExpiredBatch(ctx, now, batchSize)
		if err != nil {
			return deleted, batches, err
		}
		batches++
		deleted += n
		if n < int64(batchSize) {
			return deleted, batches, nil
		}
	}
}
