package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/healthjournal-engagement/internal/domain"
)

// TxRunner runs fn inside one database transaction. *db.TxManager
// satisfies it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repository is the persistence surface of the Service. *Store satisfies it.
type Repository interface {
	AppendEvent(ctx context.Context, e Event) error
	LockStats(ctx context.Context, userID string, now time.Time) (Stats, error)
	MergeDailyLog(ctx context.Context, userID, day string, cat Category) (bool, error)
	SaveStats(ctx context.Context, st Stats) error
	SaveRollups(ctx context.Context, userID string, weekly, monthly int, now time.Time) error
	GetStats(ctx context.Context, userID string) (Stats, error)
	DailyLogs(ctx context.Context, userID, from, to string) ([]DailyLog, error)
	Milestones(ctx context.Context, userID string) ([]Milestone, error)
	ScanStats(ctx context.Context, f ScanFilter) ([]Stats, error)
}

// Service records activity events and serves engagement reads.
type Service struct {
	tx      TxRunner
	repo    Repository
	awarder *Awarder
	logger  *slog.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewService creates a Service. Calendar days are computed in loc.
func NewService(tx TxRunner, repo Repository, awarder *Awarder, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{tx: tx, repo: repo, awarder: awarder, logger: logger, loc: loc, now: time.Now}
}

// Today returns the current calendar day.
func (s *Service) Today() string {
	return domain.Day(s.now(), s.loc)
}

// RecordEvent appends an event and updates the user's counters and daily log
// in one transaction, then awards crossed milestones outside it. An event
// without a user is dropped with a warning. day defaults to today.
//
// Milestone and alert failures are logged and never fail the call.
func (s *Service) RecordEvent(ctx context.Context, userID string, cat Category, day string) (Result, error) {
	if userID == "" {
		s.logger.Warn("Dropping engagement event without user", "category", cat, "date", day)
		return Result{}, nil
	}
	if !cat.Valid() {
		return Result{}, domain.NewValidationError("category", fmt.Sprintf("unknown category %q", cat))
	}
	now := s.now()
	if day == "" {
		day = domain.Day(now, s.loc)
	} else if _, err := domain.ParseDay(day); err != nil {
		return Result{}, err
	}

	var prev, next Stats
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.AppendEvent(ctx, Event{
			ID: uuid.New(), UserID: userID, Category: cat, OccurredOn: day, CreatedAt: now,
		}); err != nil {
			return err
		}
		var err error
		prev, err = s.repo.LockStats(ctx, userID, now)
		if err != nil {
			return err
		}
		firstOfDay, err := s.repo.MergeDailyLog(ctx, userID, day, cat)
		if err != nil {
			return err
		}
		next = Apply(prev, day, firstOfDay, now)
		return s.repo.SaveStats(ctx, next)
	})
	if err != nil {
		return Result{}, fmt.Errorf("record event: %w", err)
	}

	res := Result{Recorded: true, Stats: next}
	crossed := Evaluate(prev, next)
	if len(crossed) > 0 && s.awarder != nil {
		awarded, err := s.awarder.Award(ctx, userID, crossed, now)
		if err != nil {
			s.logger.Error("Milestone award failed", "user_id", userID, "error", err)
		}
		res.Milestones = awarded
	}

	s.logger.Debug("Event recorded",
		"user_id", userID,
		"category", cat,
		"date", day,
		"entries", next.TotalEntriesLogged,
		"days_active", next.TotalDaysActive,
	)
	return res, nil
}

// Stats returns the user's counters. A user with no activity gets zero
// counters.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	st, err := s.repo.GetStats(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return Stats{UserID: userID}, nil
	}
	return st, err
}

// History returns one entry count per day for the last `days` days,
// ending today.
func (s *Service) History(ctx context.Context, userID string, days int) ([]DayCount, error) {
	if days < 1 || days > maxHistoryDays {
		return nil, domain.NewValidationError("days", fmt.Sprintf("must be between 1 and %d", maxHistoryDays))
	}
	to := s.Today()
	from := domain.AddDays(to, -(days - 1))
	logs, err := s.repo.DailyLogs(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return History(logs, from, to), nil
}

// DailyLogs returns the user's raw daily logs for [from, to].
func (s *Service) DailyLogs(ctx context.Context, userID, from, to string) ([]DailyLog, error) {
	return s.repo.DailyLogs(ctx, userID, from, to)
}

// Milestones lists the user's achieved milestones.
func (s *Service) Milestones(ctx context.Context, userID string) ([]Milestone, error) {
	return s.repo.Milestones(ctx, userID)
}

// RecomputeRollups recomputes weekly and monthly counts from daily logs as
// of today and persists them. The stats row is locked so a concurrent
// RecordEvent cannot be lost between the read and the write.
func (s *Service) RecomputeRollups(ctx context.Context, userID, today string) (Stats, error) {
	var out Stats
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.now()
		st, err := s.repo.LockStats(ctx, userID, now)
		if err != nil {
			return err
		}
		logs, err := s.repo.DailyLogs(ctx, userID, domain.AddDays(today, -(monthDays-1)), today)
		if err != nil {
			return err
		}
		weekly, monthly := Rollup(logs, today)
		if weekly == st.WeeklyEntryCount && monthly == st.MonthlyEntryCount {
			out = st
			return nil
		}
		s.logger.Debug("Correcting rollup drift",
			"user_id", userID,
			"weekly", st.WeeklyEntryCount, "weekly_actual", weekly,
			"monthly", st.MonthlyEntryCount, "monthly_actual", monthly,
		)
		st.WeeklyEntryCount, st.MonthlyEntryCount, st.UpdatedAt = weekly, monthly, now
		out = st
		return s.repo.SaveRollups(ctx, userID, weekly, monthly, now)
	})
	if err != nil {
		return Stats{}, fmt.Errorf("recompute rollups %s: %w", userID, err)
	}
	return out, nil
}

// ScanStats pages through all users' counters.
func (s *Service) ScanStats(ctx context.Context, f ScanFilter) ([]Stats, error) {
	if f.Limit <= 0 {
		f.Limit = scanPageDefault
	}
	return s.repo.ScanStats(ctx, f)
}
