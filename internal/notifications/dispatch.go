package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/healthjournal-engagement/internal/alerts"
)

// DispatchStore is the dispatch bookkeeping surface. *Store satisfies it.
type DispatchStore interface {
	Claim(ctx context.Context, id uuid.UUID) (alerts.Alert, bool, error)
	ClaimStale(ctx context.Context, from, to time.Time, limit int) ([]alerts.Alert, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// TokenReader returns the user's registered device token, "" if none.
type TokenReader interface {
	PushToken(ctx context.Context, userID string) (string, error)
}

// Sender sends one push. *Dispatcher satisfies it.
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) Result
}

// Deliverer turns persisted alerts into pushes. A failed push is recorded on
// the alert and never removes it from the inbox.
type Deliverer struct {
	store  DispatchStore
	tokens TokenReader
	sender Sender
	logger *slog.Logger
	now    func() time.Time
}

// NewDeliverer creates a Deliverer.
func NewDeliverer(store DispatchStore, tokens TokenReader, sender Sender, logger *slog.Logger) *Deliverer {
	return &Deliverer{store: store, tokens: tokens, sender: sender, logger: logger, now: time.Now}
}

// Deliver claims the alert and pushes it. A false claim (already handled
// elsewhere) returns a zero Result and no error.
func (d *Deliverer) Deliver(ctx context.Context, id uuid.UUID) (Result, error) {
	a, ok, err := d.store.Claim(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		d.logger.Debug("Alert already dispatched", "alert_id", id)
		return Result{}, nil
	}
	return d.push(ctx, a), nil
}

func (d *Deliverer) push(ctx context.Context, a alerts.Alert) Result {
	token, err := d.tokens.PushToken(ctx, a.UserID)
	if err != nil {
		d.fail(ctx, a.ID, fmt.Sprintf("token lookup: %v", err))
		return Result{Error: err.Error()}
	}
	if token == "" {
		d.fail(ctx, a.ID, ErrNoDeviceToken.Error())
		return Result{Error: ErrNoDeviceToken.Error()}
	}

	res := d.sender.Send(ctx, token, a.Title, a.Message, map[string]string{
		"alert_id":   a.ID.String(),
		"alert_type": string(a.Type),
		"priority":   string(a.Priority),
	})
	if !res.Success {
		d.fail(ctx, a.ID, res.Error)
	}
	return res
}

func (d *Deliverer) fail(ctx context.Context, id uuid.UUID, reason string) {
	if err := d.store.MarkFailed(ctx, id, reason); err != nil {
		d.logger.Warn("Recording dispatch failure failed", "alert_id", id, "error", err)
	}
}

// Sweep pushes alerts created between one hour and one minute ago that were
// never dispatched (a missed notification).
func (d *Deliverer) Sweep(ctx context.Context) (sent, failed int, err error) {
	now := d.now()
	claimed, err := d.store.ClaimStale(ctx, now.Add(-catchUpMaxAge), now.Add(-catchUpMinAge), catchUpBatchSize)
	if err != nil {
		return 0, 0, err
	}
	for _, a := range claimed {
		if d.push(ctx, a).Success {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed, nil
}

// NotifyUser pushes an ad hoc notification that has no alert row.
func (d *Deliverer) NotifyUser(ctx context.Context, userID, title, body string, data map[string]string) error {
	token, err := d.tokens.PushToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("token lookup: %w", err)
	}
	if token == "" {
		return ErrNoDeviceToken
	}
	res := d.sender.Send(ctx, token, title, body, data)
	if !res.Success {
		return errors.New(res.Error)
	}
	return nil
}

// StartWorker runs the catch-up sweep on a ticker.
// Blocks until ctx is cancelled. Intended to be called with `go`.
func (d *Deliverer) StartWorker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultCatchUpInterval
	}
	d.logger.Info("Notification catch-up worker started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, failed, err := d.Sweep(ctx)
			if err != nil {
				d.logger.Error("Catch-up sweep error", "error", err)
			} else if sent+failed > 0 {
				d.logger.Info("Catch-up sweep", "sent", sent, "failed", failed)
			}
		case <-ctx.Done():
			d.logger.Info("Notification catch-up worker stopped")
			return
		}
	}
}
