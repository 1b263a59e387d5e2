// Package listener provides a Postgres LISTEN/NOTIFY consumer for real-time
// alert delivery. It holds a dedicated pgx connection (not from the pool)
// listening on the `alert_created` channel.
//
// Every insert into alerts fires pg_notify from a trigger; this consumer
// receives the event and hands the alert ID to the notification deliverer,
// which claims it once and pushes it to the user's device.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/healthjournal-engagement/internal/notifications"
)

const (
	channel          = "alert_created"
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
	maxInFlight      = 16
)

// AlertCreatedEvent is the JSON payload from pg_notify('alert_created', ...).
type AlertCreatedEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	AlertType string    `json:"alert_type"`
	Timestamp float64   `json:"ts"`
}

// Deliverer pushes one persisted alert. *notifications.Deliverer satisfies it.
type Deliverer interface {
	Deliver(ctx context.Context, id uuid.UUID) (notifications.Result, error)
}

// Start opens a dedicated connection and listens on the alert_created
// channel. It reconnects automatically on connection loss. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, deliverer Deliverer, logger *slog.Logger) {
	backoff := reconnectBackoff
	sem := make(chan struct{}, maxInFlight)

	for {
		err := listenLoop(ctx, dbURL, deliverer, sem, logger)
		if ctx.Err() != nil {
			logger.Info("Alert listener stopped (context cancelled)")
			return
		}

		logger.Error("Alert listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, deliverer Deliverer, sem chan struct{}, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+channel)
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	logger.Info("Alert listener connected", "channel", channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		event, err := parseEvent(notification.Payload)
		if err != nil {
			logger.Warn("Failed to parse alert event",
				"payload", notification.Payload, "error", err)
			continue
		}

		logger.Debug("Alert event received",
			"alert_id", event.ID,
			"user_id", event.UserID,
			"alert_type", event.AlertType)

		// Process asynchronously to avoid blocking the listener.
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
		go func() {
			defer func() { <-sem }()
			handleAlert(ctx, deliverer, event, logger)
		}()
	}
}

func parseEvent(payload string) (AlertCreatedEvent, error) {
	var event AlertCreatedEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return AlertCreatedEvent{}, err
	}
	if event.ID == uuid.Nil {
		return AlertCreatedEvent{}, fmt.Errorf("missing alert id")
	}
	return event, nil
}

// handleAlert pushes one alert. A failed push is already recorded on the
// alert by the deliverer; the catch-up sweep covers errors before the claim.
func handleAlert(ctx context.Context, deliverer Deliverer, event AlertCreatedEvent, logger *slog.Logger) {
	res, err := deliverer.Deliver(ctx, event.ID)
	if err != nil {
		logger.Warn("Alert delivery failed", "alert_id", event.ID, "error", err)
		return
	}
	if res.Success {
		logger.Info("Alert pushed",
			"alert_id", event.ID, "alert_type", event.AlertType, "transport", res.Transport)
	}
}
