package notifications

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// messageSender is the subset of *messaging.Client the gateway uses.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMGateway sends push notifications via Firebase Cloud Messaging.
// Nil-safe: a nil gateway reports ErrTransportUnavailable.
type FCMGateway struct {
	client messageSender
	logger *slog.Logger
}

// NewFCMGateway creates a gateway from a service account credentials file.
// Returns nil, nil if credentialsFile is empty (gateway disabled).
func NewFCMGateway(ctx context.Context, credentialsFile string, logger *slog.Logger) (*FCMGateway, error) {
	if credentialsFile == "" {
		return nil, nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &FCMGateway{client: client, logger: logger}, nil
}

// Send delivers one message and returns the gateway message ID. Rejected
// tokens are reported as ErrTokenInvalid.
func (g *FCMGateway) Send(ctx context.Context, m Message) (string, error) {
	if g == nil || g.client == nil {
		return "", ErrTransportUnavailable
	}

	id, err := g.client.Send(ctx, &messaging.Message{
		Token:        m.Token,
		Notification: &messaging.Notification{Title: m.Title, Body: m.Body},
		Data:         m.Data,
		Android:      &messaging.AndroidConfig{Priority: "high"},
	})
	if err != nil {
		if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
			return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
		return "", fmt.Errorf("fcm send: %w", err)
	}
	return id, nil
}
