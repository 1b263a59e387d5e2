package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/albapepper/healthjournal-engagement/internal/logger"
)

// Transporter sends one message over a single push transport.
// *RelayClient and *FCMGateway satisfy it.
type Transporter interface {
	Send(ctx context.Context, m Message) (string, error)
}

// Dispatcher picks a transport by token shape and falls back from the
// native gateway to the relay when the gateway rejects the token.
type Dispatcher struct {
	relay   Transporter
	gateway Transporter
	timeout time.Duration
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher. timeout bounds each transport call.
func NewDispatcher(relay, gateway Transporter, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{relay: relay, gateway: gateway, timeout: timeout, logger: logger}
}

// Send delivers a notification to one device token. It never panics and
// never returns a raw transport error: the outcome is always a Result.
func (d *Dispatcher) Send(ctx context.Context, token, title, body string, data map[string]string) (res Result) {
	prefix := logger.TokenPrefix(token)
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Push dispatch panicked", "token", prefix, "panic", r)
			res = Result{Success: false, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if token == "" {
		return Result{Error: ErrNoDeviceToken.Error()}
	}
	msg := Message{Token: token, Title: title, Body: body, Data: data}

	if IsRelayToken(token) {
		res, _ = d.attempt(ctx, TransportRelay, d.relay, msg)
		d.log(prefix, res)
		return res
	}

	res, invalid := d.attempt(ctx, TransportGateway, d.gateway, msg)
	if !res.Success && invalid {
		d.logger.Info("Gateway rejected token, retrying via relay", "token", prefix)
		res, _ = d.attempt(ctx, TransportRelay, d.relay, msg)
	}
	d.log(prefix, res)
	return res
}

// attempt runs one transport call. invalid reports a rejected token.
func (d *Dispatcher) attempt(ctx context.Context, tr Transport, t Transporter, msg Message) (res Result, invalid bool) {
	if t == nil {
		return Result{Transport: tr, Error: ErrTransportUnavailable.Error()}, false
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	id, err := t.Send(ctx, msg)
	if err != nil {
		return Result{Transport: tr, Error: truncate(err.Error(), maxErrorLength)}, errors.Is(err, ErrTokenInvalid)
	}
	return Result{Success: true, MessageID: id, Transport: tr}, false
}

func (d *Dispatcher) log(prefix string, res Result) {
	if res.Success {
		d.logger.Info("Push sent", "token", prefix, "transport", res.Transport, "message_id", res.MessageID)
		return
	}
	d.logger.Warn("Push failed", "token", prefix, "transport", res.Transport, "error", res.Error)
}
