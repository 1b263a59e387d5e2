// Package notifications delivers alerts to the user's device.
//
// Pipeline: alert row inserted → alert_created NOTIFY → claim once → look up
// the device token → send via relay or native gateway → record failures.
// A catch-up worker sweeps alerts whose notification was missed.
package notifications

import (
	"errors"
	"regexp"
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	defaultCatchUpInterval = 5 * time.Minute
	catchUpMinAge          = time.Minute
	catchUpMaxAge          = time.Hour
	catchUpBatchSize       = 100
	defaultSendTimeout     = 15 * time.Second
	maxErrorLength         = 500
)

// relayTokenPattern matches tokens issued by the push relay.
var relayTokenPattern = regexp.MustCompile(`^Expo(nent)?PushToken\[.+\]$`)

// IsRelayToken reports whether token belongs to the relay transport.
func IsRelayToken(token string) bool {
	return relayTokenPattern.MatchString(token)
}

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Transport names a delivery path.
type Transport string

const (
	TransportRelay   Transport = "relay"
	TransportGateway Transport = "gateway"
)

// Result is the structured outcome of one send. Transport is the path that
// produced the final outcome.
type Result struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"message_id,omitempty"`
	Transport Transport `json:"transport,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Message is one push notification.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

var (
	// ErrTokenInvalid means the transport rejected the token as malformed
	// or no longer registered.
	ErrTokenInvalid = errors.New("device token invalid or unregistered")
	// ErrNoDeviceToken means the user never registered a device.
	ErrNoDeviceToken = errors.New("no device token registered")
	// ErrTransportUnavailable means the transport is not configured.
	ErrTransportUnavailable = errors.New("push transport not configured")
)

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
