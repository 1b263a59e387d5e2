// Package logger builds the process-wide slog.Logger: text output in
// development, JSON in production, and an optional Sentry fanout for errors.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Options controls handler selection.
type Options struct {
	Production bool
	Debug      bool
	SentryDSN  string
	Output     io.Writer // defaults to os.Stdout
}

// New returns a logger and a flush func that drains buffered Sentry events.
// The flush func is always safe to call.
func New(opts Options) (*slog.Logger, func()) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var handlers []slog.Handler
	if opts.Production {
		handlers = append(handlers, slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	} else {
		handlers = append(handlers, slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	}

	flush := func() {}
	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              opts.SentryDSN,
			TracesSampleRate: 0.1,
		})
		if err == nil {
			// Sentry only receives errors.
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
			flush = func() { sentry.Flush(2 * time.Second) }
		}
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	return slog.New(handler), flush
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TokenPrefix shortens a device token for logging.
func TokenPrefix(token string) string {
	const keep = 12
	if len(token) <= keep {
		return token[:len(token)/2] + "..."
	}
	return token[:keep] + "..."
}
