// Package scheduler runs the periodic all-user passes as Go tickers: daily
// reminders, inactivity warnings, rollup correction, streaks, weekly
// summaries, entry-trend insights, expired-alert cleanup and wearable sync
// staleness.
//
// Every pass pages through users by ID and processes each page with a
// bounded worker group. A failure for one user is logged and counted, never
// aborting the rest of the pass.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/healthjournal-engagement/internal/alerts"
	"github.com/albapepper/healthjournal-engagement/internal/engagement"
	"github.com/albapepper/healthjournal-engagement/internal/preferences"
	"github.com/albapepper/healthjournal-engagement/internal/wearable"
)

// Pass names accepted by RunPass.
const (
	PassDailyReminder = "daily_reminder"
	PassInactivity    = "inactivity"
	PassRollups       = "rollups"
	PassStreak        = "streak"
	PassWeeklySummary = "weekly_summary"
	PassInsight       = "insight"
	PassCleanup       = "cleanup"
	PassHealthSync    = "health_sync"
	PassCatchUp       = "catchup"
)

// ErrUnknownPass is returned by RunPass for a name it does not know.
var ErrUnknownPass = errors.New("unknown pass")

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Config controls pass intervals and sizing. Zero interval disables a pass.
type Config struct {
	DailyReminderInterval time.Duration
	InactivityInterval    time.Duration
	RollupInterval        time.Duration
	StreakInterval        time.Duration
	WeeklySummaryInterval time.Duration
	InsightInterval       time.Duration
	CleanupInterval       time.Duration
	HealthSyncInterval    time.Duration

	InactivityDays   int           // days without an entry before a warning
	SyncStaleAfter   time.Duration // wearable sync age that counts as stale
	Workers          int           // concurrent users per page
	PageSize         int           // users per keyset page
	CleanupBatchSize int           // expired alerts deleted per statement
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		DailyReminderInterval: 24 * time.Hour,
		InactivityInterval:    24 * time.Hour,
		RollupInterval:        6 * time.Hour,
		StreakInterval:        24 * time.Hour,
		WeeklySummaryInterval: 7 * 24 * time.Hour,
		InsightInterval:       7 * 24 * time.Hour,
		CleanupInterval:       30 * time.Minute,
		HealthSyncInterval:    6 * time.Hour,

		InactivityDays:   2,
		SyncStaleAfter:   24 * time.Hour,
		Workers:          8,
		PageSize:         200,
		CleanupBatchSize: 500,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InactivityDays <= 0 {
		c.InactivityDays = d.InactivityDays
	}
	if c.SyncStaleAfter <= 0 {
		c.SyncStaleAfter = d.SyncStaleAfter
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.CleanupBatchSize <= 0 {
		c.CleanupBatchSize = d.CleanupBatchSize
	}
	return c
}

// --------------------------------------------------------------------------
// Dependencies
// --------------------------------------------------------------------------

// Engagement is the counter surface the passes read. *engagement.Service
// satisfies it.
type Engagement interface {
	ScanStats(ctx context.Context, f engagement.ScanFilter) ([]engagement.Stats, error)
	DailyLogs(ctx context.Context, userID, from, to string) ([]engagement.DailyLog, error)
	RecomputeRollups(ctx context.Context, userID, today string) (engagement.Stats, error)
}

// AlertWriter creates deduplicated alerts and purges expired ones.
// *alerts.Service satisfies it.
type AlertWriter interface {
	CreateUnlessRecent(ctx context.Context, d alerts.Draft, since time.Time) (alerts.Alert, bool, error)
	CreateUnlessTypeRecent(ctx context.Context, d alerts.Draft, since time.Time) (alerts.Alert, bool, error)
	PurgeExpired(ctx context.Context, batchSize int) (int64, int, error)
}

// PreferenceReader never fails; read errors fall back to defaults.
type PreferenceReader interface {
	GetOrDefault(ctx context.Context, userID string) preferences.Preferences
}

// SyncScanner pages through users whose last wearable sync is older than a
// cutoff. *wearable.Store satisfies it.
type SyncScanner interface {
	StaleUsers(ctx context.Context, cutoff time.Time, afterUserID string, limit int) ([]wearable.LastSync, error)
}

// Sweeper pushes alerts whose creation notification was missed.
// *notifications.Deliverer satisfies it.
type Sweeper interface {
	Sweep(ctx context.Context) (sent, failed int, err error)
}

// Deps bundles the pass dependencies. Syncs and Sweeper may be nil, which
// disables the passes that need them.
type Deps struct {
	Engagement  Engagement
	Alerts      AlertWriter
	Preferences PreferenceReader
	Syncs       SyncScanner
	Sweeper     Sweeper
}

// --------------------------------------------------------------------------
// Results
// --------------------------------------------------------------------------

// PassResult tracks the outcome of one pass run.
type PassResult struct {
	Name     string
	Scanned  int
	Created  int
	Updated  int
	Skipped  int
	Failed   int
	Deleted  int64
	Duration time.Duration
	Errors   []string
}

// Summary returns a human-readable summary.
func (r *PassResult) Summary() string {
	return fmt.Sprintf(
		"pass=%s scanned=%d created=%d updated=%d skipped=%d failed=%d deleted=%d dur=%s",
		r.Name, r.Scanned, r.Created, r.Updated, r.Skipped, r.Failed, r.Deleted,
		r.Duration.Round(time.Millisecond))
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCreated
	outcomeUpdated
)

// tally aggregates per-user outcomes from concurrent workers.
type tally struct {
	mu  sync.Mutex
	res *PassResult
}

func (t *tally) record(userID string, o outcome, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.res.Scanned++
	switch {
	case err != nil:
		t.res.Failed++
		t.res.Errors = append(t.res.Errors, fmt.Sprintf("user %s: %v", userID, err))
	case o == outcomeCreated:
		t.res.Created++
	case o == outcomeUpdated:
		t.res.Updated++
	default:
		t.res.Skipped++
	}
}

// --------------------------------------------------------------------------
// Runner
// --------------------------------------------------------------------------

// Runner executes passes.
type Runner struct {
	deps   Deps
	cfg    Config
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// NewRunner creates a Runner. Calendar days are computed in loc.
func NewRunner(deps Deps, cfg Config, loc *time.Location, logger *slog.Logger) *Runner {
	if loc == nil {
		loc = time.UTC
	}
	return &Runner{deps: deps, cfg: cfg.withDefaults(), loc: loc, logger: logger, now: time.Now}
}

type passFunc func(ctx context.Context, res *PassResult) error

func (r *Runner) passes() map[string]passFunc {
	return map[string]passFunc{
		PassDailyReminder: r.dailyReminder,
		PassInactivity:    r.inactivity,
		PassRollups:       r.rollups,
		PassStreak:        r.streak,
		PassWeeklySummary: r.weeklySummary,
		PassInsight:       r.insight,
		PassCleanup:       r.cleanup,
		PassHealthSync:    r.healthSync,
		PassCatchUp:       r.catchUp,
	}
}

// Names lists every pass RunPass accepts, sorted.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.passes()))
	for name := range r.passes() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunPass runs one pass by name. Per-user failures are counted in the
// result; the returned error is set only when the pass itself could not
// proceed (unknown name, a page scan failed).
func (r *Runner) RunPass(ctx context.Context, name string) (PassResult, error) {
	fn, ok := r.passes()[name]
	if !ok {
		return PassResult{Name: name}, fmt.Errorf("%w: %q", ErrUnknownPass, name)
	}

	start := time.Now()
	res := PassResult{Name: name}
	err := fn(ctx, &res)
	res.Duration = time.Since(start)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		r.logger.Error("Pass aborted", "pass", name, "error", err, "summary", res.Summary())
		return res, fmt.Errorf("pass %s: %w", name, err)
	}
	if res.Failed > 0 {
		r.logger.Warn("Pass complete with failures", "summary", res.Summary())
	} else {
		r.logger.Info("Pass complete", "summary", res.Summary())
	}
	return res, nil
}

// RunAll runs every pass once, in name order. A pass error does not stop
// the remaining passes; the errors are joined.
func (r *Runner) RunAll(ctx context.Context) ([]PassResult, error) {
	var (
		results []PassResult
		errs    []error
	)
	for _, name := range r.Names() {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		res, err := r.RunPass(ctx, name)
		results = append(results, res)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

// Start runs every configured pass once, then again on its own ticker.
// Blocks until ctx is cancelled. Intended to be called with `go`. The catch-up sweep is not
// ticked here; the notification deliverer runs its own worker.
func (r *Runner) Start(ctx context.Context) {
	schedule := []struct {
		name     string
		interval time.Duration
	}{
		{PassDailyReminder, r.cfg.DailyReminderInterval},
		{PassInactivity, r.cfg.InactivityInterval},
		{PassRollups, r.cfg.RollupInterval},
		{PassStreak, r.cfg.StreakInterval},
		{PassWeeklySummary, r.cfg.WeeklySummaryInterval},
		{PassInsight, r.cfg.InsightInterval},
		{PassCleanup, r.cfg.CleanupInterval},
		{PassHealthSync, r.cfg.HealthSyncInterval},
	}

	tickers := make([]*time.Ticker, 0, len(schedule))
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	for _, s := range schedule {
		if s.interval <= 0 {
			r.logger.Info("Pass disabled", "pass", s.name)
			continue
		}
		t := time.NewTicker(s.interval)
		tickers = append(tickers, t)
		name := s.name
		go runLoop(ctx, t.C, func() { _, _ = r.RunPass(ctx, name) })
	}
	r.logger.Info("Scheduler started", "passes", len(tickers), "workers", r.cfg.Workers)

	<-ctx.Done()
	r.logger.Info("Scheduler stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	if ctx.Err() != nil {
		return
	}
	fn()
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Paging and per-user isolation
// --------------------------------------------------------------------------

// forEachUser pages through stats rows in user ID order and runs fn for each
// user. Only users last active on or before lastActiveOnOrBefore are
// scanned when it is set.
func (r *Runner) forEachUser(ctx context.Context, res *PassResult, lastActiveOnOrBefore string, fn func(context.Context, engagement.Stats) (outcome, error)) error {
	fetch := func(ctx context.Context, after string) ([]engagement.Stats, error) {
		return r.deps.Engagement.ScanStats(ctx, engagement.ScanFilter{
			AfterUserID:          after,
			Limit:                r.cfg.PageSize,
			LastActiveOnOrBefore: lastActiveOnOrBefore,
		})
	}
	return forEachPage(ctx, r, res, fetch, func(st engagement.Stats) string { return st.UserID }, fn)
}

// forEachPage pages through rows keyed by user ID and runs fn for each row
// with at most cfg.Workers in flight. fn errors and panics are recorded
// against the user. Only a failed page fetch stops the pass.
func forEachPage[T any](
	ctx context.Context,
	r *Runner,
	res *PassResult,
	fetch func(ctx context.Context, after string) ([]T, error),
	userID func(T) string,
	fn func(context.Context, T) (outcome, error),
) error {
	t := &tally{res: res}
	after := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := fetch(ctx, after)
		if err != nil {
			return fmt.Errorf("scan users after %q: %w", after, err)
		}

		var g errgroup.Group
		g.SetLimit(r.cfg.Workers)
		for _, row := range page {
			g.Go(func() error {
				o, err := isolate(ctx, row, fn)
				if err != nil {
					r.logger.Warn("Pass user failed", "pass", res.Name, "user_id", userID(row), "error", err)
				}
				t.record(userID(row), o, err)
				return nil
			})
		}
		_ = g.Wait()

		if len(page) < r.cfg.PageSize {
			return nil
		}
		after = userID(page[len(page)-1])
	}
}

func isolate[T any](ctx context.Context, row T, fn func(context.Context, T) (outcome, error)) (o outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			o, err = outcomeSkipped, fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx, row)
}

func created(ok bool) outcome {
	if ok {
		return outcomeCreated
	}
	return outcomeSkipped
}
