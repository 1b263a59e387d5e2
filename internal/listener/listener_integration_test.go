//go:build integration

package listener

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/healthjournal-engagement/internal/alerts"
	"github.com/albapepper/healthjournal-engagement/internal/db/dbtest"
	"github.com/albapepper/healthjournal-engagement/internal/logger"
	"github.com/albapepper/healthjournal-engagement/internal/notifications"
	"github.com/albapepper/healthjournal-engagement/internal/preferences"
)

type recordingSender struct {
	mu     sync.Mutex
	titles []string
}

func (s *recordingSender) Send(_ context.Context, _, title, _ string, _ map[string]string) notifications.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, title)
	return notifications.Result{Success: true, MessageID: "m1", Transport: notifications.TransportRelay}
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.titles)
}

func TestListener_DeliversInsertedAlertOnce(t *testing.T) {
	pool := dbtest.SetupPool(t)
	log := logger.Discard()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prefs := preferences.NewService(preferences.NewStore(pool.Pool), log)
	require.NoError(t, prefs.RegisterDeviceToken(ctx, "u1", "ExponentPushToken[integration]"))

	sender := &recordingSender{}
	deliverer := notifications.NewDeliverer(notifications.NewStore(pool.Pool), prefs, sender, log)

	go Start(ctx, dbtest.DSN(t), deliverer, log)
	time.Sleep(time.Second) // let LISTEN register

	alertSvc := alerts.NewService(alerts.NewStore(pool.Pool), log)
	_, err := alertSvc.Create(ctx, alerts.StreakAtRisk("u1", 5))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return sender.count() == 1 }, 10*time.Second, 50*time.Millisecond)

	// Old enough for the sweep window, but already claimed.
	_, err = pool.Exec(ctx, "UPDATE alerts SET created_at = NOW() - interval '5 minutes'")
	require.NoError(t, err)
	sent, failed, err := deliverer.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
	assert.Equal(t, []string{"Keep your streak alive"}, sender.titles)
}
