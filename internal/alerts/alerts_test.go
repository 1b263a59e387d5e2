package alerts

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryTypeHasTemplate(t *testing.T) {
	types := []Type{
		TypeInactivityWarning, TypeStreakAtRisk, TypeStreakAchieved,
		TypeMilestoneReached, TypeWeeklySummary, TypeHealthInsight,
	}
	for _, typ := range types {
		tpl, ok := TemplateFor(typ)
		require.True(t, ok, typ)
		assert.NotEmpty(t, tpl.Title, typ)
		assert.True(t, tpl.Priority.Valid(), typ)
		assert.Positive(t, tpl.TTL, typ)
	}
	assert.False(t, Type("promo").Valid())
}

func TestDraftBuild_Overrides(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	a, err := DailyReminder("u1").Build(uuid.New(), now)
	require.NoError(t, err)

	assert.Equal(t, TypeInactivityWarning, a.Type)
	assert.Equal(t, PriorityLow, a.Priority)
	assert.Equal(t, "Time for your daily check-in", a.Title)
	assert.Equal(t, now.Add(24*time.Hour), *a.ExpiresAt)
	assert.False(t, a.Read)
}

func TestDraftBuild_NegativeTTLMeansNoExpiry(t *testing.T) {
	d := StreakAtRisk("u1", 5)
	d.TTL = -1
	a, err := d.Build(uuid.New(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, a.ExpiresAt)
	assert.False(t, a.Expired(time.Now().Add(1000*time.Hour)))
}

func TestDraftBuild_InvalidPriority(t *testing.T) {
	d := StreakAtRisk("u1", 5)
	d.Priority = "urgent"
	_, err := d.Build(uuid.New(), time.Now())
	require.Error(t, err)
}

func TestDraftBuild_DoesNotAliasMetadata(t *testing.T) {
	meta := map[string]any{"a": 1}
	d := WeeklySummary("u1", 3, 2)
	d.Metadata = meta
	a, err := d.Build(uuid.New(), time.Now())
	require.NoError(t, err)

	a.Metadata["b"] = 2
	assert.NotContains(t, meta, "b")
}

func TestDraftMessages(t *testing.T) {
	assert.Contains(t, InactivityWarning("u", 1).Message, "1 day since")
	assert.Contains(t, InactivityWarning("u", 4).Message, "4 days since")
	assert.Contains(t, EntryTrend("u", 15, 10).Message, "up 50% from 10")
	assert.Contains(t, EntryTrend("u", 2, 10).Message, "down 80% from 10")
	assert.Contains(t, HealthSyncStale("u", 30*time.Hour).Message, "30 hours")
	assert.Contains(t, HealthSyncStale("u", 72*time.Hour).Message, "3 days")
	assert.Contains(t, WeeklySummary("u", 9, 4).Message, "9 entries across 4 of 7 days")
}
