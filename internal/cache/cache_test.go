package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetExpire(t *testing.T) {
	c := New(true)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	etag := c.Set("history:u1:30", []byte(`[1,2]`), time.Minute)
	data, got, ok := c.Get("history:u1:30")
	require.True(t, ok)
	assert.Equal(t, etag, got)
	assert.Equal(t, `[1,2]`, string(data))

	now = now.Add(2 * time.Minute)
	_, _, ok = c.Get("history:u1:30")
	assert.False(t, ok)

	c.evict()
	assert.Equal(t, 0, c.Stats()["total_keys"])
}

func TestCache_Disabled(t *testing.T) {
	c := New(false)
	etag := c.Set("k", []byte("v"), time.Minute)
	assert.Equal(t, ComputeETag([]byte("v")), etag)
	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_InvalidateUser(t *testing.T) {
	c := New(true)
	c.Set(UserKey("history", "u1", "7"), []byte("a"), time.Minute)
	c.Set(UserKey("history", "u1", "30"), []byte("b"), time.Minute)
	c.Set(UserKey("history", "u10", "7"), []byte("c"), time.Minute)
	c.Set(UserKey("milestones", "u1"), []byte("d"), time.Minute)

	c.InvalidateUser("u1", "history", "milestones")

	_, _, ok := c.Get(UserKey("history", "u10", "7"))
	assert.True(t, ok, "u10 shares a prefix with u1 but not a key segment")
	assert.Equal(t, 1, c.Stats()["total_keys"])
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("x"))
	assert.True(t, CheckETagMatch(etag, etag))
	assert.True(t, CheckETagMatch(`W/"other", `+etag, etag))
	assert.True(t, CheckETagMatch("*", etag))
	assert.False(t, CheckETagMatch("", etag))
	assert.False(t, CheckETagMatch(`W/"other"`, etag))
}

func TestStartEviction_BlocksUntilDone(t *testing.T) {
	c := New(true)
	done := make(chan struct{})
	returned := make(chan struct{})
	go func() {
		c.StartEviction(done)
		close(returned)
	}()

	select {
	case <-returned:
		t.Fatal("eviction loop returned before done was closed")
	case <-time.After(50 * time.Millisecond):
	}

	close(done)
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("eviction loop did not stop after done was closed")
	}
}
