package vitals

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryCooldown is a process-local CooldownStore. State is lost on restart.
type MemoryCooldown struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// NewMemoryCooldown creates an empty MemoryCooldown.
func NewMemoryCooldown() *MemoryCooldown {
	return &MemoryCooldown{last: make(map[string]time.Time)}
}

// TryAcquire implements CooldownStore. The slot is free when the user has no
// entry or the last one is at least ttl older than at.
func (c *MemoryCooldown) TryAcquire(_ context.Context, userID string, at time.Time, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.last[userID]; ok && at.Sub(last) < ttl {
		return false, nil
	}
	c.last[userID] = at
	return true, nil
}

// Release implements CooldownStore.
func (c *MemoryCooldown) Release(_ context.Context, userID string, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.last[userID]; ok && last.Equal(at) {
		delete(c.last, userID)
	}
	return nil
}

const redisKeyPrefix = "vitals:hr_cooldown:"

// RedisCooldown keeps cooldown timestamps in Redis with a TTL so keys expire
// on their own.
type RedisCooldown struct {
	client redis.UniversalClient
}

// NewRedisCooldown wraps an existing client.
func NewRedisCooldown(client redis.UniversalClient) *RedisCooldown {
	return &RedisCooldown{client: client}
}

// releaseScript deletes the key only while it still holds the caller's
// value, so a late release cannot clear a newer holder's slot.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TryAcquire implements CooldownStore with SET NX PX: only one caller per
// window gets the key.
func (c *RedisCooldown) TryAcquire(ctx context.Context, userID string, at time.Time, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, redisKeyPrefix+userID, at.UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis acquire cooldown: %w", err)
	}
	return ok, nil
}

// Release implements CooldownStore.
func (c *RedisCooldown) Release(ctx context.Context, userID string, at time.Time) error {
	err := releaseScript.Run(ctx, c.client, []string{redisKeyPrefix + userID}, at.UTC().Format(time.RFC3339Nano)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis release cooldown: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (c *RedisCooldown) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
