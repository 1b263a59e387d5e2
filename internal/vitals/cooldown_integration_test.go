//go:build integration

package vitals

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisCooldown_TryAcquire(t *testing.T) {
	client := startRedis(t)
	store := NewRedisCooldown(client)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	at := time.Date(2026, 5, 1, 9, 0, 0, 123, time.UTC)
	const callers = 20
	var wg sync.WaitGroup
	var won atomic.Int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.TryAcquire(ctx, "u1", at, DefaultCooldown)
			assert.NoError(t, err)
			if ok {
				won.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, won.Load())

	v, err := client.Get(ctx, redisKeyPrefix+"u1").Result()
	require.NoError(t, err)
	assert.Equal(t, at.Format(time.RFC3339Nano), v)
	ttl, err := client.TTL(ctx, redisKeyPrefix+"u1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 29*time.Minute)

	// A stale release leaves the current holder in place.
	require.NoError(t, store.Release(ctx, "u1", at.Add(time.Second)))
	ok, err := store.TryAcquire(ctx, "u1", at, DefaultCooldown)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, "u1", at))
	ok, err = store.TryAcquire(ctx, "u1", at, DefaultCooldown)
	require.NoError(t, err)
	assert.True(t, ok)
}
