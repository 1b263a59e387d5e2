// Package dbtest starts a throwaway Postgres for integration tests. The
// container is shared by every test in the process; tests isolate their data
// with Reset.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/albapepper/healthjournal-engagement/internal/config"
	"github.com/albapepper/healthjournal-engagement/internal/db"
	"github.com/albapepper/healthjournal-engagement/internal/logger"
)

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

var tables = []string{
	config.EventsTable,
	config.StatsTable,
	config.DailyLogsTable,
	config.MilestonesTable,
	config.AlertsTable,
	config.PreferencesTable,
	config.SamplesTable,
}

// DSN returns the connection string of the shared migrated database.
func DSN(t *testing.T) string {
	t.Helper()
	once.Do(func() {
		sharedDSN, initErr = startContainerAndMigrate()
	})
	if initErr != nil {
		t.Fatalf("dbtest: failed to set up test DB: %v", initErr)
	}
	return sharedDSN
}

// SetupPool returns a pool on the shared database with every table emptied.
// The pool is closed via t.Cleanup; the container lives until the process
// exits.
func SetupPool(t *testing.T) *db.Pool {
	t.Helper()
	dsn := DSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.New(ctx, &config.Config{
		DatabaseURL:    dsn,
		DBPoolMinConns: 1,
		DBPoolMaxConns: 8,
		DBPoolMaxLife:  time.Hour,
	})
	if err != nil {
		t.Fatalf("dbtest: connect: %v", err)
	}
	t.Cleanup(pool.Close)

	Reset(t, pool)
	return pool
}

// Reset truncates every application table.
func Reset(t *testing.T, q db.Querier) {
	t.Helper()
	_, err := q.Exec(context.Background(), "TRUNCATE "+strings.Join(tables, ", "))
	if err != nil {
		t.Fatalf("dbtest: truncate: %v", err)
	}
}

func startContainerAndMigrate() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "engagement",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/engagement?sslmode=disable", host, port.Port())
	if err := db.MigrateUp(ctx, dsn, logger.Discard()); err != nil {
		return "", err
	}
	return dsn, nil
}
