// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pgtest provides database fixtures for tests.

  - PassThrough: a [postgres.Transactor] that runs the unit of work directly,
    for service tests backed by in-memory repositories.
  - Start: a throwaway PostgreSQL container with every migration applied, for
    repository integration tests.

Integration tests are skipped under -short and when no Docker provider is
reachable.
*/
package pgtest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taibuivan/yarnswap/internal/platform/migration"
	"github.com/taibuivan/yarnswap/internal/platform/postgres"
)

// PassThrough runs fn without opening a transaction.
type PassThrough struct{}

// InTx implements [postgres.Transactor].
func (PassThrough) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const (
	image    = "postgres:16-alpine"
	user     = "yarnswap"
	password = "yarnswap"
	database = "yarnswap_test"
)

// Start launches PostgreSQL, applies the migrations and returns a pool.
// The container and the pool are released when the test ends.
func Start(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("pgtest: integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     user,
				"POSTGRES_PASSWORD": password,
				"POSTGRES_DB":       database,
			},
			// The server restarts once after init scripts; wait for the second ready line.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "pgtest: failed to start postgres")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port.Port(), database)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, migration.RunUp(dsn, migrationsPath(), logger), "pgtest: migrations failed")

	pool, err := postgres.NewPool(ctx, dsn, postgres.Options{StatementTimeout: 10 * time.Second}, logger)
	require.NoError(t, err, "pgtest: failed to open pool")
	t.Cleanup(pool.Close)

	return pool
}

// Reset empties every table and restarts the id sequences.
func Reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE listing_tags, tags, listings, yarn, notions, finished_objects, users
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err, "pgtest: reset failed")
}

// SeedUser inserts a user and returns its id.
func SeedUser(t *testing.T, pool *pgxpool.Pool, name, location string) int {
	t.Helper()

	var id int
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (name, email, location) VALUES ($1, $2, $3) RETURNING id`,
		name, name+"@yarnswap.test", location,
	).Scan(&id)
	require.NoError(t, err, "pgtest: seed user failed")
	return id
}

// migrationsPath resolves data/migrations relative to this source file so
// tests work from any package directory.
func migrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "data", "migrations")
}
