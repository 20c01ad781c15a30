package e2e_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	pgDSN      string
	pgErr      error
	pgOnce     sync.Once
	pgTeardown func()
)

// getSharedPostgresDSN starts one PostgreSQL container for all E2E tests.
func getSharedPostgresDSN(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	pgOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			pgErr = err
			return
		}

		pgTeardown = func() {
			_ = testcontainers.TerminateContainer(pgContainer)
		}

		pgDSN, pgErr = pgContainer.ConnectionString(ctx, "sslmode=disable")
	})

	require.NoError(t, pgErr, "start postgres container")
	return pgDSN
}
