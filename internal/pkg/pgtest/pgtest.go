// Package pgtest starts a disposable, migrated Postgres for integration tests.
//
// Tests using it are skipped unless COURSEBITE_INTEGRATION=1 because they need a
// container runtime.
package pgtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/coursebite/internal/pkg/migration"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// EnvIntegration enables container-backed tests when set to "1".
const EnvIntegration = "COURSEBITE_INTEGRATION"

// New returns a pool connected to a fresh, fully migrated database.
func New(t testing.TB) *pgxpool.Pool {
	t.Helper()
	if os.Getenv(EnvIntegration) != "1" {
		t.Skip("set " + EnvIntegration + "=1 to run postgres integration tests")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("coursebite"),
		postgres.WithUsername("coursebite"),
		postgres.WithPassword("coursebite"),
		postgres.BasicWaitStrategies(),
	)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, migration.Run(dsn, migration.Up))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}
