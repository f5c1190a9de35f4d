package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the integration database and applies testdata/schema.sql.
// Tests are skipped when no database is configured.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("POSTGRES_HOST is not set, skipping postgres integration test")
	}

	pg := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_DB_TEST"),
		os.Getenv("POSTGRES_SSL"),
	)

	pool, err := pgxpool.New(context.Background(), pg)
	require.NoError(t, err)

	ddl, err := os.ReadFile("testdata/schema.sql")
	require.NoError(t, err)

	_, err = pool.Exec(context.Background(), string(ddl))
	require.NoError(t, err)

	return pool
}

func cleanupTestData(t *testing.T, pool *pgxpool.Pool) {
	_, err := pool.Exec(
		context.Background(),
		"TRUNCATE TABLE restaurant_accounts, dishes, order_management RESTART IDENTITY",
	)
	require.NoError(t, err)
}
