package mysql

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the integration database and applies testdata/schema.sql.
// Tests are skipped when no database is configured.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if os.Getenv("MYSQL_HOST") == "" {
		t.Skip("MYSQL_HOST is not set, skipping mysql integration test")
	}

	db, err := Open(context.Background(), Options{
		User:     os.Getenv("MYSQL_USER"),
		Password: os.Getenv("MYSQL_PASSWORD"),
		Host:     os.Getenv("MYSQL_HOST"),
		Port:     os.Getenv("MYSQL_PORT"),
		Database: os.Getenv("MYSQL_DB_TEST"),
	})
	require.NoError(t, err)

	ddl, err := os.ReadFile("testdata/schema.sql")
	require.NoError(t, err)

	for _, stmt := range strings.Split(string(ddl), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err)
	}

	return db
}

func cleanupTestData(t *testing.T, db *sql.DB) {
	for _, table := range []string{"restaurant_accounts", "dishes", "order_management"} {
		_, err := db.ExecContext(context.Background(), "TRUNCATE TABLE "+table)
		require.NoError(t, err)
	}
}
