package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CameronXie/pos-order-relay/internal/repository"
)

// CheckSchema verifies the connected database satisfies the relational schema
// contract. It is meant to run once at startup.
func CheckSchema(ctx context.Context, db *sql.DB) error {
	tables := repository.SchemaTables()
	args := make([]any, len(tables))
	for i, t := range tables {
		args[i] = t
	}

	query := `
SELECT TABLE_NAME, COLUMN_NAME
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = DATABASE()
  AND TABLE_NAME IN (` + placeholders(len(tables)) + `)`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query information_schema: %w", err)
	}
	defer rows.Close()

	found := make(map[string]bool)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return fmt.Errorf("scan information_schema: %w", err)
		}
		found[table+"."+column] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate information_schema: %w", err)
	}

	if missing := repository.MissingColumns(found); len(missing) > 0 {
		return &repository.SchemaError{Missing: missing}
	}

	return nil
}
