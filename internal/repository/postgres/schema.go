package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/pos-order-relay/internal/repository"
)

// CheckSchema verifies the connected database satisfies the relational schema
// contract. It is meant to run once at startup.
func CheckSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const query = `
SELECT table_name, column_name
FROM information_schema.columns
WHERE table_schema = current_schema()
  AND table_name = ANY($1)
`
	rows, err := pool.Query(ctx, query, repository.SchemaTables())
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
