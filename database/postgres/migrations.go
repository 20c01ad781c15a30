package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func createObjectsTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexUpdatedAt := pgx.Identifier{fmt.Sprintf("idx_%s_updated_at", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			bucket TEXT NOT NULL,
			key TEXT NOT NULL,
			content BYTEA NOT NULL,
			content_type TEXT NOT NULL,
			size_bytes BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (bucket, key)
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (updated_at);
	`,
		quotedTable,
		indexUpdatedAt, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create objects table: %w", err)
	}
	return nil
}

// DropTable removes the objects table.
func (s *Store) DropTable(ctx context.Context) error {
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", pgx.Identifier{s.table}.Sanitize())

	if _, err := s.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	return nil
}
