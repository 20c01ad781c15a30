package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

func createObjectsTable(ctx context.Context, db *sql.DB, tableName string) error {
	quotedTable := quoteIdentifier(tableName)
	indexUpdatedAt := quoteIdentifier(fmt.Sprintf("idx_%s_updated_at", tableName))

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			bucket TEXT NOT NULL,
			"key" TEXT NOT NULL,
			content BLOB NOT NULL,
			content_type TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (bucket, "key")
		)
	`, quotedTable)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	indexSQL := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s ON %s (updated_at)
	`, indexUpdatedAt, quotedTable)

	if _, err := db.ExecContext(ctx, indexSQL); err != nil {
		return fmt.Errorf("create index updated_at: %w", err)
	}

	return nil
}

// DropTable removes the objects table.
func (s *Store) DropTable(ctx context.Context) error {
	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(s.table))

	if _, err := s.db.ExecContext(ctx, dropSQL); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	return nil
}
