// Package sqlite stores bucket objects in a SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sagarc03/bucketgate"

	_ "modernc.org/sqlite" // SQLite driver
)

// DefaultTable is the objects table used when none is configured.
const DefaultTable = "bucketgate_objects"

// Store serves objects from a SQLite table.
type Store struct {
	db    *sql.DB
	table string
}

var (
	_ bucketgate.ObjectStore  = (*Store)(nil)
	_ bucketgate.ObjectWriter = (*Store)(nil)
)

// Open opens the SQLite database at dsn. In-memory databases are limited to
// a single connection so every query sees the same data.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	if table == "" {
		table = DefaultTable
	}
	if !bucketgate.IsValidTableName(table) {
		return nil, fmt.Errorf("open sqlite: %w: invalid table name: %s", bucketgate.ErrInvalidInput, table)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &Store{db: db, table: table}, nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// Table returns the objects table name.
func (s *Store) Table() string {
	return s.table
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the objects table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if err := createObjectsTable(ctx, s.db, s.table); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the objects table matches the expected schema.
func (s *Store) Validate(ctx context.Context) error {
	if err := validateTableSchema(ctx, s.db, s.table, objectsTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", s.table, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetObject selects the object row for bucket/key.
func (s *Store) GetObject(ctx context.Context, bucket, key string) bucketgate.FetchOutcome {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT content, content_type FROM %s WHERE bucket = ? AND "key" = ?`,
		quoteIdentifier(s.table))

	var content []byte
	var contentType string

	err := s.db.QueryRowContext(ctx, query, bucket, key).Scan(&content, &contentType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bucketgate.NotFound()
		}
		return bucketgate.TransientError(fmt.Errorf("get object %s/%s: %w", bucket, key, err))
	}

	if content == nil {
		content = []byte{}
	}

	return bucketgate.Found(content, contentType)
}

// PutObject inserts or replaces the object row for bucket/key.
func (s *Store) PutObject(ctx context.Context, bucket, key, contentType string, content io.Reader) (int64, error) {
	if !bucketgate.IsValidBucket(bucket) || !bucketgate.IsValidKey(key) {
		return 0, fmt.Errorf("put object %s/%s: %w", bucket, key, bucketgate.ErrInvalidInput)
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return 0, fmt.Errorf("put object %s/%s: read content: %w", bucket, key, err)
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (bucket, "key", content, content_type, size_bytes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (bucket, "key") DO UPDATE
		SET content = excluded.content,
			content_type = excluded.content_type,
			size_bytes = excluded.size_bytes,
			updated_at = excluded.updated_at`, quoteIdentifier(s.table))

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, query, bucket, key, data, contentType, int64(len(data)), now); err != nil {
		return 0, fmt.Errorf("put object %s/%s: %w", bucket, key, err)
	}

	return int64(len(data)), nil
}
