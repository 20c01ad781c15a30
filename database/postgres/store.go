// Package postgres stores bucket objects in a PostgreSQL table using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/bucketgate"
)

// DefaultTable is the objects table used when none is configured.
const DefaultTable = "bucketgate_objects"

// Store serves objects from a PostgreSQL table.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

var (
	_ bucketgate.ObjectStore  = (*Store)(nil)
	_ bucketgate.ObjectWriter = (*Store)(nil)
)

// Open creates a connection pool for dsn and verifies it.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	if table == "" {
		table = DefaultTable
	}
	if !bucketgate.IsValidTableName(table) {
		return nil, fmt.Errorf("open postgres: %w: invalid table name: %s", bucketgate.ErrInvalidInput, table)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{pool: pool, table: table}, nil
}

// Table returns the objects table name.
func (s *Store) Table() string {
	return s.table
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the objects table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if err := createObjectsTable(ctx, s.pool, s.table); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the objects table matches the expected schema.
func (s *Store) Validate(ctx context.Context) error {
	if err := validateTableSchema(ctx, s.pool, s.table, objectsTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", s.table, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// GetObject selects the object row for bucket/key.
func (s *Store) GetObject(ctx context.Context, bucket, key string) bucketgate.FetchOutcome {
	query := fmt.Sprintf(`
		SELECT content, content_type
		FROM %s
		WHERE bucket = $1 AND key = $2
	`, pgx.Identifier{s.table}.Sanitize())

	var content []byte
	var contentType string

	err := s.pool.QueryRow(ctx, query, bucket, key).Scan(&content, &contentType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

	query := fmt.Sprintf(`
		INSERT INTO %s (bucket, key, content, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (bucket, key) DO UPDATE
		SET content = EXCLUDED.content,
			content_type = EXCLUDED.content_type,
			size_bytes = EXCLUDED.size_bytes,
			updated_at = NOW()
	`, pgx.Identifier{s.table}.Sanitize())

	if _, err := s.pool.Exec(ctx, query, bucket, key, data, contentType, int64(len(data))); err != nil {
		return 0, fmt.Errorf("put object %s/%s: %w", bucket, key, err)
	}

	return int64(len(data)), nil
}
