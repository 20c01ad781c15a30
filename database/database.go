package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/database/postgres"
	"github.com/sagarc03/bucketgate/database/sqlite"
)

// Config holds the configuration for connecting to a database backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string
	// DSN is the data source name (connection string)
	DSN string
	// Table is the name of the objects table
	Table string
}

// Store is an object store backed by a SQL table.
type Store interface {
	bucketgate.ObjectStore
	bucketgate.ObjectWriter
	Table() string
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	DropTable(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*postgres.Store)(nil)
)

// Connect opens the configured backend and verifies the connection. It does
// not touch the schema; call Migrate and/or Validate as needed.
func Connect(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case "sqlite":
		return sqlite.Open(ctx, cfg.DSN, cfg.Table)
	case "postgres":
		return postgres.Open(ctx, cfg.DSN, cfg.Table)
	default:
		return nil, fmt.Errorf("connect: %w: unsupported database type: %s", bucketgate.ErrInvalidInput, cfg.Type)
	}
}

// Open connects, migrates when migrate is set, and validates the schema.
func Open(ctx context.Context, cfg Config, migrate bool) (Store, error) {
	store, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate %s: %w", cfg.Type, err)
		}
	}

	if err := store.Validate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("validate %s schema: %w", cfg.Type, err)
	}

	return store, nil
}
