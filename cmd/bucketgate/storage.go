package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/config"
	"github.com/sagarc03/bucketgate/database"
	"github.com/sagarc03/bucketgate/filesystem"
	"github.com/sagarc03/bucketgate/s3store"
)

var errUnsupportedBackend = errors.New("unsupported storage backend")

// backend is an opened object store plus whatever must be released with it.
type backend struct {
	store  bucketgate.ObjectStore
	writer bucketgate.ObjectWriter
	close  func()
}

// openBackend opens the configured storage backend. SQL backends are
// migrated first when migrate is set, and always schema-validated.
func openBackend(ctx context.Context, cfg config.StorageConfig, migrate bool) (*backend, error) {
	switch cfg.Backend {
	case config.BackendS3:
		store, err := s3store.New(ctx, s3store.Options{
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
			MaxAttempts:  cfg.S3.MaxAttempts,
		})
		if err != nil {
			return nil, fmt.Errorf("open s3 backend: %w", err)
		}
		return &backend{store: store, close: func() {}}, nil

	case config.BackendFilesystem:
		if err := os.MkdirAll(cfg.Filesystem.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}

		root, err := os.OpenRoot(cfg.Filesystem.Path)
		if err != nil {
			return nil, fmt.Errorf("open storage root: %w", err)
		}

		store := filesystem.NewStore(root)
		return &backend{store: store, writer: store, close: func() { _ = root.Close() }}, nil

	case config.BackendSQLite, config.BackendPostgres:
		store, err := database.Open(ctx, cfg.DatabaseConfig(), migrate)
		if err != nil {
			return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
		}
		return &backend{store: store, writer: store, close: func() {
			if err := store.Close(); err != nil {
				slog.Warn("failed to close database", "err", err)
			}
		}}, nil

	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedBackend, cfg.Backend)
	}
}
