package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/config"
	"github.com/sagarc03/bucketgate/filesystem"
	gatehttp "github.com/sagarc03/bucketgate/http"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Load a local directory into the bucket",
	Long: `Walk a local directory and store every regular file in the configured
bucket, keyed by its slash separated path relative to <dir>. Existing objects
are overwritten. Hidden files and directories are skipped.

Supported for the filesystem, sqlite and postgres backends. Database tables
are created when missing.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	info, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("import: %s is not a directory", args[0])
	}

	b, err := openBackend(ctx, cfg.Storage, true)
	if err != nil {
		return err
	}
	defer b.close()

	if b.writer == nil {
		return fmt.Errorf("import: %w: %s is read-only", errUnsupportedBackend, cfg.Storage.Backend)
	}

	slog.Info("importing directory", "path", args[0], "bucket", cfg.Storage.Bucket)

	count, total, err := importDir(ctx, os.DirFS(args[0]), b.writer, cfg.Storage.Bucket)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	slog.Info("import complete", "objects", count, "bytes", total)
	return nil
}

// importDir copies every file of fsys into bucket and returns the number of
// objects and bytes written.
func importDir(ctx context.Context, fsys fs.FS, w bucketgate.ObjectWriter, bucket string) (int, int64, error) {
	var count int
	var total int64

	err := filesystem.Walk(ctx, fsys, func(key string, _ int64) error {
		if !bucketgate.IsValidKey(key) {
			slog.Warn("skipping file with invalid key", "key", key)
			return nil
		}

		f, err := fsys.Open(key)
		if err != nil {
			return fmt.Errorf("open %s: %w", key, err)
		}
		defer func() { _ = f.Close() }()

		n, err := w.PutObject(ctx, bucket, key, gatehttp.ContentTypeForKey(key), f)
		if err != nil {
			return fmt.Errorf("put %s: %w", key, err)
		}

		slog.Debug("imported object", "key", key, "bytes", n)
		count++
		total += n
		return nil
	})

	return count, total, err
}
