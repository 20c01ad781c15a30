// Package filesystem serves bucket objects from a local directory tree.
// Each bucket is a directory directly under the root; object keys are slash
// separated paths inside it. All access goes through an os.Root, so keys can
// never escape the root.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sagarc03/bucketgate"
	gatehttp "github.com/sagarc03/bucketgate/http"
)

// Store provides file system object storage.
type Store struct {
	root *os.Root
}

var (
	_ bucketgate.ObjectStore  = (*Store)(nil)
	_ bucketgate.ObjectWriter = (*Store)(nil)
)

// NewStore creates a Store on top of root.
func NewStore(root *os.Root) *Store {
	return &Store{root: root}
}

// GetObject reads bucket/key. Missing files and directories are NotFound.
func (s *Store) GetObject(ctx context.Context, bucket, key string) bucketgate.FetchOutcome {
	if err := ctx.Err(); err != nil {
		return bucketgate.TransientError(err)
	}

	if !bucketgate.IsValidBucket(bucket) {
		return bucketgate.TransientError(fmt.Errorf("get object: %w: bucket %q", bucketgate.ErrInvalidInput, bucket))
	}
	if !bucketgate.IsValidKey(key) {
		return bucketgate.NotFound()
	}

	name := objectPath(bucket, key)

	f, err := s.root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return bucketgate.NotFound()
		}
		return bucketgate.TransientError(fmt.Errorf("open %s: %w", name, err))
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close file", "path", name, "err", closeErr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return bucketgate.TransientError(fmt.Errorf("stat %s: %w", name, err))
	}
	if info.IsDir() {
		return bucketgate.NotFound()
	}

	body, err := io.ReadAll(&ctxReader{ctx: ctx, r: f})
	if err != nil {
		return bucketgate.TransientError(fmt.Errorf("read %s: %w", name, err))
	}

	return bucketgate.Found(body, gatehttp.ContentTypeForKey(key))
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// PutObject atomically writes content to bucket/key using a temp file and
// rename, creating intermediate directories as needed. contentType is not
// persisted; reads derive it from the key.
func (s *Store) PutObject(ctx context.Context, bucket, key, _ string, content io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if !bucketgate.IsValidBucket(bucket) {
		return 0, fmt.Errorf("put object: %w: bucket %q", bucketgate.ErrInvalidInput, bucket)
	}
	if !bucketgate.IsValidKey(key) {
		return 0, fmt.Errorf("put object: %w: key %q", bucketgate.ErrInvalidInput, key)
	}

	if err := s.root.MkdirAll(bucket, 0o755); err != nil {
		return 0, fmt.Errorf("could not create bucket directory: %w", err)
	}

	tmpFile := filepath.Join(bucket, tmpFileName())
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return 0, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	written, err := io.Copy(t, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return 0, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return 0, fmt.Errorf("could not sync written file: %w", err)
	}

	dest := objectPath(bucket, key)
	if destDir := filepath.Dir(dest); destDir != bucket {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return 0, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	if err := s.root.Rename(tmpFile, dest); err != nil {
		return 0, fmt.Errorf("failed to rename file: %w", err)
	}

	success = true
	return written, nil
}

// Walk calls fn for every regular file in fsys with its slash separated key
// and size. Hidden files and directories (leading ".") are skipped.
func Walk(ctx context.Context, fsys fs.FS, fn func(key string, size int64) error) error {
	return walkDir(ctx, fsys, ".", fn)
}

func walkDir(ctx context.Context, fsys fs.FS, dir string, fn func(key string, size int64) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("walk dir: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.Name()[0] == '.' {
			continue
		}

		entryPath := path.Join(dir, entry.Name())

		if entry.IsDir() {
			if err := walkDir(ctx, fsys, entryPath, fn); err != nil {
				return err
			}
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		if err := fn(entryPath, info.Size()); err != nil {
			return err
		}
	}

	return nil
}

func objectPath(bucket, key string) string {
	return filepath.Join(bucket, filepath.FromSlash(key))
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
