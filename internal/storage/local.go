package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"campusnotes/internal/config"
)

// localStorage implements BlobStore on the local filesystem. Promotion is an
// atomic rename, which holds because the staging directory lives inside the
// uploads tree on the same volume.
type localStorage struct {
	uploadsDir string
	stagingDir string
}

// NewLocal creates a disk-backed blob store rooted at cfg.Root/uploads and
// ensures the staging directory exists.
func NewLocal(cfg config.StorageConfig) (BlobStore, error) {
	ls := &localStorage{
		uploadsDir: cfg.UploadsDir(),
		stagingDir: cfg.StagingDir(),
	}
	if err := os.MkdirAll(ls.stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	return ls, nil
}

// Stage copies the reader into a uniquely named file in the staging area.
func (l *localStorage) Stage(r io.Reader, filename string) (string, error) {
	f, err := os.CreateTemp(l.stagingDir, "upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return f.Name(), nil
}

// Promote renames a staged file into its final location, creating missing
// directory segments first. Directory creation errors are surfaced to the
// caller rather than logged and dropped.
func (l *localStorage) Promote(ctx context.Context, stagedPath, key string) error {
	dst := l.abs(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create note directory: %w", err)
	}
	if err := os.Rename(stagedPath, dst); err != nil {
		return fmt.Errorf("move staged file: %w", err)
	}
	return nil
}

// Remove deletes the blob at key. Removing an already-absent blob succeeds.
func (l *localStorage) Remove(ctx context.Context, key string) error {
	if err := os.Remove(l.abs(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove note file: %w", err)
	}
	return nil
}

// Exists reports whether a regular file is present at key.
func (l *localStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.abs(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// PresignGet is unsupported: local blobs are served statically under /uploads.
func (l *localStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "", ErrNotPresignable
}

func (l *localStorage) abs(key string) string {
	return filepath.Join(l.uploadsDir, filepath.FromSlash(key))
}
