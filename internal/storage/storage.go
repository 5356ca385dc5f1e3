package storage

// Package storage contains the blob store abstraction for note files.
// The lifecycle service is the only component that mutates blobs; handlers
// stage inbound uploads and the service promotes or removes them.

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotPresignable is returned by PresignGet on backends that serve files
// directly (the local driver serves them statically under /uploads).
var ErrNotPresignable = errors.New("storage driver does not support presigned URLs")

// BlobStore moves staged note files into the catalog hierarchy and removes
// them. Keys are store-relative slash paths such as
// notes/mit/cs101/algorithms/<file>.
type BlobStore interface {
	// Stage spills an inbound upload to the staging area and returns the
	// staged file's path. Staged files live on the same volume as the final
	// location so Promote can rename instead of copy.
	Stage(r io.Reader, filename string) (string, error)

	// Promote moves a staged file to its final key, creating any missing
	// directory segments. Failures are returned, never swallowed.
	Promote(ctx context.Context, stagedPath, key string) error

	// Remove deletes the blob at key. A missing blob is not an error.
	Remove(ctx context.Context, key string) error

	// Exists reports whether a blob exists at key.
	Exists(ctx context.Context, key string) (bool, error)

	// PresignGet returns a time-limited download URL for the blob, or
	// ErrNotPresignable when the backend serves blobs directly.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
