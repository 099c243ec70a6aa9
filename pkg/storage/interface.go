package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo describes a stored object.
type FileInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Storage abstracts where finished recordings and snapshots end up.
// LocalStorage keeps everything on the host; S3Storage mirrors files to an
// S3-compatible bucket for off-site retention.
type Storage interface {
	// Write stores content from the reader under the given key.
	// size is the expected content length, -1 if unknown.
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Read retrieves content for the given key. The caller closes the reader.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object with the given key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// List returns all objects whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]FileInfo, error)

	// Exists reports whether an object with the given key exists.
	Exists(ctx context.Context, key string) (bool, error)
}
