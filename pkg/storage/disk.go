// Package storage provides the object storage used for lunch images.
//
// Three drivers implement Disk:
//   - "local"  local filesystem, served by the API under /storage
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, Supabase S3)
//   - "memory" in-process map, for tests
//
// A Manager holds the configured disks; a Gateway sits on top of one disk and
// exposes the upload/delete pair the catalog needs:
//
//	mgr, _ := storage.NewManager()
//	gw := storage.NewGateway(mgr.Default())
//	obj, err := gw.Upload(ctx, data, "image/jpeg", "lunches/7")
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get when no object exists at path.
var ErrNotExist = errors.New("storage: object does not exist")

// Disk is the object storage driver interface.
type Disk interface {
	// Put writes content to path, replacing any existing object.
	Put(ctx context.Context, path string, content []byte, contentType string) error

	// Get returns the full content of the object at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether an object exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes the object. Returns nil if it did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string

	// AllFiles lists every object under directory, recursively.
	AllFiles(ctx context.Context, directory string) ([]string, error)
}
