package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/reflaxess123/obedi/pkg/logger"
)

// Object identifies an uploaded object.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// UploadError is returned when the disk rejects an upload.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string { return fmt.Sprintf("upload failed: %s: %v", e.Key, e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }

// DeleteError is returned when the disk fails to remove an object.
type DeleteError struct {
	Key string
	Err error
}

func (e *DeleteError) Error() string { return fmt.Sprintf("delete failed: %s: %v", e.Key, e.Err) }
func (e *DeleteError) Unwrap() error { return e.Err }

// Gateway uploads and deletes objects on one disk under random keys.
type Gateway struct {
	disk  Disk
	newID func() string
}

func NewGateway(d Disk) *Gateway {
	return &Gateway{disk: d, newID: uuid.NewString}
}

// Disk returns the underlying disk.
func (g *Gateway) Disk() Disk { return g.disk }

// Upload stores data under folder/<uuid>.<ext>, the extension being derived
// from contentType.
func (g *Gateway) Upload(ctx context.Context, data []byte, contentType, folder string) (Object, error) {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "images"
	}
	key := fmt.Sprintf("%s/%s.%s", folder, g.newID(), extensionFor(contentType))

	logger.WithCtx(ctx).Debug("storage: uploading", "key", key, "size", len(data))
	if err := g.disk.Put(ctx, key, data, contentType); err != nil {
		return Object{}, &UploadError{Key: key, Err: err}
	}
	return Object{Key: key, URL: g.disk.URL(key)}, nil
}

// Delete removes the object stored under key.
func (g *Gateway) Delete(ctx context.Context, key string) error {
	if err := g.disk.Delete(ctx, key); err != nil {
		return &DeleteError{Key: key, Err: err}
	}
	logger.WithCtx(ctx).Debug("storage: deleted", "key", key)
	return nil
}

// IsManagedKey reports whether key refers to an object this service stored.
// Seeded and local placeholder images carry "seed-" or "local-" keys and have
// no backing object.
func IsManagedKey(key string) bool {
	return key != "" && !strings.HasPrefix(key, "seed-") && !strings.HasPrefix(key, "local-")
}

func extensionFor(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch ct {
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/avif":
		return "avif"
	case "image/heic":
		return "heic"
	case "image/svg+xml":
		return "svg"
	}
	if _, sub, ok := strings.Cut(ct, "/"); ok && sub != "" && !strings.ContainsAny(sub, "+.") {
		return sub
	}
	return "jpg"
}
