package imagestore

import (
	"context"
	"errors"
	"io"
)

// Categories namespace uploads on disk. Anything outside this list is
// rejected before touching the filesystem.
const (
	CategoryLocations = "locations"
	CategoryInventory = "inventory"
)

// ErrInvalidCategory is returned for categories outside the allow-list.
var ErrInvalidCategory = errors.New("invalid image category")

// ErrNotFound is returned when a stored path does not resolve to a file.
var ErrNotFound = errors.New("image not found")

func ValidCategory(category string) bool {
	return category == CategoryLocations || category == CategoryInventory
}

// ImageStore saves and serves uploaded reference images. Delete is
// best-effort: deleting a path that no longer exists is not an error.
type ImageStore interface {
	Save(ctx context.Context, category, originalName string, r io.Reader) (storedPath string, err error)
	Get(ctx context.Context, storedPath string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storedPath string) error
}
