package local

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vbonduro/homeinv/internal/imagestore"
)

type LocalImageStore struct {
	basePath string
}

func NewLocalImageStore(basePath string) (*LocalImageStore, error) {
	for _, category := range []string{imagestore.CategoryLocations, imagestore.CategoryInventory} {
		if err := os.MkdirAll(filepath.Join(basePath, category), 0755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}
	return &LocalImageStore{basePath: basePath}, nil
}

// Save writes r under the category directory with a uuid-suffixed name
// derived from originalName and returns "category/filename".
func (s *LocalImageStore) Save(ctx context.Context, category, originalName string, r io.Reader) (string, error) {
	if !imagestore.ValidCategory(category) {
		return "", imagestore.ErrInvalidCategory
	}

	filename := uniqueFilename(originalName)
	storedPath := path.Join(category, filename)
	filePath := filepath.Join(s.basePath, category, filename)

	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return storedPath, nil
}

func (s *LocalImageStore) Get(ctx context.Context, storedPath string) (io.ReadCloser, string, error) {
	filePath, err := s.safeJoin(storedPath)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", imagestore.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return f, extToMimeType(filePath), nil
}

// Delete removes the stored file. A missing file is treated as already
// deleted.
func (s *LocalImageStore) Delete(ctx context.Context, storedPath string) error {
	filePath, err := s.safeJoin(storedPath)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// safeJoin resolves storedPath relative to basePath and rejects directory
// traversal.
func (s *LocalImageStore) safeJoin(storedPath string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, filepath.FromSlash(storedPath)))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}

// uniqueFilename keeps a sanitized form of the original base name and adds a
// uuid so repeated uploads of the same file never collide.
func uniqueFilename(originalName string) string {
	base := filepath.Base(originalName)
	ext := filepath.Ext(base)
	stem := sanitize(strings.TrimSuffix(base, ext))
	if stem == "" {
		stem = "upload"
	}
	return fmt.Sprintf("%s_%s%s", stem, uuid.New().String(), strings.ToLower(ext))
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func extToMimeType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
