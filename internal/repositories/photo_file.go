package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
)

// PhotoFileRepository stores uploaded profile photos in a directory.
// Stored names are derived from a random UUID; only the original extension
// is kept from the client supplied name.
type PhotoFileRepository struct {
	dir      string
	maxBytes int64
}

// NewPhotoFileRepository creates the upload directory if needed.
func NewPhotoFileRepository(dir string, maxBytes int64) (*PhotoFileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &PhotoFileRepository{dir: dir, maxBytes: maxBytes}, nil
}

// Save copies src into the upload directory and returns its descriptor.
func (r *PhotoFileRepository) Save(ctx context.Context, originalName, mimeType string, src io.Reader) (*models.Photo, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	name := "profile-" + uuid.NewString() + ext
	path := filepath.Join(r.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	// read one byte past the limit to detect oversized uploads
	n, err := io.Copy(dst, io.LimitReader(src, r.maxBytes+1))
	closeErr := dst.Close()
	if err == nil && n > r.maxBytes {
		err = models.ErrPhotoTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		logger.Log.Errorw("failed to store photo", "path", path, "error", err)
		return nil, err
	}

	logger.Log.Infow("photo stored", "path", path, "size", n)

	return &models.Photo{
		Filename:     name,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         n,
		Path:         path,
	}, nil
}

// Delete removes a stored photo. Missing files are ignored.
func (r *PhotoFileRepository) Delete(ctx context.Context, photo *models.Photo) error {
	if photo == nil {
		return nil
	}
	err := os.Remove(filepath.Join(r.dir, filepath.Base(photo.Filename)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
