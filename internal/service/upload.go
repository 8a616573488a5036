package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/msomdec/inkwell/internal/domain"
)

const (
	MaxUploadSize = 5 << 20 // 5MB

	uploadPrefix = "uploads/"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadService stores uploaded images and serves them back.
type UploadService struct {
	files domain.FileStore
}

// NewUploadService creates a new UploadService.
func NewUploadService(files domain.FileStore) *UploadService {
	return &UploadService{files: files}
}

// Upload stores an image and returns the public URL path it is served from.
// The content type is sniffed from the bytes; the client's claim is ignored.
func (s *UploadService) Upload(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: no file uploaded", domain.ErrInvalidInput)
	}
	if len(data) > MaxUploadSize {
		return "", fmt.Errorf("%w: file exceeds 5MB limit", domain.ErrInvalidInput)
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return "", fmt.Errorf("%w: only JPEG, PNG, GIF and WebP images are accepted", domain.ErrInvalidInput)
	}

	id := uuid.NewString()
	if err := s.files.Save(ctx, uploadPrefix+id, contentType, data); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}
	return "/" + uploadPrefix + id, nil
}

// Get returns the bytes and content type of the upload with the given id.
func (s *UploadService) Get(ctx context.Context, id string) ([]byte, string, error) {
	if _, err := uuid.Parse(id); err != nil || strings.Contains(id, "/") {
		return nil, "", domain.ErrNotFound
	}
	return s.files.Get(ctx, uploadPrefix+id)
}
