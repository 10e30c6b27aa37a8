package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	apperrors "github.com/casapps/casrecipes/src/internal/errors"
)

// ImageStore decodes inline base64 image payloads and writes them under the
// media root. Recipes store only the returned relative reference.
type ImageStore struct {
	root     string
	maxBytes int64
}

// NewImageStore creates a new image store
func NewImageStore(cfg *viper.Viper) *ImageStore {
	root := cfg.GetString("media.root")
	if root == "" {
		root = "./media"
	}
	maxBytes := cfg.GetInt64("media.max_image_bytes")
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &ImageStore{root: root, maxBytes: maxBytes}
}

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Save decodes a base64 payload, optionally prefixed with a
// "data:image/...;base64," header, and writes it to disk. It returns the
// reference relative to the media root.
func (s *ImageStore) Save(payload string) (string, error) {
	if payload == "" {
		return "", apperrors.NewValidationError("image", "must not be empty")
	}

	ext := ".png"
	if strings.HasPrefix(payload, "data:") {
		header, rest, found := strings.Cut(payload, ",")
		if !found {
			return "", apperrors.NewValidationError("image", "malformed data URL")
		}
		mediaType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		if e, ok := extensions[mediaType]; ok {
			ext = e
		} else {
			return "", apperrors.NewValidationError("image",
				fmt.Sprintf("unsupported image type %q", mediaType))
		}
		payload = rest
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", apperrors.NewValidationError("image", "invalid base64 payload")
	}
	if int64(len(data)) > s.maxBytes {
		return "", apperrors.NewValidationError("image",
			fmt.Sprintf("image exceeds %d bytes", s.maxBytes))
	}

	dir := filepath.Join(s.root, "recipes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return filepath.ToSlash(filepath.Join("recipes", name)), nil
}

// Root returns the media root directory
func (s *ImageStore) Root() string {
	return s.root
}

// Remove deletes a stored image by its reference. Missing files are
// ignored.
func (s *ImageStore) Remove(ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(ref)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
