// Package images validates and stores uploaded recipe images.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// UploadDir is where recipe images live, relative to the media root
const UploadDir = "uploads/recipe"

// MaxUploadSize caps a single image upload
const MaxUploadSize = 10 << 20

// ErrNotImage is returned when the payload does not decode as a supported image
var ErrNotImage = errors.New("upload a valid image; the file you uploaded was either not an image or a corrupted image")

// ErrTooLarge is returned when the payload exceeds MaxUploadSize
var ErrTooLarge = fmt.Errorf("image exceeds %d bytes", MaxUploadSize)

// Storage writes images under a media root directory
type Storage struct {
	root string
}

// NewStorage creates the upload directory under root if needed
func NewStorage(root string) (*Storage, error) {
	if root == "" {
		return nil, fmt.Errorf("media root cannot be empty")
	}
	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(UploadDir)), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Storage{root: root}, nil
}

// Root is the directory served under the media URL
func (s *Storage) Root() string {
	return s.root
}

// formatExtensions lists the file extensions accepted for each decoded format;
// the first is used when the client's name does not match
var formatExtensions = map[string][]string{
	"jpeg": {"jpg", "jpeg"},
	"png":  {"png"},
	"gif":  {"gif"},
	"webp": {"webp"},
}

// RecipeImagePath builds uploads/recipe/<uuid>.<ext> for a decoded image.
// The client's extension is kept only when it names the detected format.
func RecipeImagePath(filename, format string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	allowed := formatExtensions[format]
	if !slices.Contains(allowed, ext) {
		ext = format
		if len(allowed) > 0 {
			ext = allowed[0]
		}
	}
	return path.Join(UploadDir, uuid.New().String()+"."+ext)
}

// Save checks that r holds an image and writes it to a new unique path.
// The returned path is relative to the media root, slash separated.
func (s *Storage) Save(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return "", ErrTooLarge
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrNotImage
	}

	rel := RecipeImagePath(filename, format)
	if err := os.WriteFile(s.Path(rel), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return rel, nil
}

// Remove deletes a stored image; a missing file is not an error
func (s *Storage) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	if err := os.Remove(s.Path(rel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Path returns the filesystem path for a media-relative path
func (s *Storage) Path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}
