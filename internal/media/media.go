package media

import (
	"errors"
	"fmt"
	"go-blog-app/internal/config"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	webpExt     = ".webp"
	webpQuality = 85
)

// ErrInvalidImage is returned when an upload cannot be decoded as a supported image.
var ErrInvalidImage = errors.New("invalid image")

// Store keeps post images on the local filesystem.
type Store struct {
	dir    string
	maxDim int
}

// New creates the media directory if needed and returns a Store rooted there.
func New(cfg config.MediaConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &Store{dir: cfg.Dir, maxDim: cfg.MaxDimension}, nil
}

// Dir is the directory images are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save decodes an uploaded image, shrinks it to fit the configured maximum
// dimension and writes it under a unique name, which is returned. WebP uploads
// stay WebP; every other format is whatever imaging supports for the extension.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext != webpExt {
		if _, err := imaging.FormatFromExtension(ext); err != nil {
			return "", fmt.Errorf("%w: unsupported extension %q", ErrInvalidImage, ext)
		}
	}

	img, err := decode(ext, r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if b := img.Bounds(); s.maxDim > 0 && (b.Dx() > s.maxDim || b.Dy() > s.maxDim) {
		img = imaging.Fit(img, s.maxDim, s.maxDim, imaging.Lanczos)
	}

	name := fmt.Sprintf("%s-%s%s", time.Now().UTC().Format("20060102"), uuid.NewString(), ext)
	if err := encode(img, ext, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return name, nil
}

func decode(ext string, r io.Reader) (image.Image, error) {
	if ext == webpExt {
		return webp.Decode(r)
	}
	return imaging.Decode(r, imaging.AutoOrientation(true))
}

func encode(img image.Image, ext, path string) error {
	if ext != webpExt {
		return imaging.Save(img, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := webp.Encode(f, img, &webp.Options{Quality: webpQuality}); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Delete removes a stored image. Missing files are not an error.
func (s *Store) Delete(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
