// Package assets loads the background layout images datasets are drawn
// against. Only the pixel dimensions are needed server-side; the image
// bytes themselves are served to frontends as static files.
package assets

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	// Register decoders for the layout image formats in use.
	_ "image/jpeg"
	_ "image/png"
)

// MissingAssetError reports an unavailable or undecodable background
// image. It is fatal for the dataset that references the image; other
// datasets are unaffected.
type MissingAssetError struct {
	Path string
	Err  error
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("background image %q unavailable: %v", e.Path, e.Err)
}

func (e *MissingAssetError) Unwrap() error {
	return e.Err
}

// Dimensions is an image extent in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ImageStore resolves background image dimensions from a directory of
// layout images. Dimensions never change for a deployed image, so they
// are read once and memoized.
type ImageStore struct {
	dir string

	mu   sync.Mutex
	dims map[string]Dimensions
}

// NewImageStore creates an ImageStore rooted at dir.
func NewImageStore(dir string) *ImageStore {
	return &ImageStore{
		dir:  dir,
		dims: make(map[string]Dimensions),
	}
}

// Dimensions returns the pixel extent of the named image. Returns a
// *MissingAssetError when the file cannot be opened or decoded.
func (s *ImageStore) Dimensions(name string) (Dimensions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.dims[name]; ok {
		return d, nil
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, &MissingAssetError{Path: path, Err: err}
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, &MissingAssetError{Path: path, Err: err}
	}

	d := Dimensions{Width: cfg.Width, Height: cfg.Height}
	s.dims[name] = d
	return d, nil
}
