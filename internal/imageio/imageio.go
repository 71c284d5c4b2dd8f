// Package imageio reads the raster files placed on the canvas as image graphics.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/inamate/annotate/internal/logging"
)

var (
	// ErrFileNotFound is returned when an image path does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrNotImage is returned when the bytes are not a supported raster format.
	ErrNotImage = errors.New("not a supported image")
)

// CheckExists returns ErrFileNotFound when path is missing.
func CheckExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrFileNotFound)
		}
		return err
	}
	return nil
}

// Sniff returns the MIME type and extension of an image payload.
func Sniff(data []byte) (mime, ext string, err error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", "", err
	}
	if !filetype.IsImage(data) {
		return "", "", ErrNotImage
	}
	return kind.MIME.Value, kind.Extension, nil
}

// Decode decodes an image payload after checking its magic bytes.
func Decode(data []byte) (image.Image, error) {
	if _, _, err := Sniff(data); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Load reads and decodes the file at path.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrFileNotFound)
		}
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// PNGBytes encodes img as PNG in memory.
func PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Poster schedules fn on the goroutine that owns the canvas.
type Poster func(fn func())

// Loader decodes files off the owning goroutine and posts the result back.
type Loader struct {
	post Poster
}

// NewLoader returns a loader that delivers results through post.
func NewLoader(post Poster) *Loader {
	return &Loader{post: post}
}

// Load decodes path on a new goroutine; done runs via the poster.
func (l *Loader) Load(path string, done func(image.Image, error)) {
	go func() {
		img, err := Load(path)
		if err != nil {
			logging.Logger().Warn("image decode failed", "path", path, "error", err)
		}
		l.post(func() { done(img, err) })
	}()
}
