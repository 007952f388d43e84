package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
)

// MaxUploadBytes is the largest accepted floor-plan file size.
const MaxUploadBytes = 10 * 1024 * 1024

// SupportedImageExtensions lists accepted floor-plan file extensions.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp"}

// Validation failures surfaced before any processing runs.
var (
	ErrInvalidFileType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrImageLoad       = errors.New("image could not be decoded")
)

// ImageError wraps a failure with the operation that produced it.
type ImageError struct {
	Operation string
	Err       error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image %s: %v", e.Operation, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// IsSupportedImage reports whether the filename has a supported extension.
func IsSupportedImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Filename    string
	Format      string
	SizeBytes   int64
	Width       int
	Height      int
	AspectRatio float64
}

// DecodeImage validates and decodes raw floor-plan bytes. The filename is
// used for extension validation and metadata only; the bytes are the source
// of truth. Validation order: extension, size, decode.
func DecodeImage(data []byte, filename string) (image.Image, ImageMetadata, error) {
	if !IsSupportedImage(filename) {
		err := &ImageError{Operation: "validate", Err: fmt.Errorf("%w: %s", ErrInvalidFileType, filepath.Ext(filename))}
		return nil, ImageMetadata{}, err
	}
	if int64(len(data)) > MaxUploadBytes {
		err := &ImageError{Operation: "validate", Err: fmt.Errorf("%w: %d bytes > %d", ErrFileTooLarge, len(data), MaxUploadBytes)}
		return nil, ImageMetadata{}, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		err = &ImageError{Operation: "decode", Err: fmt.Errorf("%w: %v", ErrImageLoad, err)}
		return nil, ImageMetadata{}, err
	}

	b := img.Bounds()
	meta := ImageMetadata{
		Filename:    filepath.Base(filename),
		Format:      format,
		SizeBytes:   int64(len(data)),
		Width:       b.Dx(),
		Height:      b.Dy(),
		AspectRatio: float64(b.Dx()) / float64(b.Dy()),
	}
	return img, meta, nil
}

// LoadImage opens, validates and decodes a floor-plan file from disk.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	if path == "" {
		return nil, ImageMetadata{}, &ImageError{Operation: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		err := &ImageError{Operation: "validate", Err: fmt.Errorf("%w: %s", ErrInvalidFileType, filepath.Ext(path))}
		return nil, ImageMetadata{}, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, ImageMetadata{}, &ImageError{Operation: "load", Err: err}
	}
	if fi.Size() > MaxUploadBytes {
		err := &ImageError{Operation: "validate", Err: fmt.Errorf("%w: %d bytes > %d", ErrFileTooLarge, fi.Size(), MaxUploadBytes)}
		return nil, ImageMetadata{}, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: reading a user-provided image path is expected
	if err != nil {
		return nil, ImageMetadata{}, &ImageError{Operation: "load", Err: err}
	}
	return DecodeImage(data, path)
}

// NormalizeSize scales an image down so its longest side does not exceed
// maxDim, preserving aspect ratio. Images within the limit are returned
// unchanged. maxDim <= 0 disables scaling.
func NormalizeSize(img image.Image, maxDim int) image.Image {
	if img == nil || maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	if w >= h {
		return imaging.Resize(img, maxDim, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDim, imaging.Lanczos)
}
