package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupportedImage(t *testing.T) {
	cases := []struct {
		path string
		ok   bool
	}{
		{"plan.jpg", true},
		{"plan.JPG", true},
		{"plan.jpeg", true},
		{"plan.png", true},
		{"plan.gif", true},
		{"plan.bmp", true},
		{"plan.tiff", false},
		{"plan.pdf", false},
		{"plan", false},
		{"plan.txt", false},
	}
	for _, c := range cases {
		if IsSupportedImage(c.path) != c.ok {
			t.Fatalf("IsSupportedImage(%s) expected %v", c.path, c.ok)
		}
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	data := encodePNG(t, 40, 20)

	img, meta, err := DecodeImage(data, "floor_plan.png")
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "floor_plan.png", meta.Filename)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, int64(len(data)), meta.SizeBytes)
	assert.Equal(t, 40, meta.Width)
	assert.Equal(t, 20, meta.Height)
	assert.InDelta(t, 2.0, meta.AspectRatio, 1e-9)
}

func TestDecodeImageRejectsUnsupportedExtension(t *testing.T) {
	data := encodePNG(t, 10, 10)
	_, _, err := DecodeImage(data, "plan.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestDecodeImageRejectsOversizedFile(t *testing.T) {
	big := make([]byte, MaxUploadBytes+1)
	_, _, err := DecodeImage(big, "plan.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestDecodeImageRejectsCorruptBytes(t *testing.T) {
	_, _, err := DecodeImage([]byte("this is not an image"), "plan.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageLoad)
	assert.NotErrorIs(t, err, ErrInvalidFileType)
}

func TestLoadImageFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 16, 16), 0o600))

	img, meta, err := LoadImage(path)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "plan.png", meta.Filename)
	assert.Equal(t, 16, meta.Width)
}

func TestLoadImageMissingFile(t *testing.T) {
	_, _, err := LoadImage(filepath.Join(t.TempDir(), "absent.png"))
	require.Error(t, err)
	var imgErr *ImageError
	require.ErrorAs(t, err, &imgErr)
	assert.Equal(t, "load", imgErr.Operation)
}

func TestNormalizeSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4000, 2000))

	scaled := NormalizeSize(img, 3200)
	b := scaled.Bounds()
	assert.Equal(t, 3200, b.Dx())
	assert.Equal(t, 1600, b.Dy())

	small := image.NewRGBA(image.Rect(0, 0, 100, 50))
	assert.Equal(t, small.Bounds(), NormalizeSize(small, 3200).Bounds())

	assert.Equal(t, small.Bounds(), NormalizeSize(small, 0).Bounds())
}
