// Package ocr abstracts the text-recognition engine behind a small
// interface so the pipeline can run against Tesseract in production and a
// scripted engine in tests. Engine instances are expensive to initialize
// and live for the whole process; see Pool for serializing access.
package ocr

import (
	"context"
	"image"

	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// Word is one recognized token with its confidence and pixel-space
// bounding box. Confidence is normalized to [0,1].
type Word struct {
	Text       string
	Confidence float64
	Box        utils.Box
}

// Engine performs text recognition on a single image. Implementations are
// not required to be safe for concurrent use; callers serialize through a
// Pool.
type Engine interface {
	// Recognize returns all words found in the image. An empty slice with
	// a nil error means recognition ran but found nothing.
	Recognize(ctx context.Context, img image.Image) ([]Word, error)

	// Name identifies the engine implementation for diagnostics.
	Name() string

	// Close releases engine resources.
	Close() error
}
