package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// TesseractConfig holds Tesseract engine settings.
type TesseractConfig struct {
	// TessdataPrefix points at the traineddata directory. Empty uses the
	// system default.
	TessdataPrefix string `mapstructure:"tessdata_prefix" yaml:"tessdata_prefix" json:"tessdata_prefix"`

	// Language is the Tesseract language code, "+"-separated for multiple.
	Language string `mapstructure:"language" yaml:"language" json:"language"`

	// DPI is reported to Tesseract for images without density metadata.
	// Floor-plan labels are small; a high nominal DPI improves detection.
	DPI int `mapstructure:"dpi" yaml:"dpi" json:"dpi"`

	// MinWordConfidence drops words below this confidence at the engine
	// boundary. 0 keeps everything (thresholding happens at merge time).
	MinWordConfidence float64 `mapstructure:"min_word_confidence" yaml:"min_word_confidence" json:"min_word_confidence"`
}

// DefaultTesseractConfig returns production defaults.
func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{
		Language: "eng",
		DPI:      300,
	}
}

// TesseractEngine recognizes text with a long-lived gosseract client.
// A client is not safe for concurrent calls; the engine serializes
// Recognize with a mutex. Use a Pool for parallel recognition.
type TesseractEngine struct {
	mu     sync.Mutex
	client *gosseract.Client
	cfg    TesseractConfig
	closed bool
}

// NewTesseractEngine initializes a Tesseract client with sparse-text page
// segmentation, which suits scattered floor-plan labels better than the
// default block layout analysis.
func NewTesseractEngine(cfg TesseractConfig) (*TesseractEngine, error) {
	if cfg.Language == "" {
		cfg.Language = DefaultTesseractConfig().Language
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultTesseractConfig().DPI
	}

	client := gosseract.NewClient()
	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("tesseract: set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(cfg.Language); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract: set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract: set page segmentation mode: %w", err)
	}
	if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprintf("%d", cfg.DPI)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract: set dpi: %w", err)
	}

	return &TesseractEngine{client: client, cfg: cfg}, nil
}

// Name implements Engine.
func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize implements Engine. The image is re-encoded as PNG for the
// client; word boxes come from RIL_WORD iteration with confidences
// normalized from Tesseract's 0-100 scale.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) ([]Word, error) {
	if img == nil {
		return nil, fmt.Errorf("tesseract: nil image")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("tesseract: encode image: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, fmt.Errorf("tesseract: engine closed")
	}

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("tesseract: set image: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract: recognize: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		conf := b.Confidence / 100.0
		if conf < 0 {
			conf = 0
		}
		if conf > 1 {
			conf = 1
		}
		if e.cfg.MinWordConfidence > 0 && conf < e.cfg.MinWordConfidence {
			continue
		}
		words = append(words, Word{
			Text:       b.Word,
			Confidence: conf,
			Box: utils.NewBox(
				float64(b.Box.Min.X), float64(b.Box.Min.Y),
				float64(b.Box.Max.X), float64(b.Box.Max.Y),
			),
		})
	}
	return words, nil
}

// Close implements Engine.
func (e *TesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.client.Close()
}
