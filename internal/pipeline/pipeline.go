// Package pipeline wires image validation, preprocessing variants, text
// recognition, and the floor-plan analysis stages into one reusable
// Pipeline. A Pipeline is long-lived and safe for concurrent requests;
// everything derived from a single image lives and dies with that call.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/floorscan/internal/extract"
	"github.com/MeKo-Tech/floorscan/internal/floorplan"
	"github.com/MeKo-Tech/floorscan/internal/ocr"
	"github.com/MeKo-Tech/floorscan/internal/preprocess"
)

// DefaultSqmPerPixel is the nominal pixel-to-area calibration used for
// rooms without a parsed measurement: a plan whose longest side spans
// about 15m of wall at 1000px. It is a documented assumption, not a
// measurement, and only ever fills areas already marked Estimated.
const DefaultSqmPerPixel = 0.005

// DefaultMaxImageDim caps the longest image side before preprocessing.
const DefaultMaxImageDim = 3200

// CalibrationConfig relates pixel areas to physical areas.
type CalibrationConfig struct {
	SqmPerPixel float64 `mapstructure:"sqm_per_pixel" yaml:"sqm_per_pixel" json:"sqm_per_pixel"`
}

// Config holds configuration for the pipeline and its components.
type Config struct {
	MaxImageDim int `mapstructure:"max_image_dim" yaml:"max_image_dim" json:"max_image_dim"`
	PoolSize    int `mapstructure:"pool_size"     yaml:"pool_size"     json:"pool_size"`

	Preprocess  preprocess.Config             `mapstructure:"preprocess"  yaml:"preprocess"  json:"preprocess"`
	OCR         ocr.TesseractConfig           `mapstructure:"ocr"         yaml:"ocr"         json:"ocr"`
	Extract     extract.Config                `mapstructure:"extract"     yaml:"extract"     json:"extract"`
	Rooms       floorplan.RoomExtractorConfig `mapstructure:"rooms"       yaml:"rooms"       json:"rooms"`
	Calibration CalibrationConfig             `mapstructure:"calibration" yaml:"calibration" json:"calibration"`
}

// DefaultConfig returns a pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		MaxImageDim: DefaultMaxImageDim,
		PoolSize:    ocr.DefaultPoolSize(),
		Preprocess:  preprocess.DefaultConfig(),
		OCR:         ocr.DefaultTesseractConfig(),
		Extract:     extract.DefaultConfig(),
		Rooms:       floorplan.DefaultRoomExtractorConfig(),
		Calibration: CalibrationConfig{SqmPerPixel: DefaultSqmPerPixel},
	}
}

// Pipeline runs the full analysis. Construct one per process with
// NewBuilder and reuse it; engine initialization is the expensive part.
type Pipeline struct {
	cfg        Config
	pool       *ocr.Pool
	ownsPool   bool
	extractor  *extract.Extractor
	rooms      *floorplan.RoomExtractor
	classifier *floorplan.Classifier
	inventory  *floorplan.InventoryGenerator
	logger     *slog.Logger
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg     Config
	logger  *slog.Logger
	engine  ocr.Engine
	pool    *ocr.Pool
	roomsCf *floorplan.RoomsConfig
}

// NewBuilder creates a pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithLogger sets the logger for pipeline and component logging.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithEngine injects a recognition engine directly, bypassing Tesseract
// construction. The pipeline takes ownership and closes it.
func (b *Builder) WithEngine(engine ocr.Engine) *Builder {
	b.engine = engine
	return b
}

// WithEnginePool shares an externally owned engine pool. The pipeline
// does not close it.
func (b *Builder) WithEnginePool(pool *ocr.Pool) *Builder {
	b.pool = pool
	return b
}

// WithTessdataPrefix points the Tesseract engines at a tessdata
// directory.
func (b *Builder) WithTessdataPrefix(dir string) *Builder {
	if dir != "" {
		b.cfg.OCR.TessdataPrefix = dir
	}
	return b
}

// WithLanguage sets the recognition language.
func (b *Builder) WithLanguage(lang string) *Builder {
	if lang != "" {
		b.cfg.OCR.Language = lang
	}
	return b
}

// WithWorkers bounds the per-request variant workers.
func (b *Builder) WithWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.Extract.MaxWorkers = n
	}
	return b
}

// WithPoolSize sets how many recognition engines to construct.
func (b *Builder) WithPoolSize(n int) *Builder {
	if n > 0 {
		b.cfg.PoolSize = n
	}
	return b
}

// WithMaxImageDim caps the longest image side.
func (b *Builder) WithMaxImageDim(n int) *Builder {
	if n > 0 {
		b.cfg.MaxImageDim = n
	}
	return b
}

// WithMinConfidence drops recognized words below the given confidence.
func (b *Builder) WithMinConfidence(v float64) *Builder {
	if v > 0 {
		b.cfg.OCR.MinWordConfidence = v
	}
	return b
}

// WithCalibration sets the pixel-to-area calibration factor.
func (b *Builder) WithCalibration(sqmPerPixel float64) *Builder {
	if sqmPerPixel > 0 {
		b.cfg.Calibration.SqmPerPixel = sqmPerPixel
	}
	return b
}

// WithRoomsConfig applies taxonomy and inventory template overrides.
func (b *Builder) WithRoomsConfig(rc *floorplan.RoomsConfig) *Builder {
	b.roomsCf = rc
	return b
}

// Build validates the configuration and constructs the pipeline. When no
// engine or pool was injected it initializes a Tesseract engine pool,
// which requires a usable tessdata installation.
func (b *Builder) Build() (*Pipeline, error) {
	classifier, err := b.roomsCf.Classifier()
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	inventory, err := b.roomsCf.InventoryGenerator()
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool := b.pool
	ownsPool := false
	switch {
	case pool != nil:
	case b.engine != nil:
		pool, err = ocr.NewStaticPool(b.engine)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		ownsPool = true
	default:
		pool, err = ocr.NewPool(b.cfg.PoolSize, func() (ocr.Engine, error) {
			return ocr.NewTesseractEngine(b.cfg.OCR)
		})
		if err != nil {
			return nil, fmt.Errorf("pipeline: init recognition engines: %w", err)
		}
		ownsPool = true
	}

	if b.cfg.MaxImageDim <= 0 {
		b.cfg.MaxImageDim = DefaultMaxImageDim
	}
	if b.cfg.Calibration.SqmPerPixel <= 0 {
		b.cfg.Calibration.SqmPerPixel = DefaultSqmPerPixel
	}

	gen := preprocess.NewGenerator(b.cfg.Preprocess)
	return &Pipeline{
		cfg:        b.cfg,
		pool:       pool,
		ownsPool:   ownsPool,
		extractor:  extract.NewExtractor(gen, pool, b.cfg.Extract, logger.With("component", "extract")),
		rooms:      floorplan.NewRoomExtractor(b.cfg.Rooms),
		classifier: classifier,
		inventory:  inventory,
		logger:     logger.With("component", "pipeline"),
	}, nil
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// EngineName reports the recognition backend, empty when none is
// available.
func (p *Pipeline) EngineName() string {
	if p.pool == nil {
		return ""
	}
	return p.pool.Name()
}

// EngineReady reports whether a recognition engine pool is available.
func (p *Pipeline) EngineReady() bool {
	return p.pool != nil && p.pool.Size() > 0
}

// Close releases the engine pool when the pipeline owns it.
func (p *Pipeline) Close() error {
	if p == nil || !p.ownsPool || p.pool == nil {
		return nil
	}
	return p.pool.Close()
}
