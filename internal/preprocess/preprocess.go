// Package preprocess generates the deterministic image variants fed to text
// recognition. Floor-plan scans fail recognition in different ways (faint
// pencil text, blueprint line art, speckle noise); each variant targets one
// failure mode so the merged multi-method output covers all of them.
package preprocess

import (
	"fmt"
	"image"
	"image/color"

	"github.com/MeKo-Tech/floorscan/internal/mempool"
)

// Method names in their fixed pipeline order.
const (
	MethodOriginal   = "original"
	MethodContrast   = "contrast"
	MethodThreshold  = "threshold"
	MethodMorphology = "morphology"
)

// Variant is one preprocessed rendition of the source image, tagged with
// the method that produced it for provenance.
type Variant struct {
	Method string
	Image  image.Image
}

// Config holds tuning parameters for variant generation.
type Config struct {
	// CLAHE contrast enhancement.
	ClipLimit float64 `mapstructure:"clip_limit"  yaml:"clip_limit"  json:"clip_limit"`
	TileGrid  int     `mapstructure:"tile_grid"   yaml:"tile_grid"   json:"tile_grid"`

	// Adaptive Gaussian threshold.
	BlockSize  int     `mapstructure:"block_size"  yaml:"block_size"  json:"block_size"`
	ThresholdC float64 `mapstructure:"threshold_c" yaml:"threshold_c" json:"threshold_c"`

	// Morphological clean.
	MorphRadius float64 `mapstructure:"morph_radius" yaml:"morph_radius" json:"morph_radius"`

	// Methods lists enabled variants in generation order. Empty means all.
	Methods []string `mapstructure:"methods" yaml:"methods" json:"methods"`
}

// DefaultConfig returns variant generation defaults.
func DefaultConfig() Config {
	return Config{
		ClipLimit:   2.0,
		TileGrid:    8,
		BlockSize:   11,
		ThresholdC:  2.0,
		MorphRadius: 1.0,
		Methods:     nil,
	}
}

// Generator produces preprocessing variants. It is stateless and safe for
// concurrent use.
type Generator struct {
	cfg Config
}

// NewGenerator creates a Generator with the given configuration.
func NewGenerator(cfg Config) *Generator {
	if cfg.TileGrid <= 0 {
		cfg.TileGrid = DefaultConfig().TileGrid
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = DefaultConfig().BlockSize
	}
	if cfg.ClipLimit <= 0 {
		cfg.ClipLimit = DefaultConfig().ClipLimit
	}
	if cfg.MorphRadius <= 0 {
		cfg.MorphRadius = DefaultConfig().MorphRadius
	}
	return &Generator{cfg: cfg}
}

// Methods returns the enabled method names in generation order.
func (g *Generator) Methods() []string {
	all := []string{MethodOriginal, MethodContrast, MethodThreshold, MethodMorphology}
	if len(g.cfg.Methods) == 0 {
		return all
	}
	enabled := make(map[string]bool, len(g.cfg.Methods))
	for _, m := range g.cfg.Methods {
		enabled[m] = true
	}
	out := make([]string, 0, len(all))
	for _, m := range all {
		if enabled[m] {
			out = append(out, m)
		}
	}
	return out
}

// Apply produces a single variant. Each method is a pure function of the
// source image; results for the same input are identical across calls.
func (g *Generator) Apply(method string, img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("apply %s: nil image", method)
	}
	switch method {
	case MethodOriginal:
		return ToGray(img), nil
	case MethodContrast:
		return g.applyCLAHE(img), nil
	case MethodThreshold:
		return g.applyAdaptiveThreshold(img), nil
	case MethodMorphology:
		return g.applyMorphClean(img), nil
	default:
		return nil, fmt.Errorf("apply: unknown method %q", method)
	}
}

// Variants generates all enabled variants in order.
func (g *Generator) Variants(img image.Image) ([]Variant, error) {
	methods := g.Methods()
	out := make([]Variant, 0, len(methods))
	for _, m := range methods {
		v, err := g.Apply(m, img)
		if err != nil {
			return nil, err
		}
		out = append(out, Variant{Method: m, Image: v})
	}
	return out, nil
}

// ToGray converts any image to 8-bit grayscale using the Rec. 601 luma
// weights.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return out
}

// grayPlane copies a grayscale image into a pooled float32 plane with
// values in [0,255]. The caller must release the plane via releasePlane.
func grayPlane(img *image.Gray) ([]float32, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := mempool.GetFloat32(w * h)
	for y := range h {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for x := range w {
			plane[y*w+x] = float32(row[x])
		}
	}
	return plane, w, h
}

func releasePlane(plane []float32) {
	mempool.PutFloat32(plane)
}

// planeToGray renders a float32 plane back into an 8-bit grayscale image,
// clamping values to [0,255].
func planeToGray(plane []float32, w, h int) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := plane[y*w+x]
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			out.Pix[y*out.Stride+x] = uint8(v + 0.5)
		}
	}
	return out
}
