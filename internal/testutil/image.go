package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PlanLabel is one piece of text on a synthetic floor plan, placed at a
// fixed pixel position so tests know where every word lands.
type PlanLabel struct {
	Text string
	X    int
	Y    int
}

// PlanRect is a wall rectangle drawn as a one-pixel outline.
type PlanRect struct {
	X, Y, W, H int
}

// PlanConfig describes a synthetic floor-plan image.
type PlanConfig struct {
	Width      int
	Height     int
	Background color.Color
	Foreground color.Color
	Labels     []PlanLabel
	Walls      []PlanRect
}

// TwoRoomPlan returns a plan with a floor heading, two labeled rooms
// with measurements, and their wall outlines. The text content matches
// the scenario used across the pipeline tests.
func TwoRoomPlan() PlanConfig {
	return PlanConfig{
		Width:      800,
		Height:     600,
		Background: color.White,
		Foreground: color.Black,
		Labels: []PlanLabel{
			{Text: "GROUND FLOOR", X: 320, Y: 40},
			{Text: "LIVING", X: 150, Y: 250},
			{Text: "8.6 x 7.4m", X: 140, Y: 280},
			{Text: "KITCHEN", X: 550, Y: 250},
			{Text: "3.2 x 3.0m", X: 545, Y: 280},
		},
		Walls: []PlanRect{
			{X: 40, Y: 80, W: 360, H: 440},
			{X: 440, Y: 80, W: 320, H: 440},
		},
	}
}

// DrawPlan renders the config into an RGBA image with basicfont text.
func DrawPlan(cfg PlanConfig) *image.RGBA {
	if cfg.Background == nil {
		cfg.Background = color.White
	}
	if cfg.Foreground == nil {
		cfg.Foreground = color.Black
	}

	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{cfg.Background}, image.Point{}, draw.Src)

	for _, wall := range cfg.Walls {
		drawRectOutline(img, wall, cfg.Foreground)
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{cfg.Foreground},
		Face: basicfont.Face7x13,
	}
	for _, label := range cfg.Labels {
		drawer.Dot = fixed.P(label.X, label.Y)
		drawer.DrawString(label.Text)
	}
	return img
}

func drawRectOutline(img *image.RGBA, r PlanRect, col color.Color) {
	for x := r.X; x < r.X+r.W; x++ {
		img.Set(x, r.Y, col)
		img.Set(x, r.Y+r.H-1, col)
	}
	for y := r.Y; y < r.Y+r.H; y++ {
		img.Set(r.X, y, col)
		img.Set(r.X+r.W-1, y, col)
	}
}

// WritePlanPNG renders the plan and writes it to path, creating parent
// directories as needed.
func WritePlanPNG(t *testing.T, path string, cfg PlanConfig) {
	t.Helper()

	require.NoError(t, EnsureDir(filepath.Dir(path)))
	f, err := os.Create(path) //nolint:gosec // test file with controlled path
	require.NoError(t, err, "failed to create %s", path)
	defer func() { require.NoError(t, f.Close()) }()

	require.NoError(t, png.Encode(f, DrawPlan(cfg)), "failed to encode plan PNG")
}

// WriteBlankPNG writes an all-white image with no text, for the
// no-text-detected paths.
func WriteBlankPNG(t *testing.T, path string, width, height int) {
	t.Helper()

	WritePlanPNG(t, path, PlanConfig{Width: width, Height: height})
}
