package pipeline

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/floorscan/internal/floorplan"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

func overlayAnalysis() *floorplan.Analysis {
	return &floorplan.Analysis{
		Success: true,
		Floors: []floorplan.Floor{{
			Name: "Ground Floor",
			Rooms: []floorplan.Room{{
				Name: "Kitchen",
				Type: floorplan.TypeKitchen,
				Box:  utils.NewBoxFromSize(40, 40, 100, 80),
			}},
		}},
	}
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func TestTypeColor(t *testing.T) {
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	assert.Equal(t, gray, TypeColor("nonsense"))
	assert.Equal(t, gray, TypeColor(floorplan.TypeOther))
	assert.NotEqual(t, TypeColor(floorplan.TypeKitchen), TypeColor(floorplan.TypeBedroom))
}

func TestRenderOverlay(t *testing.T) {
	dst := RenderOverlay(testImage(200, 160), overlayAnalysis())
	require.NotNil(t, dst)

	// Box outline painted, far interior untouched.
	assert.False(t, isWhite(dst.At(41, 80)))
	assert.True(t, isWhite(dst.At(100, 110)))
}

func TestRenderOverlayNilInputs(t *testing.T) {
	assert.Nil(t, RenderOverlay(nil, overlayAnalysis()))

	dst := RenderOverlay(testImage(50, 50), nil)
	require.NotNil(t, dst)
	assert.True(t, isWhite(dst.At(25, 25)))
}

func TestRenderOverlayFailedAnalysis(t *testing.T) {
	dst := RenderOverlay(testImage(80, 60), &floorplan.Analysis{Success: false})
	require.NotNil(t, dst)
	assert.True(t, isWhite(dst.At(41, 41)))
}

func TestSaveOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.png")
	require.NoError(t, SaveOverlay(testImage(200, 160), overlayAnalysis(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
