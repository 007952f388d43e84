package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/floorscan/internal/floorplan"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

func sampleAnalyses() []fileAnalysis {
	rooms := []floorplan.Room{
		{
			Name:       "Living Room",
			Type:       floorplan.TypeLivingRoom,
			AreaSqm:    63.64,
			Dimensions: "8.6m x 7.4m",
			Inventory: floorplan.Inventory{
				RegularItems: []string{"sofa", "coffee table"},
				Boxes:        []string{"box-books-1", "box-misc-1"},
				HeavyItems:   []string{"piano"},
			},
		},
		{
			Name:       "Garage",
			Type:       floorplan.TypeGarage,
			AreaSqm:    36.0,
			Dimensions: "6.0m x 6.0m",
			IsStorage:  true,
		},
	}
	return []fileAnalysis{{
		File: "plan.png",
		Analysis: &floorplan.Analysis{
			Success: true,
			PropertyInfo: &floorplan.PropertyInfo{
				TotalRooms:   2,
				TotalAreaSqm: 99.64,
				NumFloors:    1,
			},
			Floors: []floorplan.Floor{{
				Name:         "Ground Floor",
				RoomCount:    2,
				TotalAreaSqm: 99.64,
				Rooms:        rooms,
			}},
			StorageAnalysis: &floorplan.StorageAnalysis{
				TotalStorageAreaSqm: 36.0,
				NumStorageSpaces:    1,
				SuitableForHeavy:    true,
				SuitableForBoxes:    true,
			},
			InventorySummary: &floorplan.InventorySummary{
				TotalRooms:          2,
				TotalBoxesEstimated: 2,
				TotalHeavyEstimated: 1,
			},
		},
	}}
}

func TestRenderText(t *testing.T) {
	out := renderText(sampleAnalyses())

	assert.Contains(t, out, "plan.png:")
	assert.Contains(t, out, "2 rooms on 1 floor(s), 99.6 sqm total")
	assert.Contains(t, out, "Ground Floor")
	assert.Contains(t, out, "Living Room")
	assert.Contains(t, out, "[storage]")
	assert.Contains(t, out, "~2 boxes, 1 heavy item(s)")
}

func TestRenderTextFailure(t *testing.T) {
	out := renderText([]fileAnalysis{{
		File:     "empty.png",
		Analysis: &floorplan.Analysis{Success: false, Error: "no text detected in floor plan"},
	}})

	assert.Contains(t, out, "empty.png:")
	assert.Contains(t, out, "no text detected")
}

func TestRenderCSV(t *testing.T) {
	out, err := renderCSV(sampleAnalyses())
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "file,floor,room,type,area_sqm,dimensions,is_storage,boxes,heavy_items", lines[0])
	assert.Contains(t, lines[1], "plan.png,Ground Floor,Living Room,living_room,63.64")
	assert.Contains(t, lines[2], "Garage,garage,36.00")
	assert.Contains(t, lines[2], "true")
}

func TestRenderJSONSingleFile(t *testing.T) {
	out, err := renderJSON(sampleAnalyses())
	require.NoError(t, err)

	var fa fileAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &fa))
	assert.Equal(t, "plan.png", fa.File)
	require.NotNil(t, fa.Analysis)
	assert.True(t, fa.Analysis.Success)
	require.Len(t, fa.Analysis.Floors, 1)
	assert.Equal(t, "Ground Floor", fa.Analysis.Floors[0].Name)
}

func TestRenderJSONMultipleFiles(t *testing.T) {
	analyses := append(sampleAnalyses(), fileAnalysis{
		File:     "other.png",
		Analysis: &floorplan.Analysis{Success: false, Error: "no text detected in floor plan"},
	})
	out, err := renderJSON(analyses)
	require.NoError(t, err)

	var list []fileAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "other.png", list[1].File)
}

func TestAnalyzeHelpMatchesSupportedFormats(t *testing.T) {
	assert.Contains(t, analyzeCmd.Long, "JPEG, PNG, GIF, BMP")

	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".bmp"} {
		assert.True(t, utils.IsSupportedImage("plan"+ext), ext)
	}
	for _, ext := range []string{".tiff", ".webp"} {
		assert.False(t, utils.IsSupportedImage("plan"+ext), ext)
	}
}

func TestAnalyzeCommandNoArgs(t *testing.T) {
	_, err := execute(t, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestAnalyzeCommandInvalidFormat(t *testing.T) {
	_, err := execute(t, "analyze", "--format", "xml", "plan.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestAnalyzeCommandUnsupportedFile(t *testing.T) {
	_, err := execute(t, "analyze", "--format", "text", "notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image format")
}

func TestBatchCommandNoArgs(t *testing.T) {
	_, err := execute(t, "batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input paths")
}

func TestBatchCommandXLSXNeedsOutput(t *testing.T) {
	_, err := execute(t, "batch", "--format", "xlsx", "--output", "", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output file")
}
