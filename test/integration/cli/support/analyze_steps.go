package support

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/floorscan/internal/floorplan"
	"github.com/MeKo-Tech/floorscan/internal/ocr"
	"github.com/MeKo-Tech/floorscan/internal/testutil"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// RegisterAnalyzeSteps wires the single-image analysis steps.
func (testCtx *TestContext) RegisterAnalyzeSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a floor plan image with a ground floor, a living room, and a kitchen$`, testCtx.aTwoRoomFloorPlan)
	sc.Step(`^a blank floor plan image$`, testCtx.aBlankFloorPlan)
	sc.Step(`^a file named "([^"]*)" that is not an image$`, testCtx.aNonImageFile)
	sc.Step(`^a corrupt image file$`, testCtx.aCorruptImageFile)
	sc.Step(`^a rooms configuration mapping "studio" to the office type$`, testCtx.aStudioRoomsConfig)
	sc.Step(`^a floor plan image labeled "STUDIO"$`, testCtx.aStudioFloorPlan)

	sc.Step(`^I analyze the image$`, testCtx.iAnalyzeTheImage)

	sc.Step(`^the analysis succeeds$`, testCtx.theAnalysisSucceeds)
	sc.Step(`^the analysis fails with "([^"]*)"$`, testCtx.theAnalysisFailsWith)
	sc.Step(`^(\d+) rooms are detected on (\d+) floor\(s\)$`, testCtx.roomsAreDetected)
	sc.Step(`^room "([^"]*)" has type "([^"]*)"$`, testCtx.roomHasType)
	sc.Step(`^room "([^"]*)" has area (\d+\.?\d*) sqm$`, testCtx.roomHasArea)
	sc.Step(`^the failure payload reports zero text elements$`, testCtx.failurePayloadReportsZeroElements)
}

func (testCtx *TestContext) writePlan(name string, cfg testutil.PlanConfig) error {
	path := filepath.Join(testCtx.TempDir, name)
	f, err := os.Create(path) //nolint:gosec // scenario temp file
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, testutil.DrawPlan(cfg)); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	testCtx.ImagePath = path
	return nil
}

func (testCtx *TestContext) aTwoRoomFloorPlan() error {
	testCtx.Words = TwoRoomWords()
	testCtx.ResetPipeline()
	return testCtx.writePlan("two_room.png", testutil.TwoRoomPlan())
}

func (testCtx *TestContext) aBlankFloorPlan() error {
	testCtx.Words = nil
	testCtx.ResetPipeline()
	return testCtx.writePlan("blank.png", testutil.PlanConfig{Width: 640, Height: 480})
}

func (testCtx *TestContext) aNonImageFile(name string) error {
	path := filepath.Join(testCtx.TempDir, name)
	if err := os.WriteFile(path, []byte("just some notes\n"), 0o600); err != nil {
		return err
	}
	testCtx.ImagePath = path
	return nil
}

func (testCtx *TestContext) aCorruptImageFile() error {
	path := filepath.Join(testCtx.TempDir, "corrupt.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o600); err != nil {
		return err
	}
	testCtx.ImagePath = path
	return nil
}

func (testCtx *TestContext) aStudioRoomsConfig() error {
	content := `taxonomy:
  - type: office
    keywords: ["studio", "study", "office"]
  - type: living_room
    keywords: ["living", "lounge"]
inventory_templates:
  office:
    regular_items: ["desk"]
    boxes: ["box-documents-1"]
    heavy_items: []
`
	path := filepath.Join(testCtx.TempDir, "rooms.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return err
	}
	rc, err := floorplan.LoadRoomsConfig(path)
	if err != nil {
		return err
	}
	testCtx.RoomsConfig = rc
	testCtx.ResetPipeline()
	return nil
}

func (testCtx *TestContext) aStudioFloorPlan() error {
	testCtx.Words = []ocr.Word{
		{Text: "GROUND FLOOR", Confidence: 0.95, Box: utils.NewBoxFromSize(50, 30, 200, 24)},
		{Text: "STUDIO", Confidence: 0.9, Box: utils.NewBoxFromSize(100, 150, 90, 22)},
	}
	testCtx.ResetPipeline()
	return testCtx.writePlan("studio.png", testutil.PlanConfig{
		Width:  640,
		Height: 480,
		Labels: []testutil.PlanLabel{
			{Text: "GROUND FLOOR", X: 50, Y: 40},
			{Text: "STUDIO", X: 100, Y: 160},
		},
	})
}

func (testCtx *TestContext) iAnalyzeTheImage() error {
	p, err := testCtx.Pipeline()
	if err != nil {
		return err
	}
	testCtx.LastResult, testCtx.LastErr = p.AnalyzeFile(context.Background(), testCtx.ImagePath)
	return nil
}

func (testCtx *TestContext) theAnalysisSucceeds() error {
	if testCtx.LastErr != nil {
		return fmt.Errorf("expected success, got error: %v", testCtx.LastErr)
	}
	if testCtx.LastResult.Analysis == nil || !testCtx.LastResult.Analysis.Success {
		return errors.New("expected a successful analysis payload")
	}
	return nil
}

func (testCtx *TestContext) theAnalysisFailsWith(substr string) error {
	if testCtx.LastErr == nil {
		return fmt.Errorf("expected an error containing %q, got none", substr)
	}
	if !strings.Contains(testCtx.LastErr.Error(), substr) {
		return fmt.Errorf("error %q does not contain %q", testCtx.LastErr.Error(), substr)
	}
	return nil
}

func (testCtx *TestContext) roomsAreDetected(rooms, floors int) error {
	a := testCtx.LastResult.Analysis
	if a == nil || a.PropertyInfo == nil {
		return errors.New("no property info in analysis")
	}
	if a.PropertyInfo.TotalRooms != rooms {
		return fmt.Errorf("expected %d rooms, got %d", rooms, a.PropertyInfo.TotalRooms)
	}
	if a.PropertyInfo.NumFloors != floors {
		return fmt.Errorf("expected %d floors, got %d", floors, a.PropertyInfo.NumFloors)
	}
	return nil
}

func (testCtx *TestContext) findRoom(name string) (*floorplan.Room, error) {
	a := testCtx.LastResult.Analysis
	if a == nil {
		return nil, errors.New("no analysis available")
	}
	var names []string
	for fi := range a.Floors {
		for ri := range a.Floors[fi].Rooms {
			room := &a.Floors[fi].Rooms[ri]
			if room.Name == name {
				return room, nil
			}
			names = append(names, room.Name)
		}
	}
	return nil, fmt.Errorf("room %q not found (have: %s)", name, strings.Join(names, ", "))
}

func (testCtx *TestContext) roomHasType(name, roomType string) error {
	room, err := testCtx.findRoom(name)
	if err != nil {
		return err
	}
	if room.Type != roomType {
		return fmt.Errorf("room %q has type %q, expected %q", name, room.Type, roomType)
	}
	return nil
}

func (testCtx *TestContext) roomHasArea(name string, area float64) error {
	room, err := testCtx.findRoom(name)
	if err != nil {
		return err
	}
	if math.Abs(room.AreaSqm-area) > 0.01 {
		return fmt.Errorf("room %q has area %.2f, expected %.2f", name, room.AreaSqm, area)
	}
	return nil
}

func (testCtx *TestContext) failurePayloadReportsZeroElements() error {
	a := testCtx.LastResult.Analysis
	if a == nil {
		return errors.New("expected a failure payload, got none")
	}
	if a.Success {
		return errors.New("expected failure payload, analysis succeeded")
	}
	if a.DebugInfo.TextElementsFound != 0 {
		return fmt.Errorf("expected zero text elements, got %d", a.DebugInfo.TextElementsFound)
	}
	return nil
}
