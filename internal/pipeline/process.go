package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/MeKo-Tech/floorscan/internal/common"
	"github.com/MeKo-Tech/floorscan/internal/extract"
	"github.com/MeKo-Tech/floorscan/internal/floorplan"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// Stage names reported through StageFunc, in execution order.
const (
	StageValidate  = "validate"
	StageExtract   = "extract"
	StageFloors    = "floors"
	StageRooms     = "rooms"
	StageEnrich    = "enrich"
	StageStorage   = "storage"
	StageInventory = "inventory"
	StageReport    = "report"
)

// Stages lists every pipeline stage in execution order.
var Stages = []string{
	StageValidate, StageExtract, StageFloors, StageRooms,
	StageEnrich, StageStorage, StageInventory, StageReport,
}

// StageFunc observes stage completion during one analysis. elapsed is
// the duration of that stage alone. Callbacks run on the analysis
// goroutine and should return quickly.
type StageFunc func(stage string, completed, total int, elapsed time.Duration)

// Result bundles the analysis payload with per-request diagnostics that
// are not part of the serialized contract.
type Result struct {
	Analysis     *floorplan.Analysis
	FileInfo     utils.ImageMetadata
	Elements     []extract.TextElement
	MethodCounts map[string]int
	Timings      []common.StageTiming
}

// Analyze validates, decodes, and analyzes raw floor-plan bytes. The
// filename is used for extension validation and diagnostics only.
//
// Validation and decode failures return a zero Result and an error.
// When recognition runs but finds no text, the returned error wraps
// floorplan.ErrNoTextDetected and the Result still carries the
// structured failure payload for serialization.
func (p *Pipeline) Analyze(ctx context.Context, data []byte, filename string) (Result, error) {
	return p.AnalyzeWithProgress(ctx, data, filename, nil)
}

// AnalyzeWithProgress is Analyze with a per-stage observer.
func (p *Pipeline) AnalyzeWithProgress(ctx context.Context, data []byte, filename string, onStage StageFunc) (Result, error) {
	sw := common.NewStopwatch()
	img, meta, err := utils.DecodeImage(data, filename)
	if err != nil {
		return Result{}, err
	}
	return p.analyze(ctx, img, meta, sw, onStage)
}

// AnalyzeFile reads, validates, and analyzes a floor-plan image from
// disk.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (Result, error) {
	return p.AnalyzeFileWithProgress(ctx, path, nil)
}

// AnalyzeFileWithProgress is AnalyzeFile with a per-stage observer.
func (p *Pipeline) AnalyzeFileWithProgress(ctx context.Context, path string, onStage StageFunc) (Result, error) {
	sw := common.NewStopwatch()
	img, meta, err := utils.LoadImage(path)
	if err != nil {
		return Result{}, err
	}
	return p.analyze(ctx, img, meta, sw, onStage)
}

func (p *Pipeline) analyze(ctx context.Context, src image.Image, meta utils.ImageMetadata, sw *common.Stopwatch, onStage StageFunc) (Result, error) {
	if p.pool == nil || p.pool.Size() == 0 {
		return Result{}, floorplan.ErrEngineUnavailable
	}

	step := func(i int, stage string) {
		d := sw.Mark(stage)
		if onStage != nil {
			onStage(stage, i+1, len(Stages), d)
		}
	}

	norm := utils.NormalizeSize(src, p.cfg.MaxImageDim)
	bounds := norm.Bounds()
	debug := floorplan.DebugInfo{
		AnalysisID:        uuid.NewString(),
		OCRAvailable:      true,
		EngineInitialized: true,
		ImageShape:        []int{bounds.Dy(), bounds.Dx()},
	}
	logger := p.logger.With("analysis_id", debug.AnalysisID, "file", meta.Filename)
	logger.Info("analysis started", "width", bounds.Dx(), "height", bounds.Dy())
	step(0, StageValidate)

	extracted, err := p.extractor.Extract(ctx, norm)
	if err != nil {
		return Result{}, fmt.Errorf("extract text: %w", err)
	}
	debug.TextElementsFound = len(extracted.Elements)
	step(1, StageExtract)

	res := Result{
		FileInfo:     meta,
		Elements:     extracted.Elements,
		MethodCounts: extracted.MethodCounts,
	}

	if len(extracted.Elements) == 0 {
		logger.Warn("no text detected", "method_errors", len(extracted.MethodErrors))
		res.Analysis = floorplan.BuildFailure(debug)
		res.Timings = sw.Stages()
		return res, fmt.Errorf("analyze %s: %w", meta.Filename, floorplan.ErrNoTextDetected)
	}

	sections := floorplan.SegmentFloors(extracted.Elements)
	step(2, StageFloors)

	roomGroups := make([][]*floorplan.Room, len(sections))
	var all []*floorplan.Room
	for i, sec := range sections {
		rooms := p.rooms.Extract(sec, bounds.Dx(), bounds.Dy())
		roomGroups[i] = rooms
		all = append(all, rooms...)
	}
	step(3, StageRooms)

	for _, r := range all {
		floorplan.ResolveDimensions(r)
		r.Type = p.classifier.Classify(r.Label)
		floorplan.EstimateArea(r, p.cfg.Calibration.SqmPerPixel)
	}
	floorplan.NameRooms(all)
	step(4, StageEnrich)

	storage := floorplan.AnalyzeStorage(all)
	step(5, StageStorage)

	for _, r := range all {
		p.inventory.Generate(r)
	}
	step(6, StageInventory)

	floors := floorplan.BuildFloors(sections, roomGroups)
	res.Analysis = floorplan.BuildAnalysis(floors, storage, debug)
	step(7, StageReport)
	res.Timings = sw.Stages()

	logger.Info("analysis complete",
		"elements", len(extracted.Elements),
		"floors", len(floors),
		"rooms", len(all),
		"duration", sw.Total())
	return res, nil
}
