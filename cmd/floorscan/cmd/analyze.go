package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/floorscan/internal/floorplan"
	"github.com/MeKo-Tech/floorscan/internal/pipeline"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

const (
	outputFormatText = "text"
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
)

// fileAnalysis pairs one input file with its analysis for JSON output.
type fileAnalysis struct {
	File     string              `json:"file"`
	Analysis *floorplan.Analysis `json:"analysis"`
}

// analyzeCmd represents the analyze command.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <image> [images...]",
	Short: "Analyze floor-plan images",
	Long: `Analyze one or more floor-plan images and report the detected
floors, rooms, storage capacity, and packing inventory.

Supported formats: JPEG, PNG, GIF, BMP

Examples:
  floorscan analyze plan.png
  floorscan analyze *.png --format json
  floorscan analyze plan.jpg --overlay-dir ./overlays`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
		format := cfg.Output.Format
		outputFile := cfg.Output.File
		overlayDir := cfg.Output.OverlayDir

		switch format {
		case outputFormatText, outputFormatJSON, outputFormatCSV:
		default:
			return fmt.Errorf("invalid output format: %s (must be one of: text, json, csv)", format)
		}
		if conf := cfg.Pipeline.OCR.MinWordConfidence; conf < 0 || conf > 1 {
			return fmt.Errorf("invalid confidence threshold: %.2f (must be between 0.0 and 1.0)", conf)
		}

		for _, pth := range args {
			if !utils.IsSupportedImage(pth) {
				return fmt.Errorf("unsupported image format: %s", pth)
			}
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := p.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Error closing pipeline: %v\n", err)
			}
		}()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		analyses := make([]fileAnalysis, 0, len(args))
		for _, pth := range args {
			res, err := p.AnalyzeFile(ctx, pth)
			if err != nil && !errors.Is(err, floorplan.ErrNoTextDetected) {
				return fmt.Errorf("analysis failed for %s: %w", pth, err)
			}
			// A no-text result still carries a failure payload worth
			// reporting; keep going.
			analyses = append(analyses, fileAnalysis{File: pth, Analysis: res.Analysis})

			if overlayDir != "" && res.Analysis != nil && res.Analysis.Success {
				if err := saveOverlay(p, pth, res.Analysis, overlayDir, cmd); err != nil {
					return err
				}
			}
		}

		out, err := renderAnalyses(analyses, format)
		if err != nil {
			return err
		}

		if outputFile != "" {
			if err := os.WriteFile(outputFile, []byte(out), 0o600); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", outputFile); err != nil {
				return err
			}
			return nil
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

// saveOverlay re-loads the image at the pipeline's working resolution
// and writes the annotated copy next to the other overlays.
func saveOverlay(p *pipeline.Pipeline, pth string, analysis *floorplan.Analysis, dir string, cmd *cobra.Command) error {
	img, _, err := utils.LoadImage(pth)
	if err != nil {
		return fmt.Errorf("failed to load %s for overlay: %w", pth, err)
	}
	img = utils.NormalizeSize(img, p.Config().MaxImageDim)

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}
	base := filepath.Base(pth)
	ext := filepath.Ext(base)
	outPath := filepath.Join(dir, strings.TrimSuffix(base, ext)+"_overlay.png")
	if err := pipeline.SaveOverlay(img, analysis, outPath); err != nil {
		return fmt.Errorf("failed to write overlay: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved overlay: %s\n", outPath)
	return err
}

func renderAnalyses(analyses []fileAnalysis, format string) (string, error) {
	switch format {
	case outputFormatJSON:
		return renderJSON(analyses)
	case outputFormatCSV:
		return renderCSV(analyses)
	default:
		return renderText(analyses), nil
	}
}

func renderJSON(analyses []fileAnalysis) (string, error) {
	var v any = analyses
	if len(analyses) == 1 {
		v = analyses[0]
	}
	bts, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(bts), nil
}

func renderCSV(analyses []fileAnalysis) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	header := []string{"file", "floor", "room", "type", "area_sqm", "dimensions", "is_storage", "boxes", "heavy_items"}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("format csv failed: %w", err)
	}
	for _, fa := range analyses {
		if fa.Analysis == nil || !fa.Analysis.Success {
			continue
		}
		for _, floor := range fa.Analysis.Floors {
			for _, room := range floor.Rooms {
				row := []string{
					fa.File,
					floor.Name,
					room.Name,
					room.Type,
					strconv.FormatFloat(room.AreaSqm, 'f', 2, 64),
					room.Dimensions,
					strconv.FormatBool(room.IsStorage),
					strconv.Itoa(len(room.Inventory.Boxes)),
					strconv.Itoa(len(room.Inventory.HeavyItems)),
				}
				if err := w.Write(row); err != nil {
					return "", fmt.Errorf("format csv failed: %w", err)
				}
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("format csv failed: %w", err)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func renderText(analyses []fileAnalysis) string {
	var sb strings.Builder
	for i, fa := range analyses {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s:\n", fa.File)
		a := fa.Analysis
		if a == nil || !a.Success {
			msg := "analysis failed"
			if a != nil && a.Error != "" {
				msg = a.Error
			}
			fmt.Fprintf(&sb, "  %s\n", msg)
			continue
		}
		if pi := a.PropertyInfo; pi != nil {
			fmt.Fprintf(&sb, "  %d rooms on %d floor(s), %.1f sqm total\n",
				pi.TotalRooms, pi.NumFloors, pi.TotalAreaSqm)
		}
		for _, floor := range a.Floors {
			fmt.Fprintf(&sb, "  %s (%d rooms, %.1f sqm)\n", floor.Name, floor.RoomCount, floor.TotalAreaSqm)
			for _, room := range floor.Rooms {
				marker := ""
				if room.IsStorage {
					marker = " [storage]"
				}
				fmt.Fprintf(&sb, "    %-20s %-12s %8.2f sqm  %s%s\n",
					room.Name, room.Type, room.AreaSqm, room.Dimensions, marker)
			}
		}
		if st := a.StorageAnalysis; st != nil {
			fmt.Fprintf(&sb, "  Storage: %.1f sqm across %d space(s), heavy items %v, boxes %v\n",
				st.TotalStorageAreaSqm, st.NumStorageSpaces, st.SuitableForHeavy, st.SuitableForBoxes)
		}
		if inv := a.InventorySummary; inv != nil {
			fmt.Fprintf(&sb, "  Inventory: ~%d boxes, %d heavy item(s)\n",
				inv.TotalBoxesEstimated, inv.TotalHeavyEstimated)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("format", "f", "text", "output format (text, json, csv)")
	analyzeCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	analyzeCmd.Flags().String("overlay-dir", "", "directory to write overlay images (drawn room boxes)")
	analyzeCmd.Flags().Float64("confidence", 0, "minimum word confidence 0..1 (0 keeps everything)")
	analyzeCmd.Flags().Int("workers", 4, "parallel recognition workers per image")

	bindings := []struct {
		key  string
		flag string
	}{
		{"output.format", "format"},
		{"output.file", "output"},
		{"output.overlay_dir", "overlay-dir"},
		{"pipeline.ocr.min_word_confidence", "confidence"},
		{"pipeline.extract.max_workers", "workers"},
	}
	for _, b := range bindings {
		if err := viper.BindPFlag(b.key, analyzeCmd.Flags().Lookup(b.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", b.flag, err))
		}
	}
}

// GetAnalyzeCommand returns the analyze command for testing purposes.
func GetAnalyzeCommand() *cobra.Command {
	return analyzeCmd
}
