package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MeKo-Tech/floorscan/internal/floorplan"
)

// fileReport is one file's entry in the JSON batch report.
type fileReport struct {
	File     string              `json:"file"`
	Success  bool                `json:"success"`
	Error    string              `json:"error,omitempty"`
	Duration string              `json:"duration"`
	Analysis *floorplan.Analysis `json:"analysis,omitempty"`
}

// WriteOutput renders the batch result in cfg.Format. JSON and CSV go
// to w (or cfg.OutputFile when set); XLSX always goes to cfg.OutputFile.
func WriteOutput(res *Result, cfg *Config, w io.Writer) error {
	format := strings.ToLower(cfg.Format)
	if format == FormatXLSX {
		return writeXLSX(res, cfg.OutputFile)
	}

	if cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	switch format {
	case FormatJSON:
		return writeJSON(res, w)
	case FormatCSV:
		return writeCSV(res, w)
	default:
		return fmt.Errorf("unsupported output format %q", cfg.Format)
	}
}

func writeJSON(res *Result, w io.Writer) error {
	reports := make([]fileReport, 0, len(res.Files))
	for _, fr := range res.Files {
		report := fileReport{
			File:     fr.Path,
			Success:  fr.Err == nil,
			Duration: fr.Duration.String(),
			Analysis: fr.Result.Analysis,
		}
		if fr.Err != nil {
			report.Error = fr.Err.Error()
		}
		reports = append(reports, report)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

var csvHeader = []string{
	"file", "floor", "room", "type", "area_sqm", "dimensions",
	"is_storage", "regular_items", "boxes", "heavy_items",
}

// writeCSV emits one row per room; files that failed produce a single
// row with the error in the floor column.
func writeCSV(res *Result, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, fr := range res.Files {
		if fr.Err != nil {
			if err := cw.Write([]string{fr.Path, "ERROR: " + fr.Err.Error(), "", "", "", "", "", "", "", ""}); err != nil {
				return err
			}
			continue
		}
		for _, floor := range fr.Result.Analysis.Floors {
			for _, room := range floor.Rooms {
				row := []string{
					fr.Path,
					floor.Name,
					room.Name,
					room.Type,
					strconv.FormatFloat(room.AreaSqm, 'f', 2, 64),
					room.Dimensions,
					strconv.FormatBool(room.IsStorage),
					strconv.Itoa(len(room.Inventory.RegularItems)),
					strconv.Itoa(len(room.Inventory.Boxes)),
					strconv.Itoa(len(room.Inventory.HeavyItems)),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeXLSX builds a workbook with Summary, Rooms, and Storage sheets.
func writeXLSX(res *Result, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := writeSummarySheet(f, res); err != nil {
		return err
	}
	if err := writeRoomsSheet(f, res); err != nil {
		return err
	}
	if err := writeStorageSheet(f, res); err != nil {
		return err
	}

	// The default sheet excelize creates is replaced by Summary.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	index, err := f.GetSheetIndex("Summary")
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, res *Result) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []any{"File", "Success", "Floors", "Rooms", "Total Area (sqm)", "Boxes", "Heavy Items", "Error"}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, fr := range res.Files {
		row := []any{fr.Path, fr.Err == nil, 0, 0, 0.0, 0, 0, ""}
		if fr.Err != nil {
			row[7] = fr.Err.Error()
		} else if a := fr.Result.Analysis; a != nil && a.PropertyInfo != nil {
			row[2] = a.PropertyInfo.NumFloors
			row[3] = a.PropertyInfo.TotalRooms
			row[4] = a.PropertyInfo.TotalAreaSqm
			if a.InventorySummary != nil {
				row[5] = a.InventorySummary.TotalBoxesEstimated
				row[6] = a.InventorySummary.TotalHeavyEstimated
			}
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 40)
}

func writeRoomsSheet(f *excelize.File, res *Result) error {
	const sheet = "Rooms"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []any{"File", "Floor", "Room", "Type", "Area (sqm)", "Dimensions", "Storage", "Regular Items", "Boxes", "Heavy Items"}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	row := 2
	for _, fr := range res.Files {
		if fr.Err != nil {
			continue
		}
		for _, floor := range fr.Result.Analysis.Floors {
			for _, room := range floor.Rooms {
				values := []any{
					fr.Path, floor.Name, room.Name, room.Type, room.AreaSqm, room.Dimensions,
					room.IsStorage,
					strings.Join(room.Inventory.RegularItems, ", "),
					strings.Join(room.Inventory.Boxes, ", "),
					strings.Join(room.Inventory.HeavyItems, ", "),
				}
				if err := setRow(f, sheet, row, values); err != nil {
					return err
				}
				row++
			}
		}
	}
	return f.SetColWidth(sheet, "A", "A", 40)
}

func writeStorageSheet(f *excelize.File, res *Result) error {
	const sheet = "Storage"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []any{"File", "Storage Spaces", "Total Area (sqm)", "Total Area (sqft)", "Garages", "Dedicated Storage", "Heavy Items OK", "Boxes OK"}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	row := 2
	for _, fr := range res.Files {
		if fr.Err != nil {
			continue
		}
		sa := fr.Result.Analysis.StorageAnalysis
		if sa == nil {
			continue
		}
		values := []any{
			fr.Path, sa.NumStorageSpaces, sa.TotalStorageAreaSqm, sa.TotalStorageAreaSqft,
			sa.GarageSpaces, sa.DedicatedStorage, sa.SuitableForHeavy, sa.SuitableForBoxes,
		}
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}
	return f.SetColWidth(sheet, "A", "A", 40)
}
