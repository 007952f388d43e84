// Package batch analyzes whole directories of floor-plan images on one
// shared pipeline and renders the results as JSON, CSV, or an XLSX
// workbook.
package batch

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Output formats supported by WriteOutput.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Config holds batch run settings.
type Config struct {
	// Parallelism
	Workers         int
	ContinueOnError bool

	// File discovery
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Output
	Format     string
	OutputFile string

	// Progress reporting
	ShowProgress     bool
	Quiet            bool
	ProgressInterval time.Duration
}

// DefaultConfig returns batch defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:          runtime.NumCPU(),
		ContinueOnError:  true,
		Format:           FormatJSON,
		ShowProgress:     true,
		ProgressInterval: 100 * time.Millisecond,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Format) {
	case FormatJSON, FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("unsupported output format %q (want json, csv, or xlsx)", c.Format)
	}
	if strings.EqualFold(c.Format, FormatXLSX) && c.OutputFile == "" {
		return fmt.Errorf("xlsx output requires an output file")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
