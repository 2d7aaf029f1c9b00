// Package config holds the JSON tuning file for the pipeline. All fields are
// optional pointers so a partial file overrides only what it names; the Get*
// accessors supply the documented defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/microtex-data/grainmesh/internal/ebsd"
)

// TuningConfig is the root of the tuning file.
type TuningConfig struct {
	// SpacingTolerance is the accepted coordinate wobble at import, as a
	// fraction of one step.
	SpacingTolerance *float64 `json:"spacing_tolerance,omitempty"`

	// Connectivity selects the vote-pass neighborhood: 4 or 8.
	Connectivity *int `json:"connectivity,omitempty"`

	// VoidExportID is the grain id written for void cells in grid exports.
	VoidExportID *int `json:"void_export_id,omitempty"`

	// GripOrientationDeg is the reference orientation of grip material as
	// [phi_1, Phi, phi_2] in degrees.
	GripOrientationDeg []float64 `json:"grip_orientation_deg,omitempty"`

	// PlotCellPixels is the PNG raster size of one grid cell.
	PlotCellPixels *int `json:"plot_cell_pixels,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads and validates a tuning file. Fields omitted from
// the JSON keep their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *TuningConfig) Validate() error {
	if c.SpacingTolerance != nil {
		if *c.SpacingTolerance <= 0 || *c.SpacingTolerance >= 1 {
			return fmt.Errorf("spacing_tolerance must be in (0,1), got %f", *c.SpacingTolerance)
		}
	}
	if c.Connectivity != nil {
		if v := *c.Connectivity; v != 4 && v != 8 {
			return fmt.Errorf("connectivity must be 4 or 8, got %d", v)
		}
	}
	if c.VoidExportID != nil {
		if *c.VoidExportID <= 0 {
			return fmt.Errorf("void_export_id must be positive, got %d", *c.VoidExportID)
		}
	}
	if len(c.GripOrientationDeg) != 0 && len(c.GripOrientationDeg) != 3 {
		return fmt.Errorf("grip_orientation_deg needs exactly 3 angles, got %d", len(c.GripOrientationDeg))
	}
	if c.PlotCellPixels != nil {
		if *c.PlotCellPixels < 1 {
			return fmt.Errorf("plot_cell_pixels must be >= 1, got %d", *c.PlotCellPixels)
		}
	}
	return nil
}

// GetSpacingTolerance returns the spacing_tolerance value or the default.
func (c *TuningConfig) GetSpacingTolerance() float64 {
	if c.SpacingTolerance == nil {
		return ebsd.DefaultSpacingTolerance
	}
	return *c.SpacingTolerance
}

// GetConnectivity returns the vote-pass neighborhood or the default Conn8.
func (c *TuningConfig) GetConnectivity() ebsd.Connectivity {
	if c.Connectivity == nil {
		return ebsd.Conn8
	}
	return ebsd.Connectivity(*c.Connectivity)
}

// GetVoidExportID returns the void_export_id value or the default 100000.
func (c *TuningConfig) GetVoidExportID() int {
	if c.VoidExportID == nil {
		return 100000
	}
	return *c.VoidExportID
}

// GetGripOrientation returns the grip reference orientation in radians or
// the default zero triple.
func (c *TuningConfig) GetGripOrientation() ebsd.Euler {
	if len(c.GripOrientationDeg) != 3 {
		return ebsd.Euler{}
	}
	return ebsd.EulerDeg(c.GripOrientationDeg[0], c.GripOrientationDeg[1], c.GripOrientationDeg[2])
}

// GetPlotCellPixels returns the plot_cell_pixels value or the default.
func (c *TuningConfig) GetPlotCellPixels() int {
	if c.PlotCellPixels == nil {
		return 8
	}
	return *c.PlotCellPixels
}
