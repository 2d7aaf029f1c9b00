package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/microtex-data/grainmesh/internal/ebsd"
)

func TestEmptyTuningConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if got := cfg.GetSpacingTolerance(); got != ebsd.DefaultSpacingTolerance {
		t.Errorf("GetSpacingTolerance() = %g, want %g", got, ebsd.DefaultSpacingTolerance)
	}
	if got := cfg.GetConnectivity(); got != ebsd.Conn8 {
		t.Errorf("GetConnectivity() = %v, want Conn8", got)
	}
	if got := cfg.GetVoidExportID(); got != 100000 {
		t.Errorf("GetVoidExportID() = %d, want 100000", got)
	}
	if got := cfg.GetGripOrientation(); got != (ebsd.Euler{}) {
		t.Errorf("GetGripOrientation() = %+v, want zero triple", got)
	}
	if got := cfg.GetPlotCellPixels(); got != 8 {
		t.Errorf("GetPlotCellPixels() = %d, want 8", got)
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "spacing_tolerance": 0.01,
  "connectivity": 4,
  "void_export_id": 42000,
  "grip_orientation_deg": [90, 0, 0],
  "plot_cell_pixels": 4
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.SpacingTolerance == nil || *cfg.SpacingTolerance != 0.01 {
		t.Errorf("Expected SpacingTolerance 0.01, got %v", cfg.SpacingTolerance)
	}
	if got := cfg.GetConnectivity(); got != ebsd.Conn4 {
		t.Errorf("GetConnectivity() = %v, want Conn4", got)
	}
	if got := cfg.GetVoidExportID(); got != 42000 {
		t.Errorf("GetVoidExportID() = %d, want 42000", got)
	}
	orient := cfg.GetGripOrientation()
	if math.Abs(orient.Phi1-math.Pi/2) > 1e-12 || orient.Phi != 0 || orient.Phi2 != 0 {
		t.Errorf("GetGripOrientation() = %+v, want (pi/2,0,0)", orient)
	}
	if got := cfg.GetPlotCellPixels(); got != 4 {
		t.Errorf("GetPlotCellPixels() = %d, want 4", got)
	}
}

func TestLoadTuningConfigPartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	if err := os.WriteFile(configPath, []byte(`{"connectivity": 4}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	// Omitted fields keep their defaults.
	if got := cfg.GetVoidExportID(); got != 100000 {
		t.Errorf("GetVoidExportID() = %d, want default 100000", got)
	}
	if got := cfg.GetConnectivity(); got != ebsd.Conn4 {
		t.Errorf("GetConnectivity() = %v, want Conn4", got)
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigWrongExtension(t *testing.T) {
	_, err := LoadTuningConfig("/tmp/config.yaml")
	if err == nil {
		t.Error("Expected error for non-json extension, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TuningConfig
		wantErr bool
	}{
		{"empty is valid", TuningConfig{}, false},
		{"good values", TuningConfig{
			SpacingTolerance:   ptrFloat64(0.005),
			Connectivity:       ptrInt(8),
			VoidExportID:       ptrInt(100000),
			GripOrientationDeg: []float64{0, 0, 0},
			PlotCellPixels:     ptrInt(16),
		}, false},
		{"tolerance too large", TuningConfig{SpacingTolerance: ptrFloat64(1.5)}, true},
		{"tolerance zero", TuningConfig{SpacingTolerance: ptrFloat64(0)}, true},
		{"bad connectivity", TuningConfig{Connectivity: ptrInt(6)}, true},
		{"negative void id", TuningConfig{VoidExportID: ptrInt(-1)}, true},
		{"short grip orientation", TuningConfig{GripOrientationDeg: []float64{1, 2}}, true},
		{"zero plot pixels", TuningConfig{PlotCellPixels: ptrInt(0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
