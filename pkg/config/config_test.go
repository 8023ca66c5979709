package config

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestDefaultConfig verifies the default physical parameters are sane.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Geometry.FocalDistance != 1000 {
		t.Errorf("default focal distance = %v, want 1000", cfg.Geometry.FocalDistance)
	}
	if cfg.Geometry.SourceToDetector <= cfg.Geometry.FocalDistance {
		t.Errorf("source-to-detector %v must exceed focal distance %v",
			cfg.Geometry.SourceToDetector, cfg.Geometry.FocalDistance)
	}
	if cfg.Geometry.SecondAngleOffsetDeg != 90 {
		t.Errorf("default second angle offset = %v, want 90", cfg.Geometry.SecondAngleOffsetDeg)
	}
	if cfg.Detector.Width <= 0 || cfg.Detector.Height <= 0 || cfg.Detector.PixelSpacing <= 0 {
		t.Error("default detector geometry must be positive")
	}
	if cfg.Volume.Nx <= 0 || cfg.Volume.Ny <= 0 || cfg.Volume.Nz <= 0 {
		t.Error("default volume dimensions must be positive")
	}
	for _, s := range cfg.Volume.Spacing {
		if s <= 0 {
			t.Errorf("default voxel spacing must be positive, got %v", cfg.Volume.Spacing)
		}
	}
	if cfg.Processing.NumCores < 1 {
		t.Errorf("default core count = %d, want at least 1", cfg.Processing.NumCores)
	}
}

// TestLoadConfigMissingFile verifies that a missing file falls back to
// defaults.
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig on missing file failed: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("missing file should yield defaults:\n%s", diff)
	}
}

// TestSaveLoadRoundtrip verifies that a modified config survives a
// save/load cycle.
func TestSaveLoadRoundtrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Geometry.ProjectionAngleDeg = 45
	cfg.Geometry.Threshold = 12.5
	cfg.Pose.RotationDeg = [3]float64{1, -2, 3}
	cfg.Pose.Translation = [3]float64{5, 0, -5}
	cfg.Detector.Width = 64
	cfg.Volume.Phantom = "corner"
	cfg.Processing.NumCores = 3

	path := filepath.Join(t.TempDir(), "sub", "drrcast.yaml")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("roundtrip mismatch:\n%s", diff)
	}
}

// TestCreateDefaultConfigFile verifies the bootstrap helper writes a
// loadable file.
func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drrcast.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), loaded); diff != "" {
		t.Errorf("written defaults do not match DefaultConfig:\n%s", diff)
	}
}
