// Package config provides configuration loading and management for drrcast.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Geometry holds the physical projection setup.
	Geometry struct {
		// FocalDistance is the focal-point-to-isocenter distance in mm.
		FocalDistance float64 `yaml:"focalDistance"`

		// SourceToDetector is the source-to-detector-panel distance in mm.
		SourceToDetector float64 `yaml:"sourceToDetector"`

		// ProjectionAngleDeg is the gantry angle of the first projection
		// in degrees.
		ProjectionAngleDeg float64 `yaml:"projectionAngleDeg"`

		// SecondAngleOffsetDeg is the gantry offset of the second
		// projection relative to the first, in degrees.
		SecondAngleOffsetDeg float64 `yaml:"secondAngleOffsetDeg"`

		// Threshold is the intensity threshold; voxels at or below it do
		// not contribute to the path integral.
		Threshold float64 `yaml:"threshold"`
	} `yaml:"geometry"`

	// Pose holds the volume's rigid placement in world space.
	Pose struct {
		// RotationDeg are the ZYX Euler rotation angles in degrees.
		RotationDeg [3]float64 `yaml:"rotationDeg"`

		// Translation is the translation in mm.
		Translation [3]float64 `yaml:"translation"`
	} `yaml:"pose"`

	// Detector holds the flat-panel geometry.
	Detector struct {
		// Width and Height are the panel dimensions in pixels.
		Width  int `yaml:"width"`
		Height int `yaml:"height"`

		// PixelSpacing is the physical pixel size in mm.
		PixelSpacing float64 `yaml:"pixelSpacing"`

		// OffsetU and OffsetV shift the panel center in mm.
		OffsetU float64 `yaml:"offsetU"`
		OffsetV float64 `yaml:"offsetV"`
	} `yaml:"detector"`

	// Volume describes the input volume: either a named phantom or a raw
	// binary file.
	Volume struct {
		// Nx, Ny, Nz are the voxel counts.
		Nx int `yaml:"nx"`
		Ny int `yaml:"ny"`
		Nz int `yaml:"nz"`

		// Spacing is the per-axis voxel spacing in mm.
		Spacing [3]float64 `yaml:"spacing"`

		// Phantom selects a synthetic volume ("uniform", "shells",
		// "corner") when RawPath is empty.
		Phantom string `yaml:"phantom"`

		// Intensity is the fill value for the "uniform" phantom.
		Intensity float64 `yaml:"intensity"`

		// RawPath points at a flat binary volume file; when set it takes
		// precedence over Phantom.
		RawPath string `yaml:"rawPath"`

		// RawElement is the on-disk sample type of RawPath ("uint8",
		// "uint16", "float32", "float64").
		RawElement string `yaml:"rawElement"`
	} `yaml:"volume"`

	// Processing holds execution parameters.
	Processing struct {
		// NumCores specifies how many worker goroutines render detector rows.
		NumCores int `yaml:"numCores"`

		// Verbose controls the level of logging output.
		Verbose bool `yaml:"verbose"`
	} `yaml:"processing"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	// Typical C-arm geometry: 1000mm source-to-isocenter, 1536mm
	// source-to-detector.
	cfg.Geometry.FocalDistance = 1000
	cfg.Geometry.SourceToDetector = 1536
	cfg.Geometry.ProjectionAngleDeg = 0
	cfg.Geometry.SecondAngleOffsetDeg = 90
	cfg.Geometry.Threshold = 0

	cfg.Detector.Width = 256
	cfg.Detector.Height = 256
	cfg.Detector.PixelSpacing = 2.0

	cfg.Volume.Nx = 128
	cfg.Volume.Ny = 128
	cfg.Volume.Nz = 128
	cfg.Volume.Spacing = [3]float64{1, 1, 1}
	cfg.Volume.Phantom = "shells"
	cfg.Volume.Intensity = 100
	cfg.Volume.RawElement = "uint16"

	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
