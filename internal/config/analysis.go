// Package config loads the settings of an analysis run from JSON or YAML.
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/lifting.report/internal/fsutil"
	"github.com/banshee-data/lifting.report/internal/lifting"
	"github.com/banshee-data/lifting.report/internal/mocap"
	"github.com/banshee-data/lifting.report/internal/units"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// AnalysisConfig holds the settings of an analysis run. Every field is
// optional; the Get* methods supply defaults for omitted values.
type AnalysisConfig struct {
	FramesPerSecond *int             `json:"frames_per_second,omitempty" yaml:"frames_per_second,omitempty"`
	RWLLimit        *float64         `json:"rwl_limit,omitempty" yaml:"rwl_limit,omitempty"`
	HeightSource    *string          `json:"height_source,omitempty" yaml:"height_source,omitempty"`
	Markers         *mocap.MarkerSet `json:"markers,omitempty" yaml:"markers,omitempty"`

	// Report params
	OutputDir   *string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	WeightUnits *string `json:"weight_units,omitempty" yaml:"weight_units,omitempty"`
	Timezone    *string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	LogoPath    *string `json:"logo_path,omitempty" yaml:"logo_path,omitempty"`
	HTMLChart   *bool   `json:"html_chart,omitempty" yaml:"html_chart,omitempty"`
}

// EmptyAnalysisConfig returns a config with every field unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadAnalysisConfig loads a config file from disk.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	return LoadAnalysisConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadAnalysisConfigFS loads a .json, .yaml or .yml config through fsys.
// Omitted fields keep their defaults, so partial configs are safe.
func LoadAnalysisConfigFS(fsys fsutil.FileSystem, path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	info, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", strings.TrimPrefix(ext, "."), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching upwards from the
// working directory. Panics if the file cannot be loaded; intended for tests.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *AnalysisConfig) Validate() error {
	if c.FramesPerSecond != nil && *c.FramesPerSecond <= 0 {
		return fmt.Errorf("frames_per_second must be positive, got %d", *c.FramesPerSecond)
	}
	if c.RWLLimit != nil && *c.RWLLimit <= 0 {
		return fmt.Errorf("rwl_limit must be positive, got %f", *c.RWLLimit)
	}
	if c.HeightSource != nil {
		switch lifting.HeightSource(*c.HeightSource) {
		case lifting.HeightCalibrated, lifting.HeightSubject:
		default:
			return fmt.Errorf("height_source must be %q or %q, got %q", lifting.HeightCalibrated, lifting.HeightSubject, *c.HeightSource)
		}
	}
	if c.Markers != nil {
		if err := c.Markers.Validate(); err != nil {
			return err
		}
	}
	if c.WeightUnits != nil && !units.IsValid(*c.WeightUnits) {
		return fmt.Errorf("weight_units must be one of: %s, got %q", units.GetValidUnitsString(), *c.WeightUnits)
	}
	if c.Timezone != nil && *c.Timezone != "" && *c.Timezone != "Local" && !units.IsTimezoneValid(*c.Timezone) {
		return fmt.Errorf("invalid timezone %q", *c.Timezone)
	}
	return nil
}

// GetFramesPerSecond returns the capture rate, 120 by default.
func (c *AnalysisConfig) GetFramesPerSecond() int {
	if c.FramesPerSecond == nil {
		return 120
	}
	return *c.FramesPerSecond
}

// GetRWLLimit returns the RWL limit in kg.
func (c *AnalysisConfig) GetRWLLimit() float64 {
	if c.RWLLimit == nil {
		return lifting.DefaultRWLLimit
	}
	return *c.RWLLimit
}

// GetHeightSource returns the height term source.
func (c *AnalysisConfig) GetHeightSource() lifting.HeightSource {
	if c.HeightSource == nil {
		return lifting.HeightCalibrated
	}
	return lifting.HeightSource(*c.HeightSource)
}

// GetMarkers returns the configured marker vocabulary.
func (c *AnalysisConfig) GetMarkers() mocap.MarkerSet {
	if c.Markers == nil {
		return mocap.DefaultMarkerSet()
	}
	return *c.Markers
}

// GetOutputDir returns where reports are written.
func (c *AnalysisConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "."
	}
	return *c.OutputDir
}

// GetWeightUnits returns the display unit for the lifted weight.
func (c *AnalysisConfig) GetWeightUnits() string {
	if c.WeightUnits == nil {
		return units.KG
	}
	return *c.WeightUnits
}

// GetTimezone returns the report timezone, "" meaning local time.
func (c *AnalysisConfig) GetTimezone() string {
	if c.Timezone == nil {
		return ""
	}
	return *c.Timezone
}

// GetLogoPath returns the logo image path, "" for none.
func (c *AnalysisConfig) GetLogoPath() string {
	if c.LogoPath == nil {
		return ""
	}
	return *c.LogoPath
}

// GetHTMLChart reports whether the HTML chart is written.
func (c *AnalysisConfig) GetHTMLChart() bool {
	if c.HTMLChart == nil {
		return false
	}
	return *c.HTMLChart
}

// ToOptions builds the lifting options for this config.
func (c *AnalysisConfig) ToOptions() lifting.Options {
	return lifting.Options{
		Markers:      c.GetMarkers(),
		HeightSource: c.GetHeightSource(),
		RWLLimit:     c.GetRWLLimit(),
	}
}
