// Package config loads the service's tuning and wiring configuration: the
// JSON analysis tuning file and the YAML inference-sidecar services file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mirador-data/behavior.report/internal/vision"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the analysis tuning parameters. All fields are
// pointers so a partial JSON file only overrides what it names; the Get*
// methods supply defaults for the rest.
type TuningConfig struct {
	// Posture heuristics
	HunchRatio            *float64 `json:"hunch_ratio,omitempty"`
	HandsOnFaceDistancePx *float64 `json:"hands_on_face_distance_px,omitempty"`

	// Working raster the emotion classifier sees
	WorkingWidth  *int `json:"working_width,omitempty"`
	WorkingHeight *int `json:"working_height,omitempty"`

	// Session alert thresholds
	SadAlertPct   *float64 `json:"sad_alert_pct,omitempty"`
	FearAlertPct  *float64 `json:"fear_alert_pct,omitempty"`
	AngryAlertPct *float64 `json:"angry_alert_pct,omitempty"`
	HeadDownRatio *float64 `json:"head_down_ratio,omitempty"`

	// Persistence cadence
	FlushEveryFrames *int `json:"flush_every_frames,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields omitted
// from the file keep their built-in defaults, so partial configs are safe.
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

// Validate checks that set values are usable.
func (c *TuningConfig) Validate() error {
	if c.HunchRatio != nil && (*c.HunchRatio <= 0 || *c.HunchRatio >= 1) {
		return fmt.Errorf("hunch_ratio must be between 0 and 1, got %f", *c.HunchRatio)
	}
	if c.HandsOnFaceDistancePx != nil && *c.HandsOnFaceDistancePx <= 0 {
		return fmt.Errorf("hands_on_face_distance_px must be positive, got %f", *c.HandsOnFaceDistancePx)
	}
	if c.WorkingWidth != nil && *c.WorkingWidth < 1 {
		return fmt.Errorf("working_width must be positive, got %d", *c.WorkingWidth)
	}
	if c.WorkingHeight != nil && *c.WorkingHeight < 1 {
		return fmt.Errorf("working_height must be positive, got %d", *c.WorkingHeight)
	}
	for name, v := range map[string]*float64{
		"sad_alert_pct":   c.SadAlertPct,
		"fear_alert_pct":  c.FearAlertPct,
		"angry_alert_pct": c.AngryAlertPct,
	} {
		if v != nil && (*v < 0 || *v > 100) {
			return fmt.Errorf("%s must be between 0 and 100, got %f", name, *v)
		}
	}
	if c.HeadDownRatio != nil && (*c.HeadDownRatio < 0 || *c.HeadDownRatio > 1) {
		return fmt.Errorf("head_down_ratio must be between 0 and 1, got %f", *c.HeadDownRatio)
	}
	if c.FlushEveryFrames != nil && *c.FlushEveryFrames < 1 {
		return fmt.Errorf("flush_every_frames must be at least 1, got %d", *c.FlushEveryFrames)
	}
	return nil
}

// Heuristics materialises the posture heuristic parameters.
func (c *TuningConfig) Heuristics() vision.HeuristicParams {
	p := vision.DefaultHeuristicParams()
	if c.HunchRatio != nil {
		p.HunchRatio = *c.HunchRatio
	}
	if c.HandsOnFaceDistancePx != nil {
		p.HandsOnFaceDistancePx = *c.HandsOnFaceDistancePx
	}
	return p
}

// Thresholds materialises the session alert thresholds.
func (c *TuningConfig) Thresholds() vision.AlertThresholds {
	t := vision.DefaultAlertThresholds()
	if c.SadAlertPct != nil {
		t.SadPct = *c.SadAlertPct
	}
	if c.FearAlertPct != nil {
		t.FearPct = *c.FearAlertPct
	}
	if c.AngryAlertPct != nil {
		t.AngryPct = *c.AngryAlertPct
	}
	if c.HeadDownRatio != nil {
		t.HeadDownRatio = *c.HeadDownRatio
	}
	return t
}

// GetWorkingWidth returns the classifier raster width.
func (c *TuningConfig) GetWorkingWidth() int {
	if c.WorkingWidth != nil {
		return *c.WorkingWidth
	}
	return 320
}

// GetWorkingHeight returns the classifier raster height.
func (c *TuningConfig) GetWorkingHeight() int {
	if c.WorkingHeight != nil {
		return *c.WorkingHeight
	}
	return 240
}

// GetFlushEvery returns the persistence cadence in frames.
func (c *TuningConfig) GetFlushEvery() int {
	if c.FlushEveryFrames != nil {
		return *c.FlushEveryFrames
	}
	return 10
}
