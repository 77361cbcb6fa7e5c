package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Window, timing, and capture constants.
const (
	windowScale       = 1
	defaultTPS        = 60
	maskThreshold     = 127
	recordFPS         = 30
	statusLogInterval = 5 * time.Second
	statusFlashTime   = 2 * time.Second
	plotHeight        = 10
	plotWidth         = 72
)

// Config holds the tunable parameters of a run. It is loaded from JSON with
// -config and individual fields can be overridden by flags.
type Config struct {
	// Camera dimensions
	Width  int `json:"width"`
	Height int `json:"height"`

	// Simulation grid as a fraction of the camera size
	Multiplier float64 `json:"multiplier"`

	// Initial control values
	Direction int     `json:"direction"`
	Speed     float64 `json:"speed"`
	Streams   int     `json:"streams"`
	Smoke     float64 `json:"smoke"`
	DT        float64 `json:"dt"`

	// Solver
	Iterations  int     `json:"iterations"`
	Viscosity   float64 `json:"viscosity"`
	Dissipation float64 `json:"dissipation"`

	// Rendering
	HSVPower float64 `json:"hsvPower"`
	Palette  string  `json:"palette"`
	Opacity  float64 `json:"opacity"`

	// Synthetic camera seed
	Seed int64 `json:"seed"`
}

var defaultConfig = Config{
	Width:       640,
	Height:      480,
	Multiplier:  0.25,
	Direction:   0,
	Speed:       1,
	Streams:     4,
	Smoke:       0.5,
	DT:          0.02,
	Iterations:  30,
	Viscosity:   0,
	Dissipation: 0.05,
	HSVPower:    0.25,
	Palette:     "rainbow",
	Opacity:     0.85,
	Seed:        1,
}

// loadConfig returns the defaults overlaid with the JSON file at path. An
// empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// validate rejects values the simulation cannot start with. Control values
// outside their key ranges are clamped later, not rejected.
func (c Config) validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("camera size %dx%d must be positive", c.Width, c.Height)
	case c.Multiplier <= 0:
		return fmt.Errorf("multiplier %g must be positive", c.Multiplier)
	case c.Direction < 0 || c.Direction > 3:
		return fmt.Errorf("direction %d must be 0..3", c.Direction)
	case c.DT <= 0:
		return fmt.Errorf("dt %g must be positive", c.DT)
	case c.HSVPower <= 0:
		return fmt.Errorf("hsvPower %g must be positive", c.HSVPower)
	}
	return nil
}
