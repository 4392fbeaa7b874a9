package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/gfx/batch"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config for the engine run.
type Config struct {
	Title      string        `yaml:"title"`
	Width      int           `yaml:"width"`
	Height     int           `yaml:"height"`
	VSync      bool          `yaml:"vsync"`
	ClearColor string        `yaml:"clear_color"` // "#rrggbb" or "#rrggbbaa"
	TickRate   int           `yaml:"tick_rate"`   // fixed updates per second
	Batch      batch.Options `yaml:"batch"`
}

// DefaultConfig is a 1280x720 vsynced window ticking at 60 Hz.
func DefaultConfig() Config {
	return Config{
		Title:      "canopy",
		Width:      1280,
		Height:     720,
		VSync:      true,
		ClearColor: "#141a1f",
		TickRate:   60,
		Batch:      batch.DefaultOptions(),
	}
}

// LoadConfig reads a YAML file over DefaultConfig; keys absent from the file
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks sizes, the tick rate, the clear color and batch options.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick rate %d", ErrInvalidConfig, c.TickRate)
	}
	if _, err := colors.ParseHex(c.ClearColor); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Batch.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Clear returns the parsed clear color, falling back to black.
func (c Config) Clear() colors.Color {
	col, err := colors.ParseHex(c.ClearColor)
	if err != nil {
		return colors.Black
	}
	return col
}
