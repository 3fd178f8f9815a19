// Package config provides configuration loading and access for the particle backdrop.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Field     FieldConfig     `yaml:"field"`
	Terminal  TerminalConfig  `yaml:"terminal"`
	Stream    StreamConfig    `yaml:"stream"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings for the raylib host.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Resizable bool   `yaml:"resizable"`
	Title     string `yaml:"title"`
}

// FieldConfig holds particle population and creation parameters.
type FieldConfig struct {
	AreaPerParticle int      `yaml:"area_per_particle"` // Surface pixels per particle
	MaxParticles    int      `yaml:"max_particles"`     // Population cap
	SpeedMin        float64  `yaml:"speed_min"`         // Per-axis velocity lower bound (inclusive)
	SpeedMax        float64  `yaml:"speed_max"`         // Per-axis velocity upper bound (exclusive)
	SizeMin         float64  `yaml:"size_min"`
	SizeMax         float64  `yaml:"size_max"`
	OpacityMin      float64  `yaml:"opacity_min"`
	OpacityMax      float64  `yaml:"opacity_max"`
	Color           [3]uint8 `yaml:"color"` // RGB fill, alpha comes from opacity
}

// TerminalConfig holds settings for the tcell host.
type TerminalConfig struct {
	CellWidth  int `yaml:"cell_width"`  // Virtual pixels per terminal column
	CellHeight int `yaml:"cell_height"` // Virtual pixels per terminal row
	TargetFPS  int `yaml:"target_fps"`
}

// StreamConfig holds settings for the websocket host.
type StreamConfig struct {
	Address      string        `yaml:"address"`
	TargetFPS    int           `yaml:"target_fps"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Frames per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenFrameInterval   time.Duration
	TerminalFrameInterval time.Duration
	StreamFrameInterval   time.Duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate checks values the simulation divides by or samples between.
func (c *Config) Validate() error {
	f := c.Field
	var errs []error
	if f.AreaPerParticle <= 0 {
		errs = append(errs, fmt.Errorf("field.area_per_particle must be positive, got %d", f.AreaPerParticle))
	}
	if f.MaxParticles < 0 {
		errs = append(errs, fmt.Errorf("field.max_particles must not be negative, got %d", f.MaxParticles))
	}
	if f.SpeedMax < f.SpeedMin {
		errs = append(errs, fmt.Errorf("field.speed range inverted: [%v, %v)", f.SpeedMin, f.SpeedMax))
	}
	if f.SizeMax < f.SizeMin {
		errs = append(errs, fmt.Errorf("field.size range inverted: [%v, %v)", f.SizeMin, f.SizeMax))
	}
	if f.OpacityMax < f.OpacityMin || f.OpacityMin < 0 || f.OpacityMax > 1 {
		errs = append(errs, fmt.Errorf("field.opacity range invalid: [%v, %v)", f.OpacityMin, f.OpacityMax))
	}
	if c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		errs = append(errs, errors.New("terminal cell size must be positive"))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenFrameInterval = frameInterval(c.Screen.TargetFPS)
	c.Derived.TerminalFrameInterval = frameInterval(c.Terminal.TargetFPS)
	c.Derived.StreamFrameInterval = frameInterval(c.Stream.TargetFPS)
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
