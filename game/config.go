package game

import (
	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/systems"
)

// Options holds configuration for animation construction.
type Options struct {
	Seed int64        // RNG seed, ignored when Rand is set
	Rand systems.Rand // Randomness source for populating, nil = rand.New(rand.NewSource(Seed))

	Params systems.FieldParams

	LogStats    bool   // Log window and perf stats via slog
	StatsWindow int    // Frames per stats window
	PerfWindow  int    // Steps averaged by the perf collector
	OutputDir   string // CSV output directory, empty = disabled

	// Config is snapshotted into OutputDir when both are set.
	Config *config.Config
}

// DefaultOptions returns options matching the embedded defaults.
func DefaultOptions() Options {
	return Options{
		Params:      systems.DefaultFieldParams(),
		StatsWindow: 600,
		PerfWindow:  120,
	}
}

// OptionsFromConfig builds options from a loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Params:      systems.FieldParamsFromConfig(cfg.Field),
		StatsWindow: cfg.Telemetry.StatsWindow,
		PerfWindow:  cfg.Telemetry.PerfCollectorWindow,
		Config:      cfg,
	}
}
