// Package game wires the particle field, the surface manager and the frame
// scheduler into one animation instance.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/drift/frame"
	"github.com/pthm-cable/drift/surface"
	"github.com/pthm-cable/drift/systems"
	"github.com/pthm-cable/drift/telemetry"
)

// Animation holds the complete backdrop state for one host page/window.
// All methods must be called from the goroutine that flushes the scheduler.
type Animation struct {
	surface surface.Surface
	manager *surface.Manager
	field   *systems.ParticleField
	sched   frame.Scheduler
	rng     systems.Rand

	// State
	tick    int64
	running bool
	pending frame.Handle

	// Telemetry
	perf          *telemetry.PerfCollector
	collector     *telemetry.Collector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// New creates an animation drawing onto s, sized by viewport and driven by
// sched. Nothing is attached or drawn until Initialize.
func New(viewport surface.Viewport, s surface.Surface, sched frame.Scheduler, opts Options) (*Animation, error) {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(opts.Seed))
	}
	if opts.Params.AreaPerParticle == 0 {
		opts.Params = systems.DefaultFieldParams()
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if opts.Config != nil {
		if err := output.WriteConfig(opts.Config); err != nil {
			output.Close()
			return nil, fmt.Errorf("writing config snapshot: %w", err)
		}
	}

	a := &Animation{
		surface:   s,
		field:     systems.NewParticleField(opts.Params),
		sched:     sched,
		rng:       rng,
		perf:      telemetry.NewPerfCollector(opts.PerfWindow),
		collector: telemetry.NewCollector(opts.StatsWindow),
		output:    output,
		logStats:  opts.LogStats,
	}
	a.manager = surface.NewManager(viewport, s, surface.RepopulatorFunc(a.repopulate))

	if dir := output.Dir(); dir != "" {
		slog.Info("output enabled", "dir", dir)
	}
	return a, nil
}

// Initialize attaches the surface, sizes it to the viewport and seeds the
// first population.
func (a *Animation) Initialize() error {
	if err := a.manager.Initialize(); err != nil {
		return fmt.Errorf("initializing surface: %w", err)
	}
	slog.Info("initialized",
		"width", a.manager.Width(),
		"height", a.manager.Height(),
		"particles", a.field.Count(),
	)
	return nil
}

// Resize handles a viewport resize: the surface follows the new viewport
// size and the population is replaced. Every call re-populates.
func (a *Animation) Resize() error {
	if err := a.manager.OnViewportResize(); err != nil {
		return fmt.Errorf("resizing surface: %w", err)
	}
	return nil
}

// repopulate is the manager's re-population signal.
func (a *Animation) repopulate(width, height int) {
	a.field.Populate(width, height, a.rng)
	a.collector.RecordRepopulation()
	slog.Debug("repopulated", "width", width, "height", height, "particles", a.field.Count())
}

// Start schedules the first step; each step re-schedules the next until
// Stop. Calling Start while running does nothing.
func (a *Animation) Start() error {
	if !a.manager.Initialized() {
		return surface.ErrNotInitialized
	}
	if a.running {
		return nil
	}
	a.running = true
	a.pending = a.sched.Schedule(a.frame)
	slog.Debug("started", "tick", a.tick)
	return nil
}

// Stop cancels the pending step. No step runs after Stop returns.
func (a *Animation) Stop() {
	if !a.running {
		return
	}
	a.running = false
	a.sched.Cancel(a.pending)
	a.pending = 0
	slog.Debug("stopped", "tick", a.tick)
}

// frame is the scheduled callback: one step, then re-schedule.
func (a *Animation) frame() {
	a.pending = 0
	if !a.running {
		return
	}
	a.Step()
	if a.running {
		a.pending = a.sched.Schedule(a.frame)
	}
}

// Step renders one frame: clear, advance and draw every particle, present.
func (a *Animation) Step() {
	a.perf.RecordFrame()
	a.perf.StartTick()

	a.perf.StartPhase(telemetry.PhaseClear)
	a.surface.Clear()

	a.perf.StartPhase(telemetry.PhaseStep)
	reflections := a.field.Step(a.manager.Bounds(), a.surface)

	a.perf.StartPhase(telemetry.PhasePresent)
	a.surface.Present()

	a.tick++

	a.perf.StartPhase(telemetry.PhaseTelemetry)
	a.collector.RecordStep(a.field.Count(), reflections)
	a.flushTelemetry()

	a.perf.EndTick()
}

// Teardown stops the animation, detaches the surface and closes output.
// The first error is returned.
func (a *Animation) Teardown() error {
	a.Stop()
	var errs []error
	if err := a.manager.Teardown(); err != nil {
		errs = append(errs, fmt.Errorf("tearing down surface: %w", err))
	}
	if err := a.output.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing output: %w", err))
	}
	a.output = nil
	if len(errs) > 0 {
		return errs[0]
	}
	slog.Debug("torn down", "tick", a.tick)
	return nil
}

// Running reports whether a step is scheduled.
func (a *Animation) Running() bool {
	return a.running
}

// Tick returns the number of steps run so far.
func (a *Animation) Tick() int64 {
	return a.tick
}

// ParticleCount returns the current population size.
func (a *Animation) ParticleCount() int {
	return a.field.Count()
}

// Particles returns a copy of the current population.
func (a *Animation) Particles() []systems.Particle {
	return a.field.Particles()
}

// Size returns the surface size in pixels.
func (a *Animation) Size() (width, height int) {
	return a.manager.Width(), a.manager.Height()
}

// PerfStats returns the rolling performance stats.
func (a *Animation) PerfStats() telemetry.PerfStats {
	return a.perf.Stats()
}

// SetStatsCallback registers fn to receive each flushed stats window.
func (a *Animation) SetStatsCallback(fn func(telemetry.WindowStats)) {
	a.statsCallback = fn
}

// IsLifecycleError reports whether err comes from calling a lifecycle
// method in the wrong state.
func IsLifecycleError(err error) bool {
	return errors.Is(err, surface.ErrNotInitialized) || errors.Is(err, surface.ErrAlreadyInitialized)
}
