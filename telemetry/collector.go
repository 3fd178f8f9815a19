package telemetry

import (
	"math"

	"github.com/pthm-cable/drift/systems"
)

// Collector accumulates events within frame windows and produces WindowStats.
type Collector struct {
	windowFrames int64

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	frames        int
	repopulations int
	reflections   int
	particleSteps int
}

// NewCollector creates a new stats collector.
// windowFrames: how many frames each stats window spans.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: int64(windowFrames)}
}

// RecordStep records one frame that advanced n particles with the given
// number of velocity reflections.
func (c *Collector) RecordStep(n, reflections int) {
	c.frames++
	c.particleSteps += n
	c.reflections += reflections
}

// RecordRepopulation records a full re-population.
func (c *Collector) RecordRepopulation() {
	c.repopulations++
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowFrames
}

// Flush produces a WindowStats from the counters and a snapshot of the
// particles, then resets counters for the next window.
func (c *Collector) Flush(currentTick int64, bounds systems.Bounds, particles []systems.Particle) WindowStats {
	var reflectRate float64
	if c.particleSteps > 0 {
		reflectRate = float64(c.reflections) / float64(c.particleSteps)
	}

	speeds := make([]float64, len(particles))
	opacities := make([]float64, len(particles))
	sizes := make([]float64, len(particles))
	outside := 0
	for i, p := range particles {
		speeds[i] = math.Hypot(p.VX, p.VY)
		opacities[i] = p.Opacity
		sizes[i] = p.Size
		if p.X < 0 || p.X > bounds.Width || p.Y < 0 || p.Y > bounds.Height {
			outside++
		}
	}

	speedMean, speedStd, speedP10, speedP50, speedP90 := ComputeDistribution(speeds)
	opacityMean, opacityStd, _, _, _ := ComputeDistribution(opacities)
	sizeMean, sizeStd, _, _, _ := ComputeDistribution(sizes)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Frames:          c.frames,

		SurfaceWidth:  int(bounds.Width),
		SurfaceHeight: int(bounds.Height),
		Particles:     len(particles),
		OutOfBounds:   outside,

		Repopulations: c.repopulations,
		Reflections:   c.reflections,
		ReflectRate:   reflectRate,

		SpeedMean:   speedMean,
		SpeedStd:    speedStd,
		SpeedP10:    speedP10,
		SpeedP50:    speedP50,
		SpeedP90:    speedP90,
		OpacityMean: opacityMean,
		OpacityStd:  opacityStd,
		SizeMean:    sizeMean,
		SizeStd:     sizeStd,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.frames = 0
	c.repopulations = 0
	c.reflections = 0
	c.particleSteps = 0

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int64 {
	return c.windowFrames
}
