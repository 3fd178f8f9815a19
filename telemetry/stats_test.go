package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/drift/systems"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	// Unsorted on purpose; the input must not be reordered
	values := []float64{1.0, 0.1, 0.9, 0.2, 0.8, 0.3, 0.7, 0.4, 0.6, 0.5}
	mean, std, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	// Population std of 0.1..1.0
	if math.Abs(std-0.2872) > 0.001 {
		t.Errorf("std = %v, want ~0.287", std)
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
	if values[0] != 1.0 || values[1] != 0.1 {
		t.Error("input slice was modified")
	}
}

func TestComputeDistributionEmpty(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeDistribution(nil)

	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(10)
	c.RecordRepopulation()
	for i := 0; i < 10; i++ {
		c.RecordStep(4, 1)
	}

	if c.ShouldFlush(9) {
		t.Error("window should not be complete at tick 9")
	}
	if !c.ShouldFlush(10) {
		t.Fatal("window should be complete at tick 10")
	}

	bounds := systems.Bounds{Width: 100, Height: 50}
	particles := []systems.Particle{
		{X: 10, Y: 10, VX: 3, VY: 4, Size: 1, Opacity: 0.2},
		{X: 20, Y: 20, VX: 0, VY: 1, Size: 2, Opacity: 0.4},
		{X: 100.5, Y: 20, VX: 1, VY: 0, Size: 3, Opacity: 0.6},
		{X: 30, Y: -0.1, VX: 0, VY: 0, Size: 2, Opacity: 0.4},
	}
	stats := c.Flush(10, bounds, particles)

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 10 || stats.Frames != 10 {
		t.Errorf("unexpected window %d..%d frames=%d", stats.WindowStartTick, stats.WindowEndTick, stats.Frames)
	}
	if stats.SurfaceWidth != 100 || stats.SurfaceHeight != 50 {
		t.Errorf("unexpected surface %dx%d", stats.SurfaceWidth, stats.SurfaceHeight)
	}
	if stats.Particles != 4 || stats.OutOfBounds != 2 {
		t.Errorf("expected 4 particles with 2 outside, got %d / %d", stats.Particles, stats.OutOfBounds)
	}
	if stats.Repopulations != 1 || stats.Reflections != 10 {
		t.Errorf("unexpected counters repop=%d refl=%d", stats.Repopulations, stats.Reflections)
	}
	if math.Abs(stats.ReflectRate-0.25) > 1e-9 {
		t.Errorf("reflect rate = %v, want 0.25", stats.ReflectRate)
	}
	if math.Abs(stats.SizeMean-2) > 1e-9 || math.Abs(stats.OpacityMean-0.4) > 1e-9 {
		t.Errorf("unexpected size/opacity means %v / %v", stats.SizeMean, stats.OpacityMean)
	}
	// Speeds are 5, 1, 1, 0
	if math.Abs(stats.SpeedMean-1.75) > 1e-9 {
		t.Errorf("speed mean = %v, want 1.75", stats.SpeedMean)
	}

	// Counters reset and the next window starts where this one ended
	if c.ShouldFlush(15) {
		t.Error("new window should start at tick 10")
	}
	next := c.Flush(20, bounds, nil)
	if next.WindowStartTick != 10 || next.Frames != 0 || next.Repopulations != 0 || next.ReflectRate != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestNewCollectorClampsWindow(t *testing.T) {
	if got := NewCollector(0).WindowFrames(); got != 1 {
		t.Errorf("expected window clamped to 1, got %d", got)
	}
}
