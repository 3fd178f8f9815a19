package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`
	Frames          int   `csv:"frames"`

	// Surface and population at window end
	SurfaceWidth  int `csv:"surface_w"`
	SurfaceHeight int `csv:"surface_h"`
	Particles     int `csv:"particles"`
	OutOfBounds   int `csv:"out_of_bounds"` // particles outside the surface, awaiting reflection

	// Events during window
	Repopulations int     `csv:"repopulations"`
	Reflections   int     `csv:"reflections"`
	ReflectRate   float64 `csv:"reflect_rate"` // reflections per particle-step

	// Distributions (sampled at window end)
	SpeedMean   float64 `csv:"speed_mean"`
	SpeedStd    float64 `csv:"speed_std"`
	SpeedP10    float64 `csv:"speed_p10"`
	SpeedP50    float64 `csv:"speed_p50"`
	SpeedP90    float64 `csv:"speed_p90"`
	OpacityMean float64 `csv:"opacity_mean"`
	OpacityStd  float64 `csv:"opacity_std"`
	SizeMean    float64 `csv:"size_mean"`
	SizeStd     float64 `csv:"size_std"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, population standard deviation and
// percentiles. Returns all zeros for an empty slice.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Int("frames", s.Frames),
		slog.Int("surface_w", s.SurfaceWidth),
		slog.Int("surface_h", s.SurfaceHeight),
		slog.Int("particles", s.Particles),
		slog.Int("out_of_bounds", s.OutOfBounds),
		slog.Int("repopulations", s.Repopulations),
		slog.Int("reflections", s.Reflections),
		slog.Float64("reflect_rate", s.ReflectRate),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("opacity_mean", s.OpacityMean),
		slog.Float64("size_mean", s.SizeMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"frames", s.Frames,
		"surface_w", s.SurfaceWidth,
		"surface_h", s.SurfaceHeight,
		"particles", s.Particles,
		"out_of_bounds", s.OutOfBounds,
		"repopulations", s.Repopulations,
		"reflections", s.Reflections,
		"reflect_rate", s.ReflectRate,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"opacity_mean", s.OpacityMean,
	)
}
