package game

import "log/slog"

// flushTelemetry closes the stats window when it is due.
func (a *Animation) flushTelemetry() {
	if !a.collector.ShouldFlush(a.tick) {
		return
	}

	stats := a.collector.Flush(a.tick, a.manager.Bounds(), a.field.Particles())
	perfStats := a.perf.Stats()

	if a.statsCallback != nil {
		a.statsCallback(stats)
	}

	if a.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := a.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := a.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
