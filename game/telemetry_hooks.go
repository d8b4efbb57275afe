package game

// flushTelemetry closes the stats window when due and handles bookmarks.
func (g *Game) flushTelemetry(step SimulationStep) {
	if !g.collector.ShouldFlush(step.Number) {
		return
	}

	stats := g.collector.Flush(step.Number, step.Objects, g.lineages.ActiveLineageCount())
	perfStats := g.engine.Perf().Stats()

	if g.onStats != nil {
		g.onStats(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.output != nil {
		if err := g.output.WriteTelemetry(stats); err != nil {
			g.log.Error("failed to write telemetry", "error", err)
		}
		if err := g.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			g.log.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range g.bookmarks.Check(stats) {
		g.marks = append(g.marks, bm)
		if g.logStats {
			bm.LogBookmark()
		}
		if g.output != nil {
			if err := g.output.WriteBookmark(bm); err != nil {
				g.log.Error("failed to write bookmark", "error", err)
			}
		}
	}
}
