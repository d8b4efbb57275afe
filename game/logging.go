package game

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/affinity/traits"
)

// logReport logs a computed step at debug level, and every safety repair
// as a warning.
func (g *Game) logReport(r StepReport) {
	for _, rep := range r.Repairs {
		g.log.Warn("repaired entity",
			"step", r.Step,
			"entity_id", rep.ID,
			"respawned", rep.Respawned,
			"near_parent", rep.NearParent,
			"motion", rep.Motion,
		)
	}

	if !g.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	g.log.Debug("step",
		"step", r.Step,
		"duration_us", r.Duration.Microseconds(),
		"births", r.Births,
		"deaths", r.Deaths,
		"bites", r.Bites,
		"dropped", r.Dropped,
		"repairs", len(r.Repairs),
	)
}

// LogWorldState logs a summary of the step being viewed.
func (g *Game) LogWorldState() {
	step := g.Current()
	g.log.Info("world",
		"step", step.Number,
		"latest", g.Latest(),
		"organisms", step.Count(traits.Organism),
		"nutrients", step.Count(traits.Nutrient),
		"lineages", g.lineages.ActiveLineages(),
		"hall_lineages", g.hall.Lineages(),
	)
}
