package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/traits"
)

// NutrientSystem runs stochastic reproduction and survival for nutrients.
type NutrientSystem struct {
	cfg       *config.Config
	lifecycle *Lifecycle
}

// NewNutrientSystem creates a new nutrient system.
func NewNutrientSystem(cfg *config.Config, lifecycle *Lifecycle) *NutrientSystem {
	return &NutrientSystem{cfg: cfg, lifecycle: lifecycle}
}

// SurvivalChance returns the per-tick probability that a nutrient of the given
// age is retained. It is constant up to the survival age and decays
// geometrically after it.
func (s *NutrientSystem) SurvivalChance(age int) float64 {
	nc := s.cfg.Nutrient
	if age <= nc.SurvivalAge {
		return nc.SurvivalChance
	}
	return nc.SurvivalChance * math.Pow(nc.SurvivalDecay, float64(age-nc.SurvivalAge))
}

// Process decides one nutrient's fate. An eaten-out nutrient dies. Otherwise a
// mature nutrient may spawn a child nearby while under the cap, and the parent
// is kept if it survives its draw.
func (s *NutrientSystem) Process(rng *rand.Rand, n Neighborhood, e components.Entity) Outcome {
	if e.Energy <= 0 {
		return Outcome{Died: true}
	}

	out := Outcome{}
	nc := s.cfg.Nutrient
	if n.Count(traits.Nutrient) < s.cfg.Population.MaxNutrients &&
		e.Age > nc.MaturityAge &&
		rng.Float64() < nc.ReproduceChance {
		child := s.lifecycle.NewNutrient(rng, &e)
		out.Child = &child
	}

	if rng.Float64() >= s.SurvivalChance(e.Age) {
		out.Died = true
		return out
	}
	out.Self = components.Clone(e)
	return out
}
