package game

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/systems"
	"github.com/pthm-cable/affinity/telemetry"
	"github.com/pthm-cable/affinity/traits"
)

// SimulationStep is the whole population at one tick. Steps are values:
// nothing in a step is shared with any other step.
type SimulationStep struct {
	Number  int64
	Objects []components.Entity
}

// Count returns the number of entities of a kind.
func (s SimulationStep) Count(kind traits.Kind) int {
	n := 0
	for i := range s.Objects {
		if s.Objects[i].Kind == kind {
			n++
		}
	}
	return n
}

// Find returns the entity with the given id.
func (s SimulationStep) Find(id uint64) (components.Entity, bool) {
	for i := range s.Objects {
		if s.Objects[i].ID == id {
			return s.Objects[i], true
		}
	}
	return components.Entity{}, false
}

// Nearest returns the entity whose center is closest to p, considering only
// entities whose body contains p or whose center is within slack of it.
func (s SimulationStep) Nearest(p r2.Vec, slack float64) (components.Entity, bool) {
	best := -1
	bestDist := 0.0
	for i := range s.Objects {
		e := &s.Objects[i]
		d := r2.Norm(r2.Sub(e.Position, p))
		if d > max(e.Radius(), slack) {
			continue
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return components.Entity{}, false
	}
	return s.Objects[best], true
}

// MaxID returns the highest entity id in the step, or 0 when empty.
func (s SimulationStep) MaxID() uint64 {
	var m uint64
	for i := range s.Objects {
		m = max(m, s.Objects[i].ID)
	}
	return m
}

// Clone returns a deep copy of the step.
func (s SimulationStep) Clone() SimulationStep {
	return SimulationStep{Number: s.Number, Objects: components.CloneAll(s.Objects)}
}

// StepReport describes how a step was computed.
type StepReport struct {
	Step     int64
	Duration time.Duration
	Phases   map[string]time.Duration
	// Organisms holds one processing duration per organism, in processing order.
	Organisms []time.Duration

	Births  int
	Deaths  int
	Bites   int
	Dropped int
	Repairs []systems.Repair

	Events []telemetry.Event
}
