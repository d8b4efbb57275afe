package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/traits"
)

// Neighborhood is the working set of the tick being computed.
type Neighborhood interface {
	Pantry
	// Tick returns the number of the tick being computed.
	Tick() int64
	// Snapshot returns the post-physics population. It must not be modified.
	Snapshot() []components.Entity
	// Count returns the live number of entities of a kind, births included.
	Count(kind traits.Kind) int
}

// Outcome is what processing one entity produced.
type Outcome struct {
	Died   bool
	Self   components.Entity
	Child  *components.Entity
	Eaten  uint64 // ID of the bitten entity, valid when Bitten > 0
	Bitten float64
}

// OrganismSystem runs the per-organism behavior of a tick.
type OrganismSystem struct {
	cfg       *config.Config
	forces    *ForceField
	feeding   *FeedingSystem
	lifecycle *Lifecycle
}

// NewOrganismSystem creates a new organism behavior system.
func NewOrganismSystem(cfg *config.Config, lifecycle *Lifecycle) *OrganismSystem {
	return &OrganismSystem{
		cfg:       cfg,
		forces:    NewForceField(cfg),
		feeding:   NewFeedingSystem(cfg),
		lifecycle: lifecycle,
	}
}

// Process runs one organism through death, sensing, force, memory, energy
// cost, eating and reproduction, in that order. e must be the organism's live
// state and is not modified; the updated organism is returned in Outcome.Self.
func (s *OrganismSystem) Process(rng *rand.Rand, n Neighborhood, e components.Entity) Outcome {
	if ShouldDie(&e, s.cfg.Organism.MaxAge) {
		return Outcome{Died: true}
	}

	self := components.Clone(e)

	sample := RandomSample(rng, &self, n.Snapshot(), SampleSize(rng, &self))

	var force r2.Vec
	if self.Energy > s.cfg.Organism.LowEnergyThreshold {
		force = s.forces.FromSample(rng, &self, sample)
	}
	self.Force = force
	self.Engrams = WorkingMemory(&self, sample, n.Tick(), s.cfg.Organism.WorkingMemorySize)
	self.Energy -= r2.Norm2(force) + s.cfg.Organism.BaselineCost

	out := Outcome{}
	if target, ok := s.feeding.ShouldEat(rng, &self, self.Engrams); ok {
		if bite := s.feeding.Bite(n, &self, target); bite > 0 {
			out.Eaten, out.Bitten = target.ID, bite
			self.Journal.Record(components.Action{
				Kind:   components.ActionEat,
				Tick:   n.Tick(),
				Detail: target.Kind.String(),
			}, s.cfg.Organism.HistoryLimit)
		}
	}

	if s.lifecycle.ShouldReproduce(rng, &self, n.Count(traits.Organism)) {
		child := s.lifecycle.Reproduce(rng, &self, n.Tick())
		out.Child = &child
	}

	out.Self = self
	return out
}
