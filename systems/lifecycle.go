package systems

import (
	"errors"
	"math/rand"
	"strconv"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

// ErrMissingDNA is returned for an organism without a genome.
var ErrMissingDNA = errors.New("systems: organism has no dna")

// IDSource issues unique entity IDs.
type IDSource struct {
	last atomic.Uint64
}

// NewIDSource returns a source whose first ID is after.
func NewIDSource(after uint64) *IDSource {
	s := &IDSource{}
	s.last.Store(after)
	return s
}

// Next returns a fresh ID.
func (s *IDSource) Next() uint64 {
	return s.last.Add(1)
}

// Observe makes sure future IDs are greater than id.
func (s *IDSource) Observe(id uint64) {
	for {
		cur := s.last.Load()
		if id <= cur || s.last.CompareAndSwap(cur, id) {
			return
		}
	}
}

// Last returns the most recently issued or observed ID.
func (s *IDSource) Last() uint64 {
	return s.last.Load()
}

// ShouldDie reports whether an organism is past its maximum age or out of energy.
func ShouldDie(e *components.Entity, maxAge int) bool {
	return e.Age >= maxAge || e.Energy <= 0
}

// CheckOrganism reports invariant violations that prevent an organism from
// being processed.
func CheckOrganism(e *components.Entity) error {
	if e.DNA == nil {
		return ErrMissingDNA
	}
	return genome.Validate(e.DNA)
}

// Lifecycle creates entities and decides reproduction.
type Lifecycle struct {
	cfg *config.Config
	ids *IDSource
}

// NewLifecycle creates a new lifecycle system.
func NewLifecycle(cfg *config.Config, ids *IDSource) *Lifecycle {
	return &Lifecycle{cfg: cfg, ids: ids}
}

// IDs returns the ID source used for new entities.
func (l *Lifecycle) IDs() *IDSource {
	return l.ids
}

// ShouldReproduce decides whether observer reproduces this tick. organisms is
// the live organism count, including births already made this tick.
func (l *Lifecycle) ShouldReproduce(rng *rand.Rand, observer *components.Entity, organisms int) bool {
	if organisms >= l.cfg.Population.MaxOrganisms {
		return false
	}
	if observer.Energy < genome.Express(rng, observer.DNA, traits.MinimumEnergyToReproduce) {
		return false
	}
	if observer.Age <= l.cfg.Organism.MaturityAge {
		return false
	}
	return rng.Float64() < genome.Express(rng, observer.DNA, traits.ReproductionProbability)
}

// NewOrganism creates an organism from a founder genome. The genome is mutated
// first and the organism starts with the default energy.
func (l *Lifecycle) NewOrganism(rng *rand.Rand, dna *genome.DNA) components.Entity {
	child := genome.Mutate(rng, dna, l.mutation())
	e := l.organism(rng, child)
	e.Energy = l.cfg.Organism.DefaultEnergy
	return e
}

// Offspring creates a child of parent. The child's energy is the parent's
// energy times the child's expressed gift fraction.
func (l *Lifecycle) Offspring(rng *rand.Rand, parent *components.Entity) components.Entity {
	child := genome.Mutate(rng, parent.DNA, l.mutation())
	e := l.organism(rng, child)
	e.Energy = parent.Energy * genome.Express(rng, child, traits.EnergyGiftToOffspring)
	id := parent.ID
	e.ParentID = &id
	return e
}

// Reproduce spawns a child of parent, deducts exactly the gifted energy from
// the parent and records the event in the parent's journal.
func (l *Lifecycle) Reproduce(rng *rand.Rand, parent *components.Entity, tick int64) components.Entity {
	child := l.Offspring(rng, parent)
	parent.Energy -= child.Energy
	parent.Journal.Record(components.Action{
		Kind:   components.ActionReproduce,
		Tick:   tick,
		Detail: "child " + strconv.FormatUint(child.ID, 10),
	}, l.cfg.Organism.HistoryLimit)
	return child
}

func (l *Lifecycle) organism(rng *rand.Rand, dna *genome.DNA) components.Entity {
	size := l.cfg.Organism.Size
	jitter := l.cfg.Organism.InitialForceJitter
	return components.Entity{
		Identity: components.Identity{ID: l.ids.Next(), Kind: traits.Organism},
		Motion: components.Motion{
			Position: randomIn(rng, l.cfg.Derived.Bounds, size/2),
			Force: r2.Vec{
				X: (rng.Float64()*2 - 1) * jitter,
				Y: (rng.Float64()*2 - 1) * jitter,
			},
		},
		Appearance: components.Appearance{Color: components.OrganismColor, Size: size},
		Genome:     components.Genome{DNA: dna},
	}
}

// NewNutrient creates a nutrient. With a parent it appears within the spawn
// radius of the parent, otherwise anywhere in the arena.
func (l *Lifecycle) NewNutrient(rng *rand.Rand, parent *components.Entity) components.Entity {
	size := l.cfg.Nutrient.Size
	bounds := l.cfg.Derived.Bounds

	var pos r2.Vec
	var parentID *uint64
	if parent != nil {
		offset := r2.Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}
		pos = clampInto(r2.Add(parent.Position, r2.Scale(l.cfg.Nutrient.SpawnRadius, offset)), bounds, size/2)
		id := parent.ID
		parentID = &id
	} else {
		pos = randomIn(rng, bounds, size/2)
	}

	return components.Entity{
		Identity:   components.Identity{ID: l.ids.Next(), Kind: traits.Nutrient, ParentID: parentID},
		Motion:     components.Motion{Position: pos},
		Vitals:     components.Vitals{Energy: l.cfg.Nutrient.Energy},
		Appearance: components.Appearance{Color: components.NutrientColor, Size: size},
	}
}

func (l *Lifecycle) mutation() genome.MutationParams {
	return genome.MutationParams{
		Rate:         l.cfg.Organism.MutationRate,
		Magnitude:    l.cfg.Mutation.Magnitude,
		CopyGeneRate: l.cfg.Mutation.CopyGeneRate,
	}
}
