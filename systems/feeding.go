package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

// minPriorityDistance keeps eating priority finite for touching entities.
const minPriorityDistance = 1e-6

// Pantry is the live, same-tick view of entity energy. Bites go through it so
// that a target's loss is visible to everything processed after the bite.
type Pantry interface {
	Energy(id uint64) (float64, bool)
	Take(id uint64, amount float64) float64
}

// FeedingSystem picks eating targets from working memory and transfers energy.
type FeedingSystem struct {
	minDistance float64
	maxBite     float64
}

// NewFeedingSystem creates a new feeding system.
func NewFeedingSystem(cfg *config.Config) *FeedingSystem {
	return &FeedingSystem{
		minDistance: cfg.Organism.MinEatingDistance,
		maxBite:     cfg.Organism.MaxBiteSize,
	}
}

// ShouldEat returns the remembered entity with the highest eating priority
// among those within eating distance. Priority is the expressed eating gene
// for the target's kind divided by distance. There is no priority floor: when
// every candidate is negative the least negative one is still chosen.
func (s *FeedingSystem) ShouldEat(rng *rand.Rand, observer *components.Entity, engrams []components.Engram) (components.Percept, bool) {
	var (
		best     components.Percept
		bestPrio = math.Inf(-1)
		found    bool
	)
	for _, g := range engrams {
		if g.Distance > s.minDistance || g.Subject.ID == observer.ID {
			continue
		}
		gene := genome.Express(rng, observer.DNA, traits.Eating(g.Subject.Kind))
		prio := gene / max(g.Distance, minPriorityDistance)
		if !found || prio > bestPrio {
			best, bestPrio, found = g.Subject, prio, true
		}
	}
	return best, found
}

// BiteSize returns min(max bite, target energy), never negative.
func (s *FeedingSystem) BiteSize(targetEnergy float64) float64 {
	return clampFloat(targetEnergy, 0, s.maxBite)
}

// Bite moves energy from target to observer through the pantry and returns
// the amount moved. A target that is no longer alive yields nothing.
func (s *FeedingSystem) Bite(p Pantry, observer *components.Entity, target components.Percept) float64 {
	energy, ok := p.Energy(target.ID)
	if !ok {
		return 0
	}
	bite := s.BiteSize(energy)
	if bite <= 0 {
		return 0
	}
	taken := p.Take(target.ID, bite)
	observer.Energy += taken
	return taken
}
