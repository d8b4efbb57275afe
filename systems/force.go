package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

// ForceWithAffinity returns the force an observer at cur feels from a target at
// target. The magnitude is min(maxForce, multiplier*affinity/d^2) along the unit
// vector toward the target, so negative affinity pushes away. Coincident points
// produce no force.
func ForceWithAffinity(cur, target r2.Vec, affinity, multiplier, maxForce float64) r2.Vec {
	delta := r2.Sub(target, cur)
	d2 := r2.Norm2(delta)
	if d2 == 0 || !finite(delta) {
		return r2.Vec{}
	}
	magnitude := min(maxForce, multiplier*affinity/d2)
	return r2.Scale(magnitude, r2.Unit(delta))
}

// ForceField computes genetically driven forces between entities.
type ForceField struct {
	multiplier float64
	maxForce   float64
}

// NewForceField creates a force field from the physics constants.
func NewForceField(cfg *config.Config) *ForceField {
	return &ForceField{
		multiplier: cfg.Physics.ForceMultiplier,
		maxForce:   cfg.Physics.MaxForce,
	}
}

// Between returns the force observer feels from target, using a fresh
// expression of the observer's affinity gene for the target's kind.
func (f *ForceField) Between(rng *rand.Rand, observer, target *components.Entity) r2.Vec {
	affinity := genome.Express(rng, observer.DNA, traits.Affinity(target.Kind))
	return ForceWithAffinity(observer.Position, target.Position, affinity, f.multiplier, f.maxForce)
}

// FromSample sums the forces observer feels from every entity in sample.
func (f *ForceField) FromSample(rng *rand.Rand, observer *components.Entity, sample []*components.Entity) r2.Vec {
	var total r2.Vec
	for _, other := range sample {
		total = r2.Add(total, f.Between(rng, observer, other))
	}
	return total
}
