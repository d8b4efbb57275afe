// Package systems contains the per-entity rules of a simulation tick.
package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/config"
)

// PhysicsSystem integrates motion inside the arena.
type PhysicsSystem struct {
	friction float64
	bounds   r2.Box
}

// NewPhysicsSystem creates a new physics system.
func NewPhysicsSystem(cfg *config.Config) *PhysicsSystem {
	return &PhysicsSystem{
		friction: cfg.Physics.Friction,
		bounds:   cfg.Derived.Bounds,
	}
}

// Advance returns e moved forward one tick. The input is not modified.
//
// Velocity is damped by friction, then the force input is added and the
// position moves by the new velocity. On each axis where the entity's circle
// crosses a wall the position is clamped to the wall and that velocity
// component flips sign. Age increments and the force input resets to zero.
func (s *PhysicsSystem) Advance(e components.Entity) components.Entity {
	out := components.Clone(e)

	vel := r2.Add(r2.Scale(s.friction, e.Velocity), e.Force)
	pos := r2.Add(e.Position, vel)
	r := e.Radius()

	if pos.X-r < s.bounds.Min.X {
		pos.X = s.bounds.Min.X + r
		vel.X = -vel.X
	} else if pos.X+r > s.bounds.Max.X {
		pos.X = s.bounds.Max.X - r
		vel.X = -vel.X
	}
	if pos.Y-r < s.bounds.Min.Y {
		pos.Y = s.bounds.Min.Y + r
		vel.Y = -vel.Y
	} else if pos.Y+r > s.bounds.Max.Y {
		pos.Y = s.bounds.Max.Y - r
		vel.Y = -vel.Y
	}

	out.Position = pos
	out.Velocity = vel
	out.Force = r2.Vec{}
	out.Age = e.Age + 1
	return out
}

// Update advances every entity in pop into a new slice.
func (s *PhysicsSystem) Update(pop []components.Entity) []components.Entity {
	out := make([]components.Entity, len(pop))
	for i := range pop {
		out[i] = s.Advance(pop[i])
	}
	return out
}
