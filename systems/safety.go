package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/config"
)

// Repair describes one fix made by the safety pass.
type Repair struct {
	ID         uint64
	Respawned  bool // position was replaced
	NearParent bool
	Motion     bool // velocity or force was zeroed or scaled down
}

// SafetySystem restores numeric invariants at the end of a tick.
type SafetySystem struct {
	cfg *config.Config
}

// NewSafetySystem creates a new safety system.
func NewSafetySystem(cfg *config.Config) *SafetySystem {
	return &SafetySystem{cfg: cfg}
}

// ValidPosition reports whether p is finite, non-zero and inside the safe range.
func (s *SafetySystem) ValidPosition(p r2.Vec) bool {
	if !finite(p) || (p.X == 0 && p.Y == 0) {
		return false
	}
	lo, hi := s.cfg.Safety.MinPosition, s.cfg.Safety.MaxPosition
	return p.X >= lo && p.X <= hi && p.Y >= lo && p.Y <= hi
}

// Sanitize repairs pop in place and returns what it changed.
//
// An invalid position is replaced by a point within the respawn radius of the
// parent when the parent is in pop with a valid position, otherwise by a
// uniformly random point in the arena, or the arena center when no random
// point is valid. Respawned entities lose their velocity
// and force. Non-finite velocity or force is zeroed and anything faster than
// the speed cap is scaled down to it.
func (s *SafetySystem) Sanitize(rng *rand.Rand, pop []components.Entity, tick int64) []Repair {
	var positions map[uint64]r2.Vec
	var repairs []Repair

	for i := range pop {
		e := &pop[i]
		var rep Repair

		if !s.ValidPosition(e.Position) {
			if positions == nil {
				positions = s.index(pop)
			}
			e.Position, rep.NearParent = s.respawnPoint(rng, e, positions)
			e.Velocity = r2.Vec{}
			e.Force = r2.Vec{}
			rep.Respawned = true
			e.Journal.Record(components.Action{
				Kind: components.ActionRespawn,
				Tick: tick,
			}, s.cfg.Organism.HistoryLimit)
		}

		if v, changed := s.clampMotion(e.Velocity); changed {
			e.Velocity, rep.Motion = v, true
		}
		if f, changed := s.clampMotion(e.Force); changed {
			e.Force, rep.Motion = f, true
		}

		if rep.Respawned || rep.Motion {
			rep.ID = e.ID
			repairs = append(repairs, rep)
		}
	}
	return repairs
}

func (s *SafetySystem) index(pop []components.Entity) map[uint64]r2.Vec {
	m := make(map[uint64]r2.Vec, len(pop))
	for i := range pop {
		if s.ValidPosition(pop[i].Position) {
			m[pop[i].ID] = pop[i].Position
		}
	}
	return m
}

// respawnAttempts bounds the random search for a valid respawn point before
// falling back to the arena center.
const respawnAttempts = 64

func (s *SafetySystem) respawnPoint(rng *rand.Rand, e *components.Entity, positions map[uint64]r2.Vec) (r2.Vec, bool) {
	bounds := s.cfg.Derived.Bounds
	margin := e.Radius()

	if e.ParentID != nil {
		if pp, ok := positions[*e.ParentID]; ok {
			offset := r2.Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}
			p := clampInto(r2.Add(pp, r2.Scale(s.cfg.Safety.RespawnRadius, offset)), bounds, margin)
			if s.ValidPosition(p) {
				return p, true
			}
		}
	}
	for range respawnAttempts {
		p := randomIn(rng, bounds, margin)
		if s.ValidPosition(p) {
			return p, false
		}
	}
	return s.cfg.Derived.Center, false
}

func (s *SafetySystem) clampMotion(v r2.Vec) (r2.Vec, bool) {
	if !finite(v) {
		return r2.Vec{}, true
	}
	if r2.Norm(v) > s.cfg.Safety.MaxSpeed {
		return limit(v, s.cfg.Safety.MaxSpeed), true
	}
	return v, false
}
