package components

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/traits"
)

// Percept is a flat snapshot of a perceived entity. It is never a live
// reference: the entity it describes may be gone by the next tick.
type Percept struct {
	ID       uint64
	Kind     traits.Kind
	ParentID *uint64
	Position r2.Vec
	Velocity r2.Vec
	Energy   float64
	Age      int
	Size     float64
}

// PerceptOf snapshots e.
func PerceptOf(e *Entity) Percept {
	return Percept{
		ID:       e.ID,
		Kind:     e.Kind,
		ParentID: copyID(e.ParentID),
		Position: e.Position,
		Velocity: e.Velocity,
		Energy:   e.Energy,
		Age:      e.Age,
		Size:     e.Size,
	}
}

// Engram is one working memory entry. Timestamps are tick numbers.
type Engram struct {
	Subject   Percept
	Distance  float64
	CreatedAt int64
	UpdatedAt int64
}

func copyID(id *uint64) *uint64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
