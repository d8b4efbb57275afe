// Package components defines the components an entity is made of. They double
// as ECS components inside the per-tick working set.
package components

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

// Identity is immutable after creation.
type Identity struct {
	ID   uint64
	Kind traits.Kind
	// ParentID is a non-owning back reference, nil for founders.
	ParentID *uint64
}

// HasParent reports whether the entity was born from another entity.
func (i Identity) HasParent() bool {
	return i.ParentID != nil
}

// Motion holds an entity's physical state. r2.Vec is a value type, so copying
// Motion never shares vectors.
type Motion struct {
	Position r2.Vec
	Velocity r2.Vec
	Force    r2.Vec // input for the next physics step, reset to zero after integration
}

// Vitals holds the metabolic state.
type Vitals struct {
	Energy float64
	Age    int
}

// Color is an RGBA display color.
type Color struct {
	R, G, B, A uint8
}

// Appearance holds display attributes. Size also sets the collision radius (Size/2).
type Appearance struct {
	Color Color
	Size  float64
}

// Radius returns the collision radius.
func (a Appearance) Radius() float64 {
	return a.Size / 2
}

// Genome holds an organism's DNA. Nutrients carry a nil DNA.
type Genome struct {
	DNA *genome.DNA
}

// Memory is an organism's working memory, nearest first.
type Memory struct {
	Engrams []Engram
}

// Journal is the entity's action history, oldest first.
type Journal struct {
	Actions []Action
}

// Entity is an organism or a nutrient.
type Entity struct {
	Identity
	Motion
	Vitals
	Appearance
	Genome
	Memory
	Journal
}

// IsOrganism reports whether e is an organism.
func (e *Entity) IsOrganism() bool {
	return e.Kind == traits.Organism
}

// IsNutrient reports whether e is a nutrient.
func (e *Entity) IsNutrient() bool {
	return e.Kind == traits.Nutrient
}

// Lineage returns the genome lineage name, or "" for nutrients.
func (e *Entity) Lineage() string {
	if e.DNA == nil {
		return ""
	}
	return e.DNA.Lineage
}

// Default display colors.
var (
	OrganismColor = Color{R: 230, G: 90, B: 70, A: 255}
	NutrientColor = Color{R: 90, G: 200, B: 110, A: 255}
)
