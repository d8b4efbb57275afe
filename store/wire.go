package store

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/game"
	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

// Vec is a vector as plain numbers.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func toVec(v r2.Vec) Vec { return Vec{X: v.X, Y: v.Y} }

func (v Vec) vec() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

func copyID(id *uint64) *uint64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// Percept is the wire form of a remembered entity.
type Percept struct {
	ID       uint64      `json:"id"`
	Type     traits.Kind `json:"type"`
	ParentID *uint64     `json:"parentId"`
	Position Vec         `json:"position"`
	Velocity Vec         `json:"velocity"`
	Energy   float64     `json:"energy"`
	Age      int         `json:"age"`
	Size     float64     `json:"size"`
}

// Engram is the wire form of a working memory entry.
type Engram struct {
	Entity    Percept `json:"entity"`
	Distance  float64 `json:"distance"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}

// Action is the wire form of a journal entry.
type Action struct {
	Type   string `json:"type"`
	Tick   int64  `json:"tick"`
	Detail string `json:"detail,omitempty"`
}

// Entity is the wire form of an entity.
type Entity struct {
	ID            uint64           `json:"id"`
	Type          traits.Kind      `json:"type"`
	ParentID      *uint64          `json:"parentId"`
	Position      Vec              `json:"position"`
	Velocity      Vec              `json:"velocity"`
	ForceInput    Vec              `json:"forceInput"`
	Energy        float64          `json:"energy"`
	Age           int              `json:"age"`
	Size          float64          `json:"size"`
	Color         components.Color `json:"color"`
	DNA           *genome.DNA      `json:"dna,omitempty"`
	WorkingMemory []Engram         `json:"workingMemory,omitempty"`
	ActionHistory []Action         `json:"actionHistory,omitempty"`
}

// Step is the wire form of a SimulationStep.
type Step struct {
	Step    int64    `json:"step"`
	Objects []Entity `json:"objects"`
}

// ToWire converts a step into its plain-number wire form. The result shares
// nothing with s.
func ToWire(s game.SimulationStep) Step {
	out := Step{Step: s.Number, Objects: make([]Entity, len(s.Objects))}
	for i := range s.Objects {
		out.Objects[i] = entityToWire(&s.Objects[i])
	}
	return out
}

func entityToWire(e *components.Entity) Entity {
	w := Entity{
		ID:         e.ID,
		Type:       e.Kind,
		ParentID:   copyID(e.ParentID),
		Position:   toVec(e.Position),
		Velocity:   toVec(e.Velocity),
		ForceInput: toVec(e.Force),
		Energy:     e.Energy,
		Age:        e.Age,
		Size:       e.Size,
		Color:      e.Color,
		DNA:        genome.Clone(e.DNA),
	}
	for _, g := range e.Engrams {
		p := g.Subject
		w.WorkingMemory = append(w.WorkingMemory, Engram{
			Entity: Percept{
				ID:       p.ID,
				Type:     p.Kind,
				ParentID: copyID(p.ParentID),
				Position: toVec(p.Position),
				Velocity: toVec(p.Velocity),
				Energy:   p.Energy,
				Age:      p.Age,
				Size:     p.Size,
			},
			Distance:  g.Distance,
			CreatedAt: g.CreatedAt,
			UpdatedAt: g.UpdatedAt,
		})
	}
	for _, a := range e.Actions {
		w.ActionHistory = append(w.ActionHistory, Action{Type: a.Kind.String(), Tick: a.Tick, Detail: a.Detail})
	}
	return w
}

// FromWire converts a wire step back into a SimulationStep.
func FromWire(w Step) (game.SimulationStep, error) {
	out := game.SimulationStep{Number: w.Step, Objects: make([]components.Entity, len(w.Objects))}
	for i := range w.Objects {
		e, err := entityFromWire(&w.Objects[i])
		if err != nil {
			return game.SimulationStep{}, fmt.Errorf("entity %d: %w", w.Objects[i].ID, err)
		}
		out.Objects[i] = e
	}
	return out, nil
}

func entityFromWire(w *Entity) (components.Entity, error) {
	e := components.Entity{
		Identity:   components.Identity{ID: w.ID, Kind: w.Type, ParentID: copyID(w.ParentID)},
		Motion:     components.Motion{Position: w.Position.vec(), Velocity: w.Velocity.vec(), Force: w.ForceInput.vec()},
		Vitals:     components.Vitals{Energy: w.Energy, Age: w.Age},
		Appearance: components.Appearance{Color: w.Color, Size: w.Size},
		Genome:     components.Genome{DNA: genome.Clone(w.DNA)},
	}
	for _, g := range w.WorkingMemory {
		p := g.Entity
		e.Engrams = append(e.Engrams, components.Engram{
			Subject: components.Percept{
				ID:       p.ID,
				Kind:     p.Type,
				ParentID: copyID(p.ParentID),
				Position: p.Position.vec(),
				Velocity: p.Velocity.vec(),
				Energy:   p.Energy,
				Age:      p.Age,
				Size:     p.Size,
			},
			Distance:  g.Distance,
			CreatedAt: g.CreatedAt,
			UpdatedAt: g.UpdatedAt,
		})
	}
	for _, a := range w.ActionHistory {
		kind, err := parseActionKind(a.Type)
		if err != nil {
			return components.Entity{}, err
		}
		e.Actions = append(e.Actions, components.Action{Kind: kind, Tick: a.Tick, Detail: a.Detail})
	}
	return e, nil
}

func parseActionKind(s string) (components.ActionKind, error) {
	for i, name := range components.ActionKindNames() {
		if name == s {
			return components.ActionKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action type %q", s)
}

// Marshal encodes a step as wire JSON.
func Marshal(s game.SimulationStep) ([]byte, error) {
	return json.Marshal(ToWire(s))
}

// Unmarshal decodes wire JSON into a step.
func Unmarshal(data []byte) (game.SimulationStep, error) {
	var w Step
	if err := json.Unmarshal(data, &w); err != nil {
		return game.SimulationStep{}, fmt.Errorf("decoding step: %w", err)
	}
	return FromWire(w)
}
