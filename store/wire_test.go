package store

import (
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/game"
	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

func sampleStep(number int64) game.SimulationStep {
	parent := uint64(1)
	org := components.Entity{
		Identity:   components.Identity{ID: 2, Kind: traits.Organism, ParentID: &parent},
		Motion:     components.Motion{Position: r2.Vec{X: 12.5, Y: 300.125}, Velocity: r2.Vec{X: -0.1, Y: 0.3}, Force: r2.Vec{X: 0.5, Y: -2}},
		Vitals:     components.Vitals{Energy: 432.1, Age: 77},
		Appearance: components.Appearance{Color: components.OrganismColor, Size: 10},
		Genome:     components.Genome{DNA: genome.MustTemplate("carnivore")},
		Memory: components.Memory{Engrams: []components.Engram{{
			Subject:   components.Percept{ID: 3, Kind: traits.Nutrient, Position: r2.Vec{X: 15, Y: 301}, Energy: 25, Size: 5},
			Distance:  3.1,
			CreatedAt: number - 2,
			UpdatedAt: number,
		}}},
		Journal: components.Journal{Actions: []components.Action{
			{Kind: components.ActionEat, Tick: number - 1, Detail: "Nutrient"},
			{Kind: components.ActionReproduce, Tick: number, Detail: "child 9"},
		}},
	}
	food := components.Entity{
		Identity:   components.Identity{ID: 3, Kind: traits.Nutrient},
		Motion:     components.Motion{Position: r2.Vec{X: 15, Y: 301}},
		Vitals:     components.Vitals{Energy: 25, Age: 4},
		Appearance: components.Appearance{Color: components.NutrientColor, Size: 5},
	}
	return game.SimulationStep{Number: number, Objects: []components.Entity{org, food}}
}

func TestWireRoundTrip(t *testing.T) {
	step := sampleStep(10)

	data, err := Marshal(step)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, step) {
		t.Errorf("round trip changed the step:\n got %+v\nwant %+v", got, step)
	}
}

func TestWireUsesPlainVectors(t *testing.T) {
	data, err := Marshal(sampleStep(1))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{
		`"position":{"x":12.5,"y":300.125}`,
		`"forceInput":{"x":0.5,"y":-2}`,
		`"type":"Organism"`,
		`"parentId":1`,
		`"lineageName":"carnivore"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("wire JSON missing %s", want)
		}
	}
}

func TestWireIsolation(t *testing.T) {
	step := sampleStep(5)
	w := ToWire(step)
	w.Objects[0].DNA.Genes[traits.VisualSearch][0] = -1
	*w.Objects[0].ParentID = 99

	if step.Objects[0].DNA.Genes[traits.VisualSearch][0] == -1 {
		t.Error("wire DNA aliases the step")
	}
	if *step.Objects[0].ParentID != 1 {
		t.Error("wire parent id aliases the step")
	}
}

func TestFromWireRejectsUnknownAction(t *testing.T) {
	w := ToWire(sampleStep(1))
	w.Objects[0].ActionHistory[0].Type = "Dance"
	if _, err := FromWire(w); err == nil {
		t.Error("expected error for unknown action type")
	}
}
