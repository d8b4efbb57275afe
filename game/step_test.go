package game

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/traits"
)

func TestStepNearest(t *testing.T) {
	step := SimulationStep{Number: 3, Objects: []components.Entity{
		organismAt(1, 100, 100, herbivore(nil)), // radius 5
		nutrientAt(2, 108, 100),                 // radius 2.5
		organismAt(3, 300, 300, herbivore(nil)),
	}}

	tests := []struct {
		name   string
		at     r2.Vec
		slack  float64
		wantID uint64
		found  bool
	}{
		{"inside body", r2.Vec{X: 101, Y: 100}, 0, 1, true},
		{"closest center wins", r2.Vec{X: 105, Y: 100}, 4, 2, true},
		{"outside every body", r2.Vec{X: 200, Y: 200}, 0, 0, false},
		{"within slack", r2.Vec{X: 310, Y: 300}, 12, 3, true},
		{"beyond slack", r2.Vec{X: 330, Y: 300}, 12, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := step.Nearest(tt.at, tt.slack)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && e.ID != tt.wantID {
				t.Errorf("got entity %d, want %d", e.ID, tt.wantID)
			}
		})
	}
}

func TestStepCountAndMaxID(t *testing.T) {
	step := SimulationStep{Objects: []components.Entity{
		organismAt(4, 0, 0, herbivore(nil)),
		nutrientAt(9, 1, 1),
		nutrientAt(2, 2, 2),
	}}
	if got := step.Count(traits.Organism); got != 1 {
		t.Errorf("organisms = %d, want 1", got)
	}
	if got := step.Count(traits.Nutrient); got != 2 {
		t.Errorf("nutrients = %d, want 2", got)
	}
	if got := step.MaxID(); got != 9 {
		t.Errorf("MaxID = %d, want 9", got)
	}
	if got := (SimulationStep{}).MaxID(); got != 0 {
		t.Errorf("empty MaxID = %d, want 0", got)
	}
}
