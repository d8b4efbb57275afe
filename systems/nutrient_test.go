package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/affinity/components"
)

func newNutrientSystem() *NutrientSystem {
	cfg := testConfig()
	return NewNutrientSystem(cfg, NewLifecycle(cfg, NewIDSource(1000)))
}

func TestSurvivalChance(t *testing.T) {
	ns := newNutrientSystem()
	tests := []struct {
		age  int
		want float64
	}{
		{0, 0.999},
		{200, 0.999},
		{201, 0.999 * 0.995},
		{300, 0.999 * math.Pow(0.995, 100)},
	}
	for _, tt := range tests {
		if got := ns.SurvivalChance(tt.age); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("SurvivalChance(%d) = %v, want %v", tt.age, got, tt.want)
		}
	}
}

func TestNutrientEatenOutDies(t *testing.T) {
	ns := newNutrientSystem()
	e := nutrientAt(1, 50, 50)
	e.Energy = 0
	out := ns.Process(testRNG(1), newFakeNeighborhood([]components.Entity{e}), e)
	if !out.Died || out.Child != nil {
		t.Errorf("outcome = %+v", out)
	}
}

func TestNutrientReproductionGates(t *testing.T) {
	cfg := testConfig()
	cfg.Nutrient.ReproduceChance = 1
	cfg.Nutrient.SurvivalChance = 1
	ns := NewNutrientSystem(cfg, NewLifecycle(cfg, NewIDSource(1000)))

	tests := []struct {
		name      string
		age       int
		nutrients int
		want      bool
	}{
		{"mature under cap", 21, 1, true},
		{"immature", 20, 1, false},
		{"at cap", 50, 50, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := nutrientAt(1, 50, 50)
			e.Age = tt.age
			n := newFakeNeighborhood([]components.Entity{e})
			n.counts[e.Kind] = tt.nutrients

			out := ns.Process(testRNG(1), n, e)
			if (out.Child != nil) != tt.want {
				t.Errorf("child = %v, want %v", out.Child != nil, tt.want)
			}
			if out.Died {
				t.Error("nutrient with survival chance 1 died")
			}
			if out.Child != nil && *out.Child.ParentID != 1 {
				t.Errorf("child parent = %d", *out.Child.ParentID)
			}
		})
	}
}

func TestNutrientOldAgeThinsOut(t *testing.T) {
	ns := newNutrientSystem()
	rng := testRNG(3)

	survivors := func(age int) int {
		kept := 0
		for i := 0; i < 5000; i++ {
			e := nutrientAt(1, 50, 50)
			e.Age = age
			out := ns.Process(rng, newFakeNeighborhood([]components.Entity{e}), e)
			if !out.Died {
				kept++
			}
		}
		return kept
	}

	young, old := survivors(100), survivors(600)
	if old >= young {
		t.Errorf("old nutrients survive as often as young: %d vs %d", old, young)
	}
}
