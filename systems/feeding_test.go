package systems

import (
	"testing"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/traits"
)

func engram(id uint64, kind traits.Kind, dist float64) components.Engram {
	return components.Engram{Subject: components.Percept{ID: id, Kind: kind}, Distance: dist}
}

func TestShouldEat(t *testing.T) {
	fs := NewFeedingSystem(testConfig())
	rng := testRNG(1)

	tests := []struct {
		name    string
		genes   map[traits.Trait]float64
		engrams []components.Engram
		want    uint64
		found   bool
	}{
		{
			name:    "nothing in reach",
			genes:   map[traits.Trait]float64{traits.NutrientEating: 1},
			engrams: []components.Engram{engram(2, traits.Nutrient, 11)},
		},
		{
			name:    "closest wins at equal gene",
			genes:   map[traits.Trait]float64{traits.NutrientEating: 1},
			engrams: []components.Engram{engram(2, traits.Nutrient, 8), engram(3, traits.Nutrient, 2)},
			want:    3,
			found:   true,
		},
		{
			name: "gene outweighs distance",
			genes: map[traits.Trait]float64{
				traits.NutrientEating: 0.1,
				traits.OrganismEating: 1,
			},
			engrams: []components.Engram{engram(2, traits.Nutrient, 1), engram(3, traits.Organism, 5)},
			want:    3,
			found:   true,
		},
		{
			// No priority floor: the least negative candidate is still chosen.
			name: "all negative still eats",
			genes: map[traits.Trait]float64{
				traits.NutrientEating: -1,
			},
			engrams: []components.Engram{engram(2, traits.Nutrient, 2), engram(3, traits.Nutrient, 8)},
			want:    3,
			found:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := organismAt(1, 0, 0, fixedDNA(tt.genes))
			got, ok := fs.ShouldEat(rng, &obs, tt.engrams)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && got.ID != tt.want {
				t.Errorf("target = %d, want %d", got.ID, tt.want)
			}
		})
	}
}

func TestBiteSize(t *testing.T) {
	fs := NewFeedingSystem(testConfig())
	tests := []struct{ energy, want float64 }{
		{25, 10}, {10, 10}, {3, 3}, {0, 0}, {-4, 0},
	}
	for _, tt := range tests {
		if got := fs.BiteSize(tt.energy); got != tt.want {
			t.Errorf("BiteSize(%v) = %v, want %v", tt.energy, got, tt.want)
		}
	}
}

func TestBiteTransfersThroughPantry(t *testing.T) {
	fs := NewFeedingSystem(testConfig())
	obs := organismAt(1, 0, 0, fixedDNA(nil))
	food := nutrientAt(2, 3, 0)
	food.Energy = 4
	n := newFakeNeighborhood([]components.Entity{obs, food})

	got := fs.Bite(n, &obs, components.PerceptOf(&food))
	if got != 4 {
		t.Errorf("bite = %v, want 4", got)
	}
	if obs.Energy != 504 {
		t.Errorf("observer energy = %v, want 504", obs.Energy)
	}
	if e, _ := n.Energy(2); e != 0 {
		t.Errorf("target energy = %v, want 0", e)
	}

	// A second bite in the same tick sees the depleted target.
	if got := fs.Bite(n, &obs, components.PerceptOf(&food)); got != 0 {
		t.Errorf("second bite = %v, want 0", got)
	}

	// Gone targets yield nothing.
	if got := fs.Bite(n, &obs, components.Percept{ID: 77}); got != 0 {
		t.Errorf("bite of missing entity = %v", got)
	}
}
