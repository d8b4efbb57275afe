package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

func population(n int) []components.Entity {
	pop := make([]components.Entity, n)
	for i := range pop {
		pop[i] = nutrientAt(uint64(i+1), float64(10+i), 10)
	}
	return pop
}

func TestRandomSampleSize(t *testing.T) {
	rng := testRNG(1)
	tests := []struct {
		name      string
		popSize   int
		requested int
		want      int
	}{
		{"requested plus one", 20, 5, 6},
		{"zero requested still samples one", 20, 0, 1},
		{"small population returns everyone else", 4, 5, 3},
		{"exact fit", 7, 5, 6},
		{"alone", 1, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pop := population(tt.popSize)
			self := &pop[0]
			got := RandomSample(rng, self, pop, tt.requested)
			if len(got) != tt.want {
				t.Fatalf("len = %d, want %d", len(got), tt.want)
			}
			seen := map[uint64]bool{}
			for _, e := range got {
				if e.ID == self.ID {
					t.Error("sample includes self")
				}
				if seen[e.ID] {
					t.Errorf("duplicate %d", e.ID)
				}
				seen[e.ID] = true
			}
		})
	}
}

func TestRandomSampleUniform(t *testing.T) {
	rng := testRNG(2)
	pop := population(11)
	counts := map[uint64]int{}
	const trials = 20000
	for i := 0; i < trials; i++ {
		for _, e := range RandomSample(rng, &pop[0], pop, 1) {
			counts[e.ID]++
		}
	}
	// 2 picks out of 10 candidates each trial.
	want := float64(trials) * 2 / 10
	for id := uint64(2); id <= 11; id++ {
		if c := float64(counts[id]); c < want*0.9 || c > want*1.1 {
			t.Errorf("id %d picked %v times, want about %v", id, c, want)
		}
	}
}

func TestSampleSizeRoundsGene(t *testing.T) {
	rng := testRNG(3)
	e := organismAt(1, 0, 0, fixedDNA(map[traits.Trait]float64{traits.VisualSearch: 4.6}))
	if got := SampleSize(rng, &e); got != 5 {
		t.Errorf("SampleSize = %d, want 5", got)
	}
}

func TestWorkingMemoryNearestK(t *testing.T) {
	self := organismAt(1, 0, 0, genome.MustTemplate("herbivore"))
	others := []components.Entity{
		nutrientAt(2, 50, 0),
		nutrientAt(3, 10, 0),
		nutrientAt(4, 30, 0),
		nutrientAt(5, 20, 0),
	}
	sample := []*components.Entity{&others[0], &others[1], &others[2], &others[3]}

	mem := WorkingMemory(&self, sample, 7, 3)
	if len(mem) != 3 {
		t.Fatalf("len = %d, want 3", len(mem))
	}
	wantIDs := []uint64{3, 5, 4}
	for i, g := range mem {
		if g.Subject.ID != wantIDs[i] {
			t.Errorf("mem[%d] = %d, want %d", i, g.Subject.ID, wantIDs[i])
		}
		if g.CreatedAt != 7 || g.UpdatedAt != 7 {
			t.Errorf("mem[%d] timestamps = %d/%d, want 7/7", i, g.CreatedAt, g.UpdatedAt)
		}
	}
}

func TestWorkingMemoryKeepsStaleAndRefreshes(t *testing.T) {
	self := organismAt(1, 0, 0, genome.MustTemplate("herbivore"))
	self.Engrams = []components.Engram{
		{Subject: components.Percept{ID: 9, Kind: traits.Nutrient}, Distance: 5, CreatedAt: 1, UpdatedAt: 1},
		{Subject: components.Percept{ID: 2, Kind: traits.Nutrient}, Distance: 40, CreatedAt: 2, UpdatedAt: 2},
	}

	moved := nutrientAt(2, 8, 0)
	far := nutrientAt(3, 100, 0)
	mem := WorkingMemory(&self, []*components.Entity{&moved, &far}, 10, 3)

	if len(mem) != 3 {
		t.Fatalf("len = %d, want 3", len(mem))
	}
	// Stale id 9 at distance 5 stays first, refreshed id 2 is now at 8.
	if mem[0].Subject.ID != 9 || mem[0].UpdatedAt != 1 {
		t.Errorf("stale entry = %+v", mem[0])
	}
	if mem[1].Subject.ID != 2 || mem[1].Distance != 8 || mem[1].CreatedAt != 2 || mem[1].UpdatedAt != 10 {
		t.Errorf("refreshed entry = %+v", mem[1])
	}
	if mem[2].Subject.ID != 3 {
		t.Errorf("new entry = %+v", mem[2])
	}
}

func TestWorkingMemoryDoesNotAlias(t *testing.T) {
	self := organismAt(1, 0, 0, genome.MustTemplate("herbivore"))
	other := nutrientAt(2, 5, 0)
	mem := WorkingMemory(&self, []*components.Entity{&other}, 1, 3)

	other.Position = r2.Vec{X: 999, Y: 999}
	other.Energy = -1
	if mem[0].Subject.Position != (r2.Vec{X: 5, Y: 0}) || mem[0].Subject.Energy != 25 {
		t.Errorf("engram follows live entity: %+v", mem[0].Subject)
	}
}
