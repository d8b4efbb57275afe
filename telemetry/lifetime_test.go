package telemetry

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/affinity/components"
)

func child(id, parent uint64, template string) components.Entity {
	e := organism(id, 100, template)
	e.ParentID = &parent
	return e
}

func TestLineageTrackerSync(t *testing.T) {
	lt := NewLineageTracker()

	founders := []components.Entity{organism(1, 500, "herbivore"), organism(2, 500, "carnivore"), nutrient(3, 25)}
	if gone := lt.Sync(0, founders); len(gone) != 0 {
		t.Fatalf("gone on first sync: %+v", gone)
	}
	if lt.Count() != 2 {
		t.Fatalf("tracked %d, want 2 organisms", lt.Count())
	}
	if lt.ActiveLineageCount() != 2 {
		t.Errorf("active lineages = %d, want 2", lt.ActiveLineageCount())
	}

	step := []components.Entity{organism(1, 400, "herbivore"), child(4, 1, "herbivore"), organism(2, 600, "carnivore")}
	lt.RecordBite(2, 12)
	lt.Sync(1, step)

	if got := lt.Get(1).Children; got != 1 {
		t.Errorf("children of 1 = %d, want 1", got)
	}
	if got := lt.Get(1).PeakEnergy; got != 500 {
		t.Errorf("peak energy = %v, want 500", got)
	}
	if got := lt.Get(2); got.Bites != 1 || got.Eaten != 12 {
		t.Errorf("bites = %+v", got)
	}
	if anc := lt.Ancestry(4); len(anc) != 1 || anc[0] != 1 {
		t.Errorf("ancestry = %v, want [1]", anc)
	}

	gone := lt.Sync(2, []components.Entity{child(4, 1, "herbivore")})
	if len(gone) != 2 || gone[0].ID != 1 || gone[1].ID != 2 {
		t.Fatalf("gone = %+v", gone)
	}
	if gone[1].LastTick != 1 || gone[1].Lineage != "carnivore" {
		t.Errorf("final stats = %+v", gone[1])
	}
	if lt.ActiveLineageCount() != 1 {
		t.Errorf("active lineages = %d, want 1", lt.ActiveLineageCount())
	}
}

func TestHallOfFame(t *testing.T) {
	hof := NewHallOfFame(2, rand.New(rand.NewSource(1)))
	dna := organism(1, 0, "herbivore").DNA

	if hof.Consider(LifetimeStats{ID: 1, Lineage: "herbivore", Age: 10, DNA: dna}) {
		t.Error("childless short life admitted")
	}
	for i, children := range []int{1, 3, 2} {
		hof.Consider(LifetimeStats{ID: uint64(10 + i), Lineage: "herbivore", Children: children, DNA: dna})
	}

	if hof.Size("herbivore") != 2 {
		t.Fatalf("size = %d, want 2", hof.Size("herbivore"))
	}
	if got := hof.TopFitness("herbivore"); got != 3*childrenWeight {
		t.Errorf("top fitness = %v", got)
	}
	sampled := hof.Sample("herbivore")
	if sampled == nil || sampled == dna || sampled.Lineage != "herbivore" {
		t.Errorf("sample = %+v", sampled)
	}
	if hof.Sample("carnivore") != nil {
		t.Error("sampled from an empty hall")
	}
}

func TestHallOfFameFileRoundTrip(t *testing.T) {
	hof := NewHallOfFame(5, rand.New(rand.NewSource(1)))
	hof.Consider(LifetimeStats{ID: 7, Lineage: "carnivore", Children: 2, DNA: organism(7, 0, "carnivore").DNA})

	data, err := hof.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "hall_of_fame.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadHallOfFameFromFile(path, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := loaded.Lineages(); len(got) != 1 || got[0] != "carnivore" {
		t.Errorf("lineages = %v", got)
	}
	if loaded.TopFitness("carnivore") != hof.TopFitness("carnivore") {
		t.Errorf("fitness changed across round trip")
	}
}
