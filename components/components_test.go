package components

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

func sampleEntity() Entity {
	parent := uint64(7)
	seenParent := uint64(3)
	return Entity{
		Identity: Identity{ID: 9, Kind: traits.Organism, ParentID: &parent},
		Motion: Motion{
			Position: r2.Vec{X: 1, Y: 2},
			Velocity: r2.Vec{X: 3, Y: 4},
			Force:    r2.Vec{X: 5, Y: 6},
		},
		Vitals:     Vitals{Energy: 100, Age: 30},
		Appearance: Appearance{Color: OrganismColor, Size: 10},
		Genome:     Genome{DNA: genome.MustTemplate("herbivore")},
		Memory: Memory{Engrams: []Engram{{
			Subject:  Percept{ID: 4, Kind: traits.Nutrient, ParentID: &seenParent},
			Distance: 3,
		}}},
		Journal: Journal{Actions: []Action{{Kind: ActionEat, Tick: 1}}},
	}
}

func TestCloneIsolation(t *testing.T) {
	orig := sampleEntity()
	c := Clone(orig)

	c.Position = r2.Add(c.Position, r2.Vec{X: 10})
	*c.ParentID = 99
	c.DNA.Genes[traits.NutrientAffinity][0] = -1
	c.Engrams[0].Distance = 50
	*c.Engrams[0].Subject.ParentID = 42
	c.Actions[0].Tick = 100

	if orig.Position.X != 1 {
		t.Errorf("position leaked: %v", orig.Position)
	}
	if *orig.ParentID != 7 {
		t.Errorf("parent id leaked: %d", *orig.ParentID)
	}
	if orig.DNA.Genes[traits.NutrientAffinity][0] == -1 {
		t.Error("dna leaked")
	}
	if orig.Engrams[0].Distance != 3 {
		t.Error("engram leaked")
	}
	if *orig.Engrams[0].Subject.ParentID != 3 {
		t.Error("engram subject parent leaked")
	}
	if orig.Actions[0].Tick != 1 {
		t.Error("journal leaked")
	}
}

func TestCloneAll(t *testing.T) {
	pop := []Entity{sampleEntity(), sampleEntity()}
	out := CloneAll(pop)
	if len(out) != 2 {
		t.Fatalf("len = %d", len(out))
	}
	out[1].Journal.Record(Action{Kind: ActionReproduce}, 0)
	if len(pop[1].Actions) != 1 {
		t.Errorf("source journal grew to %d", len(pop[1].Actions))
	}
}

func TestJournalRecordLimit(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		writes int
		want   int
		first  int64
	}{
		{"unbounded", 0, 10, 10, 0},
		{"under limit", 5, 3, 3, 0},
		{"at limit", 5, 5, 5, 0},
		{"over limit drops oldest", 4, 10, 4, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var j Journal
			for i := 0; i < tt.writes; i++ {
				j.Record(Action{Kind: ActionEat, Tick: int64(i)}, tt.limit)
			}
			if len(j.Actions) != tt.want {
				t.Fatalf("len = %d, want %d", len(j.Actions), tt.want)
			}
			if j.Actions[0].Tick != tt.first {
				t.Errorf("oldest tick = %d, want %d", j.Actions[0].Tick, tt.first)
			}
			last, ok := j.Last()
			if !ok || last.Tick != int64(tt.writes-1) {
				t.Errorf("last = %+v", last)
			}
		})
	}
}

func TestActionKindString(t *testing.T) {
	if ActionReproduce.String() != "Reproduce" {
		t.Errorf("got %q", ActionReproduce.String())
	}
	if ActionKind(200).String() != "Unknown" {
		t.Errorf("got %q", ActionKind(200).String())
	}
}

func TestDescribe(t *testing.T) {
	e := sampleEntity()
	lines := Describe(&e)

	labels := map[string]FieldLine{}
	for _, l := range lines {
		labels[l.Label] = l
	}
	if labels["Lineage"].Value != "herbivore" {
		t.Errorf("lineage line = %+v", labels["Lineage"])
	}
	if labels["Speed"].Value != "5.00" {
		t.Errorf("speed = %q, want 5.00", labels["Speed"].Value)
	}
	if f := labels["Energy"].Fill; f < 0.099 || f > 0.101 {
		t.Errorf("energy fill = %v, want 0.1", f)
	}
	if _, ok := labels[string(traits.NutrientAffinity)]; !ok {
		t.Error("expected gene lines for organisms")
	}

	n := Entity{Identity: Identity{ID: 1, Kind: traits.Nutrient}}
	for _, l := range Describe(&n) {
		if l.Label == "Memory" || l.Label == string(traits.VisualSearch) {
			t.Errorf("nutrient should not show %s", l.Label)
		}
	}
}
