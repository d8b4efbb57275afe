package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

func TestSeedPopulation(t *testing.T) {
	cfg := testConfig()
	lc := NewLifecycle(cfg, NewIDSource(0))

	pop, err := SeedPopulation(testRNG(1), lc, cfg)
	if err != nil {
		t.Fatalf("SeedPopulation: %v", err)
	}

	var organisms, nutrients int
	ids := map[uint64]bool{}
	lineages := map[string]int{}
	for _, e := range pop {
		if ids[e.ID] {
			t.Errorf("duplicate id %d", e.ID)
		}
		ids[e.ID] = true

		switch e.Kind {
		case traits.Organism:
			organisms++
			lineages[e.Lineage()]++
			if err := genome.Validate(e.DNA); err != nil {
				t.Errorf("organism %d: %v", e.ID, err)
			}
		case traits.Nutrient:
			nutrients++
		}
		if !cfg.Derived.Bounds.Contains(e.Position) {
			t.Errorf("entity %d outside arena at %+v", e.ID, e.Position)
		}
	}

	if organisms != cfg.Population.InitialOrganisms || nutrients != cfg.Population.InitialNutrients {
		t.Errorf("got %d organisms and %d nutrients", organisms, nutrients)
	}
	if lineages["herbivore"] == 0 || lineages["carnivore"] == 0 {
		t.Errorf("founder rotation missing a template: %v", lineages)
	}
}

func TestSeedPopulationUnknownFounder(t *testing.T) {
	cfg := testConfig()
	cfg.Population.Founders = []string{"mystery"}
	if _, err := SeedPopulation(testRNG(1), NewLifecycle(cfg, NewIDSource(0)), cfg); err == nil {
		t.Error("expected error for unknown founder template")
	}
}

func TestDensityFieldRange(t *testing.T) {
	f := NewDensityField(7, 0.01)
	for x := 0.0; x < 800; x += 37 {
		for y := 0.0; y < 600; y += 41 {
			v := f.At(r2.Vec{X: x, Y: y})
			if v < -1e-9 || v > 1+1e-9 {
				t.Fatalf("density %v at (%v, %v) outside [0, 1]", v, x, y)
			}
		}
	}
}

func TestSeedWithFounders(t *testing.T) {
	cfg := testConfig()
	founder := fixedDNA(map[traits.Trait]float64{traits.VisualSearch: 3})
	founder.Lineage = "hall"

	pop := SeedWith(testRNG(4), NewLifecycle(cfg, NewIDSource(0)), cfg, []*genome.DNA{founder})
	for _, e := range pop {
		if e.Kind == traits.Organism && e.Lineage() != "hall" {
			t.Errorf("organism %d has lineage %q", e.ID, e.Lineage())
		}
	}
	if len(founder.Genes[traits.VisualSearch]) != 1 || founder.Genes[traits.VisualSearch][0] != 3 {
		t.Error("founder genome was modified")
	}
}
