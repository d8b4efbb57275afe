package systems

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/genome"
)

// maxSeedAttempts bounds rejection sampling per nutrient before falling back
// to a uniform position.
const maxSeedAttempts = 64

// SeedPopulation creates the initial population. Organisms are founded from
// the configured genome templates in rotation. Nutrients are placed by
// rejection sampling against a simplex density field, so food starts out in
// patches.
func SeedPopulation(rng *rand.Rand, lifecycle *Lifecycle, cfg *config.Config) ([]components.Entity, error) {
	pc := cfg.Population
	founders := pc.Founders
	if len(founders) == 0 {
		founders = genome.TemplateNames()
	}

	templates := make([]*genome.DNA, len(founders))
	for i, name := range founders {
		dna, err := genome.Template(name)
		if err != nil {
			return nil, fmt.Errorf("seeding founders: %w", err)
		}
		templates[i] = dna
	}

	return SeedWith(rng, lifecycle, cfg, templates), nil
}

// SeedWith creates the initial population from explicit founder genomes,
// used in rotation. It panics if founders is empty.
func SeedWith(rng *rand.Rand, lifecycle *Lifecycle, cfg *config.Config, founders []*genome.DNA) []components.Entity {
	pc := cfg.Population
	pop := make([]components.Entity, 0, pc.InitialOrganisms+pc.InitialNutrients)
	for i := 0; i < pc.InitialOrganisms; i++ {
		pop = append(pop, lifecycle.NewOrganism(rng, founders[i%len(founders)]))
	}

	field := NewDensityField(rng.Int63(), cfg.Seeding.NoiseScale)
	for i := 0; i < pc.InitialNutrients; i++ {
		n := lifecycle.NewNutrient(rng, nil)
		for attempt := 0; attempt < maxSeedAttempts; attempt++ {
			if field.At(n.Position) >= cfg.Seeding.NoiseThreshold {
				break
			}
			n.Position = randomIn(rng, cfg.Derived.Bounds, n.Radius())
		}
		pop = append(pop, n)
	}
	return pop
}
