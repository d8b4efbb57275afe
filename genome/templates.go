package genome

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/pthm-cable/affinity/traits"
)

var templates = map[string]map[traits.Trait][]float64{
	// Drawn to food, indifferent to other organisms.
	"herbivore": {
		traits.OrganismAffinity:         {-0.1},
		traits.NutrientAffinity:         {0.8},
		traits.OrganismEating:           {-1},
		traits.NutrientEating:           {1},
		traits.VisualSearch:             {10},
		traits.StayEnergyMultiplier:     {1},
		traits.EatEnergyMultiplier:      {1},
		traits.EnergyGiftToOffspring:    {0.5},
		traits.ReproductionProbability:  {0.01},
		traits.MinimumEnergyToReproduce: {300},
	},
	// Hunts organisms, ignores nutrients.
	"carnivore": {
		traits.OrganismAffinity:         {0.8},
		traits.NutrientAffinity:         {-0.2},
		traits.OrganismEating:           {1},
		traits.NutrientEating:           {-1},
		traits.VisualSearch:             {15},
		traits.StayEnergyMultiplier:     {1},
		traits.EatEnergyMultiplier:      {1},
		traits.EnergyGiftToOffspring:    {0.4},
		traits.ReproductionProbability:  {0.005},
		traits.MinimumEnergyToReproduce: {500},
	},
}

// TemplateNames lists the available founder templates.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template returns a fresh copy of a named founder genome.
func Template(name string) (*DNA, error) {
	genes, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("genome: unknown template %q", name)
	}
	d := &DNA{Lineage: name, Genes: make(map[traits.Trait][]float64, len(genes))}
	for t, alleles := range genes {
		d.Genes[t] = append([]float64(nil), alleles...)
	}
	return d, nil
}

// MustTemplate is like Template but panics on an unknown name.
func MustTemplate(name string) *DNA {
	d, err := Template(name)
	if err != nil {
		panic(err)
	}
	return d
}

// Random returns a single-allele genome with every trait drawn uniformly from
// its declared range.
func Random(rng *rand.Rand, lineage string) *DNA {
	d := &DNA{Lineage: lineage, Genes: make(map[traits.Trait][]float64)}
	for _, t := range traits.All() {
		r, _ := traits.RangeOf(t)
		d.Genes[t] = []float64{r.Min + rng.Float64()*(r.Max-r.Min)}
	}
	return d
}
