package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

func testConfig() *config.Config {
	return config.Default()
}

func testRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func organismAt(id uint64, x, y float64, dna *genome.DNA) components.Entity {
	return components.Entity{
		Identity:   components.Identity{ID: id, Kind: traits.Organism},
		Motion:     components.Motion{Position: r2.Vec{X: x, Y: y}},
		Vitals:     components.Vitals{Energy: 500, Age: 30},
		Appearance: components.Appearance{Size: 10},
		Genome:     components.Genome{DNA: dna},
	}
}

func nutrientAt(id uint64, x, y float64) components.Entity {
	return components.Entity{
		Identity:   components.Identity{ID: id, Kind: traits.Nutrient},
		Motion:     components.Motion{Position: r2.Vec{X: x, Y: y}},
		Vitals:     components.Vitals{Energy: 25, Age: 30},
		Appearance: components.Appearance{Size: 5},
	}
}

// fixedDNA returns a herbivore genome with every listed trait pinned to one value.
func fixedDNA(overrides map[traits.Trait]float64) *genome.DNA {
	d := genome.MustTemplate("herbivore")
	for t, v := range overrides {
		d.Genes[t] = []float64{v}
	}
	return d
}

// fakeNeighborhood is an in-memory Neighborhood over a fixed snapshot.
type fakeNeighborhood struct {
	tick     int64
	snapshot []components.Entity
	energy   map[uint64]float64
	counts   map[traits.Kind]int
}

func newFakeNeighborhood(pop []components.Entity) *fakeNeighborhood {
	n := &fakeNeighborhood{
		snapshot: pop,
		energy:   map[uint64]float64{},
		counts:   map[traits.Kind]int{},
	}
	for _, e := range pop {
		n.energy[e.ID] = e.Energy
		n.counts[e.Kind]++
	}
	return n
}

func (n *fakeNeighborhood) Tick() int64                   { return n.tick }
func (n *fakeNeighborhood) Snapshot() []components.Entity { return n.snapshot }
func (n *fakeNeighborhood) Count(kind traits.Kind) int    { return n.counts[kind] }

func (n *fakeNeighborhood) Energy(id uint64) (float64, bool) {
	v, ok := n.energy[id]
	return v, ok
}

func (n *fakeNeighborhood) Take(id uint64, amount float64) float64 {
	v, ok := n.energy[id]
	if !ok {
		return 0
	}
	taken := min(v, amount)
	n.energy[id] = v - taken
	return taken
}
