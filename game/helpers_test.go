package game

import (
	"bytes"
	"log/slog"
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

func testEngine(seed int64, opts ...Option) *Engine {
	return NewEngine(testConfig(), rand.New(rand.NewSource(seed)), opts...)
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func herbivore(overrides map[traits.Trait]float64) *genome.DNA {
	d := genome.MustTemplate("herbivore")
	for t, v := range overrides {
		d.Genes[t] = []float64{v}
	}
	return d
}

func organismAt(id uint64, x, y float64, dna *genome.DNA) components.Entity {
	return components.Entity{
		Identity:   components.Identity{ID: id, Kind: traits.Organism},
		Motion:     components.Motion{Position: r2.Vec{X: x, Y: y}},
		Vitals:     components.Vitals{Energy: 500, Age: 30},
		Appearance: components.Appearance{Color: components.OrganismColor, Size: 10},
		Genome:     components.Genome{DNA: dna},
	}
}

func nutrientAt(id uint64, x, y float64) components.Entity {
	return components.Entity{
		Identity:   components.Identity{ID: id, Kind: traits.Nutrient},
		Motion:     components.Motion{Position: r2.Vec{X: x, Y: y}},
		Vitals:     components.Vitals{Energy: 25, Age: 5},
		Appearance: components.Appearance{Color: components.NutrientColor, Size: 5},
	}
}

// stageRecorder records Diagnostics calls.
type stageRecorder struct {
	stages []string
	pops   map[string][]components.Entity
}

func (r *stageRecorder) Stage(step int64, stage string, pop []components.Entity) {
	if r.pops == nil {
		r.pops = make(map[string][]components.Entity)
	}
	r.stages = append(r.stages, stage)
	r.pops[stage] = pop
}

// stepCollector is a StepSink that keeps every step.
type stepCollector struct {
	steps []SimulationStep
}

func (c *stepCollector) Enqueue(step SimulationStep) {
	c.steps = append(c.steps, step)
}
