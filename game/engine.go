package game

import (
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/systems"
	"github.com/pthm-cable/affinity/telemetry"
	"github.com/pthm-cable/affinity/traits"
)

// Stage names reported to Diagnostics.
const (
	StageInput    = "input"
	StageIsolated = "isolated"
	StagePhysics  = "physics"
	StageBehavior = "behavior"
	StageOutput   = "output"
)

var errDuplicateID = errors.New("duplicate entity id")

// Diagnostics receives the population after each stage of a step. The slice
// is a private copy owned by the receiver.
type Diagnostics interface {
	Stage(step int64, stage string, pop []components.Entity)
}

// Option configures an Engine.
type Option func(*Engine)

// WithDiagnostics attaches a per-stage population sink.
func WithDiagnostics(d Diagnostics) Option {
	return func(e *Engine) { e.diag = d }
}

// WithIDSource shares an id source, e.g. one seeded above a resumed run.
func WithIDSource(ids *systems.IDSource) Option {
	return func(e *Engine) { e.ids = ids }
}

// WithLogger sets the logger used for dropped entities.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithPerfCollector shares a perf collector with the caller.
func WithPerfCollector(p *telemetry.PerfCollector) Option {
	return func(e *Engine) { e.perf = p }
}

// Engine computes one SimulationStep from the previous one.
type Engine struct {
	cfg  *config.Config
	rng  *rand.Rand
	ids  *systems.IDSource
	log  *slog.Logger
	perf *telemetry.PerfCollector
	diag Diagnostics

	lifecycle *systems.Lifecycle
	physics   *systems.PhysicsSystem
	organisms *systems.OrganismSystem
	nutrients *systems.NutrientSystem
	safety    *systems.SafetySystem
}

// NewEngine creates an engine. rng drives every random choice, so a seeded
// rng and the same input reproduce the same steps.
func NewEngine(cfg *config.Config, rng *rand.Rand, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, rng: rng}
	for _, opt := range opts {
		opt(e)
	}
	if e.ids == nil {
		e.ids = systems.NewIDSource(0)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.perf == nil {
		e.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	}

	e.lifecycle = systems.NewLifecycle(cfg, e.ids)
	e.physics = systems.NewPhysicsSystem(cfg)
	e.organisms = systems.NewOrganismSystem(cfg, e.lifecycle)
	e.nutrients = systems.NewNutrientSystem(cfg, e.lifecycle)
	e.safety = systems.NewSafetySystem(cfg)
	return e
}

// Lifecycle returns the engine's entity factory.
func (e *Engine) Lifecycle() *systems.Lifecycle { return e.lifecycle }

// Perf returns the engine's perf collector.
func (e *Engine) Perf() *telemetry.PerfCollector { return e.perf }

// Seed creates the initial step from the configured founders.
func (e *Engine) Seed() (SimulationStep, error) {
	pop, err := systems.SeedPopulation(e.rng, e.lifecycle, e.cfg)
	if err != nil {
		return SimulationStep{}, err
	}
	return SimulationStep{Number: 0, Objects: pop}, nil
}

// SeedFrom creates the initial step from explicit founder genomes.
func (e *Engine) SeedFrom(founders []*genome.DNA) SimulationStep {
	return SimulationStep{Number: 0, Objects: systems.SeedWith(e.rng, e.lifecycle, e.cfg, founders)}
}

// Step computes the step after prev. prev is never modified and shares
// nothing with the result.
//
// The population is isolated, integrated, isolated again, then every
// organism and nutrient is processed in order against a live working set.
// A final safety pass repairs numeric corruption before the step is emitted.
func (e *Engine) Step(prev SimulationStep) (SimulationStep, StepReport) {
	tick := prev.Number + 1
	report := StepReport{Step: tick}

	e.perf.StartTick()
	e.stage(tick, StageInput, prev.Objects)

	e.perf.StartPhase(telemetry.PhaseIsolate)
	pop := e.admit(tick, components.CloneAll(prev.Objects), &report)
	e.stage(tick, StageIsolated, pop)

	e.perf.StartPhase(telemetry.PhasePhysics)
	pop = e.physics.Update(pop)

	e.perf.StartPhase(telemetry.PhaseReisolate)
	pop = components.CloneAll(pop)
	e.stage(tick, StagePhysics, pop)

	e.perf.StartPhase(telemetry.PhaseBehavior)
	pop = e.behave(tick, pop, &report)
	e.stage(tick, StageBehavior, pop)

	e.perf.StartPhase(telemetry.PhaseSafety)
	report.Repairs = e.safety.Sanitize(e.rng, pop, tick)
	for _, r := range report.Repairs {
		kind := traits.Organism
		for i := range pop {
			if pop[i].ID == r.ID {
				kind = pop[i].Kind
				break
			}
		}
		report.Events = append(report.Events, telemetry.NewRepairEvent(tick, r.ID, kind))
	}
	e.stage(tick, StageOutput, pop)

	e.perf.EndTick()
	if sample, ok := e.perf.Last(); ok {
		report.Duration = sample.TickDuration
		report.Phases = sample.Phases
		report.Organisms = sample.Organisms
	}

	return SimulationStep{Number: tick, Objects: pop}, report
}

// admit drops entities that cannot be processed: organisms with missing or
// malformed DNA and repeated ids. Each drop is logged and reported.
func (e *Engine) admit(tick int64, pop []components.Entity, report *StepReport) []components.Entity {
	seen := make(map[uint64]struct{}, len(pop))
	out := pop[:0]
	for _, ent := range pop {
		var err error
		if _, dup := seen[ent.ID]; dup {
			err = errDuplicateID
		} else if ent.IsOrganism() {
			err = systems.CheckOrganism(&ent)
		}
		if err != nil {
			e.log.Warn("dropping entity",
				"entity_id", ent.ID,
				"kind", ent.Kind.String(),
				"step", tick,
				"error", err,
			)
			report.Dropped++
			report.Events = append(report.Events, telemetry.NewDropEvent(tick, ent.ID, ent.Kind))
			continue
		}
		seen[ent.ID] = struct{}{}
		e.ids.Observe(ent.ID)
		out = append(out, ent)
	}
	return out
}

// behave runs the behavior processors over the post-physics population.
func (e *Engine) behave(tick int64, pop []components.Entity, report *StepReport) []components.Entity {
	ws := newWorkingSet(tick, pop)

	for i := range pop {
		id := pop[i].ID
		cur, ok := ws.get(id)
		if !ok {
			continue
		}

		var out systems.Outcome
		switch cur.Kind {
		case traits.Organism:
			start := time.Now()
			out = e.organisms.Process(e.rng, ws, cur)
			e.perf.RecordOrganism(time.Since(start))
			if out.Bitten > 0 {
				report.Bites++
				report.Events = append(report.Events, telemetry.NewBiteEvent(tick, id, out.Eaten, out.Bitten))
			}
		case traits.Nutrient:
			out = e.nutrients.Process(e.rng, ws, cur)
		default:
			continue
		}

		if out.Died {
			ws.remove(id)
			report.Deaths++
			report.Events = append(report.Events, telemetry.NewDeathEvent(tick, id, cur.Kind))
		} else {
			ws.set(out.Self)
			ws.emit(id)
		}

		if out.Child != nil {
			ws.add(*out.Child)
			ws.emit(out.Child.ID)
			report.Births++
			report.Events = append(report.Events, telemetry.NewBirthEvent(tick, out.Child.ID, id, out.Child.Kind))
		}
	}

	return ws.export()
}

func (e *Engine) stage(tick int64, name string, pop []components.Entity) {
	if e.diag != nil {
		e.diag.Stage(tick, name, components.CloneAll(pop))
	}
}
