package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pthm-cable/affinity/game"
)

// Compile-time check that Memory implements Store.
var _ Store = (*Memory)(nil)

type memorySim struct {
	meta   Simulation
	steps  map[int64][]byte
	maxIDs map[int64]uint64 // highest entity id per stored step
}

// Memory is an in-process Store. Steps are kept encoded, so nothing handed
// in or out is shared with the store.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	sims   map[int64]*memorySim
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sims: make(map[int64]*memorySim)}
}

func (m *Memory) CreateSimulation(_ context.Context, sim Simulation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	sim.ID = m.nextID
	if sim.CreatedAt.IsZero() {
		sim.CreatedAt = time.Now()
	}
	sim.Config = append([]byte(nil), sim.Config...)
	m.sims[sim.ID] = &memorySim{
		meta:   sim,
		steps:  make(map[int64][]byte),
		maxIDs: make(map[int64]uint64),
	}
	return sim.ID, nil
}

func (m *Memory) SaveStep(_ context.Context, simID int64, step game.SimulationStep) error {
	data, err := Marshal(step)
	if err != nil {
		return fmt.Errorf("encoding step %d: %w", step.Number, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sim, ok := m.sims[simID]
	if !ok {
		return fmt.Errorf("simulation %d: %w", simID, ErrNotFound)
	}
	sim.steps[step.Number] = data
	sim.maxIDs[step.Number] = step.MaxID()
	return nil
}

func (m *Memory) LoadStep(_ context.Context, simID, number int64) (game.SimulationStep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sim, ok := m.sims[simID]
	if !ok {
		return game.SimulationStep{}, fmt.Errorf("simulation %d: %w", simID, ErrNotFound)
	}
	data, ok := sim.steps[number]
	if !ok {
		return game.SimulationStep{}, fmt.Errorf("step %d of simulation %d: %w", number, simID, ErrNotFound)
	}
	return Unmarshal(data)
}

func (m *Memory) LoadRange(_ context.Context, simID, from, to int64) ([]game.SimulationStep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sim, ok := m.sims[simID]
	if !ok {
		return nil, fmt.Errorf("simulation %d: %w", simID, ErrNotFound)
	}

	numbers := make([]int64, 0, len(sim.steps))
	for n := range sim.steps {
		if n >= from && n <= to {
			numbers = append(numbers, n)
		}
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	out := make([]game.SimulationStep, 0, len(numbers))
	for _, n := range numbers {
		step, err := Unmarshal(sim.steps[n])
		if err != nil {
			return nil, err
		}
		out = append(out, step)
	}
	return out, nil
}

func (m *Memory) LatestStep(ctx context.Context, simID int64) (game.SimulationStep, error) {
	m.mu.RLock()
	sim, ok := m.sims[simID]
	if !ok {
		m.mu.RUnlock()
		return game.SimulationStep{}, fmt.Errorf("simulation %d: %w", simID, ErrNotFound)
	}
	latest, found := int64(0), false
	for n := range sim.steps {
		if !found || n > latest {
			latest, found = n, true
		}
	}
	m.mu.RUnlock()

	if !found {
		return game.SimulationStep{}, fmt.Errorf("steps of simulation %d: %w", simID, ErrNotFound)
	}
	return m.LoadStep(ctx, simID, latest)
}

func (m *Memory) MaxEntityID(_ context.Context, simID int64) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sim, ok := m.sims[simID]
	if !ok {
		return 0, fmt.Errorf("simulation %d: %w", simID, ErrNotFound)
	}
	var id uint64
	for _, n := range sim.maxIDs {
		id = max(id, n)
	}
	return id, nil
}

func (m *Memory) ListSimulations(_ context.Context) ([]Simulation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Simulation, 0, len(m.sims))
	for _, sim := range m.sims {
		out = append(out, sim.meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Close() error { return nil }
