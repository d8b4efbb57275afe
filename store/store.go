// Package store persists simulation steps keyed by (simulation, step number)
// and replays them. Steps are stored in their plain-number wire form.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pthm-cable/affinity/game"
)

// ErrNotFound is returned when a simulation or step does not exist.
var ErrNotFound = errors.New("store: not found")

// Simulation describes one persisted run.
type Simulation struct {
	ID        int64
	Name      string
	Seed      int64
	Config    []byte // YAML snapshot of the run's configuration
	CreatedAt time.Time
}

// Store persists simulation steps. SaveStep is an upsert: saving a step
// number again replaces the stored step.
type Store interface {
	CreateSimulation(ctx context.Context, sim Simulation) (int64, error)
	SaveStep(ctx context.Context, simID int64, step game.SimulationStep) error
	LoadStep(ctx context.Context, simID, number int64) (game.SimulationStep, error)
	// LoadRange returns the stored steps with from <= number <= to, in order.
	LoadRange(ctx context.Context, simID, from, to int64) ([]game.SimulationStep, error)
	LatestStep(ctx context.Context, simID int64) (game.SimulationStep, error)
	// MaxEntityID returns the highest entity id in any stored step of the
	// simulation, 0 when none is stored. Entities that died before the latest
	// step still count, so a resumed run must issue ids above it.
	MaxEntityID(ctx context.Context, simID int64) (uint64, error)
	ListSimulations(ctx context.Context) ([]Simulation, error)
	Close() error
}

// FindSimulation returns the simulation with the given id.
func FindSimulation(ctx context.Context, st Store, id int64) (Simulation, error) {
	sims, err := st.ListSimulations(ctx)
	if err != nil {
		return Simulation{}, err
	}
	for _, s := range sims {
		if s.ID == id {
			return s, nil
		}
	}
	return Simulation{}, fmt.Errorf("simulation %d: %w", id, ErrNotFound)
}
