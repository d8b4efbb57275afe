package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/pthm-cable/affinity/game"
	"github.com/pthm-cable/affinity/store"
)

var errNoSteps = errors.New("simulation has no saved steps")

// player is a cursor over the saved steps of one simulation. Steps are
// loaded a chunk at a time; gaps left by steps that were never saved are
// skipped.
type player struct {
	st    store.Store
	simID int64
	chunk int64

	buf    []game.SimulationStep
	idx    int
	latest int64
}

func newPlayer(ctx context.Context, st store.Store, simID, from, chunk int64) (*player, error) {
	p := &player{st: st, simID: simID, chunk: max(chunk, 1)}
	latest, err := st.LatestStep(ctx, simID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("simulation %d: %w", simID, errNoSteps)
		}
		return nil, err
	}
	p.latest = latest.Number

	if err := p.seek(ctx, min(max(from, 0), p.latest)); err != nil {
		return nil, err
	}
	return p, nil
}

// current returns the step under the cursor.
func (p *player) current() game.SimulationStep {
	return p.buf[p.idx]
}

// latestNumber returns the newest step number known to the player.
func (p *player) latestNumber() int64 { return p.latest }

// next moves to the following saved step. At the end it checks the store for
// newly saved steps, so a running simulation can be followed. It reports
// false when there is nothing newer.
func (p *player) next(ctx context.Context) (bool, error) {
	if p.idx+1 < len(p.buf) {
		p.idx++
		return true, nil
	}
	if err := p.refresh(ctx); err != nil {
		return false, err
	}
	cur := p.current().Number
	for from := cur + 1; from <= p.latest; from += p.chunk {
		steps, err := p.st.LoadRange(ctx, p.simID, from, from+p.chunk-1)
		if err != nil {
			return false, err
		}
		if len(steps) > 0 {
			p.buf, p.idx = steps, 0
			return true, nil
		}
	}
	return false, nil
}

// prev moves to the preceding saved step. It reports false at the first one.
func (p *player) prev(ctx context.Context) (bool, error) {
	if p.idx > 0 {
		p.idx--
		return true, nil
	}
	for to := p.current().Number - 1; to >= 0; to -= p.chunk {
		steps, err := p.st.LoadRange(ctx, p.simID, max(to-p.chunk+1, 0), to)
		if err != nil {
			return false, err
		}
		if len(steps) > 0 {
			p.buf, p.idx = steps, len(steps)-1
			return true, nil
		}
	}
	return false, nil
}

// seek moves to the first saved step at or after number, or the last saved
// step before it when there is none after.
func (p *player) seek(ctx context.Context, number int64) error {
	for from := max(number, 0); from <= p.latest; from += p.chunk {
		steps, err := p.st.LoadRange(ctx, p.simID, from, from+p.chunk-1)
		if err != nil {
			return err
		}
		if len(steps) > 0 {
			p.buf, p.idx = steps, 0
			return nil
		}
	}
	last, err := p.st.LatestStep(ctx, p.simID)
	if err != nil {
		return err
	}
	p.buf, p.idx = []game.SimulationStep{last}, 0
	return nil
}

func (p *player) refresh(ctx context.Context) error {
	latest, err := p.st.LatestStep(ctx, p.simID)
	if err != nil {
		return err
	}
	p.latest = latest.Number
	return nil
}
