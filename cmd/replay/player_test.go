package main

import (
	"context"
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/game"
	"github.com/pthm-cable/affinity/store"
	"github.com/pthm-cable/affinity/traits"
)

// savedSim stores steps with the given numbers in a fresh memory store.
func savedSim(t *testing.T, numbers ...int64) (*store.Memory, int64) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()
	id, err := st.CreateSimulation(ctx, store.Simulation{Name: "test"})
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range numbers {
		step := game.SimulationStep{Number: n, Objects: []components.Entity{{
			Identity:   components.Identity{ID: 1, Kind: traits.Nutrient},
			Appearance: components.Appearance{Color: components.NutrientColor, Size: 5},
		}}}
		if err := st.SaveStep(ctx, id, step); err != nil {
			t.Fatal(err)
		}
	}
	return st, id
}

func TestPlayerWalksAcrossChunksAndGaps(t *testing.T) {
	ctx := context.Background()
	st, id := savedSim(t, 0, 1, 2, 5, 6, 20)

	p, err := newPlayer(ctx, st, id, 0, 2)
	if err != nil {
		t.Fatal(err)
	}

	var got []int64
	for {
		got = append(got, p.current().Number)
		ok, err := p.next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
	}
	want := []int64{0, 1, 2, 5, 6, 20}
	if len(got) != len(want) {
		t.Fatalf("forward = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("forward = %v, want %v", got, want)
		}
	}

	got = got[:0]
	for {
		got = append(got, p.current().Number)
		ok, err := p.prev(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
	}
	if len(got) != len(want) || got[0] != 20 || got[len(got)-1] != 0 {
		t.Errorf("backward = %v", got)
	}
}

func TestPlayerFollowsNewSteps(t *testing.T) {
	ctx := context.Background()
	st, id := savedSim(t, 0, 1)

	p, err := newPlayer(ctx, st, id, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := p.next(ctx); ok {
		t.Fatal("next past the latest step should report false")
	}

	if err := st.SaveStep(ctx, id, game.SimulationStep{Number: 2}); err != nil {
		t.Fatal(err)
	}
	ok, err := p.next(ctx)
	if err != nil || !ok {
		t.Fatalf("next after a new save = %v, %v", ok, err)
	}
	if p.current().Number != 2 || p.latestNumber() != 2 {
		t.Errorf("current %d latest %d, want 2 and 2", p.current().Number, p.latestNumber())
	}
}

func TestPlayerSeek(t *testing.T) {
	ctx := context.Background()
	st, id := savedSim(t, 0, 4, 8)

	p, err := newPlayer(ctx, st, id, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if p.current().Number != 4 {
		t.Errorf("start at 3 landed on %d, want 4", p.current().Number)
	}
	if err := p.seek(ctx, 100); err != nil {
		t.Fatal(err)
	}
	if p.current().Number != 8 {
		t.Errorf("seek past the end landed on %d, want 8", p.current().Number)
	}
}

func TestPlayerEmptySimulation(t *testing.T) {
	st, id := savedSim(t)
	if _, err := newPlayer(context.Background(), st, id, 0, 10); !errors.Is(err, errNoSteps) {
		t.Errorf("expected errNoSteps, got %v", err)
	}
}

func TestGridCell(t *testing.T) {
	g := grid{arena: r2.Vec{X: 100, Y: 50}, cols: 10, rows: 5}

	tests := []struct {
		name     string
		p        r2.Vec
		col, row int
	}{
		{"origin", r2.Vec{}, 0, 0},
		{"middle", r2.Vec{X: 55, Y: 25}, 5, 2},
		{"far edge clamps", r2.Vec{X: 100, Y: 50}, 9, 4},
		{"outside clamps", r2.Vec{X: -10, Y: 80}, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, row := g.cell(tt.p)
			if col != tt.col || row != tt.row {
				t.Errorf("cell(%v) = (%d, %d), want (%d, %d)", tt.p, col, row, tt.col, tt.row)
			}
		})
	}
}
