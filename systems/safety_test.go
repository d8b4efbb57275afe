package systems

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
)

func TestValidPosition(t *testing.T) {
	ss := NewSafetySystem(testConfig())
	tests := []struct {
		name string
		p    r2.Vec
		want bool
	}{
		{"normal", r2.Vec{X: 10, Y: 20}, true},
		{"zero", r2.Vec{}, false},
		{"nan", r2.Vec{X: math.NaN(), Y: 1}, false},
		{"inf", r2.Vec{X: 1, Y: math.Inf(1)}, false},
		{"too large", r2.Vec{X: 2e6, Y: 1}, false},
		{"too small", r2.Vec{X: 1, Y: -2e6}, false},
	}
	for _, tt := range tests {
		if got := ss.ValidPosition(tt.p); got != tt.want {
			t.Errorf("%s: ValidPosition(%+v) = %v, want %v", tt.name, tt.p, got, tt.want)
		}
	}
}

func TestSanitizeRespawnsNearParent(t *testing.T) {
	cfg := testConfig()
	ss := NewSafetySystem(cfg)

	parent := nutrientAt(1, 300, 300)
	child := nutrientAt(2, math.NaN(), 5)
	pid := uint64(1)
	child.ParentID = &pid
	child.Velocity = r2.Vec{X: 3, Y: 3}
	pop := []components.Entity{parent, child}

	repairs := ss.Sanitize(testRNG(1), pop, 9)

	if len(repairs) != 1 || !repairs[0].Respawned || !repairs[0].NearParent || repairs[0].ID != 2 {
		t.Fatalf("repairs = %+v", repairs)
	}
	if d := distance(pop[1].Position, parent.Position); d > cfg.Safety.RespawnRadius*math.Sqrt2 {
		t.Errorf("respawned %v from parent", d)
	}
	if pop[1].Velocity != (r2.Vec{}) {
		t.Errorf("velocity = %+v, want zero", pop[1].Velocity)
	}
	last, _ := pop[1].Journal.Last()
	if last.Kind != components.ActionRespawn || last.Tick != 9 {
		t.Errorf("journal = %+v", pop[1].Actions)
	}
}

func TestSanitizeRespawnsRandomlyWithoutParent(t *testing.T) {
	cfg := testConfig()
	ss := NewSafetySystem(cfg)
	pop := []components.Entity{nutrientAt(1, 0, 0)}

	repairs := ss.Sanitize(testRNG(2), pop, 0)
	if len(repairs) != 1 || repairs[0].NearParent {
		t.Fatalf("repairs = %+v", repairs)
	}
	p := pop[0].Position
	if !ss.ValidPosition(p) || p.X > cfg.Arena.Width || p.Y > cfg.Arena.Height {
		t.Errorf("respawn position %+v", p)
	}
}

func TestSanitizeFallsBackToCenter(t *testing.T) {
	cfg := testConfig()
	cfg.Safety.MinPosition = 900 // no arena point is valid
	ss := NewSafetySystem(cfg)
	pop := []components.Entity{nutrientAt(1, 100, 100)}

	done := make(chan []Repair, 1)
	go func() { done <- ss.Sanitize(testRNG(3), pop, 0) }()

	select {
	case repairs := <-done:
		if len(repairs) != 1 || !repairs[0].Respawned {
			t.Fatalf("repairs = %+v", repairs)
		}
		if pop[0].Position != cfg.Derived.Center {
			t.Errorf("position = %+v, want arena center %+v", pop[0].Position, cfg.Derived.Center)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Sanitize did not return")
	}
}

func TestSanitizeMotion(t *testing.T) {
	ss := NewSafetySystem(testConfig())
	fast := nutrientAt(1, 10, 10)
	fast.Velocity = r2.Vec{X: 300, Y: 400}
	broken := nutrientAt(2, 20, 20)
	broken.Force = r2.Vec{X: math.NaN()}
	fine := nutrientAt(3, 30, 30)
	fine.Velocity = r2.Vec{X: 1}

	pop := []components.Entity{fast, broken, fine}
	repairs := ss.Sanitize(testRNG(3), pop, 0)

	if len(repairs) != 2 {
		t.Fatalf("repairs = %+v", repairs)
	}
	if n := r2.Norm(pop[0].Velocity); math.Abs(n-50) > 1e-9 {
		t.Errorf("speed = %v, want 50", n)
	}
	if r := pop[0].Velocity.X / pop[0].Velocity.Y; math.Abs(r-0.75) > 1e-12 {
		t.Errorf("direction changed: %+v", pop[0].Velocity)
	}
	if pop[1].Force != (r2.Vec{}) {
		t.Errorf("force = %+v, want zero", pop[1].Force)
	}
	if pop[2].Velocity != (r2.Vec{X: 1}) {
		t.Errorf("healthy entity changed: %+v", pop[2].Velocity)
	}
}
