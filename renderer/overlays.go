package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/game"
	"github.com/pthm-cable/affinity/traits"
	"github.com/pthm-cable/affinity/ui"
)

const (
	velocityScale = 8  // screen pixels per unit of speed at zoom 1
	forceScale    = 40 // screen pixels per unit of force at zoom 1
)

// drawOverlays draws the overlays that follow the selected entity.
func (v *View) drawOverlays(e *components.Entity) {
	if !e.IsOrganism() {
		return
	}
	if v.overlays.IsEnabled(ui.OverlayMemoryLinks) {
		v.drawMemoryLinks(e)
	}
	if v.overlays.IsEnabled(ui.OverlayMemoryRange) {
		v.drawMemoryRange(e)
	}
}

// drawMemoryLinks draws a line from e to where each remembered entity was
// last perceived. Stale entries are drawn fainter.
func (v *View) drawMemoryLinks(e *components.Entity) {
	sx, sy := v.cam.WorldVec(e.Position)
	tick := v.game.Tick()
	for _, g := range e.Engrams {
		tx, ty := v.cam.WorldVec(g.Subject.Position)
		color := rl.Color{R: 120, G: 200, B: 255, A: 200}
		if g.Subject.Kind == traits.Organism {
			color = rl.Color{R: 255, G: 140, B: 120, A: 200}
		}
		if g.UpdatedAt < tick {
			color.A = 70
		}
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: tx, Y: ty}, color)
		rl.DrawCircleLines(int32(tx), int32(ty), float32(g.Subject.Size/2)*v.cam.Zoom+2, color)
	}
}

// drawMemoryRange draws a circle through the farthest remembered entity.
func (v *View) drawMemoryRange(e *components.Entity) {
	if len(e.Engrams) == 0 {
		return
	}
	far := e.Engrams[len(e.Engrams)-1].Distance
	sx, sy := v.cam.WorldVec(e.Position)
	rl.DrawCircleLines(int32(sx), int32(sy), float32(far)*v.cam.Zoom, rl.Color{R: 255, G: 255, B: 160, A: 90})
}

// drawVectors draws velocity and force vectors for every visible entity.
func (v *View) drawVectors(step game.SimulationStep) {
	showVel := v.overlays.IsEnabled(ui.OverlayVelocity)
	showForce := v.overlays.IsEnabled(ui.OverlayForce)
	if !showVel && !showForce {
		return
	}
	for i := range step.Objects {
		e := &step.Objects[i]
		if !v.cam.IsVisible(float32(e.Position.X), float32(e.Position.Y), float32(e.Radius())) {
			continue
		}
		if showVel {
			v.drawVector(e.Position, e.Velocity, velocityScale, rl.Color{R: 100, G: 255, B: 100, A: 180})
		}
		if showForce {
			v.drawVector(e.Position, e.Force, forceScale, rl.Color{R: 255, G: 200, B: 80, A: 180})
		}
	}
}

func (v *View) drawVector(from, vec r2.Vec, scale float64, color rl.Color) {
	if vec.X == 0 && vec.Y == 0 {
		return
	}
	to := r2.Add(from, r2.Scale(scale, vec))
	sx, sy := v.cam.WorldVec(from)
	tx, ty := v.cam.WorldVec(to)
	rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: tx, Y: ty}, color)
}
