package renderer

import (
	"fmt"
	"hash/fnv"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/game"
	"github.com/pthm-cable/affinity/ui"
)

const gridSpacing = 100 // world units

// drawArena draws the arena floor, a coarse grid and its border.
func (v *View) drawArena() {
	x0, y0 := v.cam.WorldToScreen(0, 0)
	x1, y1 := v.cam.WorldToScreen(float32(v.cfg.Arena.Width), float32(v.cfg.Arena.Height))
	rl.DrawRectangle(int32(x0), int32(y0), int32(x1-x0), int32(y1-y0), rl.Color{R: 18, G: 24, B: 30, A: 255})

	grid := rl.Color{R: 30, G: 38, B: 46, A: 255}
	for wx := float32(gridSpacing); wx < float32(v.cfg.Arena.Width); wx += gridSpacing {
		sx, _ := v.cam.WorldToScreen(wx, 0)
		rl.DrawLine(int32(sx), int32(y0), int32(sx), int32(y1), grid)
	}
	for wy := float32(gridSpacing); wy < float32(v.cfg.Arena.Height); wy += gridSpacing {
		_, sy := v.cam.WorldToScreen(0, wy)
		rl.DrawLine(int32(x0), int32(sy), int32(x1), int32(sy), grid)
	}
	rl.DrawRectangleLines(int32(x0), int32(y0), int32(x1-x0), int32(y1-y0), rl.Color{R: 70, G: 80, B: 90, A: 255})
}

// drawEntities draws every entity as a disc of its size. Organisms get an
// outline so they stand out from nutrients of similar color.
func (v *View) drawEntities(step game.SimulationStep) {
	for i := range step.Objects {
		e := &step.Objects[i]
		wx, wy := float32(e.Position.X), float32(e.Position.Y)
		r := float32(e.Radius())
		if !v.cam.IsVisible(wx, wy, r) {
			continue
		}
		sx, sy := v.cam.WorldToScreen(wx, wy)
		sr := max(r*v.cam.Zoom, 1)

		color := v.entityColor(e)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, sr, color)
		if e.IsOrganism() && sr > 3 {
			rl.DrawCircleLines(int32(sx), int32(sy), sr, rl.Color{R: 240, G: 240, B: 240, A: 120})
		}
	}
}

// entityColor picks the display color according to the active color overlay.
func (v *View) entityColor(e *components.Entity) rl.Color {
	base := ui.ToRaylib(e.Color)
	switch {
	case v.overlays.IsEnabled(ui.OverlayLineageColor) && e.IsOrganism():
		return lineageColor(e.Lineage())
	case v.overlays.IsEnabled(ui.OverlayEnergyColor):
		full := v.cfg.Organism.DefaultEnergy
		if e.IsNutrient() {
			full = v.cfg.Nutrient.Energy
		}
		frac := 1.0
		if full > 0 {
			frac = max(0, min(1, e.Energy/full))
		}
		base.A = uint8(60 + 195*frac)
		return base
	}
	return base
}

// lineageColor derives a stable hue from a lineage name.
func lineageColor(name string) rl.Color {
	h := fnv.New32a()
	h.Write([]byte(name))
	hue := float64(h.Sum32()%360) + 0.5
	r, g, b := colorful.Hsv(hue, 0.65, 0.95).RGB255()
	return rl.Color{R: r, G: g, B: b, A: 255}
}

// drawSelectionIndicator draws a pulsing ring around the selected entity.
func (v *View) drawSelectionIndicator(e *components.Entity) {
	sx, sy := v.cam.WorldVec(e.Position)
	radius := float32(e.Radius())*v.cam.Zoom + 4

	pulse := float32(math.Sin(float64(v.game.Tick())*0.1))*0.3 + 0.7
	alpha := uint8(255 * pulse)
	rl.DrawCircleLines(int32(sx), int32(sy), radius, rl.Color{R: 255, G: 255, B: 255, A: alpha})
	rl.DrawCircleLines(int32(sx), int32(sy), radius+1, rl.Color{R: 255, G: 255, B: 255, A: alpha / 2})
}

// drawTooltip shows a short summary of the entity under the cursor.
func (v *View) drawTooltip(step game.SimulationStep) {
	mouse := rl.GetMousePosition()
	e, ok := step.Nearest(v.cam.ScreenVec(mouse.X, mouse.Y), float64(hoverSlack/v.cam.Zoom))
	if !ok {
		return
	}

	lines := []string{fmt.Sprintf("#%d %s", e.ID, e.Kind)}
	if lin := e.Lineage(); lin != "" {
		lines = append(lines, lin)
	}
	lines = append(lines,
		fmt.Sprintf("Energy: %.1f", e.Energy),
		fmt.Sprintf("Age: %d", e.Age),
	)
	if last, ok := e.Last(); ok {
		lines = append(lines, fmt.Sprintf("Last: %s @%d", last.Kind, last.Tick))
	}

	const fontSize, padding, lineHeight = 14, 8, 16
	width := int32(0)
	for _, line := range lines {
		width = max(width, rl.MeasureText(line, fontSize))
	}
	w := width + padding*2
	h := int32(len(lines)*lineHeight + padding*2)

	x := int32(mouse.X) + 15
	y := int32(mouse.Y) + 15
	if x+w > int32(v.screenW)-10 {
		x = int32(mouse.X) - w - 10
	}
	if y+h > int32(v.screenH)-10 {
		y = int32(mouse.Y) - h - 10
	}

	rl.DrawRectangle(x, y, w, h, rl.Color{R: 20, G: 25, B: 30, A: 230})
	rl.DrawRectangleLines(x, y, w, h, rl.Color{R: 60, G: 70, B: 80, A: 255})
	for i, line := range lines {
		color := rl.LightGray
		if i == 0 {
			color = ui.ToRaylib(e.Color)
		}
		rl.DrawText(line, x+padding, y+padding+int32(i*lineHeight), fontSize, color)
	}
}
