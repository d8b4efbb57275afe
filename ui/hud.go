package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/affinity/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Organisms int
	Nutrients int
	Lineages  int
	Tick      int64
	Latest    int64
	Speed     int
	FPS       int32
	Paused    bool

	SavesPending int64
	SavesFailed  int
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Organisms: %d | Nutrients: %d | Lineages: %d", data.Organisms, data.Nutrients, data.Lineages),
		10, 35, 16, rl.LightGray,
	)

	tick := fmt.Sprintf("Step: %d", data.Tick)
	if data.Tick != data.Latest {
		tick = fmt.Sprintf("Step: %d / %d", data.Tick, data.Latest)
	}
	rl.DrawText(
		fmt.Sprintf("%s | Speed: %dx | FPS: %d", tick, data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)

	if data.SavesFailed > 0 {
		rl.DrawText(fmt.Sprintf("%d steps failed to save", data.SavesFailed), 10, 95, 16, h.renderer.Theme.Warning)
	} else if data.SavesPending > 0 {
		rl.DrawText(fmt.Sprintf("Saving %d", data.SavesPending), 10, 95, 14, rl.Gray)
	}
}

// DrawLegend renders the key legend above the controls panel.
func (h *HUD) DrawLegend(y int32, legend string) {
	rl.DrawText(legend, 10, y, 14, rl.Gray)
}

// PerfPanel renders the per-phase step timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	width := int32(260)
	height := int32(len(telemetry.Phases)+4)*14 + 2*pad
	r.DrawPanel(p.x, p.y, width, height)

	x := p.x + pad
	y := p.y + pad
	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  TPS: %.0f", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 12, rl.Yellow)
	y += 14
	rl.DrawText(fmt.Sprintf("Organism: %s (max %s)",
		stats.AvgOrganismDuration.Round(time.Microsecond),
		stats.MaxOrganismDuration.Round(time.Microsecond)), x, y, 12, rl.LightGray)
	y += 16

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
