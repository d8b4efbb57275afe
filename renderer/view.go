// Package renderer draws the arena and wires keyboard and mouse input to a
// running game. It is the only package besides ui that talks to raylib.
package renderer

import (
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/affinity/camera"
	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/game"
	"github.com/pthm-cable/affinity/traits"
	"github.com/pthm-cable/affinity/ui"
)

// SaveStatus is the persistence state shown in the HUD. store.Saver
// satisfies it.
type SaveStatus interface {
	Failed() []int64
	Retry() int
	Pending() int64
}

// View renders a game and handles its input.
type View struct {
	game *game.Game
	cfg  *config.Config
	cam  *camera.Camera

	screenW, screenH float32

	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	inspector *ui.Inspector
	controls  *ui.ControlsPanel
	overlays  *ui.OverlayRegistry
	saves     SaveStatus

	selected    uint64
	hasSelected bool
}

// NewView creates a view over g. saves may be nil. The raylib window must
// already be open.
func NewView(g *game.Game, saves SaveStatus) *View {
	cfg := g.Config()
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())

	v := &View{
		game:      g,
		cfg:       cfg,
		cam:       camera.New(w, h, float32(cfg.Arena.Width), float32(cfg.Arena.Height)),
		screenW:   w,
		screenH:   h,
		hud:       ui.NewHUD(),
		perfPanel: ui.NewPerfPanel(int32(w)-270, 10),
		inspector: ui.NewInspector(int32(w)-290, 10, 280),
		overlays:  ui.NewOverlayRegistry(),
		controls:  ui.NewControlsPanel(saves),
		saves:     saves,
	}
	return v
}

// Frame handles input, advances the game and draws one frame.
func (v *View) Frame() {
	v.game.Perf().RecordFrame()
	v.handleInput()
	v.game.Update()
	v.Draw()
}

// Draw renders the current step.
func (v *View) Draw() {
	step := v.game.Current()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 18, A: 255})

	v.drawArena()
	v.drawEntities(step)

	selected, ok := v.selection(step)
	if ok {
		v.drawOverlays(&selected)
		v.drawSelectionIndicator(&selected)
	}
	v.drawVectors(step)
	v.drawUI(step, selected, ok)

	rl.EndDrawing()
}

func (v *View) drawUI(step game.SimulationStep, selected components.Entity, hasSelected bool) {
	data := ui.HUDData{
		Title:     "Affinity",
		Organisms: step.Count(traits.Organism),
		Nutrients: step.Count(traits.Nutrient),
		Lineages:  v.game.Lineages().ActiveLineageCount(),
		Tick:      step.Number,
		Latest:    v.game.Latest(),
		Speed:     v.game.Speed(),
		FPS:       rl.GetFPS(),
		Paused:    v.game.Paused(),
	}
	if v.saves != nil {
		data.SavesPending = v.saves.Pending()
		data.SavesFailed = len(v.saves.Failed())
	}
	v.hud.Draw(data)

	right := int32(v.screenW) - 10
	if hasSelected {
		v.inspector.SetPosition(right-v.inspector.Width(), 10)
		v.inspector.Draw(&selected)
	} else if v.overlays.IsEnabled(ui.OverlayPerf) {
		v.perfPanel.SetPosition(right-260, 10)
		v.perfPanel.Draw(v.game.Perf().Stats())
	} else {
		v.drawTooltip(step)
	}

	if v.overlays.IsEnabled(ui.OverlayLegend) {
		legend := "SPACE: Pause | <- ->: Scrub | , .: Speed | Wheel/+/-: Zoom | RMB: Pan | B: Bookmark | R: Retry saves | " +
			strings.Join(v.overlays.Legend(), " | ")
		v.hud.DrawLegend(int32(v.screenH)-v.controls.Height()-20, legend)
	}
	v.controls.Draw(v.game, int32(v.screenW), int32(v.screenH))
}

// selection resolves the selected id in the step being viewed. Scrubbing to
// a step where the entity does not exist hides the selection without
// clearing it.
func (v *View) selection(step game.SimulationStep) (components.Entity, bool) {
	if !v.hasSelected {
		return components.Entity{}, false
	}
	return step.Find(v.selected)
}

// Select selects an entity by id.
func (v *View) Select(id uint64) {
	v.selected = id
	v.hasSelected = true
}

// ClearSelection drops the selection.
func (v *View) ClearSelection() {
	v.hasSelected = false
}
