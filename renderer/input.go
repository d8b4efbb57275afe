package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// hoverSlack is how far from an entity, in screen pixels, a click or hover
// still picks it.
const hoverSlack = 8

// handleInput processes keyboard and mouse input.
func (v *View) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.game.TogglePause()
	}

	// Scrubbing pauses so the view stays where it was moved.
	if rl.IsKeyPressed(rl.KeyLeft) {
		v.game.SetPaused(true)
		v.game.Back()
	}
	if rl.IsKeyPressed(rl.KeyRight) {
		v.game.SetPaused(true)
		v.game.Forward()
	}
	if rl.IsKeyPressed(rl.KeyComma) {
		v.game.SetSpeed(v.game.Speed() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.game.SetSpeed(v.game.Speed() + 1)
	}
	if rl.IsKeyPressed(rl.KeyB) {
		v.jumpToBookmark()
	}
	if rl.IsKeyPressed(rl.KeyR) && v.saves != nil {
		v.saves.Retry()
	}

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		v.overlays.HandleKeyPress(key)
	}

	v.handleCameraInput()
	v.handleSelection()
}

// handleResize propagates window size changes to the camera.
func (v *View) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenW && h == v.screenH {
		return
	}
	v.screenW, v.screenH = w, h
	v.cam.Resize(w, h)
}

// handleCameraInput processes pan and zoom.
func (v *View) handleCameraInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.cam.Pan(-d.X, -d.Y)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}
}

// handleSelection selects the entity under a left click. Clicks on the
// controls panel are left to the panel.
func (v *View) handleSelection() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	if mouse.Y >= v.screenH-float32(v.controls.Height()) {
		return
	}
	step := v.game.Current()
	e, ok := step.Nearest(v.cam.ScreenVec(mouse.X, mouse.Y), float64(hoverSlack/v.cam.Zoom))
	if !ok {
		v.ClearSelection()
		return
	}
	v.Select(e.ID)
}

// jumpToBookmark moves the view to the next retained bookmark after the
// current step, wrapping to the first.
func (v *View) jumpToBookmark() {
	tl := v.game.Timeline()
	oldest, latest := tl.Oldest().Number, tl.Latest().Number
	current := v.game.Tick()

	first := int64(-1)
	for _, b := range v.game.Bookmarks() {
		if b.Tick < oldest || b.Tick > latest {
			continue
		}
		if first < 0 {
			first = b.Tick
		}
		if b.Tick > current {
			v.game.SetPaused(true)
			tl.SeekStep(b.Tick)
			return
		}
	}
	if first >= 0 {
		v.game.SetPaused(true)
		tl.SeekStep(first)
	}
}
