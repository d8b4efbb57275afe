package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const maxSpeed = 10

// SaveQueue is the persistence state the controls can act on.
type SaveQueue interface {
	Failed() []int64
	Retry() int
}

// ControlsPanel renders the playback controls along the bottom of the
// screen: play/pause, single steps, speed and a history scrubber with
// bookmark markers.
type ControlsPanel struct {
	renderer *Renderer
	height   int32
	saves    SaveQueue
}

// NewControlsPanel creates the controls. saves may be nil when nothing is
// persisted.
func NewControlsPanel(saves SaveQueue) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		height:   64,
		saves:    saves,
	}
}

// Height returns the panel height in pixels.
func (c *ControlsPanel) Height() int32 { return c.height }

// Draw renders the panel at the bottom of a screenW x screenH screen and
// applies whatever the user clicked to s.
func (c *ControlsPanel) Draw(s Session, screenW, screenH int32) {
	r := c.renderer
	pad := float32(r.Theme.Padding)
	x0, y0 := AnchorBottomLeft.Place(screenW, screenH, screenW, c.height, 0)
	r.DrawPanel(x0, y0, screenW, c.height)

	x := float32(x0) + pad
	y := float32(y0) + pad

	label := "Pause"
	if s.Paused() {
		label = "Play"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 60, Height: 22}, label) {
		s.TogglePause()
	}
	x += 66
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 26, Height: 22}, "<") {
		s.Timeline().Back()
	}
	x += 30
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 26, Height: 22}, ">") {
		if tl := s.Timeline(); !tl.AtLatest() {
			tl.SeekIndex(tl.Cursor() + 1)
		}
	}
	x += 30
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 56, Height: 22}, "Latest") {
		tl := s.Timeline()
		tl.SeekIndex(tl.Len() - 1)
	}
	x += 66

	speed := gui.SliderBar(
		rl.Rectangle{X: x + 40, Y: y + 3, Width: 100, Height: 16},
		"Speed", fmt.Sprintf("%dx", s.Speed()),
		float32(s.Speed()), 1, maxSpeed,
	)
	if n := int(speed + 0.5); n != s.Speed() {
		s.SetSpeed(n)
	}
	x += 180

	if c.saves != nil {
		if failed := len(c.saves.Failed()); failed > 0 {
			text := fmt.Sprintf("Retry %d saves", failed)
			if gui.Button(rl.Rectangle{X: x, Y: y, Width: 110, Height: 22}, text) {
				c.saves.Retry()
			}
		}
	}

	c.drawScrubber(s, float32(x0)+pad, y+30, float32(screenW)-2*pad)
}

// drawScrubber draws a slider over the retained steps. Moving it only moves
// the timeline cursor; nothing is recomputed.
func (c *ControlsPanel) drawScrubber(s Session, x, y, width float32) {
	r := c.renderer
	tl := s.Timeline()
	last := float32(tl.Len() - 1)
	bounds := rl.Rectangle{X: x + 70, Y: y, Width: width - 140, Height: 14}

	cursor := float32(tl.Cursor())
	pos := gui.SliderBar(bounds,
		fmt.Sprintf("%d", tl.Oldest().Number),
		fmt.Sprintf("%d", tl.Latest().Number),
		cursor, 0, max(last, 1),
	)
	if i := int(pos + 0.5); i != tl.Cursor() {
		tl.SeekIndex(i)
	}

	if last <= 0 {
		return
	}
	oldest := tl.Oldest().Number
	for _, b := range s.Bookmarks() {
		i := b.Tick - oldest
		if i < 0 || i > int64(last) {
			continue
		}
		mx := int32(bounds.X + bounds.Width*float32(i)/last)
		rl.DrawLine(mx, int32(y)-3, mx, int32(y+bounds.Height)+3, r.Theme.Marker)
	}
}
