package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/affinity/components"
)

const (
	inspectorEngrams = 5
	inspectorActions = 5
)

// Inspector renders the panel for the selected entity.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Width returns the panel width.
func (ins *Inspector) Width() int32 { return ins.width }

// Draw renders the inspector for e and returns the panel's bottom edge.
func (ins *Inspector) Draw(e *components.Entity) int32 {
	r := ins.renderer
	pad := r.Theme.Padding
	lines := components.Describe(e)

	height := pad*2 + int32(len(lines)+3)*(r.Theme.LineHeight+2)
	if e.IsOrganism() {
		height += int32(min(len(e.Engrams), inspectorEngrams)+min(len(e.Actions), inspectorActions)+2) * r.Theme.LineHeight
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	x := ins.x + pad
	y := ins.y + pad
	content := ins.width - pad*2

	y = r.DrawSectionHeader(x, y, "Inspector")
	y = r.DrawColorSwatch(x, y, "Color", ToRaylib(e.Color))
	for _, line := range lines {
		y = r.DrawFieldLine(x, y, line, content)
	}

	if !e.IsOrganism() {
		return y
	}

	y = r.DrawSectionHeader(x, y+4, fmt.Sprintf("Memory (%d)", len(e.Engrams)))
	for i, en := range e.Engrams {
		if i == inspectorEngrams {
			break
		}
		text := fmt.Sprintf("#%d %s  d=%.1f  e=%.1f", en.Subject.ID, en.Subject.Kind, en.Distance, en.Subject.Energy)
		rl.DrawText(text, x, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
	}

	y = r.DrawSectionHeader(x, y+4, fmt.Sprintf("Actions (%d)", len(e.Actions)))
	start := max(len(e.Actions)-inspectorActions, 0)
	for i := len(e.Actions) - 1; i >= start; i-- {
		a := e.Actions[i]
		text := fmt.Sprintf("%6d  %s %s", a.Tick, a.Kind, a.Detail)
		rl.DrawText(text, x, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
	}
	return y
}
