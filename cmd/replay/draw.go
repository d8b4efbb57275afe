package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/game"
	"github.com/pthm-cable/affinity/traits"
)

const statusRows = 2

// grid maps arena coordinates onto terminal cells.
type grid struct {
	arena      r2.Vec
	cols, rows int
}

// cell returns the terminal cell of a world position, clamped to the grid.
func (g grid) cell(p r2.Vec) (col, row int) {
	if g.cols <= 0 || g.rows <= 0 || g.arena.X <= 0 || g.arena.Y <= 0 {
		return 0, 0
	}
	col = int(p.X / g.arena.X * float64(g.cols))
	row = int(p.Y / g.arena.Y * float64(g.rows))
	return min(max(col, 0), g.cols-1), min(max(row, 0), g.rows-1)
}

// glyph picks the character for an entity. Organisms win over nutrients
// sharing a cell.
func glyph(e *components.Entity) rune {
	if e.IsOrganism() {
		return 'O'
	}
	return '.'
}

func entityStyle(c components.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

// drawStep renders a step into the screen, leaving the bottom rows for status.
func drawStep(s tcell.Screen, arena r2.Vec, step game.SimulationStep) {
	w, h := s.Size()
	g := grid{arena: arena, cols: w, rows: max(h-statusRows, 1)}

	s.Clear()
	border := tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	for col := 0; col < w; col++ {
		s.SetContent(col, g.rows, '─', nil, border)
	}

	occupied := make(map[[2]int]bool, len(step.Objects))
	for _, kind := range []traits.Kind{traits.Nutrient, traits.Organism} {
		for i := range step.Objects {
			e := &step.Objects[i]
			if e.Kind != kind {
				continue
			}
			col, row := g.cell(e.Position)
			if kind == traits.Nutrient && occupied[[2]int{col, row}] {
				continue
			}
			occupied[[2]int{col, row}] = true
			s.SetContent(col, row, glyph(e), nil, entityStyle(e.Color))
		}
	}
}

// drawStatus writes the status and key help lines.
func drawStatus(s tcell.Screen, name string, step game.SimulationStep, latest int64, playing bool, fps int) {
	w, h := s.Size()
	state := "paused"
	if playing {
		state = fmt.Sprintf("playing %d/s", fps)
	}
	status := fmt.Sprintf(" %s  step %d/%d  organisms %d  nutrients %d  [%s]",
		name, step.Number, latest, step.Count(traits.Organism), step.Count(traits.Nutrient), state)
	help := " space play/pause  ←/→ step  +/- speed  g/G first/latest  q quit"

	drawLine(s, 0, h-2, w, status, tcell.StyleDefault.Bold(true))
	drawLine(s, 0, h-1, w, help, tcell.StyleDefault.Foreground(tcell.ColorGray))
}

func drawLine(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= x+width {
			return
		}
		s.SetContent(col, y, r, nil, style)
		col++
	}
}
