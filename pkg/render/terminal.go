package render

import (
	uv "github.com/charmbracelet/ultraviolet"
)

// Draw writes the canvas to the screen, one cell per terminal cell, with
// the canvas origin at the area's top-left corner.
func (c *Canvas) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		y := row - area.Min.Y
		if y >= c.Height {
			break
		}
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= c.Width {
				break
			}
			scr.SetCell(col, row, glyphCell(c.Cells[y*c.Width+x]))
		}
	}
}

// DrawText writes s starting at (x, y) in the given colors, clipped to area.
func DrawText(scr uv.Screen, area uv.Rectangle, x, y int, s string, fg, bg Color) {
	if y < area.Min.Y || y >= area.Max.Y {
		return
	}
	for _, r := range s {
		if x >= area.Max.X {
			return
		}
		if x >= area.Min.X {
			scr.SetCell(x, y, &uv.Cell{
				Content: string(r),
				Width:   1,
				Style:   uv.Style{Fg: fg, Bg: bg},
			})
		}
		x++
	}
}

func glyphCell(g Glyph) *uv.Cell {
	sym := g.Symbol
	if sym == 0 {
		sym = ' '
	}
	return &uv.Cell{
		Content: string(sym),
		Width:   1,
		Style: uv.Style{
			Fg: g.Fg,
			Bg: g.Bg,
		},
	}
}
