package render

import (
	"image"
	"image/png"
	"math"
	"os"
)

// Canvas is a grid of glyph cells, one per screen column and row.
type Canvas struct {
	Width  int
	Height int
	Cells  []Glyph // Row-major cell data
}

// NewCanvas creates a canvas with the given dimensions.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		Width:  width,
		Height: height,
		Cells:  make([]Glyph, width*height),
	}
}

// Resize changes the canvas dimensions, discarding its contents.
func (c *Canvas) Resize(width, height int) {
	c.Width = width
	c.Height = height
	if cap(c.Cells) >= width*height {
		c.Cells = c.Cells[:width*height]
		return
	}
	c.Cells = make([]Glyph, width*height)
}

// Clear fills every cell with g.
func (c *Canvas) Clear(g Glyph) {
	for i := range c.Cells {
		c.Cells[i] = g
	}
}

// SetCell sets the cell at (x, y). Out-of-bounds writes are ignored.
func (c *Canvas) SetCell(x, y int, g Glyph) {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return
	}
	c.Cells[y*c.Width+x] = g
}

// Cell returns the cell at (x, y), or the zero Glyph if out of bounds.
func (c *Canvas) Cell(x, y int) Glyph {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return Glyph{}
	}
	return c.Cells[y*c.Width+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, g Glyph) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		c.SetCell(x0, y0, g)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawTriangle draws the outline of a triangle.
func (c *Canvas) DrawTriangle(t Triangle, g Glyph) {
	for i := range 3 {
		a, b := t.P[i], t.P[(i+1)%3]
		c.DrawLine(int(a.X), int(a.Y), int(b.X), int(b.Y), g)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C of the
// directed edge (x0, y0) -> (x1, y1). Stepping one pixel in x adds A, one
// row in y adds B.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1
	B = x1 - x0
	C = x0*y1 - x1*y0
	return
}

// FillTriangle paints every cell whose center lies inside or on the edge of
// t with t's glyph. Either winding is accepted and there is no depth test:
// later fills overwrite earlier ones.
func (c *Canvas) FillTriangle(t Triangle) {
	x0, y0 := t.P[0].X, t.P[0].Y
	x1, y1 := t.P[1].X, t.P[1].Y
	x2, y2 := t.P[2].X, t.P[2].Y

	area2 := (x1-x0)*(y2-y0) - (y1-y0)*(x2-x0)
	if area2 == 0 || math.IsNaN(area2) {
		return
	}

	minX := int(math.Max(0, math.Floor(min3(x0, x1, x2))))
	maxX := int(math.Min(float64(c.Width-1), math.Ceil(max3(x0, x1, x2))))
	minY := int(math.Max(0, math.Floor(min3(y0, y1, y2))))
	maxY := int(math.Min(float64(c.Height-1), math.Ceil(max3(y0, y1, y2))))
	if minX > maxX || minY > maxY {
		return
	}

	A0, B0, C0 := edgeCoeffs(x1, y1, x2, y2)
	A1, B1, C1 := edgeCoeffs(x2, y2, x0, y0)
	A2, B2, C2 := edgeCoeffs(x0, y0, x1, y1)

	// Clockwise on screen gives negative edge values inside; flip them.
	if area2 < 0 {
		A0, B0, C0 = -A0, -B0, -C0
		A1, B1, C1 = -A1, -B1, -C1
		A2, B2, C2 = -A2, -B2, -C2
	}

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := A0*px + B0*py + C0
	w1Row := A1*px + B1*py + C1
	w2Row := A2*px + B2*py + C2

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		row := y * c.Width
		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				c.Cells[row+x] = t.Glyph
			}
			w0 += A0
			w1 += A1
			w2 += A2
		}
		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

// Paint fills tris in order. With wire set each triangle is also outlined
// in outline.
func (c *Canvas) Paint(tris []Triangle, wire bool, outline Glyph) {
	for _, t := range tris {
		c.FillTriangle(t)
		if wire {
			c.DrawTriangle(t, outline)
		}
	}
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// ToImage converts the canvas to an image with one pixel per cell, each the
// blended color of its glyph.
func (c *Canvas) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			img.SetRGBA(x, y, c.Cells[y*c.Width+x].Blend())
		}
	}
	return img
}

// SavePNG saves the canvas as a PNG file.
func (c *Canvas) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, c.ToImage()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
