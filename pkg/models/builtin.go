package models

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aquilax/go-perlin"
	"github.com/taigrr/flyby/pkg/math3d"
)

// BuiltinPrefix marks a mesh path that names generated geometry instead of
// a file, as in "builtin:airplane".
const BuiltinPrefix = "builtin:"

// ErrUnknownBuiltin is returned for a builtin name with no generator.
var ErrUnknownBuiltin = errors.New("unknown builtin mesh")

var builtins = map[string]func() *Mesh{
	"cube":      Cube,
	"airplane":  Airplane,
	"mountains": func() *Mesh { return Mountains(DefaultTerrain()) },
}

// Builtin returns a freshly generated built-in mesh by name.
func Builtin(name string) (*Mesh, error) {
	gen, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownBuiltin)
	}
	return gen(), nil
}

// BuiltinNames lists the available built-in meshes in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Corner order of a box: bit 0 is x, bit 1 is y, bit 2 is z.
var boxFaces = [12][3]int{
	{0, 2, 3}, {0, 3, 1}, // south (-z)
	{1, 3, 7}, {1, 7, 5}, // east (+x)
	{5, 7, 6}, {5, 6, 4}, // north (+z)
	{4, 6, 2}, {4, 2, 0}, // west (-x)
	{2, 6, 7}, {2, 7, 3}, // top (+y)
	{5, 4, 0}, {5, 0, 1}, // bottom (-y)
}

// addBox appends an axis-aligned box with outward-facing triangles.
func addBox(m *Mesh, min, max math3d.Vec3) {
	base := len(m.Vertices)
	for i := range 8 {
		x, y, z := min.X, min.Y, min.Z
		if i&1 != 0 {
			x = max.X
		}
		if i&2 != 0 {
			y = max.Y
		}
		if i&4 != 0 {
			z = max.Z
		}
		m.AddVertex(math3d.V3(x, y, z))
	}
	for _, f := range boxFaces {
		m.AddFace(base+f[0], base+f[1], base+f[2])
	}
}

// Cube returns the unit cube spanning (0,0,0) to (1,1,1).
func Cube() *Mesh {
	m := NewMesh("cube")
	addBox(m, math3d.V3(0, 0, 0), math3d.V3(1, 1, 1))
	m.CalculateBounds()
	return m
}

// Airplane returns a low-poly airplane centered on the origin, nose toward
// +z and wings along x.
func Airplane() *Mesh {
	m := NewMesh("airplane")

	// Fuselage
	addBox(m, math3d.V3(-0.15, -0.15, -1), math3d.V3(0.15, 0.15, 1))

	// Nose cone over the front face of the fuselage
	a := m.AddVertex(math3d.V3(-0.15, -0.15, 1))
	b := m.AddVertex(math3d.V3(0.15, -0.15, 1))
	c := m.AddVertex(math3d.V3(0.15, 0.15, 1))
	d := m.AddVertex(math3d.V3(-0.15, 0.15, 1))
	tip := m.AddVertex(math3d.V3(0, 0, 1.4))
	m.AddFace(a, b, tip)
	m.AddFace(b, c, tip)
	m.AddFace(c, d, tip)
	m.AddFace(d, a, tip)

	// Wings, tailplane and fin
	addBox(m, math3d.V3(-1.2, -0.03, -0.2), math3d.V3(1.2, 0.03, 0.3))
	addBox(m, math3d.V3(-0.5, -0.03, -1), math3d.V3(0.5, 0.03, -0.75))
	addBox(m, math3d.V3(-0.03, 0.15, -1), math3d.V3(0.03, 0.55, -0.75))

	m.CalculateBounds()
	return m
}

// Terrain describes a procedural heightfield.
type Terrain struct {
	Cols, Rows int     // Grid cells along x and z
	Spacing    float64 // Cell size
	Height     float64 // Noise amplitude
	Valley     float64 // Extra height at the x edges, rising from a valley along x=0
	Seed       int64
}

// DefaultTerrain returns the mountain range used by the built-in scene.
func DefaultTerrain() Terrain {
	return Terrain{
		Cols:    48,
		Rows:    48,
		Spacing: 1,
		Height:  5,
		Valley:  4,
		Seed:    1,
	}
}

// Mountains builds a heightfield mesh from Perlin noise. The grid is
// centered on x=0 and runs from z=0 away from the viewer; every face points
// up.
func Mountains(t Terrain) *Mesh {
	m := NewMesh("mountains")
	if t.Cols < 1 || t.Rows < 1 {
		return m
	}

	noise := perlin.NewPerlin(2, 2, 3, t.Seed)
	halfW := float64(t.Cols) * t.Spacing / 2

	for j := 0; j <= t.Rows; j++ {
		for i := 0; i <= t.Cols; i++ {
			x := float64(i)*t.Spacing - halfW
			z := float64(j) * t.Spacing
			n := noise.Noise2D(float64(i)/8, float64(j)/8)
			h := math.Max(0, t.Height*(n*0.5+0.5))
			if halfW > 0 {
				h += t.Valley * math.Abs(x) / halfW
			}
			m.AddVertex(math3d.V3(x, h, z))
		}
	}

	stride := t.Cols + 1
	for j := 0; j < t.Rows; j++ {
		for i := 0; i < t.Cols; i++ {
			a := j*stride + i // near left
			b := a + 1        // near right
			c := a + stride   // far left
			d := c + 1        // far right
			m.AddFace(a, c, b)
			m.AddFace(b, c, d)
		}
	}

	m.CalculateBounds()
	return m
}
