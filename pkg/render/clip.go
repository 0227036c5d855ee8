package render

import (
	"github.com/taigrr/flyby/pkg/math3d"
)

// Triangle is a flat-shaded triangle as it moves through the pipeline.
// Every stage produces a new value; Lum and Glyph are carried unchanged
// through transforms and clipping.
type Triangle struct {
	P     [3]math3d.Vec4
	Lum   float64
	Glyph Glyph
}

// AvgZ returns the mean z of the three vertices.
func (t Triangle) AvgZ() float64 {
	return (t.P[0].Z + t.P[1].Z + t.P[2].Z) / 3
}

// ClipResult holds the 0, 1 or 2 triangles produced by clipping.
// Only the first N entries of T are valid.
type ClipResult struct {
	N int
	T [2]Triangle
}

// Triangles returns the valid triangles.
func (c ClipResult) Triangles() []Triangle {
	return c.T[:c.N]
}

// Clip splits tri against plane, keeping the part on the side the normal
// points to. A vertex exactly on the plane counts as inside.
//
// When one vertex is inside, the result keeps it as P[0] and replaces the
// other two with their intersections. When two are inside the clipped quad
// is returned as {in0, in1, I0} and {in1, I0, I1}, where I0 and I1 are the
// intersections of in0 and in1 with the outside vertex.
func Clip(plane Plane, tri Triangle) ClipResult {
	var inside, outside [3]math3d.Vec4
	var nIn, nOut int

	for _, p := range tri.P {
		if plane.DistanceToPoint(p.Vec3()) >= 0 {
			inside[nIn] = p
			nIn++
		} else {
			outside[nOut] = p
			nOut++
		}
	}

	switch nIn {
	case 0:
		return ClipResult{}
	case 3:
		return ClipResult{N: 1, T: [2]Triangle{tri}}
	case 1:
		out := tri
		out.P = [3]math3d.Vec4{
			inside[0],
			plane.Intersect(inside[0], outside[0]),
			plane.Intersect(inside[0], outside[1]),
		}
		return ClipResult{N: 1, T: [2]Triangle{out}}
	default:
		a, b := tri, tri
		a.P = [3]math3d.Vec4{
			inside[0],
			inside[1],
			plane.Intersect(inside[0], outside[0]),
		}
		b.P = [3]math3d.Vec4{
			inside[1],
			a.P[2],
			plane.Intersect(inside[1], outside[0]),
		}
		return ClipResult{N: 2, T: [2]Triangle{a, b}}
	}
}
