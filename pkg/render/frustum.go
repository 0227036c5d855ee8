// Package render turns meshes, a camera and a light into a depth-ordered list
// of flat-shaded screen-space triangles, and paints them onto glyph canvases.
package render

import (
	"github.com/taigrr/flyby/pkg/math3d"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// NewPlane creates the plane through point with the given normal. The normal
// is normalized; a zero normal gives a plane every point lies on, so clipping
// against it keeps everything.
func NewPlane(point, normal math3d.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, D: -n.Dot(point)}
}

// Normalize normalizes the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Intersect returns the point where the segment from start to end crosses
// the plane. All four components are interpolated, so a retained w follows
// the new vertex.
func (p Plane) Intersect(start, end math3d.Vec4) math3d.Vec4 {
	ad := start.Vec3().Dot(p.Normal)
	bd := end.Vec3().Dot(p.Normal)
	t := (-p.D - ad) / (bd - ad)
	return start.Lerp(end, t)
}

// Frustum represents the 6 planes of a view frustum.
// Planes are ordered: Left, Right, Bottom, Top, Near, Far.
// Each plane's normal points inward (toward the center of the frustum).
type Frustum struct {
	Planes [6]Plane
}

// FrustumPlane indices for clarity.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts frustum planes from a view-projection matrix
// (Gribb/Hartmann). With row vectors, clip = p * M, so each clip component is
// p dotted with a column of M. Depth runs from 0 at the near plane to 1 at
// the far plane.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	var f Frustum

	c0, c1, c2, c3 := m.Column(0), m.Column(1), m.Column(2), m.Column(3)
	plane := func(v math3d.Vec4) Plane {
		return Plane{Normal: v.Vec3(), D: v.W}
	}
	add := func(a, b math3d.Vec4) math3d.Vec4 {
		return math3d.V4(a.X+b.X, a.Y+b.Y, a.Z+b.Z, a.W+b.W)
	}
	sub := func(a, b math3d.Vec4) math3d.Vec4 {
		return math3d.V4(a.X-b.X, a.Y-b.Y, a.Z-b.Z, a.W-b.W)
	}

	f.Planes[FrustumLeft] = plane(add(c3, c0))
	f.Planes[FrustumRight] = plane(sub(c3, c0))
	f.Planes[FrustumBottom] = plane(add(c3, c1))
	f.Planes[FrustumTop] = plane(sub(c3, c1))
	f.Planes[FrustumNear] = plane(c2)
	f.Planes[FrustumFar] = plane(sub(c3, c2))

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}

	return f
}

// viewNearPlane returns the world-space plane view-space z = nearZ for the
// given view matrix, facing away from the camera.
func viewNearPlane(view math3d.Mat4, nearZ float64) Plane {
	p := Plane{
		Normal: math3d.V3(view[0][2], view[1][2], view[2][2]),
		D:      view[3][2] - nearZ,
	}
	p.Normalize()
	return p
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Transform returns the box bounding all eight corners of b after m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	corners := [8]math3d.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}

	first := m.MulPoint(corners[0]).Vec3()
	newMin, newMax := first, first

	for _, c := range corners[1:] {
		p := m.MulPoint(c).Vec3()
		newMin = newMin.Min(p)
		newMax = newMax.Max(p)
	}

	return AABB{Min: newMin, Max: newMax}
}

// IntersectAABB reports whether any part of box may lie inside the frustum.
// It can return true for boxes just outside a corner, never false for a
// visible one.
func (f Frustum) IntersectAABB(box AABB) bool {
	return f.intersectPlanes(box, FrustumLeft, FrustumFar)
}

// IntersectAABBNoFar is IntersectAABB without the far plane, for pipelines
// that never clip distant geometry.
func (f Frustum) IntersectAABBNoFar(box AABB) bool {
	return f.intersectPlanes(box, FrustumLeft, FrustumNear)
}

// intersectPlanes tests planes first..last inclusive using the
// "positive vertex": the corner furthest along the plane normal. If even
// that corner is behind a plane, the whole box is.
func (f Frustum) intersectPlanes(box AABB, first, last int) bool {
	for i := first; i <= last; i++ {
		plane := f.Planes[i]

		pVertex := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)

		if plane.DistanceToPoint(pVertex) < 0 {
			return false
		}
	}
	return true
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
