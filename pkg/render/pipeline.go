package render

import (
	"cmp"
	"math"
	"slices"

	"github.com/taigrr/flyby/pkg/math3d"
)

// MeshRenderer is the read-only view of a mesh the pipeline consumes.
// Faces index into the vertex list; vertex order defines facing.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) math3d.Vec3
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with bounding box support for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// Object is a mesh placed in the world. World is applied to every vertex
// before anything else; build it rotation first, then translation.
type Object struct {
	Name  string
	Mesh  MeshRenderer
	World math3d.Mat4
}

// Layer is a group of objects seen through one camera. A nil Camera uses
// the frame camera.
type Layer struct {
	Name    string
	Camera  *Camera
	Objects []Object
}

// Frame is the per-frame input to the renderer.
type Frame struct {
	Elapsed float64 // Seconds since the previous frame
	Camera  Camera
	Width   int
	Height  int
}

// Config controls lighting, clipping and projection conventions.
type Config struct {
	// LightDir points toward the light. It is normalized by NewRenderer; a
	// zero direction disables diffuse light.
	LightDir math3d.Vec3

	// Ambient is the luminance floor of every visible face.
	Ambient float64

	// NearZ is the view-space depth of the near clip plane.
	NearZ float64

	// FlipXY inverts x and y after the perspective divide so +Y is up on a
	// top-down screen.
	FlipXY bool

	// Shade maps luminance to the triangle's glyph.
	Shade ShadeFunc

	// FrustumCull skips objects whose bounds lie entirely outside the side
	// or near planes. It never changes the emitted triangles.
	FrustumCull bool
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		LightDir:    math3d.V3(0, 1, -1),
		Ambient:     0.1,
		NearZ:       0.1,
		FlipXY:      true,
		Shade:       GrayscaleShade,
		FrustumCull: true,
	}
}

// Stats counts what happened to geometry during the last Render call.
type Stats struct {
	ObjectsTested int // Objects with bounds checked against the frustum
	ObjectsCulled int // Objects skipped by the frustum check
	TrianglesIn   int // Source triangles considered
	BackFaces     int // Dropped facing away from the camera
	Degenerate    int // Dropped for a zero or non-finite normal
	NearClipped   int // Dropped entirely by the near plane
	Projected     int // Triangles queued for sorting
	Emitted       int // Triangles returned after screen clipping
}

// Renderer runs the triangle pipeline. It keeps scratch buffers between
// frames and is not safe for concurrent use.
type Renderer struct {
	cfg      Config
	light    math3d.Vec3
	hasLight bool
	near     Plane

	Stats Stats

	queue []Triangle
	bufA  []Triangle
	bufB  []Triangle
}

// NewRenderer creates a renderer. A nil Shade falls back to GrayscaleShade.
func NewRenderer(cfg Config) *Renderer {
	if cfg.Shade == nil {
		cfg.Shade = GrayscaleShade
	}
	r := &Renderer{cfg: cfg}
	r.light, r.hasLight = cfg.LightDir.TryNormalize()
	r.near = NewPlane(math3d.V3(0, 0, cfg.NearZ), math3d.V3(0, 0, 1))
	return r
}

// Config returns the renderer's configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Render draws objects through the frame camera and returns the visible
// screen-space triangles in paint order, farthest first.
func (r *Renderer) Render(f Frame, objects []Object) []Triangle {
	return r.RenderLayers(f, []Layer{{Objects: objects}})
}

// RenderLayers renders each layer independently, sorted within itself, and
// concatenates the results so later layers paint over earlier ones.
func (r *Renderer) RenderLayers(f Frame, layers []Layer) []Triangle {
	r.Stats = Stats{}
	if f.Width <= 0 || f.Height <= 0 {
		return nil
	}

	var out []Triangle
	for _, layer := range layers {
		cam := f.Camera
		if layer.Camera != nil {
			cam = *layer.Camera
		}
		out = r.renderLayer(out, cam, f.Width, f.Height, layer.Objects)
	}
	r.Stats.Emitted = len(out)
	return out
}

func (r *Renderer) renderLayer(out []Triangle, cam Camera, width, height int, objects []Object) []Triangle {
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix(width, height)

	var frustum Frustum
	if r.cfg.FrustumCull {
		frustum = NewFrustumFromMatrix(view.Mul(proj))
		frustum.Planes[FrustumNear] = viewNearPlane(view, r.cfg.NearZ)
	}

	r.queue = r.queue[:0]
	for _, obj := range objects {
		if obj.Mesh == nil {
			continue
		}
		if r.cfg.FrustumCull && r.outsideFrustum(frustum, obj) {
			continue
		}
		r.queueObject(obj, cam.Position, view, proj, width, height)
	}

	// Painter's order: farthest first. Stable so equal depths keep mesh order.
	slices.SortStableFunc(r.queue, func(a, b Triangle) int {
		return cmp.Compare(b.AvgZ(), a.AvgZ())
	})

	w, h := float64(width), float64(height)
	// Top, bottom, left, right.
	edges := [4]Plane{
		NewPlane(math3d.V3(0, 0, 0), math3d.V3(0, 1, 0)),
		NewPlane(math3d.V3(0, h-1, 0), math3d.V3(0, -1, 0)),
		NewPlane(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0)),
		NewPlane(math3d.V3(w-1, 0, 0), math3d.V3(-1, 0, 0)),
	}

	for _, tri := range r.queue {
		cur := append(r.bufA[:0], tri)
		next := r.bufB[:0]
		// Everything in cur is inside all earlier edges; only the
		// current edge needs testing.
		for _, edge := range edges {
			next = next[:0]
			for _, t := range cur {
				res := Clip(edge, t)
				for i := range res.N {
					next = append(next, res.T[i])
				}
			}
			cur, next = next, cur
		}
		out = append(out, cur...)
		r.bufA, r.bufB = cur, next
	}
	return out
}

func (r *Renderer) outsideFrustum(f Frustum, obj Object) bool {
	bounded, ok := obj.Mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}
	r.Stats.ObjectsTested++
	lo, hi := bounded.GetBounds()
	if f.IntersectAABBNoFar(NewAABB(lo, hi).Transform(obj.World)) {
		return false
	}
	r.Stats.ObjectsCulled++
	return true
}

// queueObject runs every face of obj through world transform, culling,
// lighting, view transform, near clipping and projection, appending the
// survivors to the sort queue.
func (r *Renderer) queueObject(obj Object, eye math3d.Vec3, view, proj math3d.Mat4, width, height int) {
	mesh := obj.Mesh
	// A mirroring world matrix turns front faces clockwise.
	mirrored := obj.World.Det3() < 0
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		r.Stats.TrianglesIn++
		if mirrored {
			face[1], face[2] = face[2], face[1]
		}

		var world Triangle
		for k, idx := range face {
			world.P[k] = obj.World.MulPoint(mesh.GetVertex(idx))
		}

		line1 := world.P[1].Sub(world.P[0]).Vec3()
		line2 := world.P[2].Sub(world.P[0]).Vec3()
		normal, ok := line1.Cross(line2).TryNormalize()
		if !ok {
			r.Stats.Degenerate++
			continue
		}

		ray := world.P[0].Vec3().Sub(eye)
		if normal.Dot(ray) >= 0 {
			r.Stats.BackFaces++
			continue
		}

		world.Lum = r.luminance(normal)
		world.Glyph = r.cfg.Shade(world.Lum)

		viewed := world
		for k, p := range world.P {
			viewed.P[k] = view.MulVec4(p)
		}

		clipped := Clip(r.near, viewed)
		if clipped.N == 0 {
			r.Stats.NearClipped++
			continue
		}
		for k := range clipped.N {
			r.queue = append(r.queue, r.project(clipped.T[k], proj, width, height))
			r.Stats.Projected++
		}
	}
}

func (r *Renderer) luminance(normal math3d.Vec3) float64 {
	if !r.hasLight {
		return r.cfg.Ambient
	}
	return math.Max(r.cfg.Ambient, r.light.Dot(normal))
}

// project maps a view-space triangle to screen pixels. Z and w of the
// projected point are kept for depth ordering.
func (r *Renderer) project(t Triangle, proj math3d.Mat4, width, height int) Triangle {
	out := t
	for k, p := range t.P {
		q := proj.MulVec4(p).PerspectiveDivide()
		if r.cfg.FlipXY {
			q.X, q.Y = -q.X, -q.Y
		}
		q.X = (q.X + 1) * 0.5 * float64(width)
		q.Y = (q.Y + 1) * 0.5 * float64(height)
		out.P[k] = q
	}
	return out
}
