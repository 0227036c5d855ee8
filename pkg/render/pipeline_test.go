package render

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/taigrr/flyby/pkg/math3d"
)

// testMesh implements MeshRenderer for testing.
type testMesh struct {
	verts []math3d.Vec3
	faces [][3]int
}

func (m *testMesh) VertexCount() int            { return len(m.verts) }
func (m *testMesh) TriangleCount() int          { return len(m.faces) }
func (m *testMesh) GetVertex(i int) math3d.Vec3 { return m.verts[i] }
func (m *testMesh) GetFace(i int) [3]int        { return m.faces[i] }

// boundedMesh adds bounds so the frustum check applies.
type boundedMesh struct{ *testMesh }

func (m boundedMesh) GetBounds() (min, max math3d.Vec3) {
	min, max = m.verts[0], m.verts[0]
	for _, v := range m.verts[1:] {
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}

// soup builds a mesh with one face per vertex triple.
func soup(tris ...[3]math3d.Vec3) *testMesh {
	m := &testMesh{}
	for _, t := range tris {
		n := len(m.verts)
		m.verts = append(m.verts, t[0], t[1], t[2])
		m.faces = append(m.faces, [3]int{n, n + 1, n + 2})
	}
	return m
}

// facing returns the unit triangle at depth z, wound to face a camera at
// the origin, shifted by dx along x.
func facing(dx, z float64) [3]math3d.Vec3 {
	return [3]math3d.Vec3{
		math3d.V3(dx, 0, z),
		math3d.V3(dx, 1, z),
		math3d.V3(dx+1, 1, z),
	}
}

const (
	testW = 160
	testH = 90
)

func testFrame() Frame {
	return Frame{Camera: NewCamera(), Width: testW, Height: testH}
}

func render(cfg Config, mesh MeshRenderer) ([]Triangle, Stats) {
	r := NewRenderer(cfg)
	out := r.Render(testFrame(), []Object{{Mesh: mesh, World: math3d.Identity()}})
	return out, r.Stats
}

func finiteInside(t Triangle, w, h float64) bool {
	const eps = 1e-9
	for _, p := range t.P {
		if !p.IsFinite() || p.X < -eps || p.X > w+eps || p.Y < -eps || p.Y > h+eps {
			return false
		}
	}
	return true
}

func TestPipelineSingleTriangle(t *testing.T) {
	Convey("Given a unit triangle at z=5 facing a camera at the origin", t, func() {
		mesh := soup(facing(0, 5))

		Convey("It survives every stage as one triangle", func() {
			out, stats := render(DefaultConfig(), mesh)
			So(out, ShouldHaveLength, 1)
			So(stats.TrianglesIn, ShouldEqual, 1)
			So(stats.Projected, ShouldEqual, 1)
			So(stats.Emitted, ShouldEqual, 1)

			Convey("with finite screen coordinates inside the viewport", func() {
				So(finiteInside(out[0], testW, testH), ShouldBeTrue)
				So(out[0].P[0].X, ShouldAlmostEqual, 80, 1e-6)
				So(out[0].P[0].Y, ShouldAlmostEqual, 45, 1e-6)
				So(out[0].P[1].X, ShouldAlmostEqual, 80, 1e-6)
				So(out[0].P[1].Y, ShouldAlmostEqual, 36, 1e-6)
				So(out[0].P[2].X, ShouldAlmostEqual, 71, 1e-6)
				So(out[0].P[2].Y, ShouldAlmostEqual, 36, 1e-6)
			})

			Convey("keeping depth and w for reference", func() {
				for _, p := range out[0].P {
					So(p.W, ShouldAlmostEqual, 5, 1e-9)
					So(p.Z, ShouldBeBetween, 0, 1)
				}
			})

			Convey("lit by the default light", func() {
				So(out[0].Lum, ShouldAlmostEqual, math.Sqrt2/2, 1e-9)
				So(out[0].Glyph, ShouldResemble, GrayscaleShade(out[0].Lum))
			})
		})

		Convey("Moved inside the near plane it is clipped away", func() {
			out, stats := render(DefaultConfig(), soup(facing(0, 0.05)))
			So(out, ShouldBeEmpty)
			So(stats.NearClipped, ShouldEqual, 1)
		})

		Convey("Wound the other way it faces away and is culled", func() {
			f := facing(0, 5)
			out, stats := render(DefaultConfig(), soup([3]math3d.Vec3{f[0], f[2], f[1]}))
			So(out, ShouldBeEmpty)
			So(stats.BackFaces, ShouldEqual, 1)
		})

		Convey("With no light direction it gets the ambient floor", func() {
			cfg := DefaultConfig()
			cfg.LightDir = math3d.Zero3()
			cfg.Ambient = 0.25
			out, _ := render(cfg, mesh)
			So(out, ShouldHaveLength, 1)
			So(out[0].Lum, ShouldEqual, 0.25)
		})

		Convey("Lit from behind it still gets the ambient floor", func() {
			cfg := DefaultConfig()
			cfg.LightDir = math3d.V3(0, 0, 1)
			out, _ := render(cfg, mesh)
			So(out[0].Lum, ShouldEqual, cfg.Ambient)
		})

		Convey("Without FlipXY the image is mirrored", func() {
			cfg := DefaultConfig()
			cfg.FlipXY = false
			out, _ := render(cfg, mesh)
			So(out[0].P[2].X, ShouldAlmostEqual, 89, 1e-6)
			So(out[0].P[2].Y, ShouldAlmostEqual, 54, 1e-6)
		})
	})
}

func TestPipelineDegenerate(t *testing.T) {
	Convey("Given collinear and coincident triangles", t, func() {
		mesh := soup(
			[3]math3d.Vec3{math3d.V3(0, 0, 5), math3d.V3(1, 1, 5), math3d.V3(2, 2, 5)},
			[3]math3d.Vec3{math3d.V3(1, 1, 5), math3d.V3(1, 1, 5), math3d.V3(1, 1, 5)},
		)

		Convey("They are dropped without producing NaN", func() {
			out, stats := render(DefaultConfig(), mesh)
			So(out, ShouldBeEmpty)
			So(stats.Degenerate, ShouldEqual, 2)
		})
	})
}

func TestPipelineDepthOrder(t *testing.T) {
	Convey("Given a near and a far triangle in mesh order", t, func() {
		mesh := soup(facing(0, 3), facing(0, 8))
		out, _ := render(DefaultConfig(), mesh)

		Convey("The farther one is painted first", func() {
			So(out, ShouldHaveLength, 2)
			So(out[0].AvgZ(), ShouldBeGreaterThan, out[1].AvgZ())
			So(out[0].P[0].W, ShouldAlmostEqual, 8, 1e-9)
		})
	})

	Convey("Given two triangles at the same depth", t, func() {
		left, right := facing(-2, 5), facing(1, 5)

		Convey("Their mesh order is kept", func() {
			out, _ := render(DefaultConfig(), soup(left, right))
			So(out, ShouldHaveLength, 2)
			So(out[0].AvgZ(), ShouldEqual, out[1].AvgZ())
			So(out[0].P[0].X, ShouldAlmostEqual, 98, 1e-6)
			So(out[1].P[0].X, ShouldAlmostEqual, 71, 1e-6)

			out, _ = render(DefaultConfig(), soup(right, left))
			So(out[0].P[0].X, ShouldAlmostEqual, 71, 1e-6)
			So(out[1].P[0].X, ShouldAlmostEqual, 98, 1e-6)
		})
	})
}

func TestPipelineClipping(t *testing.T) {
	Convey("Given a triangle reaching far past the right edge", t, func() {
		mesh := soup([3]math3d.Vec3{math3d.V3(0, 0, 5), math3d.V3(0, 1, 5), math3d.V3(30, 1, 5)})
		out, stats := render(DefaultConfig(), mesh)

		Convey("Screen clipping keeps every vertex on screen", func() {
			So(stats.Projected, ShouldEqual, 1)
			So(len(out), ShouldBeGreaterThanOrEqualTo, 1)
			for _, tri := range out {
				So(finiteInside(tri, testW-1, testH-1), ShouldBeTrue)
			}
		})
	})

	Convey("Given a triangle crossing the near plane", t, func() {
		mesh := soup([3]math3d.Vec3{math3d.V3(0, 0, 5), math3d.V3(0, 1, 5), math3d.V3(1, 1, -1)})
		out, stats := render(DefaultConfig(), mesh)

		Convey("The kept quad is split in two before projection", func() {
			So(stats.Projected, ShouldEqual, 2)
			So(len(out), ShouldBeGreaterThanOrEqualTo, 1)
			for _, tri := range out {
				So(finiteInside(tri, testW-1, testH-1), ShouldBeTrue)
				for _, p := range tri.P {
					So(p.W, ShouldBeGreaterThanOrEqualTo, 0.1-1e-9)
				}
			}
		})
	})

	Convey("Given a triangle entirely off screen", t, func() {
		mesh := soup(facing(-100, 5))
		out, stats := render(DefaultConfig(), mesh)

		Convey("It is projected but never emitted", func() {
			So(stats.Projected, ShouldEqual, 1)
			So(out, ShouldBeEmpty)
		})
	})
}

func TestPipelineCamera(t *testing.T) {
	Convey("Given the reference triangle", t, func() {
		objects := []Object{{Mesh: soup(facing(0, 5)), World: math3d.Identity()}}
		r := NewRenderer(DefaultConfig())

		Convey("Turning the camera around puts it behind the near plane", func() {
			f := testFrame()
			f.Camera.Turn(math.Pi)
			So(r.Render(f, objects), ShouldBeEmpty)
			So(r.Stats.NearClipped, ShouldEqual, 1)
		})

		Convey("Backing the camera away makes it smaller", func() {
			f := testFrame()
			f.Camera.MoveForward(-5)
			out := r.Render(f, objects)
			So(out, ShouldHaveLength, 1)
			So(out[0].P[1].Y, ShouldAlmostEqual, 40.5, 1e-6)
		})

		Convey("An empty viewport renders nothing", func() {
			So(r.Render(Frame{Camera: NewCamera()}, objects), ShouldBeNil)
		})
	})
}

func TestPipelineWorldTransform(t *testing.T) {
	Convey("Given a triangle at the origin", t, func() {
		mesh := soup(facing(0, 0))

		Convey("Translating it to z=5 matches the reference triangle", func() {
			r := NewRenderer(DefaultConfig())
			moved := r.Render(testFrame(), []Object{{Mesh: mesh, World: math3d.Translate(0, 0, 5)}})
			ref, _ := render(DefaultConfig(), soup(facing(0, 5)))
			So(moved, ShouldResemble, ref)
		})

		Convey("Rotating it half a turn about Y shows its back", func() {
			r := NewRenderer(DefaultConfig())
			world := math3d.RotateY(math.Pi).Mul(math3d.Translate(0, 0, 5))
			So(r.Render(testFrame(), []Object{{Mesh: mesh, World: world}}), ShouldBeEmpty)
			So(r.Stats.BackFaces, ShouldEqual, 1)
		})
	})
}

func TestPipelineLayers(t *testing.T) {
	Convey("Given a near object in the first layer and a far one in the second", t, func() {
		near := Object{Name: "near", Mesh: soup(facing(0, 3)), World: math3d.Identity()}
		far := Object{Name: "far", Mesh: soup(facing(0, 8)), World: math3d.Identity()}
		r := NewRenderer(DefaultConfig())

		Convey("Layer order wins over depth", func() {
			out := r.RenderLayers(testFrame(), []Layer{
				{Objects: []Object{near}},
				{Objects: []Object{far}},
			})
			So(out, ShouldHaveLength, 2)
			So(out[0].P[0].W, ShouldAlmostEqual, 3, 1e-9)
			So(out[1].P[0].W, ShouldAlmostEqual, 8, 1e-9)
		})

		Convey("A layer camera overrides the frame camera", func() {
			fixed := NewCamera()
			f := testFrame()
			f.Camera.Turn(math.Pi)
			out := r.RenderLayers(f, []Layer{
				{Objects: []Object{near}},
				{Camera: &fixed, Objects: []Object{far}},
			})
			So(out, ShouldHaveLength, 1)
			So(out[0].P[0].W, ShouldAlmostEqual, 8, 1e-9)
		})
	})
}

func TestPipelineFrustumCull(t *testing.T) {
	Convey("Given cubes scattered in front of and behind the camera", t, func() {
		objects := benchObjects(40)

		culled := NewRenderer(DefaultConfig())
		cfg := DefaultConfig()
		cfg.FrustumCull = false
		plain := NewRenderer(cfg)

		withCull := culled.Render(testFrame(), objects)
		without := plain.Render(testFrame(), objects)

		Convey("Culling skips objects but emits the same triangles", func() {
			So(culled.Stats.ObjectsTested, ShouldEqual, 40)
			So(culled.Stats.ObjectsCulled, ShouldBeGreaterThanOrEqualTo, 20)
			So(plain.Stats.ObjectsTested, ShouldEqual, 0)
			So(withCull, ShouldResemble, without)
		})
	})

	Convey("Given a mesh without bounds", t, func() {
		r := NewRenderer(DefaultConfig())
		r.Render(testFrame(), []Object{{Mesh: soup(facing(0, -5)), World: math3d.Identity()}})

		Convey("It is never frustum tested", func() {
			So(r.Stats.ObjectsTested, ShouldEqual, 0)
		})
	})
}

func TestProjectNearPoint(t *testing.T) {
	cam := NewCamera()
	p := cam.ProjectionMatrix(testW, testH).MulVec4(math3d.P(0, 0, cam.Near)).PerspectiveDivide()
	if p.W <= 0 {
		t.Errorf("w = %v, want > 0", p.W)
	}
	if !p.IsFinite() {
		t.Errorf("projected near point %v is not finite", p)
	}
}

func TestNewRendererDefaultsShade(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shade = nil
	r := NewRenderer(cfg)
	if r.Config().Shade == nil {
		t.Fatal("Shade left nil")
	}
	out := r.Render(testFrame(), []Object{{Mesh: soup(facing(0, 5)), World: math3d.Identity()}})
	if len(out) != 1 || out[0].Glyph != GrayscaleShade(out[0].Lum) {
		t.Errorf("got %+v, want grayscale glyph", out)
	}
}
