package math3d

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func approxVec4(a, b Vec4) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z) && approx(a.W, b.W)
}

// toMgl converts a row-vector matrix to mathgl's column-vector form. The
// transpose and the column-major storage cancel, so the elements copy in
// row-major order.
func toMgl(m Mat4) mgl64.Mat4 {
	var out mgl64.Mat4
	for r := range 4 {
		for c := range 4 {
			out[r*4+c] = m[r][c]
		}
	}
	return out
}

func TestRotationsMatchMathgl(t *testing.T) {
	tests := []struct {
		name string
		got  Mat4
		want mgl64.Mat4
	}{
		{"x", RotateX(0.4), mgl64.HomogRotate3DX(0.4)},
		{"z", RotateZ(-1.2), mgl64.HomogRotate3DZ(-1.2)},
		// Y turns the opposite way from mathgl's right-handed rotation.
		{"y", RotateY(0.9), mgl64.HomogRotate3DY(-0.9)},
		{"translate", Translate(3, -2, 7), mgl64.Translate3D(3, -2, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !toMgl(tt.got).ApproxEqualThreshold(tt.want, eps) {
				t.Errorf("got %v, want %v", toMgl(tt.got), tt.want)
			}
		})
	}
}

func TestMulComposesLeftFirst(t *testing.T) {
	a := RotateX(0.3).Mul(RotateZ(1.1))
	b := Translate(1, 2, 3).Mul(RotateY(-0.6))

	got := toMgl(a.Mul(b))
	want := toMgl(b).Mul4(toMgl(a))
	if !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("a.Mul(b) = %v, want %v", got, want)
	}

	p := P(0.5, -1, 2)
	viaProduct := a.Mul(b).MulVec4(p)
	viaSteps := b.MulVec4(a.MulVec4(p))
	if !approxVec4(viaProduct, viaSteps) {
		t.Errorf("(a*b) p = %v, b(a(p)) = %v", viaProduct, viaSteps)
	}
}

func TestMulVec4MatchesMathgl(t *testing.T) {
	m := RotateY(0.25).Mul(Translate(-4, 1, 9)).Mul(Perspective(75, 0.75, 0.1, 100))
	v := V4(1.5, -2, 3, 1)

	got := m.MulVec4(v)
	w := toMgl(m).Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, v.W})
	want := V4(w[0], w[1], w[2], w[3])
	if !approxVec4(got, want) {
		t.Errorf("MulVec4 = %v, want %v", got, want)
	}
}

func TestMulVec4DoesNotDivide(t *testing.T) {
	proj := Perspective(90, 1, 0.1, 1000)
	got := proj.MulVec4(P(2, 4, 5))
	if !approx(got.W, 5) {
		t.Fatalf("w = %v, want 5", got.W)
	}
	if !approx(got.X, 2) || !approx(got.Y, 4) {
		t.Errorf("x, y = %v, %v, want undivided 2, 4", got.X, got.Y)
	}
}

func TestIdentityIsNeutral(t *testing.T) {
	m := RotateZ(0.7).Mul(Translate(1, 2, 3))
	if Identity().Mul(m) != m || m.Mul(Identity()) != m {
		t.Error("identity is not neutral")
	}
	v := V4(1, 2, 3, 4)
	if Identity().MulVec4(v) != v {
		t.Errorf("Identity * %v = %v", v, Identity().MulVec4(v))
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	const near, far = 0.1, 1000.0
	proj := Perspective(90, 0.5625, near, far)

	tests := []struct {
		name  string
		z     float64
		wantZ float64
	}{
		{"near plane", near, 0},
		{"far plane", far, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := proj.MulVec4(P(0, 0, tt.z)).PerspectiveDivide()
			if math.Abs(p.Z-tt.wantZ) > 1e-6 {
				t.Errorf("z = %v, want %v", p.Z, tt.wantZ)
			}
			if !approx(p.W, tt.z) {
				t.Errorf("w = %v, want %v", p.W, tt.z)
			}
		})
	}
}

func TestPerspectiveAspectAndFOV(t *testing.T) {
	// 90° gives a focal scale of 1, so only the aspect remains on x.
	proj := Perspective(90, 0.5, 0.1, 100)
	p := proj.MulVec4(P(1, 1, 1)).PerspectiveDivide()
	if !approx(p.X, 0.5) {
		t.Errorf("x = %v, want 0.5", p.X)
	}
	if !approx(p.Y, 1) {
		t.Errorf("y = %v, want 1", p.Y)
	}

	narrow := Perspective(60, 1, 0.1, 100)
	q := narrow.MulVec4(P(1, 0, 1)).PerspectiveDivide()
	if want := 1 / math.Tan(math.Pi/6); !approx(q.X, want) {
		t.Errorf("60° x = %v, want %v", q.X, want)
	}
}

func TestPointAtQuickInverseRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		eye, target Vec3
	}{
		{"origin forward", V3(0, 0, 0), V3(0, 0, 1)},
		{"offset", V3(3, -1, 2), V3(5, 0, 9)},
		{"looking back", V3(0, 4, 10), V3(0, 4, -3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := PointAt(tt.eye, tt.target, Up())
			view := cam.QuickInverse()

			if got := view.MulPoint(tt.eye); !approxVec4(got, P(0, 0, 0)) {
				t.Errorf("eye in view space = %v, want origin", got)
			}
			dist := tt.target.Sub(tt.eye).Len()
			if got := view.MulPoint(tt.target); !approxVec4(got, P(0, 0, dist)) {
				t.Errorf("target in view space = %v, want (0, 0, %v)", got, dist)
			}
			if !toMgl(view).ApproxEqualThreshold(toMgl(cam).Inv(), 1e-9) {
				t.Errorf("QuickInverse = %v, want %v", toMgl(view), toMgl(cam).Inv())
			}
		})
	}
}

func TestPointAtBasisIsOrthonormal(t *testing.T) {
	m := PointAt(V3(1, 2, 3), V3(-2, 5, 1), Up())
	rows := [3]Vec3{
		V3(m[0][0], m[0][1], m[0][2]),
		V3(m[1][0], m[1][1], m[1][2]),
		V3(m[2][0], m[2][1], m[2][2]),
	}
	for i := range rows {
		if !approx(rows[i].Len(), 1) {
			t.Errorf("row %d length = %v", i, rows[i].Len())
		}
		for j := i + 1; j < 3; j++ {
			if d := rows[i].Dot(rows[j]); !approx(d, 0) {
				t.Errorf("rows %d, %d dot = %v", i, j, d)
			}
		}
	}
	if m.Translation() != V3(1, 2, 3) {
		t.Errorf("translation = %v", m.Translation())
	}
}

func TestMulDirIgnoresTranslation(t *testing.T) {
	m := RotateY(math.Pi / 2).Mul(Translate(10, 10, 10))
	got := m.MulDir(Forward())
	want := V3(-1, 0, 0)
	if !approx(got.X, want.X) || !approx(got.Y, want.Y) || !approx(got.Z, want.Z) {
		t.Errorf("MulDir = %v, want %v", got, want)
	}
}

func TestDet3(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		want float64
	}{
		{"identity", Identity(), 1},
		{"translation ignored", Translate(4, -2, 9), 1},
		{"rotation", RotateX(0.7).Mul(RotateY(-1.2)), 1},
		{"scale", Scale(V3(2, 3, 4)), 24},
		{"mirror y", Scale(V3(1, -1, 1)), -1},
		{"mirrored airplane", Scale(V3(1, -1, 1)).Mul(RotateY(2)).Mul(Translate(0, -8, 0)), -1},
		{"flattened", Scale(V3(1, 0, 1)), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.m.Det3(); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Det3 = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTranspose(t *testing.T) {
	m := RotateX(0.2).Mul(Translate(1, 2, 3))
	if m.Transpose().Transpose() != m {
		t.Error("double transpose changed the matrix")
	}
	if m.Transpose()[0][3] != m[3][0] {
		t.Error("transpose did not swap [3][0]")
	}
	if m.Column(3) != V4(m[0][3], m[1][3], m[2][3], m[3][3]) {
		t.Errorf("Column(3) = %v", m.Column(3))
	}
}
