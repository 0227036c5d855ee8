package math3d

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want Vec3
	}{
		{"x cross y", V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)},
		{"y cross x", V3(0, 1, 0), V3(1, 0, 0), V3(0, 0, -1)},
		{"parallel", V3(2, 2, 2), V3(1, 1, 1), V3(0, 0, 0)},
		{"general", V3(1, 2, 3), V3(4, 5, 6), V3(-3, 6, -3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cross(tt.b); got != tt.want {
				t.Errorf("Cross = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3Normalize(t *testing.T) {
	v := V3(3, 0, 4).Normalize()
	if !approx(v.Len(), 1) || !approx(v.X, 0.6) || !approx(v.Z, 0.8) {
		t.Errorf("Normalize = %v", v)
	}

	if got := Zero3().Normalize(); got != Zero3() {
		t.Errorf("zero Normalize = %v, want zero", got)
	}
}

func TestVec3TryNormalize(t *testing.T) {
	tests := []struct {
		name   string
		v      Vec3
		wantOK bool
	}{
		{"unit", V3(0, 1, 0), true},
		{"long", V3(10, -10, 5), true},
		{"zero", V3(0, 0, 0), false},
		{"infinite", V3(math.Inf(1), 0, 0), false},
		{"nan", V3(math.NaN(), 1, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := tt.v.TryNormalize()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !approx(n.Len(), 1) {
				t.Errorf("length = %v, want 1", n.Len())
			}
		})
	}
}

func TestVec4ArithmeticIgnoresW(t *testing.T) {
	a := V4(1, 2, 3, 7)
	b := V4(4, 5, 6, 9)

	if got := a.Add(b); got != P(5, 7, 9) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != P(3, 3, 3) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(2); got != P(2, 4, 6) {
		t.Errorf("Scale = %v", got)
	}
	if got := b.Div(2); got != P(2, 2.5, 3) {
		t.Errorf("Div = %v", got)
	}
}

func TestVec4PerspectiveDivide(t *testing.T) {
	tests := []struct {
		name string
		v    Vec4
		want Vec4
	}{
		{"unit w", P(1, 2, 3), P(1, 2, 3)},
		{"w kept", V4(2, 4, 6, 2), V4(1, 2, 3, 2)},
		{"zero w untouched", V4(2, 4, 6, 0), V4(2, 4, 6, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.PerspectiveDivide(); got != tt.want {
				t.Errorf("PerspectiveDivide = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec4Lerp(t *testing.T) {
	a := V4(0, 0, 0, 1)
	b := V4(10, -10, 4, 3)
	if got := a.Lerp(b, 0.25); got != V4(2.5, -2.5, 1, 1.5) {
		t.Errorf("Lerp = %v", got)
	}
	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0) = %v", got)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %v", got)
	}
}

func TestIsFinite(t *testing.T) {
	if !P(1, 2, 3).IsFinite() {
		t.Error("finite point reported non-finite")
	}
	if V4(0, math.NaN(), 0, 1).IsFinite() {
		t.Error("NaN point reported finite")
	}
	if V3(math.Inf(-1), 0, 0).IsFinite() {
		t.Error("infinite vector reported finite")
	}
}
