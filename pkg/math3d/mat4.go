package math3d

import "math"

// Mat4 is a 4x4 matrix in row-major order, applied to row vectors: v' = v * M.
//
// For a rigid transform the rows are the basis vectors and the translation:
// | Xx Xy Xz 0 |   X,Y,Z = basis vectors (rotation)
// | Yx Yy Yz 0 |   T = translation
// | Zx Zy Zz 0 |
// | Tx Ty Tz 1 |
//
// Composition is order sensitive: a.Mul(b) applies a first, then b.
type Mat4 [4][4]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translate creates a translation matrix.
func Translate(dx, dy, dz float64) Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{dx, dy, dz, 1},
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		{v.X, 0, 0, 0},
		{0, v.Y, 0, 0},
		{0, 0, v.Z, 0},
		{0, 0, 0, 1},
	}
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		{1, 0, 0, 0},
		{0, c, s, 0},
		{0, -s, c, 0},
		{0, 0, 0, 1},
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	}
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		{c, s, 0, 0},
		{-s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Perspective creates a perspective projection matrix.
// fovDeg is the field of view in degrees.
// aspect is height/width; it scales x so square pixels stay square.
// near and far map to z = 0 and z = 1 after the divide.
//
// The projected w equals the view-space z, so the multiply leaves the divide
// to the caller.
func Perspective(fovDeg, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovDeg*0.5/180.0*math.Pi)
	q := far / (far - near)

	return Mat4{
		{aspect * f, 0, 0, 0},
		{0, f, 0, 0},
		{0, 0, q, 1},
		{0, 0, -near * q, 0},
	}
}

// PointAt creates the camera-to-world transform for an eye looking at target.
// The basis is forward = normalize(target - eye), right = normalize(up × forward),
// newUp = forward × right, with the translation set to eye.
func PointAt(eye, target, up Vec3) Mat4 {
	forward := target.Sub(eye).Normalize()
	right := up.Cross(forward).Normalize()
	newUp := forward.Cross(right)

	return Mat4{
		{right.X, right.Y, right.Z, 0},
		{newUp.X, newUp.Y, newUp.Z, 0},
		{forward.X, forward.Y, forward.Z, 0},
		{eye.X, eye.Y, eye.Z, 1},
	}
}

// QuickInverse inverts a rigid (rotation + translation) transform by
// transposing the rotation block and projecting the translation onto each
// axis. The result is only correct for orthonormal rotation blocks; it is
// not a general matrix inverse.
func (m Mat4) QuickInverse() Mat4 {
	var inv Mat4
	for r := range 3 {
		for c := range 3 {
			inv[r][c] = m[c][r]
		}
	}
	t := m.Translation()
	inv[3][0] = -t.Dot(V3(m[0][0], m[0][1], m[0][2]))
	inv[3][1] = -t.Dot(V3(m[1][0], m[1][1], m[1][2]))
	inv[3][2] = -t.Dot(V3(m[2][0], m[2][1], m[2][2]))
	inv[3][3] = 1
	return inv
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row][k] * b[k][col]
			}
			m[row][col] = sum
		}
	}
	return m
}

// MulVec4 transforms v as a row vector. W is computed but never divided out.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		v.X*m[0][0] + v.Y*m[1][0] + v.Z*m[2][0] + v.W*m[3][0],
		v.X*m[0][1] + v.Y*m[1][1] + v.Z*m[2][1] + v.W*m[3][1],
		v.X*m[0][2] + v.Y*m[1][2] + v.Z*m[2][2] + v.W*m[3][2],
		v.X*m[0][3] + v.Y*m[1][3] + v.Z*m[2][3] + v.W*m[3][3],
	}
}

// MulPoint transforms v as a point (w = 1).
func (m Mat4) MulPoint(v Vec3) Vec4 {
	return m.MulVec4(V4FromV3(v, 1))
}

// MulDir transforms v as a direction (w = 0, no translation).
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		v.X*m[0][0] + v.Y*m[1][0] + v.Z*m[2][0],
		v.X*m[0][1] + v.Y*m[1][1] + v.Z*m[2][1],
		v.X*m[0][2] + v.Y*m[1][2] + v.Z*m[2][2],
	}
}

// Det3 returns the determinant of the upper-left 3x3 block. It is negative
// when m mirrors space, which reverses triangle winding.
func (m Mat4) Det3() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for r := range 4 {
		for c := range 4 {
			t[r][c] = m[c][r]
		}
	}
	return t
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3][0], m[3][1], m[3][2]}
}

// Column returns column c as a Vec4.
func (m Mat4) Column(c int) Vec4 {
	return Vec4{m[0][c], m[1][c], m[2][c], m[3][c]}
}
