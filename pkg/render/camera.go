package render

import (
	"github.com/taigrr/flyby/pkg/math3d"
)

// Camera is a first-person viewpoint turning in the XZ plane.
// It is a plain value: the scene owns it and hands a copy to each frame.
type Camera struct {
	// Position in world space
	Position math3d.Vec3

	// Yaw is the rotation around the Y axis in radians. Zero looks down +Z.
	Yaw float64

	// Projection parameters
	FOV  float64 // Field of view in degrees
	Near float64 // Near plane distance
	Far  float64 // Far plane distance
}

// NewCamera creates a camera at the origin looking down +Z.
func NewCamera() Camera {
	return Camera{
		FOV:  90,
		Near: 0.1,
		Far:  1000,
	}
}

// LookDir returns the unit look direction: +Z rotated by Yaw about Y.
func (c Camera) LookDir() math3d.Vec3 {
	return math3d.RotateY(c.Yaw).MulDir(math3d.Forward())
}

// ViewMatrix returns the world-to-view transform.
func (c Camera) ViewMatrix() math3d.Mat4 {
	target := c.Position.Add(c.LookDir())
	return math3d.PointAt(c.Position, target, math3d.Up()).QuickInverse()
}

// ProjectionMatrix returns the projection for a width x height target.
// The aspect ratio is height/width, matching the x scale in Perspective.
func (c Camera) ProjectionMatrix(width, height int) math3d.Mat4 {
	aspect := 1.0
	if width > 0 {
		aspect = float64(height) / float64(width)
	}
	return math3d.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ViewProjectionMatrix returns the combined transform, view first.
func (c Camera) ViewProjectionMatrix(width, height int) math3d.Mat4 {
	return c.ViewMatrix().Mul(c.ProjectionMatrix(width, height))
}

// Frustum returns the camera's view frustum in world space.
func (c Camera) Frustum(width, height int) Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix(width, height))
}

// MoveForward moves the camera along its look direction (or backward if negative).
func (c *Camera) MoveForward(distance float64) {
	c.Position = c.Position.Add(c.LookDir().Scale(distance))
}

// MoveRight moves the camera along world X.
func (c *Camera) MoveRight(distance float64) {
	c.Position.X += distance
}

// MoveUp moves the camera along world Y.
func (c *Camera) MoveUp(distance float64) {
	c.Position.Y += distance
}

// Turn adds delta radians to the yaw.
func (c *Camera) Turn(delta float64) {
	c.Yaw += delta
}
