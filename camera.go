package beacon

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Camera describes the view into the 3D scene: a perspective projection
// looking from Position toward Target. Beacon never moves the camera — the
// host's own controls do — it only reads it for picking and billboarding.
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3

	// FovY is the vertical field of view in radians.
	FovY   float64
	Aspect float64
	Near   float64
	Far    float64
}

// NewCamera creates a Camera with sensible defaults: 60° vertical FOV,
// 16:9 aspect, looking down the negative Z axis from (0, 2, 8).
func NewCamera() *Camera {
	return &Camera{
		Position: mgl64.Vec3{0, 2, 8},
		Target:   mgl64.Vec3{0, 0, 0},
		Up:       mgl64.Vec3{0, 1, 0},
		FovY:     mgl64.DegToRad(60),
		Aspect:   16.0 / 9.0,
		Near:     0.1,
		Far:      500,
	}
}

// View returns the view matrix for the camera's current pose.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

// ScreenToWorldRay unprojects normalized device coordinates (x right, y up,
// both in [-1, 1]) into a world-space ray. The origin is the camera
// position; the direction is unit length.
func (c *Camera) ScreenToWorldRay(nx, ny float64) (origin, dir mgl64.Vec3) {
	inv := c.ViewProjection().Inv()

	nearPt := inv.Mul4x1(mgl64.Vec4{nx, ny, -1, 1})
	farPt := inv.Mul4x1(mgl64.Vec4{nx, ny, 1, 1})

	nearW := nearPt.Vec3().Mul(1 / nearPt.W())
	farW := farPt.Vec3().Mul(1 / farPt.W())

	return c.Position, farW.Sub(nearW).Normalize()
}

// WorldToScreen projects a world position into client pixel coordinates
// within bounds. ok is false when the point is behind the camera or the
// bounds have zero size.
func (c *Camera) WorldToScreen(p mgl64.Vec3, bounds SurfaceBounds) (x, y float64, ok bool) {
	if bounds.Width == 0 || bounds.Height == 0 {
		return 0, 0, false
	}

	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())

	x = bounds.X + (ndc.X()*0.5+0.5)*bounds.Width
	y = bounds.Y + (1-(ndc.Y()*0.5+0.5))*bounds.Height
	return x, y, true
}

// FaceCamera returns the orientation that rotates an object at pos into a
// full billboard facing the camera (not axis-locked).
func (c *Camera) FaceCamera(pos mgl64.Vec3) mgl64.Quat {
	to := c.Position.Sub(pos)
	if to.Len() == 0 {
		return mgl64.QuatIdent()
	}
	// QuatLookAtV yields the view rotation; the billboard needs its inverse,
	// the model orientation that carries local -Z onto the eye line.
	return mgl64.QuatLookAtV(pos, c.Position, c.Up).Inverse()
}
