package cloudfx

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera describes the view a frame is rendered from.
type Camera struct {
	Position   mgl32.Vec3
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// NewPerspectiveCamera builds a camera looking from eye toward center.
// fovY is in degrees.
func NewPerspectiveCamera(eye, center, up mgl32.Vec3, fovY, aspect, near, far float32) Camera {
	return Camera{
		Position:   eye,
		View:       mgl32.LookAtV(eye, center, up),
		Projection: mgl32.Perspective(mgl32.DegToRad(fovY), aspect, near, far),
	}
}

// Rays returns a ray generator for the camera. Build it once per frame:
// it inverts the view-projection matrix.
func (c Camera) Rays() RayGenerator {
	return RayGenerator{
		origin: c.Position,
		inv:    c.Projection.Mul4(c.View).Inv(),
	}
}

// RayGenerator reconstructs world space view rays from screen coordinates.
type RayGenerator struct {
	origin mgl32.Vec3
	inv    mgl32.Mat4
}

// Ray returns the origin and unit direction of the view ray through the
// normalized screen point (u, v), with (0, 0) at the top-left corner.
func (g RayGenerator) Ray(u, v float32) (origin, dir mgl32.Vec3) {
	ndcX := 2*u - 1
	ndcY := 1 - 2*v
	far := g.inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	p := far.Vec3().Mul(1 / far.W())
	return g.origin, p.Sub(g.origin).Normalize()
}
