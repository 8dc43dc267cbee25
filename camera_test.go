package cloudfx

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestCameraRays(t *testing.T) {
	eye := mgl32.Vec3{0, 0, -6}
	cam := NewPerspectiveCamera(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, 60, 1, 0.1, 100)
	rays := cam.Rays()

	origin, dir := rays.Ray(0.5, 0.5)
	if origin != eye {
		t.Errorf("origin = %v, want %v", origin, eye)
	}
	if want := (mgl32.Vec3{0, 0, 1}); !dir.ApproxEqualThreshold(want, 1e-4) {
		t.Errorf("center dir = %v, want %v", dir, want)
	}

	_, tl := rays.Ray(0, 0)
	_, tr := rays.Ray(1, 0)
	_, bl := rays.Ray(0, 1)
	if tl.Y() <= 0 {
		t.Errorf("top-left dir = %v, want positive y", tl)
	}
	if bl.Y() >= 0 {
		t.Errorf("bottom-left dir = %v, want negative y", bl)
	}
	if math32.Abs(tl.X()+tr.X()) > 1e-4 {
		t.Errorf("top row x = %v, %v, want mirrored", tl.X(), tr.X())
	}

	// The corner ray makes half the diagonal field of view with the axis.
	half := mgl32.DegToRad(30)
	wantCos := 1 / math32.Sqrt(1+2*math32.Tan(half)*math32.Tan(half))
	if got := tl.Dot(dir); math32.Abs(got-wantCos) > 1e-4 {
		t.Errorf("corner cos = %v, want %v", got, wantCos)
	}
	if l := tl.Len(); math32.Abs(l-1) > 1e-5 {
		t.Errorf("corner dir length = %v, want 1", l)
	}
}

func TestRayGeneratorFieldOfView(t *testing.T) {
	eye := mgl32.Vec3{0, 0, 5}
	cam := NewPerspectiveCamera(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, 60, 1, 0.1, 100)
	rays := cam.Rays()

	origin, dir := rays.Ray(0.5, 0.5)
	if !origin.ApproxEqual(eye) {
		t.Errorf("origin = %v, want %v", origin, eye)
	}
	if !dir.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-4) {
		t.Errorf("center ray = %v, want (0, 0, -1)", dir)
	}

	_, top := rays.Ray(0.5, 0)
	if top.Y() <= 0 {
		t.Errorf("top edge ray = %v, want positive Y", top)
	}
	// Half the vertical field of view separates the center and edge rays.
	angle := math.Acos(float64(top.Dot(dir)))
	if math.Abs(angle-math.Pi/6) > 1e-3 {
		t.Errorf("center to top angle = %v rad, want %v", angle, math.Pi/6)
	}

	_, left := rays.Ray(0, 0.5)
	if left.X() >= 0 {
		t.Errorf("left edge ray = %v, want negative X", left)
	}
}
