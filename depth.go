package cloudfx

import "math"

// DepthBuffer holds, per pixel, the distance from the camera to the nearest
// opaque surface along that pixel's view ray, in world units. Pixels with no
// geometry hold +Inf.
type DepthBuffer struct {
	width  int
	height int
	dist   []float32
}

// NewDepthBuffer creates a depth buffer cleared to +Inf.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		width:  max(width, 0),
		height: max(height, 0),
	}
	d.dist = make([]float32, d.width*d.height)
	d.Clear()
	return d
}

// Width returns the buffer width.
func (d *DepthBuffer) Width() int { return d.width }

// Height returns the buffer height.
func (d *DepthBuffer) Height() int { return d.height }

// Clear resets every pixel to +Inf.
func (d *DepthBuffer) Clear() {
	inf := float32(math.Inf(1))
	for i := range d.dist {
		d.dist[i] = inf
	}
}

// At returns the depth at (x, y), or +Inf out of bounds.
func (d *DepthBuffer) At(x, y int) float32 {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return float32(math.Inf(1))
	}
	return d.dist[y*d.width+x]
}

// Set writes the depth at (x, y).
func (d *DepthBuffer) Set(x, y int, v float32) {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return
	}
	d.dist[y*d.width+x] = v
}

// Sample returns the depth at normalized coordinates, nearest texel.
// Raymarch buffers are smaller than the depth buffer, so a scaled pixel
// looks up the depth of the full resolution texel under its center.
func (d *DepthBuffer) Sample(u, v float32) float32 {
	x := int(u * float32(d.width))
	y := int(v * float32(d.height))
	return d.At(min(x, d.width-1), min(y, d.height-1))
}
