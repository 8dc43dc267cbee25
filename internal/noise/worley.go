// Package noise evaluates tileable cellular (Worley) noise on a voxel grid.
package noise

import (
	"github.com/chewxy/math32"
)

// Layers is the number of octave layers blended into one value.
const Layers = 3

// Params selects a Worley volume.
type Params struct {
	// Size is the edge length of the voxel grid.
	Size int

	// Divisions is the number of cells along each axis, per layer.
	Divisions [Layers]int

	// Weights blend the layers. They are normalized to sum to 1.
	Weights [Layers]float32

	// Invert maps values to 1 - F1 so cell centers are bright.
	Invert bool

	Seed int64
}

// Worley evaluates noise for a fixed Params. Feature points are computed
// once in NewWorley; evaluation is read-only and safe for concurrent use.
type Worley struct {
	size    int
	invert  bool
	weights [Layers]float32
	layers  [Layers]layer
}

type layer struct {
	div    int
	points [][3]float32 // cell-local feature point per cell, x fastest
}

// NewWorley precomputes the feature points for p. Divisions must be
// positive; callers validate them.
func NewWorley(p Params) *Worley {
	w := &Worley{
		size:    p.Size,
		invert:  p.Invert,
		weights: NormalizeWeights(p.Weights),
	}
	for i := range Layers {
		d := p.Divisions[i]
		l := layer{div: d, points: make([][3]float32, d*d*d)}
		for cz := range d {
			for cy := range d {
				for cx := range d {
					h := cellHash(p.Seed, i, cx, cy, cz)
					hy := splitmix64(h)
					hz := splitmix64(hy)
					l.points[(cz*d+cy)*d+cx] = [3]float32{unitFloat(h), unitFloat(hy), unitFloat(hz)}
				}
			}
		}
		w.layers[i] = l
	}
	return w
}

// NormalizeWeights scales weights to sum to 1. Negative weights count as
// zero; if nothing is left, the layers are weighted equally.
func NormalizeWeights(weights [Layers]float32) [Layers]float32 {
	var sum float32
	for i, v := range weights {
		weights[i] = max(v, 0)
		sum += weights[i]
	}
	if sum == 0 {
		for i := range weights {
			weights[i] = 1.0 / Layers
		}
		return weights
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// Weights returns the normalized layer weights.
func (w *Worley) Weights() [Layers]float32 { return w.weights }

// F1 returns the distance, in cells, from the center of voxel (x, y, z) to
// the nearest feature point of layer i, clamped to [0, 1]. Cells wrap at
// the volume edges so the noise tiles.
func (w *Worley) F1(i, x, y, z int) float32 {
	l := &w.layers[i]
	d := l.div
	scale := float32(d) / float32(w.size)
	px := (float32(x) + 0.5) * scale
	py := (float32(y) + 0.5) * scale
	pz := (float32(z) + 0.5) * scale
	cx, cy, cz := int(math32.Floor(px)), int(math32.Floor(py)), int(math32.Floor(pz))

	best := float32(3)
	for oz := -1; oz <= 1; oz++ {
		nz := cz + oz
		wz := wrap(nz, d)
		for oy := -1; oy <= 1; oy++ {
			ny := cy + oy
			wy := wrap(ny, d)
			for ox := -1; ox <= 1; ox++ {
				nx := cx + ox
				fp := l.points[(wz*d+wy)*d+wrap(nx, d)]
				dx := float32(nx) + fp[0] - px
				dy := float32(ny) + fp[1] - py
				dz := float32(nz) + fp[2] - pz
				best = min(best, dx*dx+dy*dy+dz*dz)
			}
		}
	}
	return min(math32.Sqrt(best), 1)
}

// Eval returns the blended value of voxel (x, y, z) and the value of each
// layer, all in [0, 1].
func (w *Worley) Eval(x, y, z int) (blend float32, layers [Layers]float32) {
	for i := range Layers {
		v := w.F1(i, x, y, z)
		if w.invert {
			v = 1 - v
		}
		layers[i] = v
		blend += v * w.weights[i]
	}
	return min(max(blend, 0), 1), layers
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
