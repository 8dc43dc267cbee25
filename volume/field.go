package volume

import (
	"math"
	"slices"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/cloudfx/gpucore"
)

// Field is an immutable cubic grid of noise values in [0, 1].
//
// Voxels are stored x fastest, then y, then z, with Channels values each.
// Channel 0 is always the blended density.
type Field struct {
	size     int
	channels int
	cfg      Config
	data     []float32

	// tex is the device allocation holding data, nil for loaded fields
	// that were never uploaded.
	tex *gpucore.Texture
}

func newField(cfg Config, data []float32, tex *gpucore.Texture) *Field {
	return &Field{
		size:     cfg.Resolution,
		channels: gpucore.ChannelCount(cfg.Format),
		cfg:      cfg,
		data:     data,
		tex:      tex,
	}
}

// Size returns the edge length.
func (f *Field) Size() int { return f.size }

// Channels returns the number of values per voxel.
func (f *Field) Channels() int { return f.channels }

// Format returns the texture format.
func (f *Field) Format() gputypes.TextureFormat { return f.cfg.Format }

// Seed returns the seed the field was generated with.
func (f *Field) Seed() int64 { return f.cfg.Seed }

// Config returns the resolved configuration, seed included, so the field
// can be regenerated exactly.
func (f *Field) Config() Config { return f.cfg }

// Voxels returns Size³.
func (f *Field) Voxels() int { return f.size * f.size * f.size }

// At returns channel c of voxel (x, y, z). Coordinates wrap.
func (f *Field) At(x, y, z, c int) float32 {
	n := f.size
	x, y, z = wrap(x, n), wrap(y, n), wrap(z, n)
	return f.data[((z*n+y)*n+x)*f.channels+c]
}

// Sample trilinearly interpolates the density at texture coordinates
// (u, v, w). The volume repeats outside [0, 1).
func (f *Field) Sample(u, v, w float32) float32 {
	n := float32(f.size)
	x := u*n - 0.5
	y := v*n - 0.5
	z := w*n - 0.5

	x0, y0, z0 := math32.Floor(x), math32.Floor(y), math32.Floor(z)
	tx, ty, tz := x-x0, y-y0, z-z0
	ix, iy, iz := int(x0), int(y0), int(z0)

	c000 := f.At(ix, iy, iz, 0)
	c100 := f.At(ix+1, iy, iz, 0)
	c010 := f.At(ix, iy+1, iz, 0)
	c110 := f.At(ix+1, iy+1, iz, 0)
	c001 := f.At(ix, iy, iz+1, 0)
	c101 := f.At(ix+1, iy, iz+1, 0)
	c011 := f.At(ix, iy+1, iz+1, 0)
	c111 := f.At(ix+1, iy+1, iz+1, 0)

	c00 := c000 + (c100-c000)*tx
	c10 := c010 + (c110-c010)*tx
	c01 := c001 + (c101-c001)*tx
	c11 := c011 + (c111-c011)*tx
	c0 := c00 + (c10-c00)*ty
	c1 := c01 + (c11-c01)*ty
	return c0 + (c1-c0)*tz
}

// Data returns a copy of the raw voxel values.
func (f *Field) Data() []float32 {
	return slices.Clone(f.data)
}

// Mean returns the average density.
func (f *Field) Mean() float64 {
	var sum float64
	for i := 0; i < len(f.data); i += f.channels {
		sum += float64(f.data[i])
	}
	return sum / float64(f.Voxels())
}

// Range returns the smallest and largest density.
func (f *Field) Range() (lo, hi float32) {
	lo, hi = float32(math.Inf(1)), float32(math.Inf(-1))
	for i := 0; i < len(f.data); i += f.channels {
		lo = min(lo, f.data[i])
		hi = max(hi, f.data[i])
	}
	return lo, hi
}

// Equal reports whether both fields hold bit-identical voxels and the same
// generation parameters.
func (f *Field) Equal(o *Field) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.size != o.size || f.channels != o.channels || f.cfg != o.cfg || len(f.data) != len(o.data) {
		return false
	}
	for i := range f.data {
		if math.Float32bits(f.data[i]) != math.Float32bits(o.data[i]) {
			return false
		}
	}
	return true
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
