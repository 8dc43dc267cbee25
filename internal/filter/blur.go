package filter

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/gpucore"
)

// Axis selects the blur direction.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisX {
		return "horizontal"
	}
	return "vertical"
}

// Horizontal blurs src along x into dst.
func Horizontal(ctx context.Context, dev gpucore.Device, dst, src *cloudfx.Buffer, radius float32) error {
	return Blur1D(ctx, dev, dst, src, radius, AxisX)
}

// Vertical blurs src along y into dst.
func Vertical(ctx context.Context, dev gpucore.Device, dst, src *cloudfx.Buffer, radius float32) error {
	return Blur1D(ctx, dev, dst, src, radius, AxisY)
}

// Blur1D convolves src with a Gaussian of the given radius along one axis
// and writes dst. Samples beyond the edge repeat the edge texel. A radius
// <= 0 copies src. dst may alias src.
func Blur1D(ctx context.Context, dev gpucore.Device, dst, src *cloudfx.Buffer, radius float32, axis Axis) error {
	if !dst.SameSize(src) {
		return fmt.Errorf("%w: blur %dx%d into %dx%d", cloudfx.ErrInvalidDimension,
			src.Width(), src.Height(), dst.Width(), dst.Height())
	}
	if radius <= 0 {
		if dst == src {
			return nil
		}
		return dst.CopyFrom(src)
	}
	w, h := src.Width(), src.Height()
	if w == 0 || h == 0 {
		return nil
	}

	in := src.Pix()
	if dst == src {
		tmp := getTemp(len(in))
		defer putTemp(tmp)
		copy(tmp, in)
		in = tmp
	}
	out := dst.Pix()

	kernel := CachedGaussianKernel(float64(radius))
	half := len(kernel) / 2
	limit, stride := w-1, 4
	if axis == AxisY {
		limit, stride = h-1, w*4
	}

	return dev.Dispatch(ctx, gpucore.Tile2D, gpucore.Grid{Width: w, Height: h, Depth: 1}, func(x, y, _ int) {
		pos := x
		if axis == AxisY {
			pos = y
		}
		row := (y*w + x) * 4
		base := row - pos*stride

		var r, g, b, a float32
		for k, wt := range kernel {
			p := min(max(pos+k-half, 0), limit)
			i := base + p*stride
			r += in[i] * wt
			g += in[i+1] * wt
			b += in[i+2] * wt
			a += in[i+3] * wt
		}
		out[row], out[row+1], out[row+2], out[row+3] = r, g, b, a
	})
}

// Gaussian blurs src into dst with a horizontal then a vertical pass,
// using scratch as the intermediate. scratch must match src in size.
func Gaussian(ctx context.Context, dev gpucore.Device, dst, src, scratch *cloudfx.Buffer, radius float32) error {
	if err := Horizontal(ctx, dev, scratch, src, radius); err != nil {
		return err
	}
	return Vertical(ctx, dev, dst, scratch, radius)
}

type floatBuffer struct {
	data []float32
}

var tempPool = sync.Pool{
	New: func() any { return &floatBuffer{} },
}

func getTemp(n int) []float32 {
	fb := tempPool.Get().(*floatBuffer)
	if cap(fb.data) < n {
		fb.data = make([]float32, n)
	}
	return fb.data[:n]
}

func putTemp(buf []float32) {
	// 64 MiB of float32
	if cap(buf) <= 16<<20 {
		tempPool.Put(&floatBuffer{data: buf})
	}
}
