package filter

import (
	"context"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/gpucore"
)

// Resample scales src onto dst with bilinear filtering on the exact float
// channels. Sizes may differ in either direction.
func Resample(ctx context.Context, dev gpucore.Device, dst, src *cloudfx.Buffer) error {
	if dst.SameSize(src) {
		if dst == src {
			return nil
		}
		return dst.CopyFrom(src)
	}
	w, h := dst.Width(), dst.Height()
	if w == 0 || h == 0 {
		return nil
	}
	fw, fh := float32(w), float32(h)
	return dev.Dispatch(ctx, gpucore.Tile2D, gpucore.Grid{Width: w, Height: h, Depth: 1}, func(x, y, _ int) {
		dst.SetPixel(x, y, src.Sample((float32(x)+0.5)/fw, (float32(y)+0.5)/fh))
	})
}

// ScaleImage resamples an 8 or 16-bit image into dst through the image
// interfaces, for loading overlay textures and masks at buffer size.
// Values are clamped to [0, 1].
func ScaleImage(dst *cloudfx.Buffer, src image.Image, interp draw.Interpolator) {
	if interp == nil {
		interp = draw.BiLinear
	}
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}
