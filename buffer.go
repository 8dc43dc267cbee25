package cloudfx

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/chewxy/math32"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/cloudfx/gpucore"
)

// Buffer is a 2D RGBA image with float32 channels, used for camera color
// buffers and the intermediate targets of the passes.
//
// Channel meaning is up to the producer: color buffers hold straight RGBA,
// cloud buffers hold premultiplied cloud color in RGB and transmittance in A.
//
// Buffer implements image.Image, draw.Image and gpucontext.Texture.
// The image view exposes each channel independently, clamped to [0, 1] at
// 16-bit precision; use [Buffer.Pixel] for the exact values.
type Buffer struct {
	width  int
	height int
	pix    []float32

	// tex is the device allocation backing pix, nil for host buffers.
	tex *gpucore.Texture
}

var (
	_ draw.Image         = (*Buffer)(nil)
	_ gpucontext.Texture = (*Buffer)(nil)
)

// NewBuffer creates a zeroed host buffer.
func NewBuffer(width, height int) *Buffer {
	width, height = max(width, 0), max(height, 0)
	return &Buffer{
		width:  width,
		height: height,
		pix:    make([]float32, width*height*4),
	}
}

// AllocBuffer allocates an RGBA32Float texture on dev and wraps it.
func AllocBuffer(dev gpucore.Device, label string, width, height int) (*Buffer, error) {
	tex, err := dev.Allocate(gpucore.Texture2D(label, width, height, gputypes.TextureFormatRGBA32Float))
	if err != nil {
		return nil, err
	}
	return WrapTexture(tex)
}

// WrapTexture returns a Buffer sharing the texels of an RGBA 2D texture.
func WrapTexture(tex *gpucore.Texture) (*Buffer, error) {
	if tex == nil || tex.Channels() != 4 || tex.Depth() != 1 {
		return nil, fmt.Errorf("%w: texture is not a 2D RGBA target", ErrResourceAllocation)
	}
	if len(tex.Data) != tex.Width()*tex.Height()*4 {
		return nil, fmt.Errorf("%w: texture %q has no host storage", ErrResourceAllocation, tex.Desc.Label)
	}
	return &Buffer{width: tex.Width(), height: tex.Height(), pix: tex.Data, tex: tex}, nil
}

// BufferFromImage converts img into a new host buffer.
func BufferFromImage(img image.Image) *Buffer {
	b := img.Bounds()
	buf := NewBuffer(b.Dx(), b.Dy())
	for y := 0; y < buf.height; y++ {
		for x := 0; x < buf.width; x++ {
			buf.SetPixel(x, y, FromColor(img.At(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return buf
}

// LoadBuffer reads an image file (PNG, JPEG) into a host buffer.
func LoadBuffer(path string) (*Buffer, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	return BufferFromImage(img), nil
}

// Width returns the buffer width.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height.
func (b *Buffer) Height() int { return b.height }

// Pix returns the raw channels, four per pixel, row-major.
func (b *Buffer) Pix() []float32 { return b.pix }

// Texture returns the device allocation backing the buffer, or nil.
func (b *Buffer) Texture() *gpucore.Texture { return b.tex }

// SameSize reports whether o has the same dimensions.
func (b *Buffer) SameSize(o *Buffer) bool {
	return o != nil && b.width == o.width && b.height == o.height
}

// Pixel returns the exact channels at (x, y), or Transparent out of bounds.
func (b *Buffer) Pixel(x, y int) Color {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Transparent
	}
	i := (y*b.width + x) * 4
	return Color{R: b.pix[i], G: b.pix[i+1], B: b.pix[i+2], A: b.pix[i+3]}
}

// SetPixel writes the channels at (x, y). Out of bounds writes are ignored.
func (b *Buffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := (y*b.width + x) * 4
	b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3] = c.R, c.G, c.B, c.A
}

// Fill sets every pixel to c.
func (b *Buffer) Fill(c Color) {
	for i := 0; i < len(b.pix); i += 4 {
		b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// CopyFrom copies src into b. Both buffers must have the same size.
func (b *Buffer) CopyFrom(src *Buffer) error {
	if !b.SameSize(src) {
		return fmt.Errorf("%w: copy %dx%d into %dx%d", ErrInvalidDimension,
			src.Width(), src.Height(), b.width, b.height)
	}
	copy(b.pix, src.pix)
	return nil
}

// Clone returns a host copy of b.
func (b *Buffer) Clone() *Buffer {
	c := NewBuffer(b.width, b.height)
	copy(c.pix, b.pix)
	return c
}

// Sample bilinearly interpolates the channels at normalized coordinates
// (u, v), texel centers at (i+0.5)/size. Edges clamp.
func (b *Buffer) Sample(u, v float32) Color {
	if b.width == 0 || b.height == 0 {
		return Transparent
	}
	x := u*float32(b.width) - 0.5
	y := v*float32(b.height) - 0.5
	x0 := int(math32.Floor(x))
	y0 := int(math32.Floor(y))
	tx := x - float32(x0)
	ty := y - float32(y0)

	c00 := b.Pixel(clampIndex(x0, b.width), clampIndex(y0, b.height))
	c10 := b.Pixel(clampIndex(x0+1, b.width), clampIndex(y0, b.height))
	c01 := b.Pixel(clampIndex(x0, b.width), clampIndex(y0+1, b.height))
	c11 := b.Pixel(clampIndex(x0+1, b.width), clampIndex(y0+1, b.height))
	return c00.Lerp(c10, tx).Lerp(c01.Lerp(c11, tx), ty)
}

func clampIndex(i, n int) int { return min(max(i, 0), n-1) }

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model { return color.RGBA64Model }

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

// At implements image.Image. The returned value carries each channel as is,
// without premultiplication, so resamplers interpolate channels independently.
func (b *Buffer) At(x, y int) color.Color { return b.RGBA64At(x, y) }

// RGBA64At implements image.RGBA64Image.
func (b *Buffer) RGBA64At(x, y int) color.RGBA64 {
	c := b.Pixel(x, y)
	return color.RGBA64{R: unit16(c.R), G: unit16(c.G), B: unit16(c.B), A: unit16(c.A)}
}

// Set implements draw.Image. The color's RGBA() channels are stored as is.
func (b *Buffer) Set(x, y int, c color.Color) {
	r, g, bl, a := c.RGBA()
	b.SetPixel(x, y, Color{
		R: float32(r) / 0xffff,
		G: float32(g) / 0xffff,
		B: float32(bl) / 0xffff,
		A: float32(a) / 0xffff,
	})
}

// SetRGBA64 implements draw.RGBA64Image.
func (b *Buffer) SetRGBA64(x, y int, c color.RGBA64) { b.Set(x, y, c) }

// ToImage converts the buffer to an 8-bit image, treating RGB as straight
// color and forcing full opacity when opaque is true.
func (b *Buffer) ToImage(opaque bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := b.Pixel(x, y)
			if opaque {
				c.A = 1
			}
			n := c.NRGBA64()
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(n.R >> 8), G: uint8(n.G >> 8), B: uint8(n.B >> 8), A: uint8(n.A >> 8),
			})
		}
	}
	return img
}

// SavePNG writes the buffer as an opaque PNG.
func (b *Buffer) SavePNG(path string) error {
	if err := imgio.Save(path, b.ToImage(true), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrIO, path, err)
	}
	return nil
}

// Release frees the device allocation backing b. The buffer must not be
// used afterwards. Release on a host buffer is a no-op.
func (b *Buffer) Release(dev gpucore.Device) {
	if b.tex == nil {
		return
	}
	dev.Free(b.tex)
	b.tex = nil
	b.pix = nil
}
