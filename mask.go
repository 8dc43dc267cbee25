package cloudfx

import (
	"context"
	"image"
)

// Mask is a coverage mask with values in [0, 1]. The blur pass renders the
// objects of a layer into a Mask and blurs where it is 1.
type Mask struct {
	width  int
	height int
	data   []float32
}

// NewMask creates a mask with every value 0.
func NewMask(width, height int) *Mask {
	width, height = max(width, 0), max(height, 0)
	return &Mask{
		width:  width,
		height: height,
		data:   make([]float32, width*height),
	}
}

// NewMaskFromAlpha creates a mask from an image's alpha channel.
func NewMaskFromAlpha(img image.Image) *Mask {
	bounds := img.Bounds()
	m := NewMask(bounds.Dx(), bounds.Dy())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			_, _, _, a := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			m.data[y*m.width+x] = float32(a) / 0xffff
		}
	}
	return m
}

// NewMaskFromLuminance creates a mask from the Rec. 709 luminance of img,
// so black and white images can be used as masks.
func NewMaskFromLuminance(img image.Image) *Mask {
	bounds := img.Bounds()
	m := NewMask(bounds.Dx(), bounds.Dy())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			c := FromColor(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			m.data[y*m.width+x] = (0.2126*c.R + 0.7152*c.G + 0.0722*c.B) * c.A
		}
	}
	return m
}

// Width returns the mask width.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height.
func (m *Mask) Height() int { return m.height }

// At returns the mask value at (x, y), or 0 out of bounds.
func (m *Mask) At(x, y int) float32 {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0
	}
	return m.data[y*m.width+x]
}

// Set sets the mask value at (x, y), clamped to [0, 1].
// Coordinates outside the mask bounds are ignored.
func (m *Mask) Set(x, y int, v float32) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.data[y*m.width+x] = min(max(v, 0), 1)
}

// Sample returns the value at normalized coordinates, nearest texel.
func (m *Mask) Sample(u, v float32) float32 {
	x := min(int(u*float32(m.width)), m.width-1)
	y := min(int(v*float32(m.height)), m.height-1)
	return m.At(x, y)
}

// Fill sets every value to v.
func (m *Mask) Fill(v float32) {
	v = min(max(v, 0), 1)
	for i := range m.data {
		m.data[i] = v
	}
}

// Invert replaces every value with 1 - value.
func (m *Mask) Invert() {
	for i := range m.data {
		m.data[i] = 1 - m.data[i]
	}
}

// Clear sets every value to 0.
func (m *Mask) Clear() {
	clear(m.data)
}

// Clone creates a copy of the mask.
func (m *Mask) Clone() *Mask {
	c := NewMask(m.width, m.height)
	copy(c.data, m.data)
	return c
}

// Data returns the underlying values.
func (m *Mask) Data() []float32 {
	return m.data
}

// MaskRenderer draws the objects of the selected layers into a mask.
// dst is cleared before RenderMask is called.
type MaskRenderer interface {
	RenderMask(ctx context.Context, dst *Mask, layers uint32) error
}

// MaskRendererFunc adapts a function to MaskRenderer.
type MaskRendererFunc func(ctx context.Context, dst *Mask, layers uint32) error

// RenderMask implements MaskRenderer.
func (f MaskRendererFunc) RenderMask(ctx context.Context, dst *Mask, layers uint32) error {
	return f(ctx, dst, layers)
}

// StaticMask returns a renderer that draws src, resized to the destination
// with nearest sampling, whenever any of the layers in mask are requested.
func StaticMask(src *Mask, mask uint32) MaskRenderer {
	return MaskRendererFunc(func(_ context.Context, dst *Mask, layers uint32) error {
		if layers&mask == 0 {
			return nil
		}
		for y := 0; y < dst.height; y++ {
			v := (float32(y) + 0.5) / float32(dst.height)
			for x := 0; x < dst.width; x++ {
				u := (float32(x) + 0.5) / float32(dst.width)
				dst.data[y*dst.width+x] = src.Sample(u, v)
			}
		}
		return nil
	})
}
