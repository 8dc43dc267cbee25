package cloudfx

import (
	"image/color"
	"math"
)

// Color is a linear RGBA color with float32 channels.
// Channels are not clamped, so HDR values survive blurring and compositing.
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
	Transparent = Color{0, 0, 0, 0}
)

// RGB creates an opaque color.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA creates a color from four channels.
func RGBA(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Gray creates an opaque gray of level v.
func Gray(v float32) Color {
	return Color{R: v, G: v, B: v, A: 1}
}

// FromColor converts a standard color.Color, un-premultiplying its channels.
func FromColor(c color.Color) Color {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return Color{
		R: float32(n.R) / 0xffff,
		G: float32(n.G) / 0xffff,
		B: float32(n.B) / 0xffff,
		A: float32(n.A) / 0xffff,
	}
}

// NRGBA64 converts the color to a non-premultiplied 16-bit color, clamping
// every channel to [0, 1].
func (c Color) NRGBA64() color.NRGBA64 {
	return color.NRGBA64{R: unit16(c.R), G: unit16(c.G), B: unit16(c.B), A: unit16(c.A)}
}

// Hex parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA", with an optional
// leading '#'. Invalid input yields opaque black.
func Hex(hex string) Color {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	digits := make([]uint32, 0, 8)
	for i := 0; i < len(hex); i++ {
		v, ok := hexDigit(hex[i])
		if !ok {
			return Black
		}
		digits = append(digits, v)
	}

	var r, g, b, a uint32
	a = 255
	switch len(digits) {
	case 3:
		r, g, b = digits[0]*17, digits[1]*17, digits[2]*17
	case 4:
		r, g, b, a = digits[0]*17, digits[1]*17, digits[2]*17, digits[3]*17
	case 6:
		r, g, b = digits[0]<<4|digits[1], digits[2]<<4|digits[3], digits[4]<<4|digits[5]
	case 8:
		r, g, b, a = digits[0]<<4|digits[1], digits[2]<<4|digits[3], digits[4]<<4|digits[5], digits[6]<<4|digits[7]
	default:
		return Black
	}
	return Color{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: float32(a) / 255}
}

func hexDigit(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c - 'a' + 10), true
	case 'A' <= c && c <= 'F':
		return uint32(c - 'A' + 10), true
	}
	return 0, false
}

// Add returns c + o per channel.
func (c Color) Add(o Color) Color {
	return Color{R: c.R + o.R, G: c.G + o.G, B: c.B + o.B, A: c.A + o.A}
}

// Mul returns c * o per channel.
func (c Color) Mul(o Color) Color {
	return Color{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B, A: c.A * o.A}
}

// Scale multiplies every channel by s.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A * s}
}

// Lerp interpolates between c and o.
func (c Color) Lerp(o Color, t float32) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

// Premultiply returns a premultiplied color.
func (c Color) Premultiply() Color {
	return Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Lightness returns the HSL lightness of the color channels.
func (c Color) Lightness() float32 {
	hi := max(c.R, c.G, c.B)
	lo := min(c.R, c.G, c.B)
	return (hi + lo) / 2
}

// WithMinimumLightness raises the color channels so that Lightness is at
// least minimum. Alpha is unchanged.
func (c Color) WithMinimumLightness(minimum float32) Color {
	l := c.Lightness()
	if l >= minimum {
		return c
	}
	d := minimum - l
	return Color{R: c.R + d, G: c.G + d, B: c.B + d, A: c.A}
}

// ApproxEqual reports whether every channel differs by at most eps.
func (c Color) ApproxEqual(o Color, eps float32) bool {
	return absf(c.R-o.R) <= eps && absf(c.G-o.G) <= eps &&
		absf(c.B-o.B) <= eps && absf(c.A-o.A) <= eps
}

func absf(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

func unit16(v float32) uint16 {
	switch {
	case v <= 0 || v != v:
		return 0
	case v >= 1:
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}
