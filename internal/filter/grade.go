package filter

import "github.com/gogpu/cloudfx"

// ColorMatrix is a 4x5 affine color transform on straight RGBA in [0, 1]
// space:
//
//	[R']   [m00 m01 m02 m03 m04]   [R]
//	[G'] = [m10 m11 m12 m13 m14] * [G]
//	[B']   [m20 m21 m22 m23 m24]   [B]
//	[A']   [m30 m31 m32 m33 m34]   [A]
//	                               [1]
type ColorMatrix [20]float32

// IdentityMatrix passes colors through unchanged.
func IdentityMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// MultiplyAdd returns the per-channel transform c*mult + add.
func MultiplyAdd(mult, add cloudfx.Color) ColorMatrix {
	return ColorMatrix{
		mult.R, 0, 0, 0, add.R,
		0, mult.G, 0, 0, add.G,
		0, 0, mult.B, 0, add.B,
		0, 0, 0, mult.A, add.A,
	}
}

// Apply transforms c.
func (m *ColorMatrix) Apply(c cloudfx.Color) cloudfx.Color {
	return cloudfx.Color{
		R: m[0]*c.R + m[1]*c.G + m[2]*c.B + m[3]*c.A + m[4],
		G: m[5]*c.R + m[6]*c.G + m[7]*c.B + m[8]*c.A + m[9],
		B: m[10]*c.R + m[11]*c.G + m[12]*c.B + m[13]*c.A + m[14],
		A: m[15]*c.R + m[16]*c.G + m[17]*c.B + m[18]*c.A + m[19],
	}
}

// Then returns the transform applying m and then n.
func (m *ColorMatrix) Then(n *ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			var v float32
			for k := 0; k < 4; k++ {
				v += n[row*5+k] * m[k*5+col]
			}
			if col == 4 {
				v += n[row*5+4]
			}
			out[row*5+col] = v
		}
	}
	return out
}

// Grade is the color treatment applied to blurred pixels before they are
// composited through the mask.
type Grade struct {
	Matrix ColorMatrix

	// MinimumLightness lifts darker results so their HSL lightness is at
	// least this value.
	MinimumLightness float32

	// Backing is shown through the graded color by its alpha.
	Backing cloudfx.Color
}

// NewGrade builds a Grade from multiply and add colors.
func NewGrade(mult, add, backing cloudfx.Color, minLightness float32) Grade {
	return Grade{
		Matrix:           MultiplyAdd(mult, add),
		MinimumLightness: minLightness,
		Backing:          backing,
	}
}

// Apply grades c and returns an opaque color.
func (g *Grade) Apply(c cloudfx.Color) cloudfx.Color {
	out := g.Matrix.Apply(c).WithMinimumLightness(g.MinimumLightness)
	a := min(max(out.A, 0), 1)
	return cloudfx.Color{
		R: g.Backing.R + (out.R-g.Backing.R)*a,
		G: g.Backing.G + (out.G-g.Backing.G)*a,
		B: g.Backing.B + (out.B-g.Backing.B)*a,
		A: 1,
	}
}
