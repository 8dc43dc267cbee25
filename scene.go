package cloudfx

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is the placement of a scene object. The cloud container box is
// centered on Position and spans Scale along each axis.
type Transform struct {
	Position mgl32.Vec3
	Scale    mgl32.Vec3
}

// Bounds returns the axis-aligned box Position ± Scale/2.
func (t Transform) Bounds() (lo, hi mgl32.Vec3) {
	half := t.Scale.Mul(0.5)
	for i := range 3 {
		if half[i] < 0 {
			half[i] = -half[i]
		}
	}
	return t.Position.Sub(half), t.Position.Add(half)
}

// Light is a directional light.
type Light struct {
	// Direction points from the scene toward the light.
	Direction mgl32.Vec3
	Color     Color
}

// ParamBlock holds the per-draw parameters a pass binds for its kernels,
// such as bounds and tuning values. Passes rewrite it every frame.
type ParamBlock struct {
	floats map[string]float32
	vecs   map[string]mgl32.Vec4
}

// SetFloat stores a scalar parameter.
func (p *ParamBlock) SetFloat(name string, v float32) {
	if p.floats == nil {
		p.floats = make(map[string]float32)
	}
	p.floats[name] = v
}

// Float returns a scalar parameter.
func (p *ParamBlock) Float(name string) (float32, bool) {
	v, ok := p.floats[name]
	return v, ok
}

// SetVector stores a vector parameter.
func (p *ParamBlock) SetVector(name string, v mgl32.Vec4) {
	if p.vecs == nil {
		p.vecs = make(map[string]mgl32.Vec4)
	}
	p.vecs[name] = v
}

// SetVec3 stores a 3-component vector parameter with w = 0.
func (p *ParamBlock) SetVec3(name string, v mgl32.Vec3) {
	p.SetVector(name, v.Vec4(0))
}

// Vector returns a vector parameter.
func (p *ParamBlock) Vector(name string) (mgl32.Vec4, bool) {
	v, ok := p.vecs[name]
	return v, ok
}

// Names returns the sorted names of every stored parameter.
func (p *ParamBlock) Names() []string {
	names := make([]string, 0, len(p.floats)+len(p.vecs))
	for n := range p.floats {
		names = append(names, n)
	}
	for n := range p.vecs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Reset removes every parameter.
func (p *ParamBlock) Reset() {
	clear(p.floats)
	clear(p.vecs)
}
