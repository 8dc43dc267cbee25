// Package raymarch integrates density and single-scattered light along
// camera rays through an axis-aligned cloud box.
package raymarch

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sampler returns the noise value at repeating texture coordinates.
type Sampler interface {
	Sample(u, v, w float32) float32
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(u, v, w float32) float32

// Sample implements Sampler.
func (f SamplerFunc) Sample(u, v, w float32) float32 { return f(u, v, w) }

// Epsilon is the transmittance below which a ray stops marching.
const Epsilon = 0.01

// Params are the per-frame march constants.
type Params struct {
	Min, Max mgl32.Vec3

	Offset            mgl32.Vec3
	Scale             float32
	DensityThreshold  float32
	DensityMultiplier float32
	StepSize          float32

	// Darkness is the floor on light reaching a sample from the sun.
	Darkness        float32
	AbsorptionSun   float32
	AbsorptionCloud float32
	LightSteps      int
	LightDir        mgl32.Vec3 // unit vector toward the light
	LightColor      mgl32.Vec3
	Lit             bool
	MaxPrimarySteps int
}

// Result is the outcome of one march.
type Result struct {
	// Color is premultiplied scattered light.
	Color mgl32.Vec3
	// Transmittance is the fraction of the background still visible.
	Transmittance float32
	Hit           bool
	Samples       int
}

// Miss is the result for rays that never enter the box.
var Miss = Result{Transmittance: 1}

// Slab intersects a ray with the box [lo, hi]. It returns the distance to
// the box (0 when the origin is inside) and the distance travelled inside
// it, which is 0 on a miss. invDir holds 1/dir per axis.
func Slab(lo, hi, origin, invDir mgl32.Vec3) (toBox, inBox float32) {
	var tNear, tFar float32 = math32.Inf(-1), math32.Inf(1)
	for i := 0; i < 3; i++ {
		t0 := (lo[i] - origin[i]) * invDir[i]
		t1 := (hi[i] - origin[i]) * invDir[i]
		if math32.IsNaN(t0) || math32.IsNaN(t1) {
			// Ray parallel to the slab and starting on its plane.
			continue
		}
		tNear = max(tNear, min(t0, t1))
		tFar = min(tFar, max(t0, t1))
	}
	toBox = max(0, tNear)
	inBox = max(0, tFar-toBox)
	return toBox, inBox
}

// Inverse returns 1/d per component, infinite for zero components.
func Inverse(d mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{1 / d[0], 1 / d[1], 1 / d[2]}
}

// Coord maps a world position to volume texture coordinates.
func (p *Params) Coord(pos mgl32.Vec3) mgl32.Vec3 {
	var uvw mgl32.Vec3
	for i := 0; i < 3; i++ {
		size := p.Max[i] - p.Min[i]
		uvw[i] = (pos[i]-p.Min[i])/size*p.Scale + p.Offset[i]
	}
	return uvw
}

// Density returns the thresholded, scaled density at pos.
func (p *Params) Density(s Sampler, pos mgl32.Vec3) float32 {
	uvw := p.Coord(pos)
	v := s.Sample(uvw[0], uvw[1], uvw[2])
	return max(0, v-p.DensityThreshold) * p.DensityMultiplier
}

// LightTransmittance returns the fraction of light reaching pos from the
// light, floored at Darkness. Unlit scenes return Darkness.
func (p *Params) LightTransmittance(s Sampler, pos mgl32.Vec3) float32 {
	if !p.Lit || p.LightSteps <= 0 {
		return p.Darkness
	}
	_, inBox := Slab(p.Min, p.Max, pos, Inverse(p.LightDir))
	step := inBox / float32(p.LightSteps)
	var total float32
	q := pos
	for i := 0; i < p.LightSteps; i++ {
		q = q.Add(p.LightDir.Mul(step))
		total += p.Density(s, q) * step
	}
	t := math32.Exp(-total * p.AbsorptionSun)
	return p.Darkness + t*(1-p.Darkness)
}

// March integrates along origin + t*dir, dir normalized. maxDist bounds the
// march from the origin, typically the scene depth; pass +Inf for none.
func March(s Sampler, p *Params, origin, dir mgl32.Vec3, maxDist float32) Result {
	toBox, inBox := Slab(p.Min, p.Max, origin, Inverse(dir))
	if inBox <= 0 || p.StepSize <= 0 {
		return Miss
	}
	limit := min(inBox, maxDist-toBox)
	res := Result{Transmittance: 1, Hit: true}
	if limit <= 0 {
		return res
	}

	light := mgl32.Vec3{1, 1, 1}
	if p.Lit {
		light = p.LightColor
	}
	var energy float32
	var lit mgl32.Vec3
	for travelled := float32(0); travelled < limit; travelled += p.StepSize {
		if p.MaxPrimarySteps > 0 && res.Samples >= p.MaxPrimarySteps {
			break
		}
		pos := origin.Add(dir.Mul(toBox + travelled))
		res.Samples++
		d := p.Density(s, pos)
		if d <= 0 {
			continue
		}
		energy = d * p.StepSize * res.Transmittance * p.LightTransmittance(s, pos)
		lit = lit.Add(light.Mul(energy))
		res.Transmittance *= math32.Exp(-d * p.StepSize * p.AbsorptionCloud)
		if res.Transmittance < Epsilon {
			break
		}
	}
	res.Color = lit
	return res
}
