package gpucore

import (
	"math"

	"github.com/gogpu/gputypes"
)

// TargetSpec describes one render target held by a ScaledTargets set.
type TargetSpec struct {
	Label  string
	Format gputypes.TextureFormat

	// FullResolution targets ignore the scale and match the viewport.
	FullResolution bool
}

// targetKey invalidates a ScaledTargets set when any field changes.
type targetKey struct {
	scale         float32
	width, height int
}

// ScaledTargets is a set of 2D render targets cached under a
// (scale, viewport) key. Validate reallocates only when the key changes;
// the old targets are freed before the new ones are allocated.
//
// ScaledTargets is owned by a single pass and is not safe for concurrent use.
type ScaledTargets struct {
	specs    []TargetSpec
	key      targetKey
	targets  []*Texture
	reallocs int
}

// NewScaledTargets creates an empty set. No memory is allocated until the
// first Validate.
func NewScaledTargets(specs ...TargetSpec) *ScaledTargets {
	return &ScaledTargets{specs: specs}
}

// ScaledSize returns ceil(width*scale) × ceil(height*scale), at least 1×1.
func ScaledSize(width, height int, scale float32) (int, int) {
	w := int(math.Ceil(float64(width) * float64(scale)))
	h := int(math.Ceil(float64(height) * float64(scale)))
	return max(w, 1), max(h, 1)
}

// Validate makes sure the targets exist for a viewport at the given scale.
// It reports whether the targets were reallocated. On error the set is
// left empty and the next Validate tries again.
func (s *ScaledTargets) Validate(dev Device, width, height int, scale float32) (bool, error) {
	key := targetKey{scale: scale, width: width, height: height}
	if s.targets != nil && key == s.key {
		return false, nil
	}

	s.Release(dev)

	sw, sh := ScaledSize(width, height, scale)
	targets := make([]*Texture, 0, len(s.specs))
	for _, spec := range s.specs {
		w, h := sw, sh
		if spec.FullResolution {
			w, h = width, height
		}
		t, err := dev.Allocate(Texture2D(spec.Label, w, h, spec.Format))
		if err != nil {
			for _, prev := range targets {
				dev.Free(prev)
			}
			return false, err
		}
		targets = append(targets, t)
	}

	s.targets = targets
	s.key = key
	s.reallocs++
	logger().Debug("gpucore: render targets reallocated",
		"scale", scale, "viewport_w", width, "viewport_h", height, "scaled_w", sw, "scaled_h", sh)
	return true, nil
}

// Target returns the i-th target, in the order of the specs, or nil before
// the first successful Validate.
func (s *ScaledTargets) Target(i int) *Texture {
	if i < 0 || i >= len(s.targets) {
		return nil
	}
	return s.targets[i]
}

// Scale returns the scale the current targets were allocated for.
func (s *ScaledTargets) Scale() float32 { return s.key.scale }

// Reallocations returns how many times Validate allocated a new set.
func (s *ScaledTargets) Reallocations() int { return s.reallocs }

// Release frees all targets. The set can be validated again afterwards.
func (s *ScaledTargets) Release(dev Device) {
	for _, t := range s.targets {
		dev.Free(t)
	}
	s.targets = nil
}
