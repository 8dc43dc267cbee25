package blur

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/gpucore"
)

const (
	targetDown = iota
	targetSecondary
)

// Handle owns the buffers of one initialized Pass.
//
// The full resolution source copy and the mask exist only while the pass
// runs masked; turning UseMask off frees them on the next frame.
type Handle struct {
	dev     gpucore.Device
	targets *gpucore.ScaledTargets
	masked  *gpucore.ScaledTargets

	source    *cloudfx.Buffer
	down      *cloudfx.Buffer
	secondary *cloudfx.Buffer
	mask      *cloudfx.Mask

	texture *cloudfx.Buffer
}

func newHandle(dev gpucore.Device, texture *cloudfx.Buffer) *Handle {
	return &Handle{
		dev:     dev,
		texture: texture,
		targets: gpucore.NewScaledTargets(
			gpucore.TargetSpec{Label: "blur downsample", Format: gputypes.TextureFormatRGBA32Float},
			gpucore.TargetSpec{Label: "blur secondary", Format: gputypes.TextureFormatRGBA32Float},
		),
		masked: gpucore.NewScaledTargets(
			gpucore.TargetSpec{Label: "blur source copy", Format: gputypes.TextureFormatRGBA32Float, FullResolution: true},
		),
	}
}

// Label implements cloudfx.Handle.
func (h *Handle) Label() string { return "blur" }

// Reallocations returns how many times the buffers were allocated.
func (h *Handle) Reallocations() int {
	return h.targets.Reallocations() + h.masked.Reallocations()
}

// Mask returns the mask rendered for the last masked frame, or nil when
// the pass runs unmasked.
func (h *Handle) Mask() *cloudfx.Mask { return h.mask }

// Downsampled returns the blurred buffer of the last frame.
func (h *Handle) Downsampled() *cloudfx.Buffer { return h.down }

func (h *Handle) validate(width, height int, scale float32, useMask bool) error {
	realloc, err := h.targets.Validate(h.dev, width, height, scale)
	if err != nil {
		h.down, h.secondary = nil, nil
		return err
	}
	if realloc || h.down == nil {
		if h.down, err = cloudfx.WrapTexture(h.targets.Target(targetDown)); err != nil {
			return err
		}
		if h.secondary, err = cloudfx.WrapTexture(h.targets.Target(targetSecondary)); err != nil {
			return err
		}
	}

	if !useMask {
		if h.source != nil {
			h.masked.Release(h.dev)
			h.source, h.mask = nil, nil
		}
		return nil
	}
	realloc, err = h.masked.Validate(h.dev, width, height, 1)
	if err != nil {
		h.source = nil
		return err
	}
	if realloc || h.source == nil {
		if h.source, err = cloudfx.WrapTexture(h.masked.Target(0)); err != nil {
			return err
		}
	}
	if h.mask == nil || h.mask.Width() != width || h.mask.Height() != height {
		h.mask = cloudfx.NewMask(width, height)
	}
	return nil
}

func (h *Handle) release() {
	h.targets.Release(h.dev)
	h.masked.Release(h.dev)
	h.source, h.down, h.secondary, h.mask = nil, nil, nil, nil
}
