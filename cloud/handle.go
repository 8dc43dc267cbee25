package cloud

import (
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/gpucore"
)

// Target order in the ScaledTargets set.
const (
	targetColorCopy = iota
	targetCloud
	targetSecondary
)

// Handle owns the render targets of one initialized Pass.
type Handle struct {
	dev     gpucore.Device
	targets *gpucore.ScaledTargets

	colorCopy *cloudfx.Buffer
	cloud     *cloudfx.Buffer
	secondary *cloudfx.Buffer

	frames  atomic.Uint64
	skipped atomic.Uint64
}

func newHandle(dev gpucore.Device) *Handle {
	return &Handle{
		dev: dev,
		targets: gpucore.NewScaledTargets(
			gpucore.TargetSpec{Label: "cloud color copy", Format: gputypes.TextureFormatRGBA32Float, FullResolution: true},
			gpucore.TargetSpec{Label: "cloud march", Format: gputypes.TextureFormatRGBA32Float},
			gpucore.TargetSpec{Label: "cloud blur", Format: gputypes.TextureFormatRGBA32Float},
		),
	}
}

// Label implements cloudfx.Handle.
func (h *Handle) Label() string { return "cloud" }

// Frames returns the number of frames the pass recorded.
func (h *Handle) Frames() uint64 { return h.frames.Load() }

// Skipped returns the number of frames skipped for a missing container.
func (h *Handle) Skipped() uint64 { return h.skipped.Load() }

// Reallocations returns how many times the targets were allocated.
func (h *Handle) Reallocations() int { return h.targets.Reallocations() }

// CloudBuffer returns the raymarch target of the last frame: premultiplied
// cloud color in RGB and transmittance in A. It is nil before the first
// frame.
func (h *Handle) CloudBuffer() *cloudfx.Buffer { return h.cloud }

// validate reallocates the targets if the viewport or scale changed and
// rewraps the buffers around the new textures.
func (h *Handle) validate(width, height int, scale float32) error {
	realloc, err := h.targets.Validate(h.dev, width, height, scale)
	if err != nil {
		h.colorCopy, h.cloud, h.secondary = nil, nil, nil
		return err
	}
	if !realloc && h.cloud != nil {
		return nil
	}
	bufs := make([]*cloudfx.Buffer, 3)
	for i := range bufs {
		if bufs[i], err = cloudfx.WrapTexture(h.targets.Target(i)); err != nil {
			return err
		}
	}
	h.colorCopy, h.cloud, h.secondary = bufs[targetColorCopy], bufs[targetCloud], bufs[targetSecondary]
	return nil
}

func (h *Handle) release() {
	h.targets.Release(h.dev)
	h.colorCopy, h.cloud, h.secondary = nil, nil, nil
}
