package cloudfx

import (
	"context"

	"github.com/gogpu/cloudfx/gpucore"
)

// Handle identifies the device resources an effect acquired in Initialize.
// Each effect defines its own concrete handle type.
type Handle interface {
	// Label names the resources in logs.
	Label() string
}

// Effect is a post-process pass with an explicit resource lifecycle.
//
// Initialize acquires device resources and returns a handle to them.
// Render records the frame's stages into frame.Recorder. The stages run
// when the driver submits the recorder and may reference frame until then.
// Release frees what Initialize acquired and must be safe to call with a
// handle whose Render failed.
type Effect interface {
	Initialize(ctx context.Context, dev gpucore.Device) (Handle, error)
	Render(ctx context.Context, frame *FrameContext, h Handle) error
	Release(h Handle)
}

// FrameContext is everything the host supplies for one frame.
type FrameContext struct {
	// Index is the frame number, for logs.
	Index uint64

	// Color is the camera color buffer. Effects composite into it.
	Color *Buffer

	// Depth is optional. When set, raymarching stops at opaque geometry.
	Depth *DepthBuffer

	// Recorder receives the frame's stages. The driver supplies a scratch
	// recorder when it is nil.
	Recorder *CommandRecorder

	// Params is the per-draw parameter block the effect binds into.
	Params *ParamBlock

	Camera Camera

	// Bounds is the cloud container transform; nil when unset.
	Bounds *Transform

	// Light is the directional light; nil when unset.
	Light *Light

	// Masks draws layer masks for the blur pass; nil disables masking.
	Masks MaskRenderer
}

// Viewport returns the color buffer size.
func (f *FrameContext) Viewport() (width, height int) {
	if f.Color == nil {
		return 0, 0
	}
	return f.Color.Width(), f.Color.Height()
}
