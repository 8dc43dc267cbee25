package gpucore

import (
	"context"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Device allocates textures and runs compute kernels.
//
// Dispatch returns after every invocation has finished, so work submitted
// by one stage is visible to the next one.
type Device interface {
	// Info describes the adapter behind the device.
	Info() gpucontext.AdapterInfo

	// Limits returns the device limits.
	Limits() gputypes.Limits

	// Allocate creates a zeroed texture.
	Allocate(desc gputypes.TextureDescriptor) (*Texture, error)

	// Free releases a texture. Freeing nil or an unknown texture is a no-op.
	Free(t *Texture)

	// Dispatch runs k over grid, tiled into workgroups of size wg.
	Dispatch(ctx context.Context, wg WorkgroupSize, grid Grid, k Kernel) error

	// Stats returns allocation and dispatch counters.
	Stats() Stats
}

// Stats holds device counters.
type Stats struct {
	// Allocations is the number of successful Allocate calls.
	Allocations uint64

	// Frees is the number of textures released.
	Frees uint64

	// Dispatches is the number of completed Dispatch calls.
	Dispatches uint64

	// LiveTextures is the number of textures currently allocated.
	LiveTextures int

	// LiveBytes is the memory held by live textures.
	LiveBytes int64

	// BudgetBytes is the memory budget, 0 meaning unlimited.
	BudgetBytes int64
}
