package gpucore

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// TextureID is an opaque handle to a device texture.
type TextureID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID TextureID = 0

// MaxVolumeDimension is the largest edge length accepted for volume
// textures, regardless of what the device reports.
const MaxVolumeDimension = 512

// Texture is a device allocation.
//
// On [CPUDevice] Data is the backing store: Channels floats per texel,
// x fastest, then y, then z. Data is nil on devices that keep texels in
// GPU memory.
type Texture struct {
	ID   TextureID
	Desc gputypes.TextureDescriptor
	Data []float32
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return int(t.Desc.Size.Width) }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return int(t.Desc.Size.Height) }

// Depth returns the texture depth (1 for 2D textures).
func (t *Texture) Depth() int { return int(max(t.Desc.Size.DepthOrArrayLayers, 1)) }

// Channels returns the number of float channels per texel.
func (t *Texture) Channels() int { return ChannelCount(t.Desc.Format) }

// ChannelCount returns the number of channels a format stores, or 0 for
// formats the CPU kernels cannot address.
func ChannelCount(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR32Float, gputypes.TextureFormatDepth32Float:
		return 1
	case gputypes.TextureFormatRG32Float:
		return 2
	case gputypes.TextureFormatRGBA16Float, gputypes.TextureFormatRGBA32Float:
		return 4
	default:
		return 0
	}
}

// BytesPerTexel returns the storage size of one texel of format f.
func BytesPerTexel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR32Float, gputypes.TextureFormatDepth32Float:
		return 4
	case gputypes.TextureFormatRG32Float, gputypes.TextureFormatRGBA16Float:
		return 8
	case gputypes.TextureFormatRGBA32Float:
		return 16
	default:
		return 0
	}
}

// TextureBytes returns the memory footprint of a texture described by desc.
func TextureBytes(desc gputypes.TextureDescriptor) int64 {
	s := desc.Size
	return int64(s.Width) * int64(s.Height) * int64(max(s.DepthOrArrayLayers, 1)) *
		int64(BytesPerTexel(desc.Format))
}

// Texture2D describes a sampled, storage-writable 2D render target.
func Texture2D(label string, width, height int, format gputypes.TextureFormat) gputypes.TextureDescriptor {
	return gputypes.TextureDescriptor{
		Label:         label,
		Size:          gputypes.NewExtent2D(uint32(max(width, 0)), uint32(max(height, 0))), //nolint:gosec // clamped
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage: gputypes.TextureUsageTextureBinding | gputypes.TextureUsageStorageBinding |
			gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	}
}

// Texture3D describes a cubic volume texture written by a compute kernel.
func Texture3D(label string, size int, format gputypes.TextureFormat) gputypes.TextureDescriptor {
	n := uint32(max(size, 0)) //nolint:gosec // clamped
	return gputypes.TextureDescriptor{
		Label:         label,
		Size:          gputypes.NewExtent3D(n, n, n),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension3D,
		Format:        format,
		Usage: gputypes.TextureUsageTextureBinding | gputypes.TextureUsageStorageBinding |
			gputypes.TextureUsageCopySrc,
	}
}

// ValidateDescriptor checks desc against limits.
func ValidateDescriptor(desc gputypes.TextureDescriptor, limits gputypes.Limits) error {
	s := desc.Size
	if s.Width == 0 || s.Height == 0 || s.DepthOrArrayLayers == 0 {
		return fmt.Errorf("%w: %q has size %dx%dx%d", ErrInvalidDimension,
			desc.Label, s.Width, s.Height, s.DepthOrArrayLayers)
	}

	switch desc.Dimension {
	case gputypes.TextureDimension3D:
		limit := min(limits.MaxTextureDimension3D, MaxVolumeDimension)
		if s.Width > limit || s.Height > limit || s.DepthOrArrayLayers > limit {
			return fmt.Errorf("%w: %q edge exceeds %d", ErrInvalidDimension, desc.Label, limit)
		}
	default:
		limit := limits.MaxTextureDimension2D
		if s.Width > limit || s.Height > limit {
			return fmt.Errorf("%w: %q edge exceeds %d", ErrInvalidDimension, desc.Label, limit)
		}
	}

	if ChannelCount(desc.Format) == 0 {
		return fmt.Errorf("%w: %q uses unsupported format %s", ErrResourceAllocation, desc.Label, desc.Format)
	}
	return nil
}

// WorkgroupSize is the number of invocations per workgroup along each axis.
type WorkgroupSize struct {
	X, Y, Z int
}

var (
	// Tile3D is the workgroup used by volume kernels.
	Tile3D = WorkgroupSize{X: 8, Y: 8, Z: 8}

	// Tile2D is the workgroup used by screen-space kernels.
	Tile2D = WorkgroupSize{X: 8, Y: 8, Z: 1}
)

// Count returns the number of workgroups needed to cover a grid.
func (s WorkgroupSize) Count(width, height, depth int) (x, y, z int) {
	ceil := func(n, d int) int { return (n + d - 1) / d }
	return ceil(width, s.X), ceil(height, s.Y), ceil(depth, s.Z)
}

// Invocations returns X*Y*Z.
func (s WorkgroupSize) Invocations() int { return s.X * s.Y * s.Z }

// Grid is the number of invocations of a dispatch along each axis.
type Grid struct {
	Width, Height, Depth int
}

// Kernel is invoked once per grid cell. Invocations of one dispatch may run
// concurrently and must only write their own output texel.
type Kernel func(x, y, z int)
