package gpucore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/cloudfx/internal/parallel"
)

// CPUDevice runs kernels on a goroutine pool and keeps textures in host memory.
//
// CPUDevice is safe for concurrent use.
type CPUDevice struct {
	pool   *parallel.Pool
	limits gputypes.Limits
	budget int64

	mu      sync.Mutex
	live    map[TextureID]*Texture
	bytes   int64
	nextID  TextureID
	closed  bool
	allocs  uint64
	frees   uint64
	dispCnt atomic.Uint64

	// inflight is read-held for the duration of each Dispatch.
	inflight sync.RWMutex
}

// CPUOption configures a CPUDevice.
type CPUOption func(*CPUDevice)

// WithWorkers sets the number of worker goroutines (default GOMAXPROCS).
func WithWorkers(n int) CPUOption {
	return func(d *CPUDevice) {
		d.pool = parallel.NewPool(n)
	}
}

// WithMemoryBudget caps the bytes held by live textures. Allocations that
// would exceed it fail with ErrResourceAllocation. Zero means unlimited.
func WithMemoryBudget(bytes int64) CPUOption {
	return func(d *CPUDevice) {
		d.budget = bytes
	}
}

// WithLimits overrides the reported device limits.
func WithLimits(l gputypes.Limits) CPUOption {
	return func(d *CPUDevice) {
		d.limits = l
	}
}

// NewCPUDevice creates a CPU device.
func NewCPUDevice(opts ...CPUOption) *CPUDevice {
	limits := gputypes.DefaultLimits()
	// Desktop adapters allow 1024 invocations per group; Tile3D needs 512.
	limits.MaxComputeInvocationsPerWorkgroup = 1024

	d := &CPUDevice{
		limits: limits,
		live:   make(map[TextureID]*Texture),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.pool == nil {
		d.pool = parallel.NewPool(0)
	}
	logger().Debug("gpucore: cpu device created", "workers", d.pool.Workers(), "budget", d.budget)
	return d
}

// Info implements Device.
func (d *CPUDevice) Info() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "cloudfx CPU", Type: gpucontext.AdapterTypeSoftware}
}

// Limits implements Device.
func (d *CPUDevice) Limits() gputypes.Limits { return d.limits }

// Allocate implements Device.
func (d *CPUDevice) Allocate(desc gputypes.TextureDescriptor) (*Texture, error) {
	if err := ValidateDescriptor(desc, d.limits); err != nil {
		return nil, err
	}
	size := TextureBytes(desc)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrDeviceClosed
	}
	if d.budget > 0 && d.bytes+size > d.budget {
		held := d.bytes
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: %q needs %d bytes, %d of %d in use",
			ErrResourceAllocation, desc.Label, size, held, d.budget)
	}
	d.bytes += size
	d.nextID++
	id := d.nextID
	d.allocs++
	d.mu.Unlock()

	s := desc.Size
	texels := int(s.Width) * int(s.Height) * int(max(s.DepthOrArrayLayers, 1))
	t := &Texture{
		ID:   id,
		Desc: desc,
		Data: make([]float32, texels*ChannelCount(desc.Format)),
	}

	d.mu.Lock()
	d.live[id] = t
	d.mu.Unlock()

	logger().Debug("gpucore: texture allocated", "label", desc.Label, "id", id,
		"width", s.Width, "height", s.Height, "depth", s.DepthOrArrayLayers,
		"format", desc.Format.String(), "bytes", size)
	return t, nil
}

// Free implements Device.
func (d *CPUDevice) Free(t *Texture) {
	if t == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.live[t.ID]; !ok {
		return
	}
	delete(d.live, t.ID)
	d.bytes -= TextureBytes(t.Desc)
	d.frees++
	t.Data = nil
}

// Dispatch implements Device.
func (d *CPUDevice) Dispatch(ctx context.Context, wg WorkgroupSize, grid Grid, k Kernel) error {
	if grid.Width <= 0 || grid.Height <= 0 || grid.Depth <= 0 {
		return fmt.Errorf("%w: dispatch grid %dx%dx%d", ErrInvalidDimension, grid.Width, grid.Height, grid.Depth)
	}
	if wg.X <= 0 || wg.Y <= 0 || wg.Z <= 0 ||
		uint32(wg.X) > d.limits.MaxComputeWorkgroupSizeX || //nolint:gosec // checked positive
		uint32(wg.Y) > d.limits.MaxComputeWorkgroupSizeY || //nolint:gosec // checked positive
		uint32(wg.Z) > d.limits.MaxComputeWorkgroupSizeZ || //nolint:gosec // checked positive
		uint32(wg.Invocations()) > d.limits.MaxComputeInvocationsPerWorkgroup { //nolint:gosec // checked positive
		return fmt.Errorf("%w: workgroup %dx%dx%d exceeds device limits", ErrInvalidDimension, wg.X, wg.Y, wg.Z)
	}

	d.inflight.RLock()
	defer d.inflight.RUnlock()
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return ErrDeviceClosed
	}

	groups := parallel.Groups(grid.Width, grid.Height, grid.Depth, wg.X, wg.Y, wg.Z)
	if err := d.pool.Dispatch(ctx, groups, k); err != nil {
		return err
	}
	d.dispCnt.Add(1)
	return nil
}

// Stats implements Device.
func (d *CPUDevice) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		Allocations:  d.allocs,
		Frees:        d.frees,
		Dispatches:   d.dispCnt.Load(),
		LiveTextures: len(d.live),
		LiveBytes:    d.bytes,
		BudgetBytes:  d.budget,
	}
}

// Close waits for running dispatches, frees every live texture and stops
// the worker pool. Close is safe to call multiple times.
func (d *CPUDevice) Close() {
	d.inflight.Lock()
	defer d.inflight.Unlock()
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for id, t := range d.live {
		t.Data = nil
		delete(d.live, id)
		d.frees++
	}
	d.bytes = 0
	d.mu.Unlock()

	d.pool.Close()
}
