// Package gpucore provides the device abstraction used by the cloudfx passes.
//
// A [Device] allocates textures and dispatches compute kernels over a grid
// of invocations tiled into workgroups. The passes only talk to this
// interface, so the same kernels run on any implementation:
//
//	+------------------+       +------------------+
//	|   volume, cloud, |       |     shader       |
//	|   blur passes    |       | (WGSL -> SPIR-V) |
//	+--------+---------+       +------------------+
//	         |
//	+--------v---------+
//	|  gpucore.Device  |
//	+--------+---------+
//	         |
//	+--------v---------+       +------------------+
//	|    CPUDevice     |       |   ProbeAdapter   |
//	| (worker pool)    |       |  (gogpu/wgpu)    |
//	+------------------+       +------------------+
//
// # Workgroups
//
// Volume kernels use an 8×8×8 tile ([Tile3D]) and screen-space kernels an
// 8×8×1 tile ([Tile2D]). Tiling affects scheduling only; every invocation
// of the grid runs exactly once.
//
// # Resource Management
//
// Textures are identified by opaque [TextureID] values. [CPUDevice] keeps a
// memory budget and counts allocations so callers can assert that steady
// state frames allocate nothing (see [Stats]). [ScaledTargets] implements
// the keyed render-target cache the passes use to reallocate only when the
// resolution scale changes.
package gpucore
