// Package cloudfx renders volumetric clouds and mask-aware blur as
// post-process passes over float color buffers.
//
// # Overview
//
// A host renderer drives each effect through the lifecycle
// Setup → Execute (once per frame) → Cleanup. [Driver] maps that
// lifecycle onto the [Effect] interface:
//
//	Initialize(device) -> Handle
//	Render(ctx, frame, Handle)
//	Release(Handle)
//
// Two effects are provided in sub-packages:
//
//   - cloud: raymarches a noise volume inside an axis-aligned box, blurs the
//     result at reduced resolution and composites it over the color buffer.
//   - blur: downsamples, separably blurs and composites with an optional
//     layer mask and color grading.
//
// The noise volume itself is produced by the volume package, which can also
// persist it as OpenEXR, a zstd-compressed native container or PNG slices.
//
// # Frames
//
// A [FrameContext] carries the camera color buffer, an optional depth
// buffer, a [CommandRecorder] for the frame's stages, a [ParamBlock] of
// per-draw parameters and the scene references (bounding box, light,
// mask renderer). Effects record stages; the driver submits them in order,
// so a stage always sees the writes of the stages before it.
//
// # Errors
//
// Frame errors never reach the host: the driver logs them and skips the
// frame. [ErrResourceAllocation] additionally disables the effect for the
// rest of the session. Generator errors ([ErrInvalidDimension], [ErrIO])
// are returned to the caller.
//
// # Logging
//
// cloudfx is silent by default. Call [SetLogger] to route diagnostics to a
// [log/slog] handler; sub-packages share the same logger.
package cloudfx
