package gpucore

import "errors"

var (
	// ErrInvalidDimension is returned when a texture or dispatch size is zero,
	// negative, or above the device limits.
	ErrInvalidDimension = errors.New("gpucore: invalid dimension")

	// ErrResourceAllocation is returned when the device cannot back an
	// allocation (budget exhausted or unsupported format).
	ErrResourceAllocation = errors.New("gpucore: resource allocation failed")

	// ErrDeviceClosed is returned by operations on a closed device.
	ErrDeviceClosed = errors.New("gpucore: device closed")
)
