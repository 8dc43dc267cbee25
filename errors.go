package cloudfx

import (
	"errors"

	"github.com/gogpu/cloudfx/gpucore"
)

var (
	// ErrInvalidDimension is returned for non-positive or oversized volume,
	// division or buffer dimensions. Nothing is allocated when it is returned.
	ErrInvalidDimension = gpucore.ErrInvalidDimension

	// ErrResourceAllocation is returned when the device is out of memory or
	// does not support a format. An effect that hits it during a frame is
	// disabled for the rest of the session.
	ErrResourceAllocation = gpucore.ErrResourceAllocation

	// ErrIO is returned when a noise asset cannot be written or read.
	// In-memory state is never changed by a failed save or load.
	ErrIO = errors.New("cloudfx: noise asset i/o failed")

	// ErrMissingReference is reported when a bounding box or light
	// reference is unset. Passes degrade instead of failing.
	ErrMissingReference = errors.New("cloudfx: missing scene reference")

	// ErrNotInitialized is returned when an effect is rendered or released
	// with a handle it did not create.
	ErrNotInitialized = errors.New("cloudfx: effect not initialized")

	// ErrDisabled is returned by Driver.Setup after the effect was disabled.
	ErrDisabled = errors.New("cloudfx: effect disabled")
)
