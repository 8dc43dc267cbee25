package cloudfx

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/cloudfx/gpucore"
)

type driverState int

const (
	stateUninitialized driverState = iota
	stateReady
	stateReleased
)

func (s driverState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateReady:
		return "ready"
	case stateReleased:
		return "released"
	default:
		return fmt.Sprintf("driverState(%d)", int(s))
	}
}

// DriverStats counts what a Driver did with the frames it was given.
type DriverStats struct {
	Rendered uint64
	Skipped  uint64
	Disabled bool

	// LastError is the most recent frame error, nil if none.
	LastError error
}

// Driver adapts an Effect to the Setup / Execute / Cleanup callbacks of a
// host render pipeline.
//
// Execute never returns an error: a failed frame is logged and skipped so
// the host frame always completes. An allocation failure disables the
// effect for the rest of the session.
//
// A Driver is called from the host's render thread and is not safe for
// concurrent use.
type Driver struct {
	name   string
	effect Effect
	dev    gpucore.Device
	opts   driverOptions

	state    driverState
	handle   Handle
	disabled bool
	failures int
	stats    DriverStats
}

// NewDriver creates a driver for effect on dev.
func NewDriver(name string, effect Effect, dev gpucore.Device, opts ...DriverOption) *Driver {
	o := defaultDriverOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.recorder == nil {
		o.recorder = NewCommandRecorder()
	}
	return &Driver{name: name, effect: effect, dev: dev, opts: o}
}

// Setup initializes the effect. It is called once when the pass is
// activated. A failed Setup leaves the driver uninitialized; an allocation
// failure also disables it.
func (d *Driver) Setup(ctx context.Context) error {
	if d.disabled {
		return ErrDisabled
	}
	if d.state == stateReady {
		return nil
	}

	h, err := d.effect.Initialize(ctx, d.dev)
	if err != nil {
		if errors.Is(err, ErrResourceAllocation) {
			d.disable(err)
		}
		return fmt.Errorf("cloudfx: setup %s: %w", d.name, err)
	}

	d.handle = h
	d.state = stateReady
	Logger().Debug("cloudfx: effect ready", "effect", d.name, "handle", h.Label())
	return nil
}

// Execute renders one frame and reports whether the effect ran.
func (d *Driver) Execute(ctx context.Context, frame *FrameContext) bool {
	if d.disabled {
		d.stats.Skipped++
		return false
	}
	if d.state != stateReady {
		d.skip(frame, fmt.Errorf("%w: %s is %s", ErrNotInitialized, d.name, d.state))
		return false
	}

	rec := frame.Recorder
	if rec == nil {
		rec = d.opts.recorder
		frame.Recorder = rec
		defer func() { frame.Recorder = nil }()
	}
	if frame.Params == nil {
		frame.Params = &ParamBlock{}
	}

	err := d.effect.Render(ctx, frame, d.handle)
	if err == nil {
		err = rec.Submit(ctx)
	} else {
		rec.Reset()
	}
	if err != nil {
		d.skip(frame, err)
		if errors.Is(err, ErrResourceAllocation) {
			d.disable(err)
		} else if d.opts.failureLimit > 0 && d.failures >= d.opts.failureLimit {
			d.disable(err)
		}
		return false
	}

	d.failures = 0
	d.stats.Rendered++
	return true
}

// Cleanup releases the effect. It is called once when the pass is
// deactivated and is safe to call more than once.
func (d *Driver) Cleanup() {
	if d.state == stateReady {
		d.effect.Release(d.handle)
		Logger().Debug("cloudfx: effect released", "effect", d.name)
	}
	d.handle = nil
	d.state = stateReleased
}

// Disabled reports whether the effect was disabled for the session.
func (d *Driver) Disabled() bool { return d.disabled }

// Stats returns frame counters.
func (d *Driver) Stats() DriverStats {
	s := d.stats
	s.Disabled = d.disabled
	return s
}

func (d *Driver) skip(frame *FrameContext, err error) {
	d.failures++
	d.stats.Skipped++
	d.stats.LastError = err
	Logger().Warn("cloudfx: frame skipped", "effect", d.name, "frame", frame.Index, "err", err)
}

func (d *Driver) disable(err error) {
	if d.disabled {
		return
	}
	d.disabled = true
	if d.state == stateReady {
		d.effect.Release(d.handle)
		d.handle = nil
		d.state = stateReleased
	}
	Logger().Warn("cloudfx: effect disabled for session", "effect", d.name, "err", err)
}
