package cloudfx

// DriverOption configures a Driver during creation.
//
// Example:
//
//	d := cloudfx.NewDriver("clouds", pass, dev,
//	    cloudfx.WithFailureLimit(10),
//	)
type DriverOption func(*driverOptions)

type driverOptions struct {
	recorder     *CommandRecorder
	failureLimit int
}

func defaultDriverOptions() driverOptions {
	return driverOptions{
		recorder:     nil, // created in NewDriver if nil
		failureLimit: 0,
	}
}

// WithRecorder sets the scratch recorder used for frames whose
// FrameContext has no recorder of its own.
func WithRecorder(r *CommandRecorder) DriverOption {
	return func(o *driverOptions) {
		o.recorder = r
	}
}

// WithFailureLimit disables the effect after n consecutive failed frames.
// Zero, the default, keeps retrying every frame. Allocation failures
// disable the effect immediately regardless of this limit.
func WithFailureLimit(n int) DriverOption {
	return func(o *driverOptions) {
		o.failureLimit = max(n, 0)
	}
}
