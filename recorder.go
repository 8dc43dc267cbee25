package cloudfx

import (
	"context"
	"fmt"
)

// Stage is one recorded unit of frame work.
type Stage struct {
	Label string
	Run   func(ctx context.Context) error
}

// CommandRecorder collects the stages of a frame. Submit runs them in the
// order they were recorded, so a stage observes every write of the stages
// before it.
//
// A CommandRecorder is used by one frame at a time and is not safe for
// concurrent use.
type CommandRecorder struct {
	stages    []Stage
	submitted uint64
}

// NewCommandRecorder creates an empty recorder.
func NewCommandRecorder() *CommandRecorder {
	return &CommandRecorder{}
}

// Record appends a stage.
func (r *CommandRecorder) Record(label string, run func(ctx context.Context) error) {
	r.stages = append(r.stages, Stage{Label: label, Run: run})
}

// Len returns the number of pending stages.
func (r *CommandRecorder) Len() int { return len(r.stages) }

// Labels returns the labels of the pending stages in order.
func (r *CommandRecorder) Labels() []string {
	labels := make([]string, len(r.stages))
	for i, s := range r.stages {
		labels[i] = s.Label
	}
	return labels
}

// Submitted returns the number of stages run to completion so far.
func (r *CommandRecorder) Submitted() uint64 { return r.submitted }

// Submit runs the pending stages and clears the recorder. It stops at the
// first failing stage or when ctx is canceled; the remaining stages of the
// frame are dropped.
func (r *CommandRecorder) Submit(ctx context.Context) error {
	defer r.Reset()

	for _, s := range r.stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cloudfx: stage %q: %w", s.Label, err)
		}
		if err := s.Run(ctx); err != nil {
			return fmt.Errorf("cloudfx: stage %q: %w", s.Label, err)
		}
		r.submitted++
	}
	return nil
}

// Reset drops pending stages without running them.
func (r *CommandRecorder) Reset() {
	clear(r.stages)
	r.stages = r.stages[:0]
}
