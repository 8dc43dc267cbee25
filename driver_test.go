package cloudfx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/cloudfx/gpucore"
)

type testHandle struct{ id int }

func (h *testHandle) Label() string { return fmt.Sprintf("test-%d", h.id) }

// fakeEffect records one stage per frame and fails on demand.
type fakeEffect struct {
	initErr   error
	renderErr error
	stageErr  error

	inits    int
	renders  int
	ran      int
	releases int
}

func (e *fakeEffect) Initialize(context.Context, gpucore.Device) (Handle, error) {
	e.inits++
	if e.initErr != nil {
		return nil, e.initErr
	}
	return &testHandle{id: e.inits}, nil
}

func (e *fakeEffect) Render(_ context.Context, frame *FrameContext, h Handle) error {
	if _, ok := h.(*testHandle); !ok {
		return ErrNotInitialized
	}
	e.renders++
	if e.renderErr != nil {
		return e.renderErr
	}
	frame.Recorder.Record("fake", func(context.Context) error {
		e.ran++
		return e.stageErr
	})
	return nil
}

func (e *fakeEffect) Release(Handle) { e.releases++ }

func newTestDevice(t *testing.T) *gpucore.CPUDevice {
	t.Helper()
	dev := gpucore.NewCPUDevice(gpucore.WithWorkers(1))
	t.Cleanup(dev.Close)
	return dev
}

func TestDriverLifecycle(t *testing.T) {
	e := &fakeEffect{}
	d := NewDriver("fake", e, newTestDevice(t))
	ctx := context.Background()

	if d.Execute(ctx, &FrameContext{}) {
		t.Error("Execute before Setup rendered")
	}
	if err := d.Setup(ctx); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := d.Setup(ctx); err != nil {
		t.Fatalf("second Setup() error = %v", err)
	}
	if e.inits != 1 {
		t.Errorf("Initialize called %d times, want 1", e.inits)
	}

	for i := range 3 {
		if !d.Execute(ctx, &FrameContext{Index: uint64(i)}) {
			t.Fatalf("Execute(frame %d) = false, want true", i)
		}
	}
	if e.ran != 3 {
		t.Errorf("stages ran %d times, want 3", e.ran)
	}

	d.Cleanup()
	d.Cleanup()
	if e.releases != 1 {
		t.Errorf("Release called %d times, want 1", e.releases)
	}
	if d.Execute(ctx, &FrameContext{}) {
		t.Error("Execute after Cleanup rendered")
	}

	s := d.Stats()
	if s.Rendered != 3 || s.Skipped != 2 {
		t.Errorf("Stats() = %+v, want 3 rendered, 2 skipped", s)
	}
}

func TestDriverAbsorbsFrameErrors(t *testing.T) {
	tests := []struct {
		name         string
		renderErr    error
		stageErr     error
		wantDisabled bool
	}{
		{"render error", errors.New("boom"), nil, false},
		{"stage error", nil, errors.New("boom"), false},
		{"missing reference", ErrMissingReference, nil, false},
		{"allocation failure", fmt.Errorf("targets: %w", ErrResourceAllocation), nil, true},
		{"allocation failure in stage", nil, ErrResourceAllocation, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &fakeEffect{renderErr: tt.renderErr, stageErr: tt.stageErr}
			d := NewDriver("fake", e, newTestDevice(t))
			ctx := context.Background()
			if err := d.Setup(ctx); err != nil {
				t.Fatalf("Setup() error = %v", err)
			}

			if d.Execute(ctx, &FrameContext{}) {
				t.Fatal("failing frame reported as rendered")
			}
			if d.Disabled() != tt.wantDisabled {
				t.Errorf("Disabled() = %v, want %v", d.Disabled(), tt.wantDisabled)
			}
			if tt.wantDisabled {
				if e.releases != 1 {
					t.Errorf("disabled effect released %d times, want 1", e.releases)
				}
				renders := e.renders
				d.Execute(ctx, &FrameContext{})
				if e.renders != renders {
					t.Error("disabled effect was rendered again")
				}
				if err := d.Setup(ctx); !errors.Is(err, ErrDisabled) {
					t.Errorf("Setup() on disabled driver error = %v, want ErrDisabled", err)
				}
			}
			if d.Stats().LastError == nil {
				t.Error("Stats().LastError = nil after failed frame")
			}
		})
	}
}

func TestDriverSetupAllocationFailureDisables(t *testing.T) {
	e := &fakeEffect{initErr: ErrResourceAllocation}
	d := NewDriver("fake", e, newTestDevice(t))

	err := d.Setup(context.Background())
	if !errors.Is(err, ErrResourceAllocation) {
		t.Fatalf("Setup() error = %v, want ErrResourceAllocation", err)
	}
	if !d.Disabled() {
		t.Error("Disabled() = false after allocation failure in Setup")
	}
}

func TestDriverFailureLimit(t *testing.T) {
	e := &fakeEffect{renderErr: errors.New("flaky")}
	d := NewDriver("fake", e, newTestDevice(t), WithFailureLimit(2))
	ctx := context.Background()
	if err := d.Setup(ctx); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	d.Execute(ctx, &FrameContext{})
	if d.Disabled() {
		t.Fatal("disabled after one failure, limit is 2")
	}
	d.Execute(ctx, &FrameContext{})
	if !d.Disabled() {
		t.Error("not disabled after reaching the failure limit")
	}
}

func TestDriverUsesFrameRecorder(t *testing.T) {
	e := &fakeEffect{}
	scratch := NewCommandRecorder()
	d := NewDriver("fake", e, newTestDevice(t), WithRecorder(scratch))
	ctx := context.Background()
	if err := d.Setup(ctx); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	own := NewCommandRecorder()
	d.Execute(ctx, &FrameContext{Recorder: own})
	if own.Submitted() != 1 || scratch.Submitted() != 0 {
		t.Errorf("submitted own=%d scratch=%d, want 1 and 0", own.Submitted(), scratch.Submitted())
	}

	frame := &FrameContext{}
	d.Execute(ctx, frame)
	if scratch.Submitted() != 1 {
		t.Errorf("scratch recorder submitted %d stages, want 1", scratch.Submitted())
	}
	if frame.Recorder != nil {
		t.Error("scratch recorder leaked into the caller's frame")
	}
}
