package gpucore

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func newTestTargets() *ScaledTargets {
	return NewScaledTargets(
		TargetSpec{Label: "copy", Format: gputypes.TextureFormatRGBA32Float, FullResolution: true},
		TargetSpec{Label: "scaled", Format: gputypes.TextureFormatRGBA32Float},
	)
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h         int
		scale        float32
		wantW, wantH int
	}{
		{100, 50, 1, 100, 50},
		{100, 50, 0.5, 50, 25},
		{101, 51, 0.5, 51, 26},
		{3, 3, 0.01, 1, 1},
	}
	for _, tt := range tests {
		w, h := ScaledSize(tt.w, tt.h, tt.scale)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("ScaledSize(%d, %d, %v) = %d, %d, want %d, %d", tt.w, tt.h, tt.scale, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestScaledTargetsReallocateOnlyOnKeyChange(t *testing.T) {
	d := NewCPUDevice(WithWorkers(1))
	defer d.Close()
	s := newTestTargets()

	steps := []struct {
		scale       float32
		wantRealloc bool
	}{
		{0.5, true},
		{0.5, false},
		{0.5, false},
		{0.25, true},
		{0.25, false},
		{1, true},
	}
	for i, step := range steps {
		before := d.Stats().Allocations
		changed, err := s.Validate(d, 64, 32, step.scale)
		if err != nil {
			t.Fatalf("step %d: Validate() error = %v", i, err)
		}
		if changed != step.wantRealloc {
			t.Errorf("step %d: Validate() changed = %v, want %v", i, changed, step.wantRealloc)
		}
		allocs := d.Stats().Allocations - before
		if !step.wantRealloc && allocs != 0 {
			t.Errorf("step %d: %d allocations with unchanged scale, want 0", i, allocs)
		}
	}

	if got := d.Stats().LiveTextures; got != 2 {
		t.Errorf("LiveTextures = %d, want 2 (old targets freed)", got)
	}
	if got := s.Target(1).Width(); got != 64 {
		t.Errorf("scaled target width at scale 1 = %d, want 64", got)
	}
	if got := s.Target(0).Width(); got != 64 {
		t.Errorf("full resolution target width = %d, want 64", got)
	}
	if s.Reallocations() != 3 {
		t.Errorf("Reallocations() = %d, want 3", s.Reallocations())
	}
}

func TestScaledTargetsFreeBeforeAllocate(t *testing.T) {
	full := Texture2D("copy", 64, 64, gputypes.TextureFormatRGBA32Float)
	// Budget fits exactly one set at scale 1: a swap only succeeds if the old
	// set is released first.
	d := NewCPUDevice(WithWorkers(1), WithMemoryBudget(2*TextureBytes(full)))
	defer d.Close()
	s := newTestTargets()

	if _, err := s.Validate(d, 64, 64, 1); err != nil {
		t.Fatalf("Validate(1) error = %v", err)
	}
	if _, err := s.Validate(d, 64, 64, 0.9); err != nil {
		t.Fatalf("Validate(0.9) error = %v", err)
	}
}

func TestScaledTargetsAllocationFailure(t *testing.T) {
	d := NewCPUDevice(WithWorkers(1), WithMemoryBudget(1024))
	defer d.Close()
	s := newTestTargets()

	_, err := s.Validate(d, 64, 64, 1)
	if !errors.Is(err, ErrResourceAllocation) {
		t.Fatalf("Validate() error = %v, want ErrResourceAllocation", err)
	}
	if s.Target(0) != nil {
		t.Error("Target(0) != nil after failed Validate")
	}
	if got := d.Stats().LiveBytes; got != 0 {
		t.Errorf("LiveBytes = %d after failed Validate, want 0", got)
	}
}

func TestScaledTargetsRelease(t *testing.T) {
	d := NewCPUDevice(WithWorkers(1))
	defer d.Close()
	s := newTestTargets()

	if _, err := s.Validate(d, 8, 8, 0.5); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	s.Release(d)
	if got := d.Stats().LiveTextures; got != 0 {
		t.Errorf("LiveTextures after Release = %d, want 0", got)
	}
	changed, err := s.Validate(d, 8, 8, 0.5)
	if err != nil || !changed {
		t.Errorf("Validate() after Release = %v, %v, want true, nil", changed, err)
	}
}
