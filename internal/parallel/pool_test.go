package parallel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		wantMin int
	}{
		{"explicit", 3, 3},
		{"default", 0, 1},
		{"negative", -2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool(tt.workers)
			defer p.Close()

			if p.Workers() < tt.wantMin {
				t.Errorf("Workers() = %d, want >= %d", p.Workers(), tt.wantMin)
			}
			if !p.IsRunning() {
				t.Error("IsRunning() = false after NewPool")
			}
		})
	}
}

func TestPoolRun(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	var count atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { count.Add(1) }
	}
	p.Run(work)

	if got := count.Load(); got != 100 {
		t.Errorf("executed %d items, want 100", got)
	}
}

func TestPoolRunAfterClose(t *testing.T) {
	p := NewPool(2)
	p.Close()
	p.Close()

	if p.IsRunning() {
		t.Error("IsRunning() = true after Close")
	}

	ran := 0
	p.Run([]func(){func() { ran++ }, func() { ran++ }})
	if ran != 2 {
		t.Errorf("inline run executed %d items, want 2", ran)
	}
}

func TestPoolCloseWaitsForRun(t *testing.T) {
	p := NewPool(2)

	started := make(chan struct{})
	release := make(chan struct{})
	var count atomic.Int64
	work := make([]func(), 64)
	for i := range work {
		work[i] = func() {
			if i == 0 {
				close(started)
				<-release
			}
			count.Add(1)
		}
	}

	runDone := make(chan struct{})
	go func() {
		p.Run(work)
		close(runDone)
	}()
	<-started

	closeDone := make(chan struct{})
	go func() {
		p.Close()
		close(closeDone)
	}()

	select {
	case <-closeDone:
		t.Fatal("Close returned while Run was in flight")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)

	for _, ch := range []chan struct{}{runDone, closeDone} {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatal("Run and Close did not finish")
		}
	}
	if got := count.Load(); got != int64(len(work)) {
		t.Errorf("executed %d items, want %d", got, len(work))
	}
}

func TestGroups(t *testing.T) {
	tests := []struct {
		name       string
		w, h, d    int
		tx, ty, tz int
		wantGroups int
	}{
		{"exact 3d", 16, 16, 16, 8, 8, 8, 8},
		{"ragged 3d", 10, 10, 10, 8, 8, 8, 8},
		{"2d", 17, 9, 1, 8, 8, 1, 6},
		{"empty", 0, 4, 4, 8, 8, 8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := Groups(tt.w, tt.h, tt.d, tt.tx, tt.ty, tt.tz)
			if len(groups) != tt.wantGroups {
				t.Fatalf("len(Groups) = %d, want %d", len(groups), tt.wantGroups)
			}

			covered := 0
			for _, g := range groups {
				covered += (g.MaxX - g.MinX) * (g.MaxY - g.MinY) * (g.MaxZ - g.MinZ)
			}
			if covered != tt.w*tt.h*tt.d && tt.wantGroups > 0 {
				t.Errorf("groups cover %d invocations, want %d", covered, tt.w*tt.h*tt.d)
			}
		})
	}
}

func TestDispatchVisitsEveryInvocationOnce(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	const w, h, d = 13, 9, 5
	hits := make([]atomic.Int32, w*h*d)

	err := p.Dispatch(context.Background(), Groups(w, h, d, 8, 8, 8), func(x, y, z int) {
		hits[(z*h+y)*w+x].Add(1)
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	for i := range hits {
		if n := hits[i].Load(); n != 1 {
			t.Fatalf("invocation %d visited %d times, want 1", i, n)
		}
	}
}

func TestDispatchCanceled(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var count atomic.Int64
	err := p.Dispatch(ctx, Groups(64, 64, 1, 8, 8, 1), func(x, y, z int) {
		count.Add(1)
	})
	if err == nil {
		t.Fatal("Dispatch() on canceled context returned nil error")
	}
	if count.Load() != 0 {
		t.Errorf("canceled dispatch ran %d invocations, want 0", count.Load())
	}
}
