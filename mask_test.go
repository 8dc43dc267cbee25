package cloudfx

import (
	"context"
	"image"
	"image/color"
	"testing"
)

func TestNewMask(t *testing.T) {
	mask := NewMask(100, 100)
	if mask.Width() != 100 || mask.Height() != 100 {
		t.Errorf("expected 100x100, got %dx%d", mask.Width(), mask.Height())
	}
	if mask.At(50, 50) != 0 {
		t.Errorf("At(50, 50) = %v, want 0", mask.At(50, 50))
	}
	if mask.At(-1, 200) != 0 {
		t.Errorf("out of bounds At = %v, want 0", mask.At(-1, 200))
	}
}

func TestMaskSetClamps(t *testing.T) {
	mask := NewMask(2, 2)
	mask.Set(0, 0, 2)
	mask.Set(1, 0, -1)
	mask.Set(5, 5, 1)

	if mask.At(0, 0) != 1 || mask.At(1, 0) != 0 {
		t.Errorf("Set did not clamp: %v, %v", mask.At(0, 0), mask.At(1, 0))
	}
}

func TestMaskInvertAndClear(t *testing.T) {
	mask := NewMask(4, 1)
	mask.Set(0, 0, 0.25)
	mask.Invert()
	if got := mask.At(0, 0); got != 0.75 {
		t.Errorf("inverted At(0, 0) = %v, want 0.75", got)
	}
	if got := mask.At(1, 0); got != 1 {
		t.Errorf("inverted At(1, 0) = %v, want 1", got)
	}

	clone := mask.Clone()
	mask.Clear()
	if mask.At(1, 0) != 0 {
		t.Error("Clear left non-zero values")
	}
	if clone.At(1, 0) != 1 {
		t.Error("Clone shares storage with the original")
	}
}

func TestNewMaskFromAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{A: 0})

	mask := NewMaskFromAlpha(img)
	if mask.At(0, 0) != 1 || mask.At(1, 0) != 0 {
		t.Errorf("mask = [%v %v], want [1 0]", mask.At(0, 0), mask.At(1, 0))
	}
}

func TestStaticMask(t *testing.T) {
	src := NewMask(2, 1)
	src.Set(1, 0, 1)
	r := StaticMask(src, 1<<3)

	dst := NewMask(4, 2)
	if err := r.RenderMask(context.Background(), dst, 1<<3); err != nil {
		t.Fatalf("RenderMask() error = %v", err)
	}
	for y := range 2 {
		for x := range 4 {
			want := float32(0)
			if x >= 2 {
				want = 1
			}
			if got := dst.At(x, y); got != want {
				t.Errorf("dst.At(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}

	other := NewMask(4, 2)
	if err := r.RenderMask(context.Background(), other, 1<<1); err != nil {
		t.Fatalf("RenderMask() error = %v", err)
	}
	if other.At(3, 0) != 0 {
		t.Error("StaticMask drew for a layer outside its mask")
	}
}
