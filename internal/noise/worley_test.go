package noise

import (
	"testing"
)

func TestNormalizeWeights(t *testing.T) {
	tests := []struct {
		name string
		in   [Layers]float32
		want [Layers]float32
	}{
		{"equal", [Layers]float32{1, 1, 1}, [Layers]float32{1.0 / 3, 1.0 / 3, 1.0 / 3}},
		{"uneven", [Layers]float32{2, 1, 1}, [Layers]float32{0.5, 0.25, 0.25}},
		{"zero", [Layers]float32{}, [Layers]float32{1.0 / 3, 1.0 / 3, 1.0 / 3}},
		{"negative ignored", [Layers]float32{-1, 1, 0}, [Layers]float32{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeWeights(tt.in)
			for i := range got {
				if d := got[i] - tt.want[i]; d > 1e-6 || d < -1e-6 {
					t.Errorf("NormalizeWeights(%v) = %v, want %v", tt.in, got, tt.want)
					break
				}
			}
		})
	}
}

func TestWorleyRange(t *testing.T) {
	for _, invert := range []bool{false, true} {
		w := NewWorley(Params{Size: 12, Divisions: [Layers]int{2, 3, 5}, Weights: [Layers]float32{1, 2, 3}, Invert: invert, Seed: 7})
		for z := range 12 {
			for y := range 12 {
				for x := range 12 {
					blend, layers := w.Eval(x, y, z)
					if blend < 0 || blend > 1 {
						t.Fatalf("invert=%v Eval(%d,%d,%d) blend = %v, want [0,1]", invert, x, y, z, blend)
					}
					for i, v := range layers {
						if v < 0 || v > 1 {
							t.Fatalf("invert=%v layer %d = %v, want [0,1]", invert, i, v)
						}
					}
				}
			}
		}
	}
}

func TestWorleyDeterministic(t *testing.T) {
	p := Params{Size: 8, Divisions: [Layers]int{4, 4, 4}, Weights: [Layers]float32{1, 1, 1}, Seed: 99}
	a, b := NewWorley(p), NewWorley(p)
	p.Seed = 100
	c := NewWorley(p)

	differs := false
	for z := range 8 {
		for y := range 8 {
			for x := range 8 {
				va, _ := a.Eval(x, y, z)
				vb, _ := b.Eval(x, y, z)
				vc, _ := c.Eval(x, y, z)
				if va != vb {
					t.Fatalf("same seed differs at (%d,%d,%d): %v != %v", x, y, z, va, vb)
				}
				if va != vc {
					differs = true
				}
			}
		}
	}
	if !differs {
		t.Error("different seeds produced identical volumes")
	}
}

func TestWorleyInvert(t *testing.T) {
	p := Params{Size: 8, Divisions: [Layers]int{2, 4, 8}, Weights: [Layers]float32{1, 0, 0}, Seed: 3}
	edges := NewWorley(p)
	p.Invert = true
	centers := NewWorley(p)

	for x := range 8 {
		e, _ := edges.Eval(x, 3, 5)
		c, _ := centers.Eval(x, 3, 5)
		if d := e + c - 1; d > 1e-6 || d < -1e-6 {
			t.Errorf("edges + centers at x=%d = %v, want 1", x, e+c)
		}
	}
}

func TestWorleyTiles(t *testing.T) {
	// Voxel -1 is the wrapped neighbor of voxel size-1.
	const size = 8
	w := NewWorley(Params{Size: size, Divisions: [Layers]int{2, 4, 8}, Seed: 5})

	for i := range Layers {
		for y := range size {
			a := w.F1(i, size-1, y, 0)
			b := w.F1(i, -1, y, 0)
			if d := a - b; d > 1e-5 || d < -1e-5 {
				t.Errorf("layer %d y=%d: F1 at x=size-1 is %v, at x=-1 is %v", i, y, a, b)
			}
		}
	}
}

func TestWorleyMeanBalanced(t *testing.T) {
	w := NewWorley(Params{Size: 16, Divisions: [Layers]int{4, 4, 4}, Weights: [Layers]float32{1, 1, 1}, Seed: 0})

	var sum float64
	for z := range 16 {
		for y := range 16 {
			for x := range 16 {
				v, _ := w.Eval(x, y, z)
				sum += float64(v)
			}
		}
	}
	mean := sum / (16 * 16 * 16)
	if mean < 0.45 || mean > 0.55 {
		t.Errorf("mean = %v, want within [0.45, 0.55]", mean)
	}
}

func TestSplitmixSpread(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := range uint64(1000) {
		h := splitmix64(i)
		if seen[h] {
			t.Fatalf("splitmix64 collision at %d", i)
		}
		seen[h] = true
	}
	if f := unitFloat(^uint64(0)); f >= 1 {
		t.Errorf("unitFloat(max) = %v, want < 1", f)
	}
}
