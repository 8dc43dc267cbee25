package cloudfx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestTransformBounds(t *testing.T) {
	tr := Transform{Position: mgl32.Vec3{1, 2, 3}, Scale: mgl32.Vec3{4, -2, 6}}
	lo, hi := tr.Bounds()

	if want := (mgl32.Vec3{-1, 1, 0}); !lo.ApproxEqual(want) {
		t.Errorf("lo = %v, want %v", lo, want)
	}
	if want := (mgl32.Vec3{3, 3, 6}); !hi.ApproxEqual(want) {
		t.Errorf("hi = %v, want %v", hi, want)
	}
}

func TestParamBlock(t *testing.T) {
	var p ParamBlock
	p.SetFloat("_StepSize", 0.5)
	p.SetVec3("_BoundsMin", mgl32.Vec3{1, 2, 3})

	if v, ok := p.Float("_StepSize"); !ok || v != 0.5 {
		t.Errorf("Float(_StepSize) = %v, %v", v, ok)
	}
	if v, ok := p.Vector("_BoundsMin"); !ok || v != (mgl32.Vec4{1, 2, 3, 0}) {
		t.Errorf("Vector(_BoundsMin) = %v, %v", v, ok)
	}
	if got := p.Names(); len(got) != 2 || got[0] != "_BoundsMin" {
		t.Errorf("Names() = %v", got)
	}

	p.Reset()
	if _, ok := p.Float("_StepSize"); ok {
		t.Error("Reset kept parameters")
	}
}
