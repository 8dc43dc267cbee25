package cloud

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/config"
	"github.com/gogpu/cloudfx/gpucore"
	"github.com/gogpu/cloudfx/internal/filter"
	"github.com/gogpu/cloudfx/internal/raymarch"
	"github.com/gogpu/cloudfx/shader"
	"github.com/gogpu/cloudfx/volume"
)

// MaxPrimarySteps bounds the samples one camera ray may take.
const MaxPrimarySteps = 4096

// Stage labels recorded by Render.
const (
	StageValidate  = "cloud: validate buffers"
	StageCopy      = "cloud: copy color"
	StageMarch     = "cloud: raymarch"
	StageBlurH     = "cloud: blur horizontal"
	StageBlurV     = "cloud: blur vertical"
	StageComposite = "cloud: composite"
)

// Option configures a Pass.
type Option func(*Pass)

// WithGenerator makes the pass read its noise from gen. A cleared field
// is regenerated synchronously on the next frame.
func WithGenerator(gen *volume.Generator) Option {
	return func(p *Pass) { p.gen = gen }
}

// WithField uses a fixed noise field instead of a generator.
func WithField(f *volume.Field) Option {
	return func(p *Pass) { p.field = f }
}

// WithWatcher reads the cloud settings from w on every frame, so edits to
// the watched file apply without restarting.
func WithWatcher(w *config.Watcher) Option {
	return func(p *Pass) {
		p.source = func() config.Cloud { return w.Current().Cloud }
	}
}

// WithKernelCheck runs check on the pass kernels during Initialize. A
// failing kernel is logged and the pass runs on the device's own kernels.
func WithKernelCheck(check func(name string) error) Option {
	return func(p *Pass) { p.check = check }
}

// Pass is the volumetric cloud effect. It implements [cloudfx.Effect].
type Pass struct {
	settings atomic.Pointer[config.Cloud]
	source   func() config.Cloud

	gen   *volume.Generator
	field *volume.Field
	check func(name string) error
}

// NewPass creates a cloud pass with the given settings.
func NewPass(cfg config.Cloud, opts ...Option) *Pass {
	p := &Pass{}
	p.settings.Store(&cfg)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetConfig replaces the settings used from the next frame on. It has no
// effect when the pass reads from a watcher.
func (p *Pass) SetConfig(cfg config.Cloud) {
	p.settings.Store(&cfg)
}

// Config returns the settings the next frame will use.
func (p *Pass) Config() config.Cloud {
	if p.source != nil {
		return p.source()
	}
	return *p.settings.Load()
}

// Initialize implements cloudfx.Effect. It checks the kernels and makes
// sure a noise field exists.
func (p *Pass) Initialize(ctx context.Context, dev gpucore.Device) (cloudfx.Handle, error) {
	if p.check != nil {
		for _, name := range []string{shader.Raymarch, shader.Blur, shader.Composite} {
			if err := p.check(name); err != nil {
				cloudfx.Logger().Warn("cloud: kernel unavailable, using device kernel", "kernel", name, "err", err)
			}
		}
	}
	if p.gen != nil {
		if _, err := p.gen.Ensure(ctx); err != nil {
			return nil, err
		}
	}
	return newHandle(dev), nil
}

// Release implements cloudfx.Effect.
func (p *Pass) Release(h cloudfx.Handle) {
	if hd, ok := h.(*Handle); ok && hd != nil {
		hd.release()
	}
}

// Render implements cloudfx.Effect. A frame without a cloud container is
// skipped without error.
func (p *Pass) Render(ctx context.Context, frame *cloudfx.FrameContext, h cloudfx.Handle) error {
	hd, ok := h.(*Handle)
	if !ok || hd == nil {
		return fmt.Errorf("%w: cloud handle", cloudfx.ErrNotInitialized)
	}
	if frame.Color == nil {
		return fmt.Errorf("%w: no color buffer", cloudfx.ErrMissingReference)
	}
	if frame.Bounds == nil {
		hd.skipped.Add(1)
		cloudfx.Logger().Debug("cloud: frame skipped",
			"frame", frame.Index, "err", fmt.Errorf("%w: no container bounds", cloudfx.ErrMissingReference))
		return nil
	}

	cfg := p.Config()
	if err := cfg.Validate(); err != nil {
		return err
	}
	field, err := p.noise(ctx)
	if err != nil {
		return err
	}

	params := marchParams(cfg, frame)
	publish(frame.Params, cfg, params)

	w, ht := frame.Viewport()
	rec := frame.Recorder
	rec.Record(StageValidate, func(context.Context) error {
		return hd.validate(w, ht, cfg.Quality)
	})
	rec.Record(StageCopy, func(context.Context) error {
		return hd.colorCopy.CopyFrom(frame.Color)
	})
	rec.Record(StageMarch, func(ctx context.Context) error {
		return march(ctx, hd, frame, field, &params, cfg.UseDepth)
	})
	if radius := cfg.BlurRadius * (cfg.Quality / 2); cfg.Quality < 1 && radius > 0 {
		rec.Record(StageBlurH, func(ctx context.Context) error {
			return filter.Horizontal(ctx, hd.dev, hd.secondary, hd.cloud, radius)
		})
		rec.Record(StageBlurV, func(ctx context.Context) error {
			return filter.Vertical(ctx, hd.dev, hd.cloud, hd.secondary, radius)
		})
	}
	rec.Record(StageComposite, func(ctx context.Context) error {
		return composite(ctx, hd, frame.Color)
	})
	hd.frames.Add(1)
	return nil
}

func (p *Pass) noise(ctx context.Context) (*volume.Field, error) {
	if p.gen != nil {
		return p.gen.Ensure(ctx)
	}
	if p.field == nil {
		return nil, fmt.Errorf("%w: no noise field", cloudfx.ErrMissingReference)
	}
	return p.field, nil
}

func marchParams(cfg config.Cloud, frame *cloudfx.FrameContext) raymarch.Params {
	lo, hi := frame.Bounds.Bounds()
	p := raymarch.Params{
		Min:               lo,
		Max:               hi,
		Offset:            mgl32.Vec3(cfg.CloudOffset),
		Scale:             cfg.CloudScale,
		DensityThreshold:  cfg.DensityThreshold,
		DensityMultiplier: cfg.DensityMultiplier,
		StepSize:          cfg.StepSize,
		Darkness:          cfg.DarknessThreshold,
		AbsorptionSun:     cfg.LightAbsorptionTowardSun,
		AbsorptionCloud:   cfg.LightAbsorptionThroughCloud,
		LightSteps:        cfg.LightSteps,
		MaxPrimarySteps:   MaxPrimarySteps,
	}
	if l := frame.Light; l != nil && l.Direction.Len() > 0 {
		p.Lit = true
		p.LightDir = l.Direction.Normalize()
		p.LightColor = mgl32.Vec3{l.Color.R, l.Color.G, l.Color.B}
	}
	return p
}

// publish binds the frame parameters under their kernel names.
func publish(pb *cloudfx.ParamBlock, cfg config.Cloud, p raymarch.Params) {
	if pb == nil {
		return
	}
	pb.SetVec3("_BoundsMin", p.Min)
	pb.SetVec3("_BoundsMax", p.Max)
	pb.SetVec3("_CloudOffset", p.Offset)
	pb.SetFloat("_CloudScale", p.Scale)
	pb.SetFloat("_DensityThreshold", p.DensityThreshold)
	pb.SetFloat("_DensityMultiplier", p.DensityMultiplier)
	pb.SetFloat("_DarknessThreshold", p.Darkness)
	pb.SetFloat("_StepSize", p.StepSize)
	pb.SetFloat("_LightAbsorptionTowardSun", p.AbsorptionSun)
	pb.SetFloat("_LightAbsorptionThroughCloud", p.AbsorptionCloud)
	pb.SetFloat("_LightSteps", float32(p.LightSteps))
	pb.SetFloat("_Quality", cfg.Quality)
	if p.Lit {
		pb.SetVec3("_LightDirection", p.LightDir)
		pb.SetVec3("_LightColor", p.LightColor)
	}
}

func march(ctx context.Context, hd *Handle, frame *cloudfx.FrameContext, field *volume.Field, p *raymarch.Params, useDepth bool) error {
	dst := hd.cloud
	if dst == nil {
		return errors.New("cloud: raymarch target not allocated")
	}
	w, h := dst.Width(), dst.Height()
	rays := frame.Camera.Rays()
	depth := frame.Depth
	if !useDepth {
		depth = nil
	}
	grid := gpucore.Grid{Width: w, Height: h, Depth: 1}
	return hd.dev.Dispatch(ctx, gpucore.Tile2D, grid, func(x, y, _ int) {
		u := (float32(x) + 0.5) / float32(w)
		v := (float32(y) + 0.5) / float32(h)
		origin, dir := rays.Ray(u, v)
		maxDist := math32.Inf(1)
		if depth != nil {
			maxDist = depth.Sample(u, v)
		}
		r := raymarch.March(field, p, origin, dir, maxDist)
		dst.SetPixel(x, y, cloudfx.Color{R: r.Color[0], G: r.Color[1], B: r.Color[2], A: r.Transmittance})
	})
}

// composite writes background*T + cloud into dst, upsampling the cloud
// target. The background alpha is kept.
func composite(ctx context.Context, hd *Handle, dst *cloudfx.Buffer) error {
	bg, cl := hd.colorCopy, hd.cloud
	if bg == nil || cl == nil {
		return errors.New("cloud: composite targets not allocated")
	}
	w, h := dst.Width(), dst.Height()
	grid := gpucore.Grid{Width: w, Height: h, Depth: 1}
	return hd.dev.Dispatch(ctx, gpucore.Tile2D, grid, func(x, y, _ int) {
		c := cl.Sample((float32(x)+0.5)/float32(w), (float32(y)+0.5)/float32(h))
		b := bg.Pixel(x, y)
		dst.SetPixel(x, y, cloudfx.Color{
			R: b.R*c.A + c.R,
			G: b.G*c.A + c.G,
			B: b.B*c.A + c.B,
			A: b.A,
		})
	})
}
