package blur

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/anthonynsimon/bild/transform"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/config"
	"github.com/gogpu/cloudfx/gpucore"
	"github.com/gogpu/cloudfx/internal/filter"
	"github.com/gogpu/cloudfx/shader"
)

// RadiusScale converts the configured radius to the kernel radius in
// downsampled pixels.
const RadiusScale = 0.25

// Stage labels recorded by Render.
const (
	StageValidate   = "blur: validate buffers"
	StageCopy       = "blur: copy source"
	StageDownsample = "blur: downsample"
	StageHorizontal = "blur: horizontal"
	StageVertical   = "blur: vertical"
	StageUpsample   = "blur: upsample"
	StageMask       = "blur: render mask"
	StageComposite  = "blur: composite"
)

// Option configures a Pass.
type Option func(*Pass)

// WithWatcher reads the blur settings from w on every frame.
func WithWatcher(w *config.Watcher) Option {
	return func(p *Pass) {
		p.source = func() config.Blur { return w.Current().Blur }
	}
}

// WithTexture sets the overlay texture instead of loading TexturePath. It
// is resampled to TextureSize during Initialize.
func WithTexture(img image.Image) Option {
	return func(p *Pass) { p.image = img }
}

// WithKernelCheck runs check on the blur kernels during Initialize. A
// failing kernel is logged and the pass runs on the device's own kernels.
func WithKernelCheck(check func(name string) error) Option {
	return func(p *Pass) { p.check = check }
}

// Pass is the mask-aware blur effect. It implements [cloudfx.Effect].
type Pass struct {
	settings atomic.Pointer[config.Blur]
	source   func() config.Blur

	image image.Image
	check func(name string) error
}

// NewPass creates a blur pass with the given settings.
func NewPass(cfg config.Blur, opts ...Option) *Pass {
	p := &Pass{}
	p.settings.Store(&cfg)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetConfig replaces the settings used from the next frame on.
func (p *Pass) SetConfig(cfg config.Blur) {
	p.settings.Store(&cfg)
}

// Config returns the settings the next frame will use.
func (p *Pass) Config() config.Blur {
	if p.source != nil {
		return p.source()
	}
	return *p.settings.Load()
}

// Initialize implements cloudfx.Effect. It loads the overlay texture when
// one is configured.
func (p *Pass) Initialize(_ context.Context, dev gpucore.Device) (cloudfx.Handle, error) {
	if p.check != nil {
		for _, name := range []string{shader.Blur, shader.Grade} {
			if err := p.check(name); err != nil {
				cloudfx.Logger().Warn("blur: kernel unavailable, using device kernel", "kernel", name, "err", err)
			}
		}
	}
	tex, err := p.loadTexture(p.Config())
	if err != nil {
		return nil, err
	}
	return newHandle(dev, tex), nil
}

func (p *Pass) loadTexture(cfg config.Blur) (*cloudfx.Buffer, error) {
	w, h := cfg.TextureSize[0], cfg.TextureSize[1]
	switch {
	case p.image != nil:
		if w <= 0 || h <= 0 {
			b := p.image.Bounds()
			w, h = b.Dx(), b.Dy()
		}
		tex := cloudfx.NewBuffer(w, h)
		filter.ScaleImage(tex, p.image, nil)
		return tex, nil
	case cfg.UseTexture && cfg.TexturePath != "":
		src, err := cloudfx.LoadBuffer(cfg.TexturePath)
		if err != nil {
			return nil, err
		}
		if w <= 0 || h <= 0 || (src.Width() == w && src.Height() == h) {
			return src, nil
		}
		cloudfx.Logger().Debug("blur: resizing texture", "path", cfg.TexturePath,
			"from_w", src.Width(), "from_h", src.Height(), "to_w", w, "to_h", h)
		return cloudfx.BufferFromImage(transform.Resize(src, w, h, transform.Linear)), nil
	}
	return nil, nil
}

// Release implements cloudfx.Effect.
func (p *Pass) Release(h cloudfx.Handle) {
	if hd, ok := h.(*Handle); ok && hd != nil {
		hd.release()
	}
}

// Render implements cloudfx.Effect. A zero radius disables the whole
// effect, masked compositing included, and records no stages.
func (p *Pass) Render(_ context.Context, frame *cloudfx.FrameContext, h cloudfx.Handle) error {
	hd, ok := h.(*Handle)
	if !ok || hd == nil {
		return fmt.Errorf("%w: blur handle", cloudfx.ErrNotInitialized)
	}
	if frame.Color == nil {
		return fmt.Errorf("%w: no color buffer", cloudfx.ErrMissingReference)
	}
	cfg := p.Config()
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Radius <= 0 {
		cloudfx.Logger().Debug("blur: zero radius, frame skipped", "frame", frame.Index)
		return nil
	}

	w, ht := frame.Viewport()
	radius := cfg.Radius * RadiusScale
	color := frame.Color
	rec := frame.Recorder

	rec.Record(StageValidate, func(context.Context) error {
		return hd.validate(w, ht, cfg.Quality, cfg.UseMask)
	})
	if cfg.UseMask {
		rec.Record(StageCopy, func(context.Context) error {
			return hd.source.CopyFrom(color)
		})
	}
	rec.Record(StageDownsample, func(ctx context.Context) error {
		return filter.Resample(ctx, hd.dev, hd.down, color)
	})
	rec.Record(StageHorizontal, func(ctx context.Context) error {
		return filter.Horizontal(ctx, hd.dev, hd.secondary, hd.down, radius)
	})
	rec.Record(StageVertical, func(ctx context.Context) error {
		return filter.Vertical(ctx, hd.dev, hd.down, hd.secondary, radius)
	})
	if !cfg.UseMask {
		rec.Record(StageUpsample, func(ctx context.Context) error {
			return filter.Resample(ctx, hd.dev, color, hd.down)
		})
		return nil
	}

	masks := frame.Masks
	index := frame.Index
	rec.Record(StageMask, func(ctx context.Context) error {
		hd.mask.Clear()
		if masks == nil {
			cloudfx.Logger().Debug("blur: no mask renderer, mask left empty", "frame", index)
			return nil
		}
		return masks.RenderMask(ctx, hd.mask, cfg.LayerMask)
	})
	rec.Record(StageComposite, func(ctx context.Context) error {
		return composite(ctx, hd, color, newCompositor(cfg, hd.texture))
	})
	return nil
}

// compositor blends the graded blur over the source through the mask.
type compositor struct {
	grade    filter.Grade
	invert   bool
	texture  *cloudfx.Buffer
	weight   float32
	strength float32
}

func newCompositor(cfg config.Blur, texture *cloudfx.Buffer) compositor {
	c := compositor{
		grade:    filter.NewGrade(cfg.ColorMult.Color(), cfg.ColorAdd.Color(), cfg.BackingColor.Color(), cfg.MinimumLightness),
		invert:   cfg.InvertMask,
		weight:   cfg.TextureWeight,
		strength: float32(cfg.MaskOnTextureStrength) / 10,
	}
	if cfg.UseTexture {
		c.texture = texture
	}
	return c
}

// Pixel returns the composited color for one pixel.
func (c *compositor) Pixel(src, blurred cloudfx.Color, m, u, v float32) cloudfx.Color {
	if c.invert {
		m = 1 - m
	}
	if m <= 0 {
		return src
	}
	graded := c.grade.Apply(blurred)
	if c.texture != nil && c.weight > 0 {
		tex := c.texture.Sample(u, v)
		t := c.weight * min(max(1+(m-1)*c.strength, 0), 1) * tex.A
		graded = graded.Lerp(cloudfx.Color{R: tex.R, G: tex.G, B: tex.B, A: 1}, t)
	}
	if m >= 1 {
		return graded
	}
	return src.Lerp(graded, m)
}

func composite(ctx context.Context, hd *Handle, dst *cloudfx.Buffer, c compositor) error {
	if hd.source == nil || hd.down == nil || hd.mask == nil {
		return errors.New("blur: composite buffers not allocated")
	}
	w, h := dst.Width(), dst.Height()
	fw, fh := float32(w), float32(h)
	return hd.dev.Dispatch(ctx, gpucore.Tile2D, gpucore.Grid{Width: w, Height: h, Depth: 1}, func(x, y, _ int) {
		u := (float32(x) + 0.5) / fw
		v := (float32(y) + 0.5) / fh
		dst.SetPixel(x, y, c.Pixel(hd.source.Pixel(x, y), hd.down.Sample(u, v), hd.mask.At(x, y), u, v))
	})
}
