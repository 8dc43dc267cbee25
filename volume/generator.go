package volume

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/gpucore"
	"github.com/gogpu/cloudfx/internal/noise"
)

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the clock used for time seeds.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithKernelCheck sets a function called with the kernel name before the
// first generation. A non-nil error is logged and generation proceeds on
// the device's own kernels.
func WithKernelCheck(check func(name string) error) Option {
	return func(g *Generator) {
		g.check = check
	}
}

// Generator produces noise fields on a device and holds the current one.
//
// Generate, Ensure and Clear may be called from any goroutine; they are
// serialized internally. Current is lock free.
type Generator struct {
	dev   gpucore.Device
	now   func() time.Time
	check func(name string) error

	mu      sync.Mutex // serializes field replacement
	cfg     Config
	checked bool

	current     atomic.Pointer[Field]
	generations atomic.Uint64
}

// NewGenerator creates a generator for cfg. Nothing is generated until
// Generate or Ensure is called.
func NewGenerator(dev gpucore.Device, cfg Config, opts ...Option) *Generator {
	g := &Generator{dev: dev, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the configuration used by Ensure and Regenerate.
func (g *Generator) Config() Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

// SetConfig replaces the configuration. The current field is kept until
// the next Regenerate.
func (g *Generator) SetConfig(cfg Config) {
	g.mu.Lock()
	g.cfg = cfg
	g.mu.Unlock()
}

// Current returns the live field, or nil.
func (g *Generator) Current() *Field { return g.current.Load() }

// Generations returns how many fields this generator has produced.
func (g *Generator) Generations() uint64 { return g.generations.Load() }

// Ensure returns the live field, generating one synchronously from the
// generator's configuration if none is held.
func (g *Generator) Ensure(ctx context.Context) (*Field, error) {
	if f := g.current.Load(); f != nil {
		return f, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if f := g.current.Load(); f != nil {
		return f, nil
	}
	return g.generateLocked(ctx, g.cfg)
}

// Regenerate replaces the live field using the generator's configuration.
func (g *Generator) Regenerate(ctx context.Context) (*Field, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generateLocked(ctx, g.cfg)
}

// Generate builds a field for cfg and makes it the live field. cfg also
// becomes the generator's configuration.
//
// Invalid dimensions fail with cloudfx.ErrInvalidDimension before anything
// is allocated. On any error the previous field stays live.
func (g *Generator) Generate(ctx context.Context, cfg Config) (*Field, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	f, err := g.generateLocked(ctx, cfg)
	if err == nil {
		g.cfg = cfg
	}
	return f, err
}

func (g *Generator) generateLocked(ctx context.Context, cfg Config) (*Field, error) {
	if err := cfg.Validate(g.dev.Limits()); err != nil {
		return nil, err
	}
	cfg = cfg.resolve(g.now)

	if !g.checked && g.check != nil {
		if err := g.check("worley"); err != nil {
			cloudfx.Logger().Warn("volume: worley kernel unavailable, using device kernel", "err", err)
		}
		g.checked = true
	}

	start := time.Now()
	tex, err := g.dev.Allocate(gpucore.Texture3D("cloud noise", cfg.Resolution, cfg.Format))
	if err != nil {
		return nil, fmt.Errorf("volume: allocate %d³ field: %w", cfg.Resolution, err)
	}

	w := noise.NewWorley(cfg.noiseParams())
	n := cfg.Resolution
	ch := gpucore.ChannelCount(cfg.Format)
	data := tex.Data
	err = g.dev.Dispatch(ctx, gpucore.Tile3D, gpucore.Grid{Width: n, Height: n, Depth: n}, func(x, y, z int) {
		blend, layers := w.Eval(x, y, z)
		i := ((z*n+y)*n + x) * ch
		data[i] = blend
		if ch == 4 {
			data[i+1], data[i+2], data[i+3] = layers[0], layers[1], layers[2]
		}
	})
	if err != nil {
		g.dev.Free(tex)
		return nil, fmt.Errorf("volume: dispatch worley: %w", err)
	}

	f := newField(cfg, data, tex)
	g.swap(f)
	g.generations.Add(1)

	cloudfx.Logger().Info("volume: noise generated",
		"resolution", n, "divisions", cfg.Divisions, "seed", cfg.Seed,
		"centers", cfg.GenerateCenters, "elapsed", time.Since(start))
	return f, nil
}

// Install makes f the live field, for fields loaded from disk or built
// offline. f is uploaded to the device if it has no allocation yet.
func (g *Generator) Install(f *Field) error {
	if f == nil {
		return errors.New("volume: install nil field")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if f.tex == nil {
		tex, err := g.dev.Allocate(gpucore.Texture3D("cloud noise", f.size, f.cfg.Format))
		if err != nil {
			return fmt.Errorf("volume: upload field: %w", err)
		}
		copy(tex.Data, f.data)
		f = newField(f.cfg, tex.Data, tex)
	}
	g.swap(f)
	g.cfg = f.cfg
	return nil
}

// Clear releases the live field. The next Ensure regenerates it.
func (g *Generator) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.swap(nil)
}

// swap publishes f and releases the previous field's device memory. Readers
// holding the old *Field keep its voxel slice alive.
func (g *Generator) swap(f *Field) {
	old := g.current.Swap(f)
	if old != nil && old != f && old.tex != nil {
		g.dev.Free(old.tex)
	}
}
