package shader

import (
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/gogpu/naga"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/internal/cache"
)

// Kernel names.
const (
	Worley    = "worley"
	Raymarch  = "raymarch"
	Blur      = "blur"
	Composite = "composite"
	Grade     = "grade"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

// ErrUnknownKernel is returned for names with no source.
var ErrUnknownKernel = errors.New("shader: unknown kernel")

//go:embed kernels/*.wgsl
var kernelFS embed.FS

// Names returns the embedded kernel names in sorted order.
func Names() []string {
	entries, err := kernelFS.ReadDir("kernels")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".wgsl"))
	}
	slices.Sort(names)
	return names
}

// Source returns the WGSL text of an embedded kernel.
func Source(name string) (string, error) {
	b, err := kernelFS.ReadFile(path.Join("kernels", name+".wgsl"))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownKernel, name)
	}
	return string(b), nil
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithValidation toggles naga IR validation before code generation.
func WithValidation(on bool) Option {
	return func(c *Compiler) { c.opts.Validate = on }
}

// WithDebug emits SPIR-V debug names and line info.
func WithDebug(on bool) Option {
	return func(c *Compiler) { c.opts.Debug = on }
}

// WithSource registers or overrides a kernel source.
func WithSource(name, wgsl string) Option {
	return func(c *Compiler) { c.extra[name] = wgsl }
}

// WithCacheCapacity bounds the number of cached modules.
func WithCacheCapacity(n int) Option {
	return func(c *Compiler) { c.capacity = n }
}

// Compiler turns kernel sources into SPIR-V words, caching by name.
type Compiler struct {
	opts     naga.CompileOptions
	extra    map[string]string
	capacity int
	modules  *cache.Cache[string, []uint32]
}

// NewCompiler returns a Compiler using naga's default options.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		opts:     naga.DefaultOptions(),
		extra:    make(map[string]string),
		capacity: 16,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.modules = cache.New[string, []uint32](c.capacity)
	return c
}

// Compile returns the SPIR-V words for the named kernel.
func (c *Compiler) Compile(name string) ([]uint32, error) {
	return c.modules.GetOrCreate(name, func() ([]uint32, error) {
		src, ok := c.extra[name]
		if !ok {
			var err error
			if src, err = Source(name); err != nil {
				return nil, err
			}
		}
		b, err := naga.CompileWithOptions(src, c.opts)
		if err != nil {
			return nil, fmt.Errorf("shader: compile %s: %w", name, err)
		}
		words, err := Words(b)
		if err != nil {
			return nil, fmt.Errorf("shader: compile %s: %w", name, err)
		}
		cloudfx.Logger().Debug("shader: kernel compiled", "name", name, "words", len(words))
		return words, nil
	})
}

// Check compiles name and discards the result. Its signature matches the
// kernel check hooks of the passes.
func (c *Compiler) Check(name string) error {
	_, err := c.Compile(name)
	return err
}

// CompileAll compiles every embedded kernel and returns the failures keyed
// by name.
func (c *Compiler) CompileAll() map[string]error {
	failed := make(map[string]error)
	for _, name := range Names() {
		if err := c.Check(name); err != nil {
			failed[name] = err
		}
	}
	return failed
}

// Stats returns the module cache counters.
func (c *Compiler) Stats() cache.Stats { return c.modules.Stats() }

// Words converts a little-endian SPIR-V byte stream into words and checks
// the magic number.
func Words(b []byte) ([]uint32, error) {
	if len(b) < 4 || len(b)%4 != 0 {
		return nil, fmt.Errorf("spir-v length %d is not a positive multiple of 4", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	if words[0] != SPIRVMagic {
		return nil, fmt.Errorf("bad spir-v magic %#08x", words[0])
	}
	return words, nil
}
