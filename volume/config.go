package volume

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/gpucore"
	"github.com/gogpu/cloudfx/internal/noise"
)

// Config selects the noise volume to generate.
type Config struct {
	// Resolution is the edge length of the cubic volume.
	Resolution int

	// Divisions is the number of Worley cells along each axis for each of
	// the three layers.
	Divisions [3]int

	// Weights blend the three layers. They are normalized before use.
	Weights [3]float32

	// GenerateCenters inverts the noise so cell centers are dense.
	GenerateCenters bool

	// Seed drives feature point placement. It is used only when FixedSeed
	// is set; otherwise each generation draws a seed from the wall clock.
	Seed      int64
	FixedSeed bool

	// Format is TextureFormatR32Float (blend only) or
	// TextureFormatRGBA32Float (blend in R, layers in G, B, A).
	Format gputypes.TextureFormat
}

// DefaultConfig returns a 256³ single channel volume with 8 divisions on
// every layer, equal weights and a time seed.
func DefaultConfig() Config {
	return Config{
		Resolution: 256,
		Divisions:  [3]int{8, 8, 8},
		Weights:    [3]float32{1, 1, 1},
		Format:     gputypes.TextureFormatR32Float,
	}
}

// WithSeed returns a copy of c pinned to seed.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = seed
	c.FixedSeed = true
	return c
}

// Validate checks c against the device limits.
func (c Config) Validate(limits gputypes.Limits) error {
	ceiling := min(int(limits.MaxTextureDimension3D), gpucore.MaxVolumeDimension)
	if c.Resolution <= 0 || c.Resolution > ceiling {
		return fmt.Errorf("%w: resolution %d outside [1, %d]", cloudfx.ErrInvalidDimension, c.Resolution, ceiling)
	}
	for i, d := range c.Divisions {
		if d <= 0 || d > c.Resolution {
			return fmt.Errorf("%w: layer %d divisions %d outside [1, %d]",
				cloudfx.ErrInvalidDimension, i, d, c.Resolution)
		}
	}
	switch c.Format {
	case gputypes.TextureFormatR32Float, gputypes.TextureFormatRGBA32Float:
	default:
		return fmt.Errorf("%w: unsupported volume format %s", cloudfx.ErrResourceAllocation, c.Format)
	}
	return nil
}

// resolve fills in the seed for one generation.
func (c Config) resolve(now func() time.Time) Config {
	if !c.FixedSeed {
		c.Seed = now().UnixMilli()
		c.FixedSeed = true
	}
	c.Weights = noise.NormalizeWeights(c.Weights)
	return c
}

func (c Config) noiseParams() noise.Params {
	return noise.Params{
		Size:      c.Resolution,
		Divisions: c.Divisions,
		Weights:   c.Weights,
		Invert:    c.GenerateCenters,
		Seed:      c.Seed,
	}
}
