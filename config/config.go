package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/volume"
)

// ErrInvalid reports a parameter outside its allowed range.
var ErrInvalid = errors.New("config: invalid value")

// RGBA is a linear color as stored in TOML: [r, g, b, a].
type RGBA [4]float32

// Color converts c.
func (c RGBA) Color() cloudfx.Color { return cloudfx.RGBA(c[0], c[1], c[2], c[3]) }

// Cloud parameters for the cloud pass.
type Cloud struct {
	CloudOffset                 [3]float32 `toml:"cloud_offset"`
	CloudScale                  float32    `toml:"cloud_scale"`
	DensityThreshold            float32    `toml:"density_threshold"`
	DensityMultiplier           float32    `toml:"density_multiplier"`
	DarknessThreshold           float32    `toml:"darkness_threshold"`
	StepSize                    float32    `toml:"step_size"`
	LightAbsorptionTowardSun    float32    `toml:"light_absorption_toward_sun"`
	LightAbsorptionThroughCloud float32    `toml:"light_absorption_through_cloud"`
	LightSteps                  int        `toml:"light_steps"`
	BlurRadius                  float32    `toml:"blur_radius"`
	// Quality is the resolution scale of the raymarch buffer, in (0, 1].
	Quality  float32 `toml:"quality"`
	UseDepth bool    `toml:"use_depth"`
}

// DefaultCloud returns the cloud defaults.
func DefaultCloud() Cloud {
	return Cloud{
		CloudScale:                  1,
		DensityThreshold:            0.5,
		DensityMultiplier:           5,
		DarknessThreshold:           0.15,
		StepSize:                    0.25,
		LightAbsorptionTowardSun:    1,
		LightAbsorptionThroughCloud: 1,
		LightSteps:                  8,
		BlurRadius:                  4,
		Quality:                     1,
		UseDepth:                    true,
	}
}

// Validate checks ranges.
func (c Cloud) Validate() error {
	switch {
	case c.Quality <= 0 || c.Quality > 1:
		return fmt.Errorf("%w: cloud quality %v outside (0, 1]", ErrInvalid, c.Quality)
	case c.StepSize <= 0:
		return fmt.Errorf("%w: cloud step_size %v must be positive", ErrInvalid, c.StepSize)
	case c.LightSteps < 0:
		return fmt.Errorf("%w: cloud light_steps %d is negative", ErrInvalid, c.LightSteps)
	case c.DarknessThreshold < 0 || c.DarknessThreshold > 1:
		return fmt.Errorf("%w: cloud darkness_threshold %v outside [0, 1]", ErrInvalid, c.DarknessThreshold)
	case c.BlurRadius < 0:
		return fmt.Errorf("%w: cloud blur_radius %v is negative", ErrInvalid, c.BlurRadius)
	case c.DensityMultiplier < 0 || c.LightAbsorptionTowardSun < 0 || c.LightAbsorptionThroughCloud < 0:
		return fmt.Errorf("%w: cloud density and absorption factors must be non-negative", ErrInvalid)
	}
	return nil
}

// Blur parameters for the mask-aware blur pass.
type Blur struct {
	Radius float32 `toml:"radius"`
	// Quality is the resolution scale of the blur buffers, in [0.1, 1].
	Quality    float32 `toml:"quality"`
	UseMask    bool    `toml:"use_mask"`
	LayerMask  uint32  `toml:"layer_mask"`
	InvertMask bool    `toml:"invert_mask"`

	UseTexture            bool    `toml:"use_texture"`
	TexturePath           string  `toml:"texture_path,omitempty"`
	TextureSize           [2]int  `toml:"texture_size"`
	TextureWeight         float32 `toml:"texture_weight"`
	MaskOnTextureStrength int     `toml:"mask_on_texture_strength"`

	ColorAdd         RGBA    `toml:"color_add"`
	ColorMult        RGBA    `toml:"color_mult"`
	BackingColor     RGBA    `toml:"backing_color"`
	MinimumLightness float32 `toml:"minimum_lightness"`
}

// DefaultBlur returns the blur defaults.
func DefaultBlur() Blur {
	return Blur{
		Radius:                4,
		Quality:               1,
		TextureSize:           [2]int{512, 512},
		TextureWeight:         1,
		MaskOnTextureStrength: 1,
		ColorMult:             RGBA{1, 1, 1, 1},
	}
}

// Validate checks ranges.
func (b Blur) Validate() error {
	switch {
	case b.Radius < 0:
		return fmt.Errorf("%w: blur radius %v is negative", ErrInvalid, b.Radius)
	case b.Quality < 0.1 || b.Quality > 1:
		return fmt.Errorf("%w: blur quality %v outside [0.1, 1]", ErrInvalid, b.Quality)
	case b.MinimumLightness < 0 || b.MinimumLightness > 1:
		return fmt.Errorf("%w: blur minimum_lightness %v outside [0, 1]", ErrInvalid, b.MinimumLightness)
	case b.MaskOnTextureStrength < 0 || b.MaskOnTextureStrength > 10:
		return fmt.Errorf("%w: blur mask_on_texture_strength %d outside [0, 10]", ErrInvalid, b.MaskOnTextureStrength)
	case b.UseTexture && (b.TextureSize[0] <= 0 || b.TextureSize[1] <= 0):
		return fmt.Errorf("%w: blur texture_size %v must be positive", ErrInvalid, b.TextureSize)
	}
	return nil
}

// Noise parameters for the volume generator.
type Noise struct {
	Resolution int        `toml:"resolution"`
	Divisions  [3]int     `toml:"divisions"`
	Weights    [3]float32 `toml:"weights"`
	Centers    bool       `toml:"generate_centers"`
	// Seed pins generation when set; otherwise a time seed is used.
	Seed *int64 `toml:"seed,omitempty"`
	// Format is "r32float" or "rgba32float".
	Format string `toml:"format"`
}

// DefaultNoise returns the noise defaults.
func DefaultNoise() Noise {
	d := volume.DefaultConfig()
	return Noise{
		Resolution: d.Resolution,
		Divisions:  d.Divisions,
		Weights:    d.Weights,
		Format:     "r32float",
	}
}

// Volume converts n to a generator configuration.
func (n Noise) Volume() (volume.Config, error) {
	cfg := volume.Config{
		Resolution:      n.Resolution,
		Divisions:       n.Divisions,
		Weights:         n.Weights,
		GenerateCenters: n.Centers,
	}
	switch n.Format {
	case "", "r32float":
		cfg.Format = gputypes.TextureFormatR32Float
	case "rgba32float":
		cfg.Format = gputypes.TextureFormatRGBA32Float
	default:
		return cfg, fmt.Errorf("%w: noise format %q", ErrInvalid, n.Format)
	}
	if n.Seed != nil {
		cfg = cfg.WithSeed(*n.Seed)
	}
	return cfg, nil
}

// Validate checks ranges the generator cannot check without a device.
func (n Noise) Validate() error {
	if _, err := n.Volume(); err != nil {
		return err
	}
	if n.Resolution <= 0 {
		return fmt.Errorf("%w: noise resolution %d must be positive", ErrInvalid, n.Resolution)
	}
	for i, d := range n.Divisions {
		if d <= 0 || d > n.Resolution {
			return fmt.Errorf("%w: noise divisions[%d] %d outside [1, %d]", ErrInvalid, i, d, n.Resolution)
		}
	}
	return nil
}

// File is the full configuration file.
type File struct {
	Cloud Cloud `toml:"cloud"`
	Blur  Blur  `toml:"blur"`
	Noise Noise `toml:"noise"`
}

// Default returns a File with every section at its defaults.
func Default() *File {
	return &File{Cloud: DefaultCloud(), Blur: DefaultBlur(), Noise: DefaultNoise()}
}

// Validate checks every section.
func (f *File) Validate() error {
	return errors.Join(f.Cloud.Validate(), f.Blur.Validate(), f.Noise.Validate())
}

// Parse decodes TOML over the defaults, so omitted keys keep their default
// values. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	f := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("config: line %d column %d: %w", row, col, err)
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads and parses path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cloudfx.ErrIO, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Marshal encodes f as TOML.
func (f *File) Marshal() ([]byte, error) {
	return toml.Marshal(f)
}

// Save writes f to path.
func (f *File) Save(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", cloudfx.ErrIO, err)
	}
	return nil
}
