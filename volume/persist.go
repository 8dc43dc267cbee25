package volume

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/cloudfx"
)

// Save writes the live field to path, choosing the format by extension:
// ".exr", ".vol" or ".png". Save is a no-op when no field is held.
// Failures wrap cloudfx.ErrIO and leave the live field untouched.
func (g *Generator) Save(path string) error {
	f := g.Current()
	if f == nil {
		return nil
	}
	return f.Save(path)
}

// SaveTimestamped writes the live field as OpenEXR into dir, creating dir
// if needed, under the name CloudNoise_YYYY-MM-DD_HH_MM_SS.exr. It returns
// the written path, or "" when no field is held.
func (g *Generator) SaveTimestamped(dir string) (string, error) {
	f := g.Current()
	if f == nil {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", cloudfx.ErrIO, dir, err)
	}
	name := "CloudNoise_" + g.now().Format("2006-01-02_15_04_05") + ".exr"
	path := filepath.Join(dir, name)
	if err := f.Save(path); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a field saved as ".exr" or ".vol" and installs it as the live
// field. On error the live field is unchanged.
func (g *Generator) Load(path string) (*Field, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := g.Install(f); err != nil {
		return nil, err
	}
	return g.Current(), nil
}

// Save writes f to path, choosing the format by extension.
func (f *Field) Save(path string) error {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".exr":
		err = writeEXR(path, f)
	case ".vol":
		err = writeContainer(path, f)
	case ".png":
		err = writePNGAtlas(path, f)
	default:
		return fmt.Errorf("%w: unknown volume extension %q", cloudfx.ErrIO, ext)
	}
	if err != nil {
		return fmt.Errorf("%w: save %s: %v", cloudfx.ErrIO, path, err)
	}
	cloudfx.Logger().Info("volume: field saved", "path", path, "resolution", f.size, "seed", f.cfg.Seed)
	return nil
}

// Load reads a field saved as ".exr" or ".vol". The field is not attached
// to a device.
func Load(path string) (*Field, error) {
	var (
		f   *Field
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".exr":
		f, err = readEXR(path)
	case ".vol":
		f, err = readContainer(path)
	default:
		return nil, fmt.Errorf("%w: cannot load volume extension %q", cloudfx.ErrIO, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", cloudfx.ErrIO, path, err)
	}
	cloudfx.Logger().Info("volume: field loaded", "path", path, "resolution", f.size, "seed", f.cfg.Seed)
	return f, nil
}
