package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/cloudfx"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func pngSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func smallNoise(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	_, err := execute(t, "noise", "generate", "-r", "8", "--divisions", "2,2,2", "--seed", "7", "-o", path)
	require.NoError(t, err)
	return path
}

func TestNoiseGenerateAndInfo(t *testing.T) {
	for _, name := range []string{"noise.exr", "noise.vol"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			out, err := execute(t, "noise", "generate", "-r", "8", "--divisions", "2,3,4", "--seed", "7", "--rgba", "-o", path)
			require.NoError(t, err)
			assert.Contains(t, out, "seed=7")
			assert.Contains(t, out, "x4")

			out, err = execute(t, "noise", "info", path)
			require.NoError(t, err)
			assert.Contains(t, out, "resolution: 8")
			assert.Contains(t, out, "channels:   4")
			assert.Contains(t, out, "divisions:  [2 3 4]")
			assert.Contains(t, out, "seed:       7")
		})
	}
}

func TestNoiseGenerateTimestamped(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "noise", "generate", "-r", "8", "--divisions", "2,2,2", "--dir", dir)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "CloudNoise_*.exr"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestNoiseGenerateAtlas(t *testing.T) {
	path := smallNoise(t, "atlas.png")
	w, h := pngSize(t, path)
	assert.Equal(t, 8, w)
	assert.Equal(t, 64, h)
}

func TestNoiseGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no output", []string{"noise", "generate", "-r", "8"}},
		{"two divisions", []string{"noise", "generate", "-r", "8", "--divisions", "2,2", "-o", "x.exr"}},
		{"out and dir", []string{"noise", "generate", "-o", "x.exr", "--dir", "d"}},
		{"divisions above resolution", []string{"noise", "generate", "-r", "4", "--divisions", "8,8,8", "-o", "x.exr"}},
		{"info missing file", []string{"noise", "info", "missing.vol"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestRender(t *testing.T) {
	noise := smallNoise(t, "noise.vol")
	out := filepath.Join(t.TempDir(), "clouds.png")

	stdout, err := execute(t, "render", "--width", "16", "--height", "9", "--noise", noise, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "16x9")

	w, h := pngSize(t, out)
	assert.Equal(t, 16, w)
	assert.Equal(t, 9, h)
}

func TestRenderWithConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cloudfx.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[cloud]
quality = 0.5

[noise]
resolution = 8
divisions = [2, 2, 2]
seed = 3
`), 0o600))
	out := filepath.Join(dir, "clouds.png")

	stdout, err := execute(t, "--config", cfgPath, "render", "--width", "12", "--height", "8", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "quality=0.50")
	assert.FileExists(t, out)
}

func TestRenderBadVector(t *testing.T) {
	_, err := execute(t, "render", "--sun", "1,2", "-o", filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorContains(t, err, "--sun needs 3 values")
}

func TestBlur(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	mask := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			src.Set(x, y, color.NRGBA{uint8(x * 32), uint8(y * 32), 128, 255})
			if x < 4 {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	in := filepath.Join(dir, "in.png")
	maskPath := filepath.Join(dir, "mask.png")
	writePNG(t, in, src)
	writePNG(t, maskPath, mask)

	tests := []struct {
		name   string
		args   []string
		masked bool
	}{
		{"unmasked", nil, false},
		{"masked", []string{"--mask", maskPath}, true},
		{"masked inverted", []string{"--mask", maskPath, "--invert", "--quality", "0.5"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.png")
			args := append([]string{"blur", in, "-o", out}, tt.args...)
			stdout, err := execute(t, args...)
			require.NoError(t, err)
			if tt.masked {
				assert.Contains(t, stdout, "masked=true")
			}

			got, err := cloudfx.LoadBuffer(out)
			require.NoError(t, err)
			assert.Equal(t, 8, got.Width())
			if tt.masked && len(tt.args) == 2 {
				// The unmasked right half is untouched.
				want := cloudfx.BufferFromImage(src).Pixel(6, 3)
				assert.True(t, got.Pixel(6, 3).ApproxEqual(want, 1.0/255), "pixel %v, want %v", got.Pixel(6, 3), want)
			}
		})
	}
}

func TestBlurErrors(t *testing.T) {
	_, err := execute(t, "blur", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, cloudfx.ErrIO)

	_, err = execute(t, "blur")
	assert.Error(t, err)
}

func TestVerboseLogsDevice(t *testing.T) {
	t.Cleanup(func() { cloudfx.SetLogger(nil) })

	cmd := newRootCmd()
	var stderr bytes.Buffer
	cmd.SetOut(io.Discard)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"-v", "render", "--width", "8", "--height", "6",
		"--noise", smallNoise(t, "noise.vol"), "-o", filepath.Join(t.TempDir(), "x.png")})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, stderr.String(), "gpucore: texture allocated")
	assert.Contains(t, stderr.String(), "level=DEBUG")
}

func TestConfigMissing(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "noise", "info", "x.vol")
	assert.ErrorIs(t, err, cloudfx.ErrIO)
}
