package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/cloud"
	"github.com/gogpu/cloudfx/volume"
)

var (
	skyZenith  = cloudfx.RGB(0.32, 0.52, 0.84)
	skyHorizon = cloudfx.RGB(0.78, 0.85, 0.92)
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		width, height int
		out           string
		noisePath     string
		quality       float32
		sun           []float32
		box           []float32
		eye           []float32
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one cloud frame over a sky gradient to PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for name, v := range map[string][]float32{"sun": sun, "box": box, "eye": eye} {
				if len(v) != 3 {
					return fmt.Errorf("--%s needs 3 values, got %d", name, len(v))
				}
			}
			cc := a.cfg.Cloud
			if cmd.Flags().Changed("quality") {
				cc.Quality = quality
			}

			dev := a.device()
			defer dev.Close()

			vc, err := a.cfg.Noise.Volume()
			if err != nil {
				return err
			}
			gen := volume.NewGenerator(dev, vc, volume.WithKernelCheck(a.compiler.Check))
			defer gen.Clear()
			if noisePath != "" {
				if _, err := gen.Load(noisePath); err != nil {
					return err
				}
			}

			pass := cloud.NewPass(cc, cloud.WithGenerator(gen), cloud.WithKernelCheck(a.compiler.Check))
			drv := cloudfx.NewDriver("clouds", pass, dev)
			if err := drv.Setup(cmd.Context()); err != nil {
				return err
			}
			defer drv.Cleanup()

			color := cloudfx.NewBuffer(width, height)
			sky(color)
			frame := &cloudfx.FrameContext{
				Color: color,
				Camera: cloudfx.NewPerspectiveCamera(
					mgl32.Vec3(eye), mgl32.Vec3{}, mgl32.Vec3{0, 1, 0},
					60, float32(width)/float32(height), 0.1, 1000),
				Bounds: &cloudfx.Transform{Scale: mgl32.Vec3(box)},
				Light:  &cloudfx.Light{Direction: mgl32.Vec3(sun), Color: cloudfx.White},
			}
			if !drv.Execute(cmd.Context(), frame) {
				return fmt.Errorf("render frame: %w", drv.Stats().LastError)
			}
			if err := color.SavePNG(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d quality=%.2f\n", out, width, height, cc.Quality)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&width, "width", 320, "image width")
	fl.IntVar(&height, "height", 180, "image height")
	fl.StringVarP(&out, "out", "o", "clouds.png", "output PNG")
	fl.StringVar(&noisePath, "noise", "", "noise volume to load (.exr or .vol) instead of generating one")
	fl.Float32Var(&quality, "quality", 1, "raymarch resolution scale in (0, 1]")
	fl.Float32SliceVar(&sun, "sun", []float32{0.3, 1, 0.2}, "direction toward the sun")
	fl.Float32SliceVar(&box, "box", []float32{8, 3, 8}, "cloud container size")
	fl.Float32SliceVar(&eye, "eye", []float32{0, 1, -9}, "camera position, looking at the origin")
	return cmd
}

// sky fills b with a vertical gradient.
func sky(b *cloudfx.Buffer) {
	h := b.Height()
	for y := range h {
		c := skyZenith.Lerp(skyHorizon, float32(y)/float32(max(h-1, 1)))
		for x := range b.Width() {
			b.SetPixel(x, y, c)
		}
	}
}
