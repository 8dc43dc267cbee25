package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/blur"
)

func newBlurCmd(a *app) *cobra.Command {
	var (
		out      string
		maskPath string
		invert   bool
		radius   float32
		quality  float32
		texture  string
	)
	cmd := &cobra.Command{
		Use:   "blur IMAGE",
		Short: "Blur an image, optionally through a luminance mask",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bc := a.cfg.Blur
			fl := cmd.Flags()
			if fl.Changed("radius") {
				bc.Radius = radius
			}
			if fl.Changed("quality") {
				bc.Quality = quality
			}
			if fl.Changed("invert") {
				bc.InvertMask = invert
			}
			if texture != "" {
				bc.UseTexture = true
				bc.TexturePath = texture
			}

			src, err := cloudfx.LoadBuffer(args[0])
			if err != nil {
				return err
			}
			frame := &cloudfx.FrameContext{Color: src}
			if maskPath != "" {
				img, err := cloudfx.LoadBuffer(maskPath)
				if err != nil {
					return err
				}
				bc.UseMask = true
				if bc.LayerMask == 0 {
					bc.LayerMask = 1
				}
				frame.Masks = cloudfx.StaticMask(cloudfx.NewMaskFromLuminance(img), bc.LayerMask)
			}

			dev := a.device()
			defer dev.Close()
			drv := cloudfx.NewDriver("blur", blur.NewPass(bc, blur.WithKernelCheck(a.compiler.Check)), dev)
			if err := drv.Setup(cmd.Context()); err != nil {
				return err
			}
			defer drv.Cleanup()
			if !drv.Execute(cmd.Context(), frame) {
				return fmt.Errorf("blur frame: %w", drv.Stats().LastError)
			}
			if err := src.SavePNG(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d radius=%.2f masked=%v\n",
				out, src.Width(), src.Height(), bc.Radius, bc.UseMask)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&out, "out", "o", "blurred.png", "output PNG")
	fl.StringVar(&maskPath, "mask", "", "mask image; white pixels are blurred")
	fl.BoolVar(&invert, "invert", false, "blur the black side of the mask instead")
	fl.Float32Var(&radius, "radius", 4, "blur radius")
	fl.Float32Var(&quality, "quality", 1, "downsample scale in [0.1, 1]")
	fl.StringVar(&texture, "texture", "", "overlay texture blended into the blurred region")
	return cmd
}
