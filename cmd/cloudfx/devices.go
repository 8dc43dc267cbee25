package main

import (
	"fmt"

	"github.com/spf13/cobra"
	// Registers the Vulkan, Metal and DX12 HAL backends for probing.
	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/cloudfx/gpucore"
)

func newDevicesCmd(a *app) *cobra.Command {
	var highPerf bool
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Describe the CPU device and probe for a hardware adapter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			dev := a.device()
			defer dev.Close()
			info, limits := dev.Info(), dev.Limits()
			fmt.Fprintf(w, "cpu:      %s (%s)\n", info.Name, info.Type)
			fmt.Fprintf(w, "  max 3D texture:     %d\n", limits.MaxTextureDimension3D)
			fmt.Fprintf(w, "  max 2D texture:     %d\n", limits.MaxTextureDimension2D)

			report, err := gpucore.ProbeAdapter(highPerf)
			if err != nil {
				fmt.Fprintf(w, "hardware: none (%v)\n", err)
				return nil
			}
			fmt.Fprintf(w, "hardware: %s (%s)\n", report.Info.Name, report.Info.Backend)
			fmt.Fprintf(w, "  max 3D texture:     %d\n", report.Limits.MaxTextureDimension3D)
			fmt.Fprintf(w, "  max workgroup size: %d\n", report.Limits.MaxComputeInvocationsPerWorkgroup)
			return nil
		},
	}
	cmd.Flags().BoolVar(&highPerf, "high-performance", false, "prefer a discrete adapter")
	return cmd
}
