package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/cloudfx/shader"
)

func newKernelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kernels",
		Short: "Compile the embedded WGSL kernels to SPIR-V",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			results := a.compiler.CompileAll()
			w := cmd.OutOrStdout()
			failed := 0
			for _, name := range shader.Names() {
				if err := results[name]; err != nil {
					failed++
					fmt.Fprintf(w, "%-10s FAIL %v\n", name, err)
					continue
				}
				words, _ := a.compiler.Compile(name)
				fmt.Fprintf(w, "%-10s ok   %d words\n", name, len(words))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d kernels failed", failed, len(results))
			}
			return nil
		},
	}
}
