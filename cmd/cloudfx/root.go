package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gogpu/cloudfx"
	"github.com/gogpu/cloudfx/config"
	"github.com/gogpu/cloudfx/gpucore"
	"github.com/gogpu/cloudfx/shader"
)

// app holds the state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool
	workers    int

	cfg      *config.File
	compiler *shader.Compiler
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "cloudfx",
		Short:         "Volumetric clouds and mask-aware blur",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	f := root.PersistentFlags()
	f.StringVarP(&a.configPath, "config", "c", "", "TOML settings file")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	f.IntVar(&a.workers, "workers", 0, "CPU device workers (0 = GOMAXPROCS)")

	root.AddCommand(
		newNoiseCmd(a),
		newRenderCmd(a),
		newBlurCmd(a),
		newKernelsCmd(a),
		newDevicesCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	l := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	cloudfx.SetLogger(l)

	a.cfg = config.Default()
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	a.compiler = shader.NewCompiler()
	return nil
}

func (a *app) device() *gpucore.CPUDevice {
	return gpucore.NewCPUDevice(gpucore.WithWorkers(a.workers))
}
