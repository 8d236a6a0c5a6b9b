// Command demo flies a camera over a grid of cubes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vk-engine/app"
	"vk-engine/config"
	"vk-engine/internal/logging"
)

type flags struct {
	configPath string
	width      int
	height     int
	validation bool
	vsync      bool
	frames     int
	logLevel   string
}

func newRootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "demo",
		Short:         "Render a grid of cubes with Vulkan",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cfg, f.frames)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "TOML or YAML config file")
	cmd.Flags().IntVar(&f.width, "width", 0, "window width, overrides the config")
	cmd.Flags().IntVar(&f.height, "height", 0, "window height, overrides the config")
	cmd.Flags().BoolVar(&f.validation, "validation", false, "enable the Khronos validation layer")
	cmd.Flags().BoolVar(&f.vsync, "vsync", false, "present with FIFO")
	cmd.Flags().IntVar(&f.frames, "frames", 0, "stop after this many frames, 0 runs until the window closes")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	return cmd
}

// loadConfig reads the config file when given and applies the flags the
// user actually set on top of it.
func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return cfg, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("width") {
		cfg.Window.Width = f.width
	}
	if changed("height") {
		cfg.Window.Height = f.height
	}
	if changed("validation") {
		cfg.Vulkan.Validation = f.validation
	}
	if changed("vsync") {
		cfg.Vulkan.VSync = f.vsync
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}

	return cfg, cfg.Validate()
}

func run(cfg config.Config, frames int) error {
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	a, err := app.Build(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer a.Close()

	if err := a.Run(frames); err != nil {
		logger.Error("frame failed", "error", err)
		return err
	}
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}
}
