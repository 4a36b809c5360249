// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"io"
	"os"

	"spectrum/internal/config"
	applog "spectrum/internal/log"
	"spectrum/pkg/build"

	"github.com/spf13/cobra"
)

// options holds the persistent flags and the configuration they override.
type options struct {
	configPath string
	windowSize int
	timeScale  int
	kernel     string
	channel    int
	verbose    bool
	bins       bool
	bands      bool

	cfg *config.Config
}

// NewRootCommand builds the command tree. Analysis output goes to stdout,
// diagnostics to stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	buildInfo := build.GetBuildFlags()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         build.Description,
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(
		newSummaryCommand(opts),
		newFFTCommand(opts),
		newPFFTCommand(opts),
		newServeCommand(opts),
	)

	// Configuration
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to a YAML config file (default: ./"+config.DefaultPath+" when present)")

	// Analysis Configuration
	rootCmd.PersistentFlags().IntVarP(&opts.windowSize, "window", "w", config.DefaultWindowSize,
		"Samples per transform, must be even. 0 picks a power of two covering the input")
	rootCmd.PersistentFlags().IntVarP(&opts.timeScale, "time-scale", "t", config.DefaultTimeScale,
		"Segments per second for the segmented transform (1-1000)")
	rootCmd.PersistentFlags().StringVarP(&opts.kernel, "kernel", "k", config.DefaultKernel,
		"Transform backend: gonum or godsp")
	rootCmd.PersistentFlags().IntVar(&opts.channel, "channel", -1,
		"Only report this channel (-1 for all; serve defaults to analysis.channel)")
	rootCmd.PersistentFlags().BoolVar(&opts.bins, "bins", false,
		"Print every bin instead of the peak")
	rootCmd.PersistentFlags().BoolVar(&opts.bands, "bands", false,
		"Print the level of each frequency band instead of the peak")

	// Debug Configuration
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show verbose output")

	return rootCmd
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	rootCmd := NewRootCommand(os.Stdout, os.Stderr)
	rootCmd.SetArgs(os.Args[1:])
	return rootCmd.Execute()
}

// load reads the configuration, lets explicitly set flags override it and
// applies the log level.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("window") {
		cfg.Analysis.WindowSize = o.windowSize
	}
	if flags.Changed("time-scale") {
		cfg.Analysis.TimeScale = o.timeScale
	}
	if flags.Changed("kernel") {
		cfg.Analysis.Kernel = o.kernel
	}
	if flags.Changed("channel") && o.channel >= 0 {
		cfg.Analysis.Channel = o.channel
	}
	if o.verbose {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	applog.SetLevel(cfg.Level())
	o.cfg = cfg
	return nil
}
