// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli implements the tilebench command line.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajroetker/tilebench/bench"
	"github.com/ajroetker/tilebench/matmul"
)

// RootOptions holds the flags shared by all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "bench"
	ConfigPath string

	Size      int
	Tile      int
	FillA     float32
	FillB     float32
	NoVerify  bool
	Tolerance float64

	// HarnessOptions are appended to the harness options (for testing).
	HarnessOptions []bench.Option

	logger *slog.Logger
}

// NewRootCommand creates the root command for the tilebench CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tilebench",
		Short: "Measure the speedup of cache-blocked matrix multiplication",
		Long: `tilebench multiplies two square float32 matrices twice, once with the
naive i-j-k triple loop and once with a six-loop tiled kernel, and reports
the time, throughput and speedup of each.

Run without a subcommand to benchmark the default 1024x1024 problem with
32x32 tiles. The tile size must divide the matrix dimension.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.logger = newLogger(cmd, opts.Verbose)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "log progress to stderr")
	pf.StringVar(&opts.Format, "format", bench.FormatText, "output format (text|json|bench)")
	pf.StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")
	pf.IntVarP(&opts.Size, "size", "n", bench.DefaultSize, "matrix dimension N")
	pf.IntVarP(&opts.Tile, "tile", "t", matmul.DefaultTile, "tile size T, must divide N")
	pf.Float32Var(&opts.FillA, "fill-a", bench.DefaultFillA, "value every element of A is set to")
	pf.Float32Var(&opts.FillB, "fill-b", bench.DefaultFillB, "value every element of B is set to")
	pf.BoolVar(&opts.NoVerify, "no-verify", false, "skip comparing the tiled result with the naive result")
	pf.Float64Var(&opts.Tolerance, "tolerance", bench.DefaultTolerance, "allowed relative difference per output cell")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newSweepCommand(opts))
	cmd.AddCommand(newCPUInfoCommand())

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	// Warn keeps stderr quiet on a normal run.
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// resolveConfig layers the config file over the defaults and explicitly set
// flags over the file. The result is validated by the harness constructor,
// since run and sweep check different tile sizes.
func resolveConfig(cmd *cobra.Command, opts *RootOptions) (bench.Config, error) {
	cfg := bench.DefaultConfig()
	if opts.ConfigPath != "" {
		var err error
		cfg, err = bench.LoadConfig(opts.ConfigPath)
		if err != nil {
			return bench.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.Size = opts.Size
	}
	if flags.Changed("tile") {
		cfg.Tile = opts.Tile
	}
	if flags.Changed("fill-a") {
		cfg.FillA = opts.FillA
	}
	if flags.Changed("fill-b") {
		cfg.FillB = opts.FillB
	}
	if flags.Changed("no-verify") {
		cfg.Verify = !opts.NoVerify
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance = opts.Tolerance
	}
	if flags.Changed("format") {
		cfg.Format = opts.Format
	}

	return cfg, nil
}

func (o *RootOptions) harnessOptions() []bench.Option {
	return append([]bench.Option{bench.WithLogger(o.logger)}, o.HarnessOptions...)
}

func newHarness(cfg bench.Config, opts *RootOptions) (*bench.Harness, error) {
	h, err := bench.New(cfg, opts.harnessOptions()...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return h, nil
}

func newSweepHarness(cfg bench.Config, tiles []int, opts *RootOptions) (*bench.Harness, error) {
	h, err := bench.NewSweep(cfg, tiles, opts.harnessOptions()...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return h, nil
}

// classify maps harness errors to exit codes.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bench.ErrVerificationFailed):
		return WrapExitError(ExitFailure, "verification failed", err)
	case errors.Is(err, bench.ErrInvalidConfig):
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return WrapExitError(ExitFailure, "benchmark failed", err)
}
