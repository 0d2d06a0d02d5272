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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/ajroetker/tilebench/bench"
)

func newRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Benchmark the naive and tiled kernels for one tile size",
		Long: `Benchmark the naive and tiled kernels for one tile size.

Example:
  tilebench run
  tilebench run --size 2048 --tile 64
  tilebench run --config bench.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, opts)
		},
	}
}

func runBenchmark(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	h, err := newHarness(cfg, opts)
	if err != nil {
		return err
	}

	opts.logger.Debug("starting benchmark", "size", cfg.Size, "tile", cfg.Tile)
	report, runErr := h.Run()
	if report != nil {
		if err := bench.Render(cmd.OutOrStdout(), report, cfg.Format); err != nil {
			return WrapExitError(ExitFailure, "failed to write report", err)
		}
	}
	return classify(runErr)
}
