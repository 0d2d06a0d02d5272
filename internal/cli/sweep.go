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

// SweepOptions holds flags for the sweep command.
type SweepOptions struct {
	*RootOptions
	Tiles []int
}

func newSweepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SweepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Compare several tile sizes against one naive baseline",
		Long: `Time the naive kernel once, then the tiled kernel for each tile size.

Every tile size must divide the matrix dimension. Without --tiles the
config file's tiles are used, falling back to --tile. --tile is not
checked when tiles are given.

Example:
  tilebench sweep --size 1024 --tiles 8,16,32,64,128`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, opts)
		},
	}

	cmd.Flags().IntSliceVar(&opts.Tiles, "tiles", nil, "comma-separated tile sizes")

	return cmd
}

func runSweep(cmd *cobra.Command, opts *SweepOptions) error {
	cfg, err := resolveConfig(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	var tiles []int
	if cmd.Flags().Changed("tiles") {
		tiles = opts.Tiles
	}
	h, err := newSweepHarness(cfg, tiles, opts.RootOptions)
	if err != nil {
		return err
	}

	opts.logger.Debug("starting sweep", "size", cfg.Size, "tiles", h.Config().Tiles)
	report, runErr := h.Sweep(nil)
	if report != nil {
		if err := bench.RenderSweep(cmd.OutOrStdout(), report, cfg.Format); err != nil {
			return WrapExitError(ExitFailure, "failed to write report", err)
		}
	}
	return classify(runErr)
}
