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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajroetker/tilebench/bench"
	"github.com/ajroetker/tilebench/internal/cpuinfo"
)

func newCPUInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "cpuinfo",
		Short:         "Print the CPU features detected on this host",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			info := cpuinfo.Detect()
			switch format {
			case bench.FormatText:
				cpuinfo.Fprint(cmd.OutOrStdout(), info)
				return nil
			case bench.FormatJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(info); err != nil {
					return WrapExitError(ExitFailure, "failed to write report", err)
				}
				return nil
			}
			return WrapExitError(ExitCommandError, "invalid configuration",
				fmt.Errorf("%w: cpuinfo format %q must be %s or %s",
					bench.ErrInvalidConfig, format, bench.FormatText, bench.FormatJSON))
		},
	}
}
