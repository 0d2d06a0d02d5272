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

package bench

import (
	"time"

	"github.com/ajroetker/tilebench/internal/cpuinfo"
)

// Kernel names used in results.
const (
	KernelNaive = "naive"
	KernelTiled = "tiled"
)

// KernelResult is the timing of a single kernel invocation.
//
// A kernel whose elapsed time is not positive is below the resolution of
// the clock: Measurable is false and GFLOPS is left at zero instead of
// dividing by zero.
type KernelResult struct {
	Name       string        `json:"name"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Seconds    float64       `json:"seconds"`
	GFLOPS     float64       `json:"gflops_per_sec"`
	Measurable bool          `json:"measurable"`
}

// NewKernelResult derives throughput from an elapsed time and the total
// operation count of the multiply.
func NewKernelResult(name string, elapsed time.Duration, flops uint64) KernelResult {
	r := KernelResult{Name: name, Elapsed: elapsed}
	if elapsed <= 0 {
		return r
	}
	r.Seconds = elapsed.Seconds()
	r.GFLOPS = GFLOPs(flops) / r.Seconds
	r.Measurable = true
	return r
}

// GFLOPs scales an operation count to billions.
func GFLOPs(flops uint64) float64 {
	return float64(flops) / 1e9
}

// Speedup returns naive time over tiled time. ok is false when either
// kernel was unmeasurable.
func Speedup(naive, tiled KernelResult) (speedup float64, ok bool) {
	if !naive.Measurable || !tiled.Measurable {
		return 0, false
	}
	return naive.Seconds / tiled.Seconds, true
}

// Report is the outcome of Harness.Run.
type Report struct {
	RunID        string       `json:"run_id"`
	Size         int          `json:"size"`
	Tile         int          `json:"tile"`
	FLOPs        uint64       `json:"flops"`
	GFLOPs       float64      `json:"gflops"`
	Naive        KernelResult `json:"naive"`
	Tiled        KernelResult `json:"tiled"`
	Speedup      float64      `json:"speedup"`
	SpeedupValid bool         `json:"speedup_valid"`
	Verification Verification `json:"verification"`
	Host         cpuinfo.Info `json:"host"`
}

// TileResult is one tiled configuration of a sweep.
type TileResult struct {
	Tile         int          `json:"tile"`
	Kernel       KernelResult `json:"kernel"`
	Speedup      float64      `json:"speedup"`
	SpeedupValid bool         `json:"speedup_valid"`
	Verification Verification `json:"verification"`
}

// SweepReport is the outcome of Harness.Sweep: one naive baseline and one
// result per tile size, in ascending tile order.
type SweepReport struct {
	RunID  string       `json:"run_id"`
	Size   int          `json:"size"`
	FLOPs  uint64       `json:"flops"`
	GFLOPs float64      `json:"gflops"`
	Naive  KernelResult `json:"naive"`
	Tiles  []TileResult `json:"tiles"`
	// BestTile is the tile with the highest valid speedup, or 0 if no
	// speedup was measurable.
	BestTile int          `json:"best_tile"`
	Host     cpuinfo.Info `json:"host"`
}
