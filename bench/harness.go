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

// Package bench times the naive and tiled matmul kernels against each other.
//
// A Harness is built from a validated Config, by New for Run or by NewSweep
// for Sweep. Run allocates the operands, times each kernel once with a
// monotonic clock, derives throughput and speedup, and cross-checks the two
// outputs:
//
//	h, err := bench.New(bench.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	report, err := h.Run()
//
// Kernels run sequentially on the calling goroutine.
package bench

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ajroetker/tilebench/internal/cpuinfo"
	"github.com/ajroetker/tilebench/matmul"
)

// Clock is the time source used to measure kernels. Readings must carry a
// monotonic component; time.Now does.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a Harness.
type Option func(*Harness)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(h *Harness) { h.clock = c }
}

// WithLogger sets the logger. By default the harness logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithHost overrides the detected host description.
func WithHost(info cpuinfo.Info) Option {
	return func(h *Harness) { h.host = &info }
}

// WithRunID sets the report identifier instead of a generated UUIDv7.
func WithRunID(id string) Option {
	return func(h *Harness) { h.runID = id }
}

// Harness runs the benchmark for one configuration.
type Harness struct {
	cfg    Config
	clock  Clock
	logger *slog.Logger
	host   *cpuinfo.Info
	runID  string

	// Kernels under test; replaced in tests.
	naive func(a, b, c *matmul.Matrix)
	tiled func(a, b, c *matmul.Matrix, tile int)
}

// New validates cfg for Run and returns a Harness for it.
func New(cfg Config, opts ...Option) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newHarness(cfg, opts), nil
}

// NewSweep validates cfg for a sweep over tiles and returns a Harness whose
// Sweep(nil) runs exactly those tiles. Tile is not checked unless it is the
// fallback, so Run on the result may report ErrInvalidConfig.
func NewSweep(cfg Config, tiles []int, opts ...Option) (*Harness, error) {
	if err := cfg.ValidateSweep(tiles); err != nil {
		return nil, err
	}
	cfg.Tiles = cfg.SweepTiles(tiles)
	return newHarness(cfg, opts), nil
}

func newHarness(cfg Config, opts []Option) *Harness {
	h := &Harness{
		cfg:    cfg,
		clock:  systemClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		naive:  matmul.NaiveMatMul,
		tiled:  matmul.TiledMatMul,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.host == nil {
		info := cpuinfo.Detect()
		h.host = &info
	}
	if h.runID == "" {
		h.runID = uuid.Must(uuid.NewV7()).String()
	}
	return h
}

// Config returns the validated configuration.
func (h *Harness) Config() Config {
	return h.cfg
}

// Run times the naive kernel and then the tiled kernel on the same operands,
// each writing to its own output matrix.
//
// If verification is enabled and the outputs disagree, the full report is
// returned together with an error wrapping ErrVerificationFailed.
func (h *Harness) Run() (*Report, error) {
	n, tile := h.cfg.Size, h.cfg.Tile
	if err := matmul.CheckTile(n, tile); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	flops := matmul.FLOPs(n)

	h.logger.Debug("allocating matrices", "n", n, "bytes", 4*4*n*n)
	a := matmul.New(n, h.cfg.FillA)
	b := matmul.New(n, h.cfg.FillB)
	cNaive := matmul.New(n, 0)
	// The tiled kernel accumulates into its output, which must start at zero.
	cTiled := matmul.New(n, 0)

	naive := h.measure(KernelNaive, flops, func() { h.naive(a, b, cNaive) })
	tiled := h.measure(KernelTiled, flops, func() { h.tiled(a, b, cTiled, tile) })

	r := &Report{
		RunID:  h.runID,
		Size:   n,
		Tile:   tile,
		FLOPs:  flops,
		GFLOPs: GFLOPs(flops),
		Naive:  naive,
		Tiled:  tiled,
		Host:   *h.host,
	}
	r.Speedup, r.SpeedupValid = Speedup(naive, tiled)
	if r.SpeedupValid {
		h.logger.Info("speedup", "naive_over_tiled", r.Speedup)
	} else {
		h.logger.Warn("speedup unmeasurable: a kernel finished below clock resolution")
	}

	if h.cfg.Verify {
		r.Verification = h.verify(cNaive, cTiled, tile)
		if !r.Verification.Passed {
			return r, fmt.Errorf("%w: %d of %d cells differ (tile %d)",
				ErrVerificationFailed, r.Verification.Mismatches, r.Verification.Cells, tile)
		}
	}
	return r, nil
}

func (h *Harness) measure(name string, flops uint64, kernel func()) KernelResult {
	h.logger.Debug("running kernel", "kernel", name)
	start := h.clock.Now()
	kernel()
	elapsed := h.clock.Now().Sub(start)

	r := NewKernelResult(name, elapsed, flops)
	if !r.Measurable {
		h.logger.Warn("kernel elapsed time not measurable", "kernel", name, "elapsed", elapsed)
		return r
	}
	h.logger.Info("kernel finished", "kernel", name, "elapsed", elapsed, "gflops_per_sec", r.GFLOPS)
	return r
}

func (h *Harness) verify(want, got *matmul.Matrix, tile int) Verification {
	v := Compare(want, got, h.cfg.Tolerance)
	if v.Passed {
		h.logger.Debug("verification passed", "tile", tile, "max_abs_diff", v.MaxAbsDiff)
		return v
	}
	h.logger.Error("verification failed",
		"tile", tile,
		"mismatches", v.Mismatches,
		"row", v.First.Row,
		"col", v.First.Col,
		"naive", v.First.Naive,
		"tiled", v.First.Tiled,
	)
	return v
}
