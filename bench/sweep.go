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
	"fmt"

	"github.com/samber/lo"

	"github.com/ajroetker/tilebench/matmul"
)

// Sweep times the naive kernel once and then the tiled kernel for every
// tile size in tiles, each against a fresh zeroed output.
//
// The tile sizes are chosen by Config.SweepTiles. Every tile is checked
// against the matrix dimension before any kernel runs.
func (h *Harness) Sweep(tiles []int) (*SweepReport, error) {
	n := h.cfg.Size
	tiles = h.cfg.SweepTiles(tiles)
	for _, t := range tiles {
		if err := matmul.CheckTile(n, t); err != nil {
			return nil, fmt.Errorf("%w: sweep tile: %w", ErrInvalidConfig, err)
		}
	}

	flops := matmul.FLOPs(n)
	h.logger.Debug("allocating matrices", "n", n, "tiles", tiles)
	a := matmul.New(n, h.cfg.FillA)
	b := matmul.New(n, h.cfg.FillB)
	cNaive := matmul.New(n, 0)
	cTiled := matmul.New(n, 0)

	naive := h.measure(KernelNaive, flops, func() { h.naive(a, b, cNaive) })

	r := &SweepReport{
		RunID:  h.runID,
		Size:   n,
		FLOPs:  flops,
		GFLOPs: GFLOPs(flops),
		Naive:  naive,
		Host:   *h.host,
	}

	var failed []int
	for _, tile := range tiles {
		cTiled.Fill(0)
		name := fmt.Sprintf("%s/tile=%d", KernelTiled, tile)
		res := TileResult{
			Tile:   tile,
			Kernel: h.measure(name, flops, func() { h.tiled(a, b, cTiled, tile) }),
		}
		res.Speedup, res.SpeedupValid = Speedup(naive, res.Kernel)
		if h.cfg.Verify {
			res.Verification = h.verify(cNaive, cTiled, tile)
			if !res.Verification.Passed {
				failed = append(failed, tile)
			}
		}
		r.Tiles = append(r.Tiles, res)
	}

	valid := lo.Filter(r.Tiles, func(t TileResult, _ int) bool { return t.SpeedupValid })
	if len(valid) > 0 {
		best := lo.MaxBy(valid, func(a, b TileResult) bool { return a.Speedup > b.Speedup })
		r.BestTile = best.Tile
		h.logger.Info("best tile", "tile", best.Tile, "speedup", best.Speedup)
	}

	if len(failed) > 0 {
		return r, fmt.Errorf("%w: tiles %v", ErrVerificationFailed, failed)
	}
	return r, nil
}
