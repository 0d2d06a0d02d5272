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

package matmul

import (
	"errors"
	"fmt"
)

// DefaultTile is the default tile edge.
// 3 tiles of 32x32 float32 = 3 * 32 * 32 * 4 = 12KB, well inside a 32KB L1.
const DefaultTile = 32

var (
	// ErrInvalidTile is returned for a tile size that is not positive.
	ErrInvalidTile = errors.New("matmul: tile size must be positive")

	// ErrTileNotDivisor is returned when the tile size does not divide the
	// matrix dimension. Remainder tiles are not supported.
	ErrTileNotDivisor = errors.New("matmul: tile size does not divide matrix dimension")
)

// CheckTile reports whether tile can block an n x n multiply.
func CheckTile(n, tile int) error {
	if tile <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTile, tile)
	}
	if n%tile != 0 {
		return fmt.Errorf("%w: %d mod %d = %d", ErrTileNotDivisor, n, tile, n%tile)
	}
	return nil
}

// TiledMatMul computes C += A * B using cache blocking with square tiles of
// edge tile.
//
// The index space is split into tile-sized blocks along rows (ii), columns
// (jj) and the reduction dimension (kk), visited in that nesting order. Each
// block pass reads C[i][j], adds the partial dot product over [kk, kk+tile)
// and writes the sum back, so contributions from successive kk blocks add up.
//
// The kernel accumulates into C: the result is the prior contents of C plus
// A * B. Pass a zeroed C to get the plain product.
//
// Panics if tile does not evenly divide N.
func TiledMatMul(a, b, c *Matrix, tile int) {
	checkSameDim(a, b, c)
	n := a.N
	if err := CheckTile(n, tile); err != nil {
		panic(err.Error())
	}
	aData := a.Data
	bData := b.Data
	cData := c.Data

	for ii := 0; ii < n; ii += tile {
		for jj := 0; jj < n; jj += tile {
			for kk := 0; kk < n; kk += tile {
				for i := ii; i < ii+tile; i++ {
					aBlock := aData[i*n+kk : i*n+kk+tile]
					cRow := cData[i*n : (i+1)*n]
					for j := jj; j < jj+tile; j++ {
						sum := cRow[j]
						for p, aik := range aBlock {
							sum += aik * bData[(kk+p)*n+j]
						}
						cRow[j] = sum
					}
				}
			}
		}
	}
}
