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
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patterned(n int, mod, offset int) *Matrix {
	m := New(n, 0)
	for i := range m.Data {
		m.Data[i] = float32(i%mod - offset)
	}
	return m
}

func TestNew(t *testing.T) {
	m := New(4, 1.5)
	require.Equal(t, 4, m.N)
	require.Len(t, m.Data, 16)
	for i, v := range m.Data {
		assert.Equal(t, float32(1.5), v, "element %d", i)
	}

	z := New(3, 0)
	assert.Equal(t, make([]float32, 9), z.Data)

	assert.Panics(t, func() { New(0, 1) })
}

func TestAccessors(t *testing.T) {
	m := New(3, 0)
	m.Set(1, 2, 7)
	assert.Equal(t, float32(7), m.At(1, 2))
	assert.Equal(t, float32(7), m.Data[1*3+2])
	assert.Equal(t, []float32{0, 0, 7}, m.Row(1))

	m.Row(2)[0] = 4
	assert.Equal(t, float32(4), m.At(2, 0))
}

func TestFLOPs(t *testing.T) {
	testCases := []struct {
		n    int
		want uint64
	}{
		{1, 2},
		{2, 16},
		{64, 524288},
		{1024, 2147483648},
		{4096, 137438953472},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("n=%d", tc.n), func(t *testing.T) {
			assert.Equal(t, tc.want, FLOPs(tc.n))
		})
	}

	// Doubling N multiplies the work by eight.
	for _, n := range []int{16, 100, 512} {
		assert.Equal(t, 8*FLOPs(n), FLOPs(2*n))
	}
}

func TestNaiveMatMul(t *testing.T) {
	a := &Matrix{N: 2, Data: []float32{1, 2, 3, 4}}
	b := &Matrix{N: 2, Data: []float32{5, 6, 7, 8}}
	c := New(2, 99)

	NaiveMatMul(a, b, c)

	// Prior contents of C are overwritten, not accumulated.
	assert.Equal(t, []float32{19, 22, 43, 50}, c.Data)
}

func TestNaiveMatMulDimensionMismatch(t *testing.T) {
	assert.PanicsWithValue(t, "matmul: dimension mismatch", func() {
		NaiveMatMul(New(4, 1), New(4, 1), New(8, 0))
	})
}

func TestTiledMatchesNaive(t *testing.T) {
	testCases := []struct {
		name    string
		n, tile int
	}{
		{"64/16", 64, 16},
		{"48/16", 48, 16},
		{"128/8", 128, 8},
		{"96/48", 96, 48},
		{"32/1", 32, 1},
		{"single_tile_32/32", 32, 32},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := patterned(tc.n, 7, 3)
			b := patterned(tc.n, 5, 2)
			cNaive := New(tc.n, 0)
			cTiled := New(tc.n, 0)

			NaiveMatMul(a, b, cNaive)
			TiledMatMul(a, b, cTiled, tc.tile)

			if diff := cmp.Diff(cNaive.Data, cTiled.Data, cmpopts.EquateApprox(1e-5, 1e-4)); diff != "" {
				t.Errorf("tiled result differs from naive (-naive +tiled):\n%s", diff)
			}
		})
	}
}

func TestTiledMatchesNaiveRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n, tile = 128, 32

	a := New(n, 0)
	b := New(n, 0)
	for i := range a.Data {
		a.Data[i] = rng.Float32()*2 - 1
		b.Data[i] = rng.Float32()*2 - 1
	}
	cNaive := New(n, 0)
	cTiled := New(n, 0)

	NaiveMatMul(a, b, cNaive)
	TiledMatMul(a, b, cTiled, tile)

	// Summation order differs between kernels, so compare with a tolerance.
	opt := cmpopts.EquateApprox(1e-4, 1e-4)
	if diff := cmp.Diff(cNaive.Data, cTiled.Data, opt); diff != "" {
		t.Errorf("tiled result differs from naive (-naive +tiled):\n%s", diff)
	}
}

func TestUniformFill(t *testing.T) {
	testCases := []struct {
		name         string
		n, tile      int
		fillA, fillB float32
		want         float32
	}{
		{"representative_256/32", 256, 32, 2, 3, 6 * 256},
		{"smoke_64/16", 64, 16, 1, 1, 64},
		{"single_tile_32/32", 32, 32, 2, 3, 6 * 32},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := New(tc.n, tc.fillA)
			b := New(tc.n, tc.fillB)
			cNaive := New(tc.n, 0)
			cTiled := New(tc.n, 0)

			NaiveMatMul(a, b, cNaive)
			TiledMatMul(a, b, cTiled, tc.tile)

			for i := range cNaive.Data {
				if cNaive.Data[i] != tc.want || cTiled.Data[i] != tc.want {
					t.Fatalf("element %d: naive=%v tiled=%v, want %v",
						i, cNaive.Data[i], cTiled.Data[i], tc.want)
				}
			}
		})
	}
}

func TestTiledAccumulates(t *testing.T) {
	const n, tile = 32, 8
	a := New(n, 1)
	b := New(n, 2)
	c := New(n, 5)

	TiledMatMul(a, b, c, tile)

	want := float32(5 + 2*n)
	for i, v := range c.Data {
		require.Equal(t, want, v, "element %d", i)
	}

	// A second pass adds the product again.
	TiledMatMul(a, b, c, tile)
	assert.Equal(t, float32(5+4*n), c.At(n-1, n-1))
}

func TestTiledRejectsBadTile(t *testing.T) {
	a, b, c := New(48, 1), New(48, 1), New(48, 0)

	assert.Panics(t, func() { TiledMatMul(a, b, c, 32) })
	assert.Panics(t, func() { TiledMatMul(a, b, c, 0) })
	assert.Panics(t, func() { TiledMatMul(a, b, c, -16) })

	// Nothing was written before the precondition failed.
	assert.Equal(t, make([]float32, 48*48), c.Data)
}

func TestCheckTile(t *testing.T) {
	testCases := []struct {
		n, tile int
		wantErr error
	}{
		{1024, 32, nil},
		{64, 64, nil},
		{64, 1, nil},
		{100, 32, ErrTileNotDivisor},
		{32, 64, ErrTileNotDivisor},
		{64, 0, ErrInvalidTile},
		{64, -8, ErrInvalidTile},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d/%d", tc.n, tc.tile), func(t *testing.T) {
			err := CheckTile(tc.n, tc.tile)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func BenchmarkNaiveMatMul(b *testing.B) {
	for _, n := range []int{128, 256, 512} {
		a := New(n, 2)
		bm := New(n, 3)
		c := New(n, 0)
		flops := float64(FLOPs(n)) / 1e9

		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				NaiveMatMul(a, bm, c)
			}
			b.StopTimer()
			b.ReportMetric(flops*float64(b.N)/b.Elapsed().Seconds(), "GFLOPS")
		})
	}
}

func BenchmarkTiledMatMul(b *testing.B) {
	const n = 512
	a := New(n, 2)
	bm := New(n, 3)
	c := New(n, 0)
	flops := float64(FLOPs(n)) / 1e9

	for _, tile := range []int{16, 32, 64, 128} {
		b.Run(fmt.Sprintf("n=%d/tile=%d", n, tile), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c.Fill(0)
				TiledMatMul(a, bm, c, tile)
			}
			b.StopTimer()
			b.ReportMetric(flops*float64(b.N)/b.Elapsed().Seconds(), "GFLOPS")
		})
	}
}
