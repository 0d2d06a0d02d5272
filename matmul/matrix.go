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

// Package matmul provides the square float32 matrix type and the two
// multiplication kernels compared by the tiling benchmark: a naive i-j-k
// triple loop and a six-loop cache-blocked variant.
//
// All matrices are N x N and stored row-major in a flat slice, so element
// (i, j) lives at Data[i*N+j].
package matmul

// Matrix is a dense square matrix of float32 values in row-major order.
type Matrix struct {
	N    int
	Data []float32
}

// New allocates an n x n matrix with every element set to fill.
func New(n int, fill float32) *Matrix {
	if n <= 0 {
		panic("matmul: matrix dimension must be positive")
	}
	m := &Matrix{N: n, Data: make([]float32, n*n)}
	if fill != 0 {
		m.Fill(fill)
	}
	return m
}

// Fill sets every element to v.
func (m *Matrix) Fill(v float32) {
	for i := range m.Data {
		m.Data[i] = v
	}
}

// At returns element (i, j).
func (m *Matrix) At(i, j int) float32 {
	return m.Data[i*m.N+j]
}

// Set stores v at (i, j).
func (m *Matrix) Set(i, j int, v float32) {
	m.Data[i*m.N+j] = v
}

// Row returns row i as a subslice of Data. Writes through it modify m.
func (m *Matrix) Row(i int) []float32 {
	return m.Data[i*m.N : (i+1)*m.N]
}

// FLOPs returns the floating-point operation count of one n x n x n
// multiply: one multiply and one add per scalar term.
func FLOPs(n int) uint64 {
	nn := uint64(n)
	return 2 * nn * nn * nn
}

func checkSameDim(a, b, c *Matrix) {
	if a.N != b.N || a.N != c.N {
		panic("matmul: dimension mismatch")
	}
	if len(a.Data) < a.N*a.N {
		panic("matmul: A slice too short")
	}
	if len(b.Data) < b.N*b.N {
		panic("matmul: B slice too short")
	}
	if len(c.Data) < c.N*c.N {
		panic("matmul: C slice too short")
	}
}
