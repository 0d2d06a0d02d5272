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

// NaiveMatMul computes C = A * B with the canonical i-j-k loop order.
//
// Each C[i][j] is overwritten with the full dot product of row i of A and
// column j of B. The innermost loop walks B down a column, striding N
// elements per step; this is the low-locality baseline the tiled kernel is
// measured against, so the loop order must not be changed to i-k-j.
func NaiveMatMul(a, b, c *Matrix) {
	checkSameDim(a, b, c)
	n := a.N
	bData := b.Data

	for i := range n {
		aRow := a.Row(i)
		cRow := c.Row(i)
		for j := range n {
			var sum float32
			for k := range n {
				sum += aRow[k] * bData[k*n+j]
			}
			cRow[j] = sum
		}
	}
}
