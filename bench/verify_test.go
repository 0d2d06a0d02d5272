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
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/tilebench/matmul"
)

func TestCompareIdentical(t *testing.T) {
	want := matmul.New(8, 3)
	got := matmul.New(8, 3)

	v := Compare(want, got, 0)
	assert.True(t, v.Checked)
	assert.True(t, v.Passed)
	assert.Equal(t, 64, v.Cells)
	assert.Zero(t, v.Mismatches)
	assert.Nil(t, v.First)
}

func TestCompareTolerance(t *testing.T) {
	testCases := []struct {
		name       string
		want, got  float32
		tol        float64
		wantPassed bool
	}{
		{"relative_within", 1000, 1000.05, 1e-4, true},
		{"relative_outside", 1000, 1001, 1e-4, false},
		{"absolute_near_zero_within", 0, 5e-5, 1e-4, true},
		{"absolute_near_zero_outside", 0, 1e-3, 1e-4, false},
		{"zero_tolerance", 1, 1.0000001, 0, false},
		{"nan_vs_value", float32(math.NaN()), 1, 1e-4, false},
		{"both_nan", float32(math.NaN()), float32(math.NaN()), 1e-4, true},
		{"equal_inf", float32(math.Inf(1)), float32(math.Inf(1)), 1e-4, true},
		{"opposite_inf", float32(math.Inf(1)), float32(math.Inf(-1)), 1e-4, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			want := matmul.New(4, 1)
			got := matmul.New(4, 1)
			want.Set(2, 3, tc.want)
			got.Set(2, 3, tc.got)

			v := Compare(want, got, tc.tol)
			assert.Equal(t, tc.wantPassed, v.Passed)
			assert.False(t, math.IsNaN(v.MaxAbsDiff) || math.IsInf(v.MaxAbsDiff, 0))
			if !tc.wantPassed {
				assert.Equal(t, 1, v.Mismatches)
				require.NotNil(t, v.First)
				assert.Equal(t, 2, v.First.Row)
				assert.Equal(t, 3, v.First.Col)
			}
		})
	}
}

func TestCompareReportsFirstMismatch(t *testing.T) {
	want := matmul.New(4, 10)
	got := matmul.New(4, 10)
	got.Set(1, 2, 11)
	got.Set(3, 0, 12)

	v := Compare(want, got, 1e-4)
	assert.False(t, v.Passed)
	assert.Equal(t, 2, v.Mismatches)
	assert.Equal(t, &Mismatch{Row: 1, Col: 2, Naive: 10, Tiled: 11}, v.First)
	assert.InDelta(t, 2.0, v.MaxAbsDiff, 1e-9)
	assert.InDelta(t, 0.2, v.MaxRelDiff, 1e-9)
}

func TestCompareDimensionMismatch(t *testing.T) {
	assert.Panics(t, func() { Compare(matmul.New(4, 1), matmul.New(8, 1), 0) })
}

func TestVerificationJSONNonFinite(t *testing.T) {
	testCases := []struct {
		name      string
		want, got float32
		wantJSON  string
	}{
		{"nan_vs_value", float32(math.NaN()), 1, `{"row":2,"col":3,"naive":"NaN","tiled":1}`},
		{"opposite_inf", float32(math.Inf(1)), float32(math.Inf(-1)), `{"row":2,"col":3,"naive":"+Inf","tiled":"-Inf"}`},
		{"finite", 10, 11.5, `{"row":2,"col":3,"naive":10,"tiled":11.5}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			want := matmul.New(4, 1)
			got := matmul.New(4, 1)
			want.Set(2, 3, tc.want)
			got.Set(2, 3, tc.got)

			v := Compare(want, got, 1e-4)
			require.NotNil(t, v.First)

			data, err := json.Marshal(v)
			require.NoError(t, err)

			first, err := json.Marshal(v.First)
			require.NoError(t, err)
			assert.JSONEq(t, tc.wantJSON, string(first))

			var decoded Verification
			require.NoError(t, json.Unmarshal(data, &decoded))
			require.NotNil(t, decoded.First)
			assert.Equal(t, 2, decoded.First.Row)
			assert.Equal(t, 3, decoded.First.Col)
			assertSameCell(t, tc.want, decoded.First.Naive)
			assertSameCell(t, tc.got, decoded.First.Tiled)
		})
	}
}

func TestMismatchUnmarshalRejectsGarbage(t *testing.T) {
	var m Mismatch
	assert.Error(t, json.Unmarshal([]byte(`{"row":0,"col":0,"naive":"many","tiled":1}`), &m))
	assert.Error(t, json.Unmarshal([]byte(`{"row":0,"col":0,"naive":1,"tiled":true}`), &m))
}

// assertSameCell compares float32 values treating NaN as equal to NaN.
func assertSameCell(t *testing.T, want, got float32) {
	t.Helper()
	if math.IsNaN(float64(want)) {
		assert.True(t, math.IsNaN(float64(got)), "want NaN, got %v", got)
		return
	}
	assert.Equal(t, want, got)
}
