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
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/ajroetker/tilebench/matmul"
)

// ErrVerificationFailed is returned when the tiled output diverges from the
// naive output by more than the configured tolerance.
var ErrVerificationFailed = errors.New("tiled result does not match naive result")

// Mismatch locates one output cell that failed verification. In JSON a
// non-finite value is written as the string "NaN", "+Inf" or "-Inf".
type Mismatch struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Naive float32 `json:"naive"`
	Tiled float32 `json:"tiled"`
}

type mismatchJSON struct {
	Row   int             `json:"row"`
	Col   int             `json:"col"`
	Naive json.RawMessage `json:"naive"`
	Tiled json.RawMessage `json:"tiled"`
}

func (m Mismatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(mismatchJSON{
		Row:   m.Row,
		Col:   m.Col,
		Naive: encodeCell(m.Naive),
		Tiled: encodeCell(m.Tiled),
	})
}

func (m *Mismatch) UnmarshalJSON(data []byte) error {
	var raw mismatchJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	naive, err := decodeCell(raw.Naive)
	if err != nil {
		return fmt.Errorf("naive: %w", err)
	}
	tiled, err := decodeCell(raw.Tiled)
	if err != nil {
		return fmt.Errorf("tiled: %w", err)
	}
	*m = Mismatch{Row: raw.Row, Col: raw.Col, Naive: naive, Tiled: tiled}
	return nil
}

func encodeCell(v float32) json.RawMessage {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.RawMessage(strconv.Quote(strconv.FormatFloat(f, 'g', -1, 32)))
	}
	return json.RawMessage(strconv.FormatFloat(f, 'g', -1, 32))
}

func decodeCell(data json.RawMessage) (float32, error) {
	if len(data) == 0 || string(data) == "null" {
		return 0, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(s, 32)
		return float32(f), err
	}
	var v float32
	err := json.Unmarshal(data, &v)
	return v, err
}

// Verification summarises an element-wise comparison of two outputs.
type Verification struct {
	Checked    bool    `json:"checked"`
	Passed     bool    `json:"passed"`
	Cells      int     `json:"cells"`
	Mismatches int     `json:"mismatches"`
	MaxAbsDiff float64 `json:"max_abs_diff"`
	MaxRelDiff float64 `json:"max_rel_diff"`
	Tolerance  float64 `json:"tolerance"`

	First *Mismatch `json:"first_mismatch,omitempty"`
}

// Compare checks got against want cell by cell. A cell passes when
//
//	|want - got| <= tol * max(|want|, 1)
//
// so large sums are held to a relative bound and values near zero to an
// absolute one. Identical values (including equal infinities) always pass;
// a NaN on either side fails unless both are NaN.
func Compare(want, got *matmul.Matrix, tol float64) Verification {
	if want.N != got.N {
		panic("bench: dimension mismatch")
	}
	v := Verification{Checked: true, Cells: len(want.Data), Tolerance: tol}

	for idx, w := range want.Data {
		g := got.Data[idx]
		if w == g {
			continue
		}
		wf, gf := float64(w), float64(g)
		if math.IsNaN(wf) && math.IsNaN(gf) {
			continue
		}

		diff := math.Abs(wf - gf)
		scaled := diff / math.Max(math.Abs(wf), 1)
		finite := !math.IsNaN(scaled) && !math.IsInf(diff, 0)
		// Only finite differences are tracked; JSON cannot carry Inf or NaN.
		if finite {
			v.MaxAbsDiff = max(v.MaxAbsDiff, diff)
			v.MaxRelDiff = max(v.MaxRelDiff, scaled)
		}
		if !finite || scaled > tol {
			v.Mismatches++
			if v.First == nil {
				v.First = &Mismatch{Row: idx / want.N, Col: idx % want.N, Naive: w, Tiled: g}
			}
		}
	}

	v.Passed = v.Mismatches == 0
	return v
}
