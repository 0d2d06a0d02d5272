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
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ajroetker/tilebench/internal/cpuinfo"
)

// Render writes r to w in the given format.
func Render(w io.Writer, r *Report, format string) error {
	switch format {
	case FormatText:
		return renderText(w, r)
	case FormatJSON:
		return renderJSON(w, r)
	case FormatBench:
		return renderBench(w, r)
	}
	return fmt.Errorf("unknown format %q: must be one of %v", format, ValidFormats)
}

// RenderSweep writes r to w in the given format.
func RenderSweep(w io.Writer, r *SweepReport, format string) error {
	switch format {
	case FormatText:
		return renderSweepText(w, r)
	case FormatJSON:
		return renderJSON(w, r)
	case FormatBench:
		return renderSweepBench(w, r)
	}
	return fmt.Errorf("unknown format %q: must be one of %v", format, ValidFormats)
}

var printer = message.NewPrinter(language.English)

func renderText(w io.Writer, r *Report) error {
	var sb strings.Builder
	sb.WriteString("--- Matrix Multiplication Tiling Benchmark ---\n")
	fmt.Fprintf(&sb, "Matrix Size (N): %dx%d\n", r.Size, r.Size)
	fmt.Fprintf(&sb, "Block Size (B):  %dx%d\n", r.Tile, r.Tile)
	writeOps(&sb, r.FLOPs, r.GFLOPs)
	fmt.Fprintf(&sb, "Host: %s\n", r.Host)
	sb.WriteString("\n")

	sb.WriteString("1. Baseline (i-j-k):\n")
	writeKernel(&sb, r.Naive)
	sb.WriteString("\n")
	sb.WriteString("2. Optimized (Blocked):\n")
	writeKernel(&sb, r.Tiled)
	sb.WriteString("\n")

	sb.WriteString("--- Summary ---\n")
	writeVerification(&sb, r.Verification)
	if r.SpeedupValid {
		fmt.Fprintf(&sb, "SPEEDUP (Baseline / Tiled): %.2fx\n", r.Speedup)
	} else {
		sb.WriteString("SPEEDUP (Baseline / Tiled): unmeasurable\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func renderSweepText(w io.Writer, r *SweepReport) error {
	var sb strings.Builder
	sb.WriteString("--- Matrix Multiplication Tile Sweep ---\n")
	fmt.Fprintf(&sb, "Matrix Size (N): %dx%d\n", r.Size, r.Size)
	writeOps(&sb, r.FLOPs, r.GFLOPs)
	fmt.Fprintf(&sb, "Host: %s\n", r.Host)
	sb.WriteString("\n")

	sb.WriteString("Baseline (i-j-k):\n")
	writeKernel(&sb, r.Naive)
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "%6s  %12s  %12s  %9s  %s\n", "TILE", "SECONDS", "GFLOPs/s", "SPEEDUP", "CHECK")
	for _, t := range r.Tiles {
		seconds, gflops, speedup := "n/a", "n/a", "n/a"
		if t.Kernel.Measurable {
			seconds = fmt.Sprintf("%.4f", t.Kernel.Seconds)
			gflops = fmt.Sprintf("%.4f", t.Kernel.GFLOPS)
		}
		if t.SpeedupValid {
			speedup = fmt.Sprintf("%.2fx", t.Speedup)
		}
		fmt.Fprintf(&sb, "%6d  %12s  %12s  %9s  %s\n", t.Tile, seconds, gflops, speedup, checkLabel(t.Verification))
	}
	sb.WriteString("\n")

	if r.BestTile > 0 {
		fmt.Fprintf(&sb, "Best tile: %dx%d\n", r.BestTile, r.BestTile)
	} else {
		sb.WriteString("Best tile: unmeasurable\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeOps(sb *strings.Builder, flops uint64, gflops float64) {
	fmt.Fprintf(sb, "Total Operations: %.4f GFLOPs (%s FLOPs)\n", gflops, printer.Sprintf("%d", flops))
}

func writeKernel(sb *strings.Builder, k KernelResult) {
	if !k.Measurable {
		fmt.Fprintf(sb, "   Time:       unmeasurable (%v elapsed)\n", k.Elapsed)
		sb.WriteString("   Throughput: n/a\n")
		return
	}
	fmt.Fprintf(sb, "   Time:       %.4f seconds\n", k.Seconds)
	fmt.Fprintf(sb, "   Throughput: %.4f GFLOPs/s\n", k.GFLOPS)
}

func writeVerification(sb *strings.Builder, v Verification) {
	switch {
	case !v.Checked:
		sb.WriteString("Verification: skipped\n")
	case v.Passed:
		fmt.Fprintf(sb, "Verification: passed (%d cells, max abs diff %g, tolerance %g)\n",
			v.Cells, v.MaxAbsDiff, v.Tolerance)
	default:
		fmt.Fprintf(sb, "Verification: FAILED (%d of %d cells, first at [%d][%d]: naive %g, tiled %g)\n",
			v.Mismatches, v.Cells, v.First.Row, v.First.Col, v.First.Naive, v.First.Tiled)
	}
}

func checkLabel(v Verification) string {
	switch {
	case !v.Checked:
		return "skipped"
	case v.Passed:
		return "ok"
	}
	return fmt.Sprintf("FAILED (%d cells)", v.Mismatches)
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderBench emits Go benchmark-format lines so results can be fed to
// benchstat alongside `go test -bench` output.
func renderBench(w io.Writer, r *Report) error {
	var sb strings.Builder
	writeBenchHeader(&sb, r.Host)
	writeBenchLine(&sb, fmt.Sprintf("BenchmarkNaive/n=%d", r.Size), r.Naive)
	writeBenchLine(&sb, fmt.Sprintf("BenchmarkTiled/n=%d/tile=%d", r.Size, r.Tile), r.Tiled)
	_, err := io.WriteString(w, sb.String())
	return err
}

func renderSweepBench(w io.Writer, r *SweepReport) error {
	var sb strings.Builder
	writeBenchHeader(&sb, r.Host)
	writeBenchLine(&sb, fmt.Sprintf("BenchmarkNaive/n=%d", r.Size), r.Naive)
	for _, t := range r.Tiles {
		writeBenchLine(&sb, fmt.Sprintf("BenchmarkTiled/n=%d/tile=%d", r.Size, t.Tile), t.Kernel)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeBenchHeader(sb *strings.Builder, host cpuinfo.Info) {
	fmt.Fprintf(sb, "goos: %s\n", host.GOOS)
	fmt.Fprintf(sb, "goarch: %s\n", host.GOARCH)
	sb.WriteString("pkg: github.com/ajroetker/tilebench\n")
}

func writeBenchLine(sb *strings.Builder, name string, k KernelResult) {
	fmt.Fprintf(sb, "%s\t1\t%d ns/op", name, k.Elapsed.Nanoseconds())
	if k.Measurable {
		fmt.Fprintf(sb, "\t%.4f GFLOPS", k.GFLOPS)
	}
	sb.WriteString("\n")
}
