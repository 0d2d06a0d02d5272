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

// Package cpuinfo describes the host the benchmark runs on, using the CPU
// features detected by golang.org/x/sys/cpu.
package cpuinfo

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"unsafe"

	"github.com/samber/lo"
	"golang.org/x/sys/cpu"
)

// Info is a snapshot of the host.
type Info struct {
	GOOS      string   `json:"goos"`
	GOARCH    string   `json:"goarch"`
	NumCPU    int      `json:"num_cpu"`
	CacheLine int      `json:"cache_line_bytes"`
	Features  []string `json:"features"`
}

// Feature is a single named CPU capability.
type Feature struct {
	Name string
	Note string
	Has  bool
}

// Detect returns the current host description.
func Detect() Info {
	return Info{
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
		CacheLine: int(unsafe.Sizeof(cpu.CacheLinePad{})),
		Features: lo.FilterMap(Features(), func(f Feature, _ int) (string, bool) {
			return f.Name, f.Has
		}),
	}
}

// Features lists the CPU capabilities relevant to dense float32 kernels on
// the running architecture, present or not.
func Features() []Feature {
	switch runtime.GOARCH {
	case "arm64":
		return []Feature{
			{"ASIMD", "NEON baseline", cpu.ARM64.HasASIMD},
			{"FP", "Floating point", cpu.ARM64.HasFP},
			{"FPHP", "FP16 scalar, ARMv8.2-A", cpu.ARM64.HasFPHP},
			{"ASIMDHP", "FP16 NEON, ARMv8.2-A", cpu.ARM64.HasASIMDHP},
			{"ASIMDFHM", "FP16 FMA, ARMv8.4-A", cpu.ARM64.HasASIMDFHM},
			{"SVE", "Scalable Vector Extension", cpu.ARM64.HasSVE},
			{"SVE2", "SVE2", cpu.ARM64.HasSVE2},
		}
	case "amd64":
		return []Feature{
			{"SSE2", "", cpu.X86.HasSSE2},
			{"SSE41", "", cpu.X86.HasSSE41},
			{"SSE42", "", cpu.X86.HasSSE42},
			{"AVX", "", cpu.X86.HasAVX},
			{"AVX2", "", cpu.X86.HasAVX2},
			{"FMA", "", cpu.X86.HasFMA},
			{"AVX512F", "", cpu.X86.HasAVX512F},
			{"AVX512BW", "", cpu.X86.HasAVX512BW},
			{"AVX512VL", "", cpu.X86.HasAVX512VL},
		}
	}
	return nil
}

// String returns a one-line summary, e.g. "linux/amd64, 8 CPUs, AVX2 FMA".
func (i Info) String() string {
	s := fmt.Sprintf("%s/%s, %d CPUs, %dB cache line", i.GOOS, i.GOARCH, i.NumCPU, i.CacheLine)
	if len(i.Features) > 0 {
		s += ", " + strings.Join(i.Features, " ")
	}
	return s
}

// Fprint writes the full diagnostic listing of the host to w.
func Fprint(w io.Writer, info Info) {
	fmt.Fprintf(w, "GOOS: %s\n", info.GOOS)
	fmt.Fprintf(w, "GOARCH: %s\n", info.GOARCH)
	fmt.Fprintf(w, "NumCPU: %d\n", info.NumCPU)
	fmt.Fprintf(w, "Cache line: %d bytes\n", info.CacheLine)

	features := Features()
	if len(features) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "=== golang.org/x/sys/cpu (%s) ===\n", info.GOARCH)
	for _, f := range features {
		if f.Note != "" {
			fmt.Fprintf(w, "  Has%-10s %v (%s)\n", f.Name+":", f.Has, f.Note)
		} else {
			fmt.Fprintf(w, "  Has%-10s %v\n", f.Name+":", f.Has)
		}
	}
}
