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
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/ajroetker/tilebench/matmul"
)

// Defaults match the classic configuration of the benchmark: a 1024x1024
// problem blocked into 32x32 tiles, A filled with 2 and B with 3.
const (
	DefaultSize      = 1024
	DefaultFillA     = 2.0
	DefaultFillB     = 3.0
	DefaultTolerance = 1e-4
)

// Output formats understood by Render and RenderSweep.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatBench = "bench"
)

// ValidFormats lists the allowed values of Config.Format.
var ValidFormats = []string{FormatText, FormatJSON, FormatBench}

// ErrInvalidConfig is wrapped by every error returned from Config.Validate
// and Config.ValidateSweep.
var ErrInvalidConfig = errors.New("invalid benchmark configuration")

// Config describes one benchmark run. It is validated once, before any
// kernel executes.
type Config struct {
	// Size is the matrix dimension N.
	Size int `yaml:"size" json:"size"`
	// Tile is the tile edge T used by Run. Size must be a multiple of Tile.
	Tile int `yaml:"tile" json:"tile"`
	// Tiles are the candidate tile edges used by Sweep.
	Tiles []int `yaml:"tiles,omitempty" json:"tiles,omitempty"`

	FillA float32 `yaml:"fill_a" json:"fill_a"`
	FillB float32 `yaml:"fill_b" json:"fill_b"`

	// Verify compares the tiled output against the naive output.
	Verify bool `yaml:"verify" json:"verify"`
	// Tolerance is the allowed relative difference per output cell.
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`

	Format string `yaml:"format" json:"format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Size:      DefaultSize,
		Tile:      matmul.DefaultTile,
		FillA:     DefaultFillA,
		FillB:     DefaultFillB,
		Verify:    true,
		Tolerance: DefaultTolerance,
		Format:    FormatText,
	}
}

// Validate checks the configuration invariants for a single run, most
// importantly that the tile size divides the matrix dimension.
func (c Config) Validate() error {
	if err := c.validateCommon(); err != nil {
		return err
	}
	if err := matmul.CheckTile(c.Size, c.Tile); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ValidateSweep checks the configuration for a sweep over tiles. Only the
// tile sizes the sweep will run are checked against the matrix dimension;
// Tile matters only when it is the fallback.
func (c Config) ValidateSweep(tiles []int) error {
	if err := c.validateCommon(); err != nil {
		return err
	}
	for _, t := range c.SweepTiles(tiles) {
		if err := matmul.CheckTile(c.Size, t); err != nil {
			return fmt.Errorf("%w: sweep tile: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// SweepTiles returns the tile sizes a sweep runs: tiles if given, else the
// configured Tiles, else Tile. The result is deduplicated and ascending.
func (c Config) SweepTiles(tiles []int) []int {
	switch {
	case len(tiles) > 0:
	case len(c.Tiles) > 0:
		tiles = c.Tiles
	default:
		tiles = []int{c.Tile}
	}
	tiles = lo.Uniq(tiles)
	slices.Sort(tiles)
	return tiles
}

func (c Config) validateCommon() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfig, c.Size)
	}
	if err := checkFill("fill_a", c.FillA); err != nil {
		return err
	}
	if err := checkFill("fill_b", c.FillB); err != nil {
		return err
	}
	if math.IsNaN(c.Tolerance) || c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must be non-negative, got %v", ErrInvalidConfig, c.Tolerance)
	}
	if !slices.Contains(ValidFormats, c.Format) {
		return fmt.Errorf("%w: format %q must be one of %v", ErrInvalidConfig, c.Format, ValidFormats)
	}
	return nil
}

func checkFill(name string, v float32) error {
	f := float64(v)
	if v == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %s must be finite and nonzero, got %v", ErrInvalidConfig, name, v)
	}
	return nil
}

// LoadConfig reads a YAML configuration file. Fields missing from the file
// keep their DefaultConfig values; unknown fields are an error. The result
// is not validated.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration data over DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
