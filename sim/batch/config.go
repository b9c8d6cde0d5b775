package batch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/linesim/sim/factory"
	"github.com/inference-sim/linesim/sim/scenario"
)

// Config holds everything one batch needs. Loaded from YAML via LoadConfig(path).
type Config struct {
	Runs    int     `yaml:"runs"`    // 0 = draw the count from [MinRuns, MaxRuns], capped at RunCap
	MinRuns int     `yaml:"min_runs"`
	MaxRuns int     `yaml:"max_runs"`
	RunCap  int     `yaml:"run_cap"`
	Horizon float64 `yaml:"horizon"` // virtual length of every run
	Seed    int64   `yaml:"seed"`    // master seed; run i uses Seed+i
	Workers int     `yaml:"workers"` // runs executed in parallel, each fully isolated
	Retries int     `yaml:"retries"` // fresh-randomness retries per failed run

	Factory   factory.Options          `yaml:"factory"`
	Generator scenario.GeneratorConfig `yaml:"generator"`
}

// DefaultConfig returns the standard batch: 5000 time units per run,
// 70 to 120 runs capped at 100, one worker, no retries.
func DefaultConfig() Config {
	return Config{
		MinRuns:   70,
		MaxRuns:   120,
		RunCap:    100,
		Horizon:   5000,
		Seed:      42,
		Workers:   1,
		Factory:   factory.Options{SnapshotInterval: factory.DefaultSnapshotEvery, RestockMode: factory.RestockSequential},
		Generator: scenario.DefaultGeneratorConfig(),
	}
}

// Validate checks the batch configuration.
func (c Config) Validate() error {
	if c.Runs < 0 {
		return fmt.Errorf("runs must be non-negative, got %d", c.Runs)
	}
	if c.Runs == 0 && (c.MinRuns < 1 || c.MaxRuns < c.MinRuns) {
		return fmt.Errorf("run range must satisfy 1 <= min_runs <= max_runs, got [%d, %d]", c.MinRuns, c.MaxRuns)
	}
	if c.RunCap < 0 {
		return fmt.Errorf("run_cap must be non-negative, got %d", c.RunCap)
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %v", c.Horizon)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must be non-negative, got %d", c.Retries)
	}
	if err := c.Factory.Validate(); err != nil {
		return err
	}
	return c.Generator.Validate()
}

// ResolveRunCount returns Runs when set, otherwise draws a count from
// [MinRuns, MaxRuns] with rng and applies RunCap.
func (c Config) ResolveRunCount(rng *rand.Rand) int {
	n := c.Runs
	if n == 0 {
		n = c.MinRuns + rng.Intn(c.MaxRuns-c.MinRuns+1)
		if c.RunCap > 0 {
			n = min(n, c.RunCap)
		}
	}
	return n
}

// LoadConfig reads a YAML batch configuration and overlays it on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading batch config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig with strict field checking.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing batch config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid batch config: %w", err)
	}
	return cfg, nil
}
