package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/linesim/sim"
)

// Range is a closed-open interval [Min, Max) sampled uniformly.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Draw samples the range uniformly.
func (r Range) Draw(rng *rand.Rand) float64 {
	return sim.Uniform(rng, r.Min, r.Max)
}

func (r Range) validate(name string) error {
	if r.Min < 0 || r.Max < r.Min {
		return fmt.Errorf("%s: range must satisfy 0 <= min <= max, got [%v, %v]", name, r.Min, r.Max)
	}
	return nil
}

// IntRange is a closed integer interval [Min, Max].
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Draw samples the range uniformly.
func (r IntRange) Draw(rng *rand.Rand) int {
	return sim.IntBetween(rng, r.Min, r.Max)
}

// Scenario is a named bundle of randomization modifiers.
type Scenario struct {
	Label   string `yaml:"label"`
	Failure Range  `yaml:"failure"`
	Quality Range  `yaml:"quality"`
	Speed   Range  `yaml:"speed"`
	Restock Range  `yaml:"restock"`
}

// Baseline holds the unmodified line constants every scenario scales.
type Baseline struct {
	FailureProbs         []float64 `yaml:"failure_probs"` // one entry per workstation, line order
	FixingTimeMean       float64   `yaml:"fixing_time_mean"`
	WorkTimeMean         float64   `yaml:"work_time_mean"`
	QualityIssueProb     float64   `yaml:"quality_issue_prob"`
	FacilityAccidentProb float64   `yaml:"facility_accident_prob"`
	RestockDelayMean     float64   `yaml:"restock_delay_mean"`
	BinCapacity          int       `yaml:"bin_capacity"`
}

// GeneratorConfig is the full parameter-generator configuration,
// loadable from YAML via LoadGeneratorConfig(path).
type GeneratorConfig struct {
	Baseline         Baseline   `yaml:"baseline"`
	Scenarios        []Scenario `yaml:"scenarios"`
	Jitter           Range      `yaml:"jitter"`            // independent multiplier on every derived field
	AggravationProb  float64    `yaml:"aggravation_prob"`  // chance that one workstation gets a persistent fault
	Aggravation      Range      `yaml:"aggravation"`       // multiplier applied to that workstation's failure probability
	SupplierCapacity IntRange   `yaml:"supplier_capacity"` // drawn directly, no scenario modifier
	BinScale         Range      `yaml:"bin_scale"`         // bin capacity = int(baseline × draw)
}

// DefaultGeneratorConfig returns the standard six-workstation line.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Baseline: Baseline{
			FailureProbs:         []float64{0.10, 0.08, 0.15, 0.25, 0.20, 0.18},
			FixingTimeMean:       5,
			WorkTimeMean:         4,
			QualityIssueProb:     0.12,
			FacilityAccidentProb: 0.001,
			RestockDelayMean:     3.0,
			BinCapacity:          25,
		},
		Scenarios: []Scenario{
			{Label: "good", Failure: Range{0.6, 0.9}, Quality: Range{0.6, 0.9}, Speed: Range{1.1, 1.3}, Restock: Range{0.7, 0.9}},
			{Label: "normal", Failure: Range{0.9, 1.1}, Quality: Range{0.9, 1.1}, Speed: Range{0.9, 1.1}, Restock: Range{0.9, 1.1}},
			{Label: "challenging", Failure: Range{1.1, 1.3}, Quality: Range{1.1, 1.3}, Speed: Range{0.8, 1.0}, Restock: Range{1.1, 1.3}},
			{Label: "critical", Failure: Range{1.3, 1.8}, Quality: Range{1.3, 1.8}, Speed: Range{0.6, 0.8}, Restock: Range{1.3, 1.8}},
		},
		Jitter:           Range{0.7, 1.3},
		AggravationProb:  0.4,
		Aggravation:      Range{1.5, 2.5},
		SupplierCapacity: IntRange{2, 4},
		BinScale:         Range{0.8, 1.2},
	}
}

// Validate checks the ranges and tables of the configuration.
func (c GeneratorConfig) Validate() error {
	b := c.Baseline
	if len(b.FailureProbs) == 0 {
		return errors.New("baseline.failure_probs must list at least one workstation")
	}
	for i, p := range b.FailureProbs {
		if p < 0 || p > 1 {
			return fmt.Errorf("baseline.failure_probs[%d] must be in [0,1], got %v", i, p)
		}
	}
	if b.FixingTimeMean <= 0 || b.WorkTimeMean <= 0 || b.RestockDelayMean <= 0 {
		return fmt.Errorf("baseline means must be positive (fixing=%v work=%v restock=%v)",
			b.FixingTimeMean, b.WorkTimeMean, b.RestockDelayMean)
	}
	if b.QualityIssueProb < 0 || b.QualityIssueProb > 1 {
		return fmt.Errorf("baseline.quality_issue_prob must be in [0,1], got %v", b.QualityIssueProb)
	}
	if b.FacilityAccidentProb < 0 || b.FacilityAccidentProb > 1 {
		return fmt.Errorf("baseline.facility_accident_prob must be in [0,1], got %v", b.FacilityAccidentProb)
	}
	if b.BinCapacity < 1 {
		return fmt.Errorf("baseline.bin_capacity must be >= 1, got %d", b.BinCapacity)
	}
	if len(c.Scenarios) == 0 {
		return errors.New("at least one scenario is required")
	}
	seen := make(map[string]bool, len(c.Scenarios))
	for _, s := range c.Scenarios {
		if s.Label == "" {
			return errors.New("scenario label must not be empty")
		}
		if seen[s.Label] {
			return fmt.Errorf("duplicate scenario label %q", s.Label)
		}
		seen[s.Label] = true
		modifiers := []struct {
			name string
			r    Range
		}{{"failure", s.Failure}, {"quality", s.Quality}, {"speed", s.Speed}, {"restock", s.Restock}}
		for _, m := range modifiers {
			if err := m.r.validate(s.Label + "." + m.name); err != nil {
				return err
			}
		}
		if s.Speed.Min == 0 {
			return fmt.Errorf("%s.speed: min must be positive", s.Label)
		}
	}
	if err := c.Jitter.validate("jitter"); err != nil {
		return err
	}
	if c.Jitter.Min == 0 {
		return errors.New("jitter: min must be positive")
	}
	if c.AggravationProb < 0 || c.AggravationProb > 1 {
		return fmt.Errorf("aggravation_prob must be in [0,1], got %v", c.AggravationProb)
	}
	if err := c.Aggravation.validate("aggravation"); err != nil {
		return err
	}
	if c.SupplierCapacity.Min < 1 || c.SupplierCapacity.Max < c.SupplierCapacity.Min {
		return fmt.Errorf("supplier_capacity must satisfy 1 <= min <= max, got [%d, %d]",
			c.SupplierCapacity.Min, c.SupplierCapacity.Max)
	}
	if err := c.BinScale.validate("bin_scale"); err != nil {
		return err
	}
	if int(float64(b.BinCapacity)*c.BinScale.Min) < 1 {
		return fmt.Errorf("bin_scale.min %v would produce an empty bin", c.BinScale.Min)
	}
	return nil
}

// LoadGeneratorConfig reads a YAML file and overlays it on the defaults.
func LoadGeneratorConfig(path string) (GeneratorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GeneratorConfig{}, fmt.Errorf("reading generator config: %w", err)
	}
	return ParseGeneratorConfig(data)
}

// ParseGeneratorConfig decodes YAML over DefaultGeneratorConfig.
// Unknown fields are rejected so that typos fail loudly.
func ParseGeneratorConfig(data []byte) (GeneratorConfig, error) {
	cfg := DefaultGeneratorConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return GeneratorConfig{}, fmt.Errorf("parsing generator config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return GeneratorConfig{}, fmt.Errorf("invalid generator config: %w", err)
	}
	return cfg, nil
}
