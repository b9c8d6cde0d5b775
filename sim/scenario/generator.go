// Package scenario draws the per-run parameter set of the manufacturing line
// from a baseline, a scenario table and independent jitter.
package scenario

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Generator produces one ParameterSet per run.
type Generator struct {
	cfg GeneratorConfig
}

// NewGenerator validates cfg and returns a Generator for it.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// Config returns the configuration the generator was built with.
func (g *Generator) Config() GeneratorConfig {
	return g.cfg
}

// Generate draws a fresh ParameterSet from rng. Call it once per run with
// that run's own stream so that runs share no randomness beyond the
// scenario-selection distribution.
//
// Draw order is fixed: scenario, the four modifiers, per-workstation failure
// jitter, the optional aggravation, then supplier capacity, bin capacity and
// the remaining jittered means.
func (g *Generator) Generate(rng *rand.Rand) ParameterSet {
	c := g.cfg
	sc := c.Scenarios[rng.Intn(len(c.Scenarios))]

	failureMod := sc.Failure.Draw(rng)
	qualityMod := sc.Quality.Draw(rng)
	speedMod := sc.Speed.Draw(rng)
	restockMod := sc.Restock.Draw(rng)

	probs := make([]float64, len(c.Baseline.FailureProbs))
	for i, base := range c.Baseline.FailureProbs {
		probs[i] = base * failureMod * c.Jitter.Draw(rng)
	}
	if rng.Float64() < c.AggravationProb {
		problem := rng.Intn(len(probs))
		probs[problem] *= c.Aggravation.Draw(rng)
		logrus.Debugf("scenario %s: persistent fault on workstation %d", sc.Label, problem)
	}
	for i := range probs {
		// a probability above one would only ever mean "always fails"
		probs[i] = math.Min(probs[i], 1)
	}

	b := c.Baseline
	return ParameterSet{
		SupplierCapacity:     c.SupplierCapacity.Draw(rng),
		BinCapacity:          int(float64(b.BinCapacity) * c.BinScale.Draw(rng)),
		FailureProbs:         probs,
		FixingTimeMean:       b.FixingTimeMean * failureMod * c.Jitter.Draw(rng),
		WorkTimeMean:         b.WorkTimeMean / speedMod * c.Jitter.Draw(rng),
		QualityIssueProb:     math.Min(b.QualityIssueProb*qualityMod*c.Jitter.Draw(rng), 1),
		RestockDelayMean:     b.RestockDelayMean * restockMod * c.Jitter.Draw(rng),
		FacilityAccidentProb: math.Min(b.FacilityAccidentProb*failureMod*c.Jitter.Draw(rng), 1),
		Scenario:             sc.Label,
	}
}
