package scenario

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator(DefaultGeneratorConfig())
	require.NoError(t, err)
	return g
}

func TestGenerator_SameStreamSameParameters(t *testing.T) {
	g := newDefaultGenerator(t)

	a := g.Generate(rand.New(rand.NewSource(11)))
	b := g.Generate(rand.New(rand.NewSource(11)))

	assert.Equal(t, a, b)
}

func TestGenerator_ProducesValidParameterSets(t *testing.T) {
	// GIVEN the default generator
	g := newDefaultGenerator(t)
	rng := rand.New(rand.NewSource(5))
	labels := map[string]bool{"good": true, "normal": true, "challenging": true, "critical": true}
	seen := map[string]int{}

	// WHEN many parameter sets are drawn
	for i := 0; i < 2000; i++ {
		p := g.Generate(rng)

		// THEN each one is valid and drawn from the configured ranges
		require.NoError(t, p.Validate())
		assert.True(t, labels[p.Scenario], "unexpected scenario %q", p.Scenario)
		assert.Len(t, p.FailureProbs, 6)
		assert.GreaterOrEqual(t, p.SupplierCapacity, 2)
		assert.LessOrEqual(t, p.SupplierCapacity, 4)
		assert.GreaterOrEqual(t, p.BinCapacity, 20)
		assert.LessOrEqual(t, p.BinCapacity, 30)
		seen[p.Scenario]++
	}
	assert.Len(t, seen, 4, "every scenario should be selected")
}

func TestGenerator_ScenarioModifiersScaleMeans(t *testing.T) {
	// GIVEN a table with a single scenario and no jitter
	cfg := DefaultGeneratorConfig()
	cfg.Scenarios = []Scenario{{
		Label:   "fixed",
		Failure: Range{2, 2},
		Quality: Range{0.5, 0.5},
		Speed:   Range{2, 2},
		Restock: Range{3, 3},
	}}
	cfg.Jitter = Range{1, 1}
	cfg.AggravationProb = 0
	g, err := NewGenerator(cfg)
	require.NoError(t, err)

	p := g.Generate(rand.New(rand.NewSource(1)))

	// THEN baseline × modifier holds exactly
	assert.Equal(t, "fixed", p.Scenario)
	assert.InDeltaSlice(t, []float64{0.20, 0.16, 0.30, 0.50, 0.40, 0.36}, p.FailureProbs, 1e-12)
	assert.InDelta(t, 10.0, p.FixingTimeMean, 1e-12)
	assert.InDelta(t, 2.0, p.WorkTimeMean, 1e-12)
	assert.InDelta(t, 0.06, p.QualityIssueProb, 1e-12)
	assert.InDelta(t, 9.0, p.RestockDelayMean, 1e-12)
	assert.InDelta(t, 0.002, p.FacilityAccidentProb, 1e-12)
}

func TestGenerator_AggravationHitsOneWorkstation(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Scenarios = []Scenario{{Label: "flat", Failure: Range{1, 1}, Quality: Range{1, 1}, Speed: Range{1, 1}, Restock: Range{1, 1}}}
	cfg.Jitter = Range{1, 1}
	cfg.AggravationProb = 1
	cfg.Aggravation = Range{2, 2}
	g, err := NewGenerator(cfg)
	require.NoError(t, err)

	p := g.Generate(rand.New(rand.NewSource(3)))

	aggravated := 0
	for i, fp := range p.FailureProbs {
		base := cfg.Baseline.FailureProbs[i]
		if fp > base+1e-12 {
			aggravated++
			assert.InDelta(t, 2*base, fp, 1e-12)
		}
	}
	assert.Equal(t, 1, aggravated)
}

func TestGenerator_ClampsProbabilitiesToOne(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Scenarios = []Scenario{{Label: "extreme", Failure: Range{10, 10}, Quality: Range{20, 20}, Speed: Range{1, 1}, Restock: Range{1, 1}}}
	g, err := NewGenerator(cfg)
	require.NoError(t, err)

	p := g.Generate(rand.New(rand.NewSource(9)))

	require.NoError(t, p.Validate())
	for _, fp := range p.FailureProbs {
		assert.LessOrEqual(t, fp, 1.0)
	}
	assert.Equal(t, 1.0, p.QualityIssueProb)
}

func TestNewGenerator_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Scenarios = nil
	_, err := NewGenerator(cfg)
	assert.Error(t, err)
}
