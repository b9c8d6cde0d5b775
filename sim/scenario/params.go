package scenario

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter marks a ParameterSet that violates an invariant.
// It is fatal to the run that would have used it, never to the batch.
var ErrInvalidParameter = errors.New("invalid parameter")

// ParameterSet is the randomized configuration of one run.
// It is immutable once generated.
type ParameterSet struct {
	FailureProbs         []float64 `json:"failure_probs"`
	FixingTimeMean       float64   `json:"fixing_time_mean"`
	WorkTimeMean         float64   `json:"work_time_mean"`
	QualityIssueProb     float64   `json:"quality_issue_prob"`
	RestockDelayMean     float64   `json:"restock_delay_mean"`
	FacilityAccidentProb float64   `json:"facility_accident_prob"`
	SupplierCapacity     int       `json:"supplier_capacity"`
	BinCapacity          int       `json:"bin_capacity"`
	Scenario             string    `json:"scenario"`
}

// Workstations returns the number of workstations in the line.
func (p ParameterSet) Workstations() int {
	return len(p.FailureProbs)
}

// Validate reports the first invariant violation, wrapped in ErrInvalidParameter.
func (p ParameterSet) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
	}
	if len(p.FailureProbs) == 0 {
		return invalid("no workstations")
	}
	for i, fp := range p.FailureProbs {
		if !isProbability(fp) {
			return invalid("failure probability of workstation %d is %v, want [0,1]", i, fp)
		}
	}
	if !isPositive(p.FixingTimeMean) {
		return invalid("fixing_time_mean %v must be positive", p.FixingTimeMean)
	}
	if !isPositive(p.WorkTimeMean) {
		return invalid("work_time_mean %v must be positive", p.WorkTimeMean)
	}
	if !isPositive(p.RestockDelayMean) {
		return invalid("restock_delay_mean %v must be positive", p.RestockDelayMean)
	}
	if !isProbability(p.QualityIssueProb) {
		return invalid("quality_issue_prob %v, want [0,1]", p.QualityIssueProb)
	}
	if !isProbability(p.FacilityAccidentProb) {
		return invalid("facility_accident_prob %v, want [0,1]", p.FacilityAccidentProb)
	}
	if p.SupplierCapacity < 1 {
		return invalid("supplier_capacity %d must be >= 1", p.SupplierCapacity)
	}
	if p.BinCapacity < 1 {
		return invalid("bin_capacity %d must be >= 1", p.BinCapacity)
	}
	return nil
}

func isProbability(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func isPositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
