package factory

import "fmt"

// Fixed model constants.
const (
	StockPollInterval    = 1.0  // workstation recheck interval when its bin is empty
	WorkTimeStdDevFactor = 0.3  // work time σ = factor × work_time_mean
	RepairScaleMin       = 0.8  // repair time uniform multiplier lower bound
	RepairScaleMax       = 1.5  // repair time uniform multiplier upper bound
	EarlyRestockLevel    = 0.2  // fraction of capacity below which early restock may trigger
	EarlyRestockChance   = 0.3  // probability of early restock below that level
	RestockStdDevFactor  = 0.4  // restock delay σ = factor × restock_delay_mean
	RestockPauseMin      = 0.5  // pause between restock sweeps, lower bound
	RestockPauseMax      = 1.5  // pause between restock sweeps, upper bound
	AccidentTick         = 1.0  // accident injector check interval
	AccidentMinDuration  = 5    // facility stoppage lower bound (inclusive)
	AccidentMaxDuration  = 70   // facility stoppage upper bound (inclusive)
	EfficiencyMin        = 0.8  // per-workstation efficiency lower bound
	EfficiencyMax        = 1.2  // per-workstation efficiency upper bound
	BottleneckMin        = 0.5  // bottleneck workstation efficiency multiplier, lower bound
	BottleneckMax        = 0.8  // bottleneck workstation efficiency multiplier, upper bound
	DefaultSnapshotEvery = 24.0 // snapshot sampler period
)

// RestockMode selects how the restocking controller serves workstations.
type RestockMode string

const (
	// RestockSequential makes the controller wait for each restock in turn.
	RestockSequential RestockMode = "sequential"
	// RestockDispatch spawns one restock job per triggered workstation so
	// that restocks contend for supplier capacity concurrently.
	RestockDispatch RestockMode = "dispatch"
)

// ValidRestockModes is the set of recognized restock mode names.
var ValidRestockModes = map[RestockMode]bool{"": true, RestockSequential: true, RestockDispatch: true}

// Options tune the facility model independent of the per-run parameters.
type Options struct {
	SnapshotInterval float64     `yaml:"snapshot_interval"` // 0 = DefaultSnapshotEvery
	RestockMode      RestockMode `yaml:"restock_mode"`      // "" = RestockSequential

	// Efficiencies fixes the per-workstation efficiency factors instead of
	// drawing them. Length must match the number of workstations.
	Efficiencies []float64 `yaml:"efficiencies,omitempty"`
}

// Validate checks option values.
func (o Options) Validate() error {
	if o.SnapshotInterval < 0 {
		return fmt.Errorf("snapshot_interval must be non-negative, got %v", o.SnapshotInterval)
	}
	if !ValidRestockModes[o.RestockMode] {
		return fmt.Errorf("unknown restock mode %q", o.RestockMode)
	}
	for i, e := range o.Efficiencies {
		if e <= 0 {
			return fmt.Errorf("efficiencies[%d] must be positive, got %v", i, e)
		}
	}
	return nil
}

func (o Options) snapshotInterval() float64 {
	if o.SnapshotInterval == 0 {
		return DefaultSnapshotEvery
	}
	return o.SnapshotInterval
}

func (o Options) restockMode() RestockMode {
	if o.RestockMode == "" {
		return RestockSequential
	}
	return o.RestockMode
}
