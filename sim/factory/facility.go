package factory

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/linesim/sim"
	"github.com/inference-sim/linesim/sim/scenario"
)

// Workstation is one stage of the line and its local inventory bin.
type Workstation struct {
	ID          int
	BinLevel    int
	BinCapacity int
	Efficiency  float64
	FailureProb float64

	Processed int     // items finished (work completed)
	Failures  int     // breakdowns repaired
	Downtime  float64 // repair time plus facility stoppages
	WaitTime  float64 // time idle with an empty bin
}

// Facility owns every workstation, the supplier pool and the run counters.
// All fields are written only from the engine's event loop.
type Facility struct {
	eng      *sim.Engine
	rng      *sim.PartitionedRNG
	params   scenario.ParameterSet
	opts     Options
	stations []*Workstation
	supplier *sim.Resource

	production        int
	faulty            int
	totalFixTime      float64
	supplierOccupancy float64
	accidents         int
	accidentDowntime  float64
	restocks          int
	restockPending    []bool
	snapshots         []Snapshot
}

// New builds a facility for one run. Bins start full. Efficiency factors are
// drawn from U[EfficiencyMin, EfficiencyMax] with one random workstation
// slowed by U[BottleneckMin, BottleneckMax], unless opts fixes them.
func New(eng *sim.Engine, params scenario.ParameterSet, rng *sim.PartitionedRNG, opts Options) (*Facility, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n := params.Workstations()
	if opts.Efficiencies != nil && len(opts.Efficiencies) != n {
		return nil, fmt.Errorf("%d efficiencies given for %d workstations", len(opts.Efficiencies), n)
	}
	supplier, err := eng.NewResource("supplier", params.SupplierCapacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scenario.ErrInvalidParameter, err)
	}

	efficiency := opts.Efficiencies
	if efficiency == nil {
		efficiency = drawEfficiencies(rng, n)
	}

	f := &Facility{
		eng:            eng,
		rng:            rng,
		params:         params,
		opts:           opts,
		supplier:       supplier,
		stations:       make([]*Workstation, n),
		restockPending: make([]bool, n),
	}
	for i := range f.stations {
		f.stations[i] = &Workstation{
			ID:          i,
			BinLevel:    params.BinCapacity,
			BinCapacity: params.BinCapacity,
			Efficiency:  efficiency[i],
			FailureProb: params.FailureProbs[i],
		}
	}
	return f, nil
}

func drawEfficiencies(rng *sim.PartitionedRNG, n int) []float64 {
	r := rng.ForSubsystem(sim.SubsystemFacility)
	eff := make([]float64, n)
	for i := range eff {
		eff[i] = sim.Uniform(r, EfficiencyMin, EfficiencyMax)
	}
	bottleneck := r.Intn(n)
	eff[bottleneck] *= sim.Uniform(r, BottleneckMin, BottleneckMax)
	return eff
}

// Start registers every process of the line with the engine: one per
// workstation, then the restocking controller, the accident injector and
// the snapshot sampler.
func (f *Facility) Start() error {
	for i := range f.stations {
		if err := f.startWorkstation(i); err != nil {
			return err
		}
	}
	if err := f.startRestocker(); err != nil {
		return err
	}
	if err := f.startAccidents(); err != nil {
		return err
	}
	if err := f.startSampler(); err != nil {
		return err
	}
	logrus.Debugf("facility started: %d workstations, %d suppliers, bins of %d, scenario %s",
		len(f.stations), f.supplier.Capacity(), f.params.BinCapacity, f.params.Scenario)
	return nil
}

// Params returns the parameter set the facility was built from.
func (f *Facility) Params() scenario.ParameterSet { return f.params }

// Stations returns the workstations in line order.
func (f *Facility) Stations() []*Workstation { return f.stations }

// Supplier returns the shared supplier resource.
func (f *Facility) Supplier() *sim.Resource { return f.supplier }

// Production returns the number of good items finished by the last workstation.
func (f *Facility) Production() int { return f.production }

// Faulty returns the number of items that failed the quality check.
func (f *Facility) Faulty() int { return f.faulty }

func (f *Facility) terminal(id int) bool {
	return id == len(f.stations)-1
}

// needsRestock applies the early-warning policy: an empty bin always
// triggers, a bin below EarlyRestockLevel of capacity triggers with
// EarlyRestockChance. The random draw happens only in the second case.
func (f *Facility) needsRestock(ws *Workstation, r *rand.Rand) bool {
	if ws.BinLevel == 0 {
		return true
	}
	if float64(ws.BinLevel) < float64(ws.BinCapacity)*EarlyRestockLevel {
		return r.Float64() < EarlyRestockChance
	}
	return false
}
