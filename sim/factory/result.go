package factory

// StationSnapshot is the state of one workstation at sampling time.
type StationSnapshot struct {
	Workstation int `json:"workstation"`
	Inventory   int `json:"inventory"`
	Processed   int `json:"processed"`
}

// Snapshot is a periodic sample of line output.
type Snapshot struct {
	ElapsedTime float64           `json:"elapsed_time"`
	Production  int               `json:"production"`
	Faulty      int               `json:"faulty"`
	Stations    []StationSnapshot `json:"workstation_states"`
}

// RunResult is the serialization-ready record of one completed run.
// It holds copies only; nothing in it refers back to the simulation.
type RunResult struct {
	RunIndex               int        `json:"run"`
	Seed                   int64      `json:"seed"`
	Horizon                float64    `json:"horizon"`
	Scenario               string     `json:"scenario"`
	FinalProduction        int        `json:"final_production"`
	FaultyProducts         int        `json:"faulty_products"`
	DowntimePerWorkstation []float64  `json:"downtime_per_ws"`
	SupplierOccupancy      float64    `json:"supplier_occupancy"`
	AverageFixTime         float64    `json:"average_fix_time"`
	BottleneckDelay        float64    `json:"bottleneck_delay"`
	WorkstationDelays      []float64  `json:"workstation_delays"`
	ProcessedPerWS         []int      `json:"processed_per_ws"`
	FailuresPerWS          []int      `json:"failures_per_ws"`
	EfficiencyFactors      []float64  `json:"efficiency_factors"`
	SupplierCapacity       int        `json:"supplier_capacity"`
	SupplierMaxInUse       int        `json:"supplier_max_in_use"`
	BinCapacity            int        `json:"bin_capacity"`
	Accidents              int        `json:"accidents"`
	AccidentDowntime       float64    `json:"accident_downtime"`
	Restocks               int        `json:"restocks"`
	Snapshots              []Snapshot `json:"hourly_production"`
}

// Result materializes the facility counters as a RunResult.
// Average fix time and bottleneck delay are totals divided by the
// number of workstations.
func (f *Facility) Result(runIndex int) RunResult {
	n := len(f.stations)
	res := RunResult{
		RunIndex:               runIndex,
		Seed:                   int64(f.rng.Key()),
		Horizon:                f.eng.Now(),
		Scenario:               f.params.Scenario,
		FinalProduction:        f.production,
		FaultyProducts:         f.faulty,
		DowntimePerWorkstation: make([]float64, n),
		SupplierOccupancy:      f.supplierOccupancy,
		WorkstationDelays:      make([]float64, n),
		ProcessedPerWS:         make([]int, n),
		FailuresPerWS:          make([]int, n),
		EfficiencyFactors:      make([]float64, n),
		SupplierCapacity:       f.supplier.Capacity(),
		SupplierMaxInUse:       f.supplier.MaxInUse(),
		BinCapacity:            f.params.BinCapacity,
		Accidents:              f.accidents,
		AccidentDowntime:       f.accidentDowntime,
		Restocks:               f.restocks,
		Snapshots:              make([]Snapshot, len(f.snapshots)),
	}
	var wait float64
	for i, ws := range f.stations {
		res.DowntimePerWorkstation[i] = ws.Downtime
		res.WorkstationDelays[i] = ws.WaitTime
		res.ProcessedPerWS[i] = ws.Processed
		res.FailuresPerWS[i] = ws.Failures
		res.EfficiencyFactors[i] = ws.Efficiency
		wait += ws.WaitTime
	}
	if n > 0 {
		res.AverageFixTime = f.totalFixTime / float64(n)
		res.BottleneckDelay = wait / float64(n)
	}
	for i, s := range f.snapshots {
		s.Stations = append([]StationSnapshot(nil), s.Stations...)
		res.Snapshots[i] = s
	}
	return res
}
