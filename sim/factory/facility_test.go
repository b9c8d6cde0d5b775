package factory

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/linesim/sim"
	"github.com/inference-sim/linesim/sim/internal/testutil"
	"github.com/inference-sim/linesim/sim/scenario"
)

func testParams() scenario.ParameterSet {
	return scenario.ParameterSet{
		FailureProbs:         []float64{0.10, 0.08, 0.15, 0.25, 0.20, 0.18},
		FixingTimeMean:       5,
		WorkTimeMean:         4,
		QualityIssueProb:     0.12,
		RestockDelayMean:     3,
		FacilityAccidentProb: 0.001,
		SupplierCapacity:     3,
		BinCapacity:          25,
		Scenario:             "normal",
	}
}

func unitEfficiencies(n int) []float64 {
	eff := make([]float64, n)
	for i := range eff {
		eff[i] = 1
	}
	return eff
}

func newTestFacility(t *testing.T, params scenario.ParameterSet, opts Options, seed int64) (*sim.Engine, *Facility) {
	t.Helper()
	eng := sim.NewEngine()
	f, err := New(eng, params, sim.NewPartitionedRNG(sim.NewSimulationKey(seed)), opts)
	require.NoError(t, err)
	return eng, f
}

func runFacility(t *testing.T, params scenario.ParameterSet, opts Options, seed int64, horizon float64) (*sim.Engine, *Facility) {
	t.Helper()
	eng, f := newTestFacility(t, params, opts, seed)
	require.NoError(t, f.Start())
	require.NoError(t, eng.RunUntil(horizon))
	return eng, f
}

func TestNew_RejectsInvalidParameters(t *testing.T) {
	p := testParams()
	p.SupplierCapacity = 0
	_, err := New(sim.NewEngine(), p, sim.NewPartitionedRNG(1), Options{})
	assert.ErrorIs(t, err, scenario.ErrInvalidParameter)
}

func TestNew_RejectsBadOptions(t *testing.T) {
	rng := sim.NewPartitionedRNG(1)
	_, err := New(sim.NewEngine(), testParams(), rng, Options{Efficiencies: []float64{1, 1}})
	assert.Error(t, err, "efficiency count must match workstation count")
	_, err = New(sim.NewEngine(), testParams(), rng, Options{RestockMode: "telepathic"})
	assert.Error(t, err)
	_, err = New(sim.NewEngine(), testParams(), rng, Options{SnapshotInterval: -1})
	assert.Error(t, err)
}

func TestNew_DrawsEfficienciesWithOneBottleneck(t *testing.T) {
	_, f := newTestFacility(t, testParams(), Options{}, 17)

	lowest := math.Inf(1)
	for _, ws := range f.Stations() {
		assert.Greater(t, ws.Efficiency, EfficiencyMin*BottleneckMin-1e-12)
		assert.Less(t, ws.Efficiency, EfficiencyMax)
		assert.Equal(t, ws.BinCapacity, ws.BinLevel, "bins start full")
		lowest = math.Min(lowest, ws.Efficiency)
	}
	assert.Less(t, lowest, EfficiencyMax*BottleneckMax)
}

func TestFacility_FullRun_Invariants(t *testing.T) {
	// GIVEN a standard line with a capacity watcher on the supplier pool
	eng, f := newTestFacility(t, testParams(), Options{}, 42)
	var last float64
	eng.OnDispatch = func(now float64, _ uint64) {
		if now < last {
			t.Fatalf("clock went backwards: %v < %v", now, last)
		}
		last = now
		if f.Supplier().InUse() > f.Supplier().Capacity() {
			t.Fatalf("supplier over capacity at %v", now)
		}
	}
	require.NoError(t, f.Start())

	// WHEN it runs to the horizon
	require.NoError(t, eng.RunUntil(1000))
	res := f.Result(1)

	// THEN every counter is sane
	assert.Equal(t, 1000.0, eng.Now())
	assert.Equal(t, 1000.0, res.Horizon)
	assert.GreaterOrEqual(t, res.FinalProduction, 0)
	assert.GreaterOrEqual(t, res.FaultyProducts, 0)
	assert.Greater(t, res.FinalProduction+res.FaultyProducts, 0)
	testutil.AssertNonNegative(t, "downtime", res.DowntimePerWorkstation)
	testutil.AssertNonNegative(t, "wait", res.WorkstationDelays)
	lastWS := res.ProcessedPerWS[len(res.ProcessedPerWS)-1]
	inspected := res.FinalProduction + res.FaultyProducts
	assert.LessOrEqual(t, inspected, lastWS)
	assert.GreaterOrEqual(t, inspected, lastWS-1, "at most one item can be cut off mid-repair")
	assert.LessOrEqual(t, res.SupplierMaxInUse, res.SupplierCapacity)
	assert.Greater(t, res.Restocks, 0)
	assert.Equal(t, "normal", res.Scenario)

	// snapshots every 24 units: 24, 48, ..., 984
	require.Len(t, res.Snapshots, 41)
	for k, s := range res.Snapshots {
		assert.Equal(t, float64(24*(k+1)), s.ElapsedTime)
		assert.Len(t, s.Stations, 6)
		if k > 0 {
			assert.GreaterOrEqual(t, s.Production, res.Snapshots[k-1].Production)
		}
	}
}

func TestWorkstation_EmptyBinPollsEveryUnit(t *testing.T) {
	// GIVEN a workstation with an empty bin and no restocking
	eng, f := newTestFacility(t, testParams(), Options{}, 1)
	f.Stations()[0].BinLevel = 0
	require.NoError(t, f.startWorkstation(0))
	var at []float64
	eng.OnDispatch = func(now float64, _ uint64) { at = append(at, now) }

	// WHEN it runs for ten units
	require.NoError(t, eng.RunUntil(10))

	// THEN it re-checked at exactly one-unit intervals and processed nothing
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, at)
	assert.Equal(t, 0, f.Stations()[0].Processed)
	assert.Equal(t, 10.0, f.Stations()[0].WaitTime)
	assert.Equal(t, 0, f.Stations()[0].BinLevel)
}

func TestWorkstation_CertainQualityIssue_AllFaulty(t *testing.T) {
	p := testParams()
	p.QualityIssueProb = 1
	opts := Options{Efficiencies: unitEfficiencies(p.Workstations())}

	_, f := runFacility(t, p, opts, 3, 500)
	res := f.Result(1)

	assert.Equal(t, 0, res.FinalProduction)
	assert.Greater(t, res.FaultyProducts, 0)
	lastWS := res.ProcessedPerWS[len(res.ProcessedPerWS)-1]
	assert.GreaterOrEqual(t, res.FaultyProducts, lastWS-1)
	for _, s := range res.Snapshots {
		assert.Equal(t, 0, s.Production)
	}
}

func TestWorkstation_NoFailuresNoAccidents_NoDowntime(t *testing.T) {
	p := testParams()
	p.FailureProbs = make([]float64, 6)
	p.FacilityAccidentProb = 0

	_, f := runFacility(t, p, Options{}, 4, 500)
	res := f.Result(1)

	assert.Equal(t, make([]float64, 6), res.DowntimePerWorkstation)
	assert.Equal(t, 0.0, res.AverageFixTime)
	assert.Equal(t, make([]int, 6), res.FailuresPerWS)
	assert.Equal(t, 0, res.Accidents)
}

func TestWorkstation_CertainFailure_EveryItemRepaired(t *testing.T) {
	p := testParams()
	p.FailureProbs = []float64{1, 1, 1, 1, 1, 1}
	p.FacilityAccidentProb = 0
	opts := Options{Efficiencies: unitEfficiencies(6)}

	_, f := runFacility(t, p, opts, 5, 300)
	res := f.Result(1)

	var fix float64
	for i := range res.ProcessedPerWS {
		assert.Equal(t, res.ProcessedPerWS[i], res.FailuresPerWS[i])
		assert.Greater(t, res.DowntimePerWorkstation[i], 0.0)
		fix += res.DowntimePerWorkstation[i]
	}
	assert.InDelta(t, fix/6, res.AverageFixTime, 1e-9)
}

func TestAccidents_StopEveryWorkstation(t *testing.T) {
	p := testParams()
	p.FacilityAccidentProb = 1
	eng, f := newTestFacility(t, p, Options{}, 6)
	require.NoError(t, f.startAccidents())

	require.NoError(t, eng.RunUntil(300))

	require.GreaterOrEqual(t, f.accidents, 5)
	assert.GreaterOrEqual(t, f.accidentDowntime, float64(AccidentMinDuration*f.accidents))
	assert.LessOrEqual(t, f.accidentDowntime, float64(AccidentMaxDuration*f.accidents))
	for _, ws := range f.Stations() {
		assert.Equal(t, f.accidentDowntime, ws.Downtime)
	}
}

func TestRestocker_Sequential_RefillsEveryEmptyBinOneAtATime(t *testing.T) {
	eng, f := newTestFacility(t, testParams(), Options{}, 8)
	for _, ws := range f.Stations() {
		ws.BinLevel = 0
	}
	require.NoError(t, f.startRestocker())

	require.NoError(t, eng.RunUntil(200))

	for _, ws := range f.Stations() {
		assert.Equal(t, ws.BinCapacity, ws.BinLevel, "workstation %d", ws.ID)
	}
	assert.Equal(t, 6, f.restocks)
	assert.Equal(t, 1, f.Supplier().MaxInUse(), "the sequential controller holds one slot at a time")
	assert.Greater(t, f.supplierOccupancy, 0.0)
	assert.Equal(t, 0, f.Supplier().InUse())
}

func TestRestocker_Dispatch_SingleSupplierServesInArrivalOrder(t *testing.T) {
	// GIVEN one supplier and two workstations running dry at the same instant
	p := testParams()
	p.SupplierCapacity = 1
	opts := Options{RestockMode: RestockDispatch}
	build := func() (*sim.Engine, *Facility) {
		eng, f := newTestFacility(t, p, opts, 99)
		f.Stations()[0].BinLevel = 0
		f.Stations()[1].BinLevel = 0
		require.NoError(t, f.startRestocker())
		return eng, f
	}

	// WHEN both restocks complete
	eng, f := build()
	require.NoError(t, eng.RunUntil(100))
	total := f.supplierOccupancy

	// THEN the second delivery only started once the first released the slot
	assert.Equal(t, 2, f.restocks)
	assert.Equal(t, 1, f.Supplier().MaxInUse())
	assert.Greater(t, f.Supplier().QueueWait(), 0.0)
	assert.Less(t, f.Supplier().QueueWait(), total)

	// replaying the same run: workstation 1 is still empty until the
	// summed delays have elapsed
	eng2, f2 := build()
	require.NoError(t, eng2.RunUntil(total-1e-9))
	assert.Equal(t, p.BinCapacity, f2.Stations()[0].BinLevel)
	assert.Equal(t, 0, f2.Stations()[1].BinLevel)
	require.NoError(t, eng2.RunUntil(total))
	assert.Equal(t, p.BinCapacity, f2.Stations()[1].BinLevel)
}

func TestNeedsRestock_EarlyWarningPolicy(t *testing.T) {
	_, f := newTestFacility(t, testParams(), Options{}, 1)
	rng := rand.New(rand.NewSource(2))
	ws := &Workstation{BinCapacity: 25}

	ws.BinLevel = 0
	assert.True(t, f.needsRestock(ws, rng))

	ws.BinLevel = 5 // exactly 20%: not below
	for i := 0; i < 100; i++ {
		assert.False(t, f.needsRestock(ws, rng))
	}

	ws.BinLevel = 4
	hits := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if f.needsRestock(ws, rng) {
			hits++
		}
	}
	assert.InDelta(t, EarlyRestockChance, float64(hits)/n, 0.03)
}

func TestFacility_HorizonTruncationIsIdempotent(t *testing.T) {
	// GIVEN two identical facilities
	engA, fA := newTestFacility(t, testParams(), Options{}, 21)
	engB, fB := newTestFacility(t, testParams(), Options{}, 21)
	require.NoError(t, fA.Start())
	require.NoError(t, fB.Start())

	// WHEN A stops at H and then continues, while B stops at H
	require.NoError(t, engA.RunUntil(480))
	atH := fA.Result(1)
	require.NoError(t, engA.RunUntil(960))
	require.NoError(t, engB.RunUntil(480))

	// THEN counters at H match, and A's history before H is B's history
	assert.Equal(t, fB.Result(1), atH)
	final := fA.Result(1)
	assert.Equal(t, atH.Snapshots, final.Snapshots[:len(atH.Snapshots)])

	// AND continuing matches running straight to H+Δ
	_, fC := runFacility(t, testParams(), Options{}, 21, 960)
	assert.Equal(t, fC.Result(1), final)
}

func TestFacility_SameSeedSameResult(t *testing.T) {
	_, a := runFacility(t, testParams(), Options{}, 7, 600)
	_, b := runFacility(t, testParams(), Options{}, 7, 600)
	_, c := runFacility(t, testParams(), Options{}, 8, 600)

	assert.Equal(t, a.Result(1), b.Result(1))
	assert.NotEqual(t, a.Result(1), c.Result(1))
}

func TestResult_IsDetachedCopy(t *testing.T) {
	eng, f := runFacility(t, testParams(), Options{}, 9, 100)
	res := f.Result(3)
	snapshots := len(res.Snapshots)
	res.DowntimePerWorkstation[0] = -1
	res.Snapshots[0].Stations[0].Inventory = -1

	require.NoError(t, eng.RunUntil(200))

	again := f.Result(3)
	assert.Equal(t, 3, again.RunIndex)
	assert.GreaterOrEqual(t, again.DowntimePerWorkstation[0], 0.0)
	assert.GreaterOrEqual(t, again.Snapshots[0].Stations[0].Inventory, 0)
	assert.Len(t, res.Snapshots, snapshots)
}
