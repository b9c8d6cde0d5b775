package batch

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/linesim/sim/factory"
)

// Distribution captures the statistical summary of one metric across runs.
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P05    float64 `json:"p05"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// NewDistribution computes a Distribution from raw values.
// Returns zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		Mean: stat.Mean(sorted, nil),
		P05:  stat.Quantile(0.05, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P95:  stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		d.StdDev = stat.StdDev(sorted, nil)
	}
	return d
}

// Summary aggregates a batch of run results.
type Summary struct {
	Runs              int            `json:"runs"`
	Production        Distribution   `json:"production"`
	Faulty            Distribution   `json:"faulty"`
	FaultyRate        float64        `json:"faulty_rate"` // faulty / (faulty + production), pooled
	SupplierOccupancy Distribution   `json:"supplier_occupancy"`
	BottleneckDelay   Distribution   `json:"bottleneck_delay"`
	MeanDowntimePerWS []float64      `json:"mean_downtime_per_ws"`
	Scenarios         map[string]int `json:"scenarios"`
}

// Summarize computes batch statistics after every run has completed.
func Summarize(results []factory.RunResult) Summary {
	s := Summary{Runs: len(results), Scenarios: make(map[string]int)}
	if len(results) == 0 {
		return s
	}
	production := make([]float64, len(results))
	faulty := make([]float64, len(results))
	occupancy := make([]float64, len(results))
	delay := make([]float64, len(results))
	var good, bad int
	width := 0
	for _, r := range results {
		width = max(width, len(r.DowntimePerWorkstation))
	}
	downtime := make([][]float64, width)
	for i, r := range results {
		production[i] = float64(r.FinalProduction)
		faulty[i] = float64(r.FaultyProducts)
		occupancy[i] = r.SupplierOccupancy
		delay[i] = r.BottleneckDelay
		good += r.FinalProduction
		bad += r.FaultyProducts
		s.Scenarios[r.Scenario]++
		for ws, d := range r.DowntimePerWorkstation {
			downtime[ws] = append(downtime[ws], d)
		}
	}
	s.Production = NewDistribution(production)
	s.Faulty = NewDistribution(faulty)
	s.SupplierOccupancy = NewDistribution(occupancy)
	s.BottleneckDelay = NewDistribution(delay)
	if good+bad > 0 {
		s.FaultyRate = float64(bad) / float64(good+bad)
	}
	s.MeanDowntimePerWS = make([]float64, width)
	for ws, values := range downtime {
		s.MeanDowntimePerWS[ws] = stat.Mean(values, nil)
	}
	return s
}

// Print writes a human-readable summary.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Batch Summary ===")
	fmt.Fprintf(w, "Completed Runs       : %d\n", s.Runs)
	if s.Runs == 0 {
		return
	}
	fmt.Fprintf(w, "Final Production     : mean %.1f, std %.1f, p05 %.0f, p50 %.0f, p95 %.0f\n",
		s.Production.Mean, s.Production.StdDev, s.Production.P05, s.Production.P50, s.Production.P95)
	fmt.Fprintf(w, "Faulty Products      : mean %.1f, std %.1f (rate %.2f%%)\n",
		s.Faulty.Mean, s.Faulty.StdDev, 100*s.FaultyRate)
	fmt.Fprintf(w, "Supplier Occupancy   : mean %.1f\n", s.SupplierOccupancy.Mean)
	fmt.Fprintf(w, "Bottleneck Delay     : mean %.2f\n", s.BottleneckDelay.Mean)
	for ws, d := range s.MeanDowntimePerWS {
		fmt.Fprintf(w, "Downtime WS %-2d       : mean %.1f\n", ws, d)
	}
	labels := make([]string, 0, len(s.Scenarios))
	for l := range s.Scenarios {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(w, "Scenario %-12s: %d runs\n", l, s.Scenarios[l])
	}
}
