package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inference-sim/linesim/sim/factory"
)

// Collector exports batch metrics in Prometheus format. Each Collector owns
// its registry so that concurrent batches never share series. A nil
// *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	// RunsTotal counts finished runs by outcome (completed, failed, retried)
	RunsTotal *prometheus.CounterVec
	// ScenarioRuns counts completed runs per scenario label
	ScenarioRuns *prometheus.CounterVec
	// Production tracks the final production of each completed run
	Production prometheus.Histogram
	// Faulty tracks the faulty products of each completed run
	Faulty prometheus.Histogram
	// EventsDispatched counts simulation events across all runs
	EventsDispatched prometheus.Counter
	// RunSeconds tracks the wall-clock time spent advancing each run
	RunSeconds prometheus.Histogram
}

// NewCollector creates a collector with all series registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linesim_runs_total",
				Help: "Simulation runs by outcome",
			},
			[]string{"outcome"},
		),
		ScenarioRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linesim_scenario_runs_total",
				Help: "Completed simulation runs per scenario",
			},
			[]string{"scenario"},
		),
		Production: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "linesim_run_final_production",
				Help:    "Good items produced per completed run",
				Buckets: prometheus.LinearBuckets(0, 100, 15),
			},
		),
		Faulty: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "linesim_run_faulty_products",
				Help:    "Faulty items per completed run",
				Buckets: prometheus.LinearBuckets(0, 25, 12),
			},
		),
		EventsDispatched: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "linesim_events_dispatched_total",
				Help: "Simulation events dispatched across all runs",
			},
		),
		RunSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "linesim_run_wall_seconds",
				Help:    "Wall-clock seconds spent advancing one run",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
	}
	c.registry.MustRegister(c.RunsTotal, c.ScenarioRuns, c.Production, c.Faulty, c.EventsDispatched, c.RunSeconds)
	return c
}

// Registry returns the registry holding the collector's series.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes every series to path in the text exposition format,
// suitable for a node-exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

func (c *Collector) observeRun(res factory.RunResult, events uint64, wall time.Duration) {
	if c == nil {
		return
	}
	c.RunsTotal.WithLabelValues("completed").Inc()
	c.ScenarioRuns.WithLabelValues(res.Scenario).Inc()
	c.Production.Observe(float64(res.FinalProduction))
	c.Faulty.Observe(float64(res.FaultyProducts))
	c.EventsDispatched.Add(float64(events))
	c.RunSeconds.Observe(wall.Seconds())
}

func (c *Collector) observeFailure() {
	if c == nil {
		return
	}
	c.RunsTotal.WithLabelValues("failed").Inc()
}

func (c *Collector) observeRetry() {
	if c == nil {
		return
	}
	c.RunsTotal.WithLabelValues("retried").Inc()
}
