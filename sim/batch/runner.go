// Package batch runs many isolated facility simulations and aggregates
// their results. Runs may execute in parallel; each one owns its engine,
// facility and random streams.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/linesim/sim"
	"github.com/inference-sim/linesim/sim/factory"
	"github.com/inference-sim/linesim/sim/scenario"
)

// Report is the outcome of one batch.
type Report struct {
	Timestamp time.Time           `json:"timestamp"`
	Seed      int64               `json:"seed"`
	Horizon   float64             `json:"horizon"`
	Requested int                 `json:"requested_runs"`
	Runs      []factory.RunResult `json:"runs"`
	Failures  []RunFailure        `json:"failures,omitempty"`
}

// RunFailure is the serializable form of a skipped run.
type RunFailure struct {
	RunIndex int    `json:"run"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error"`
}

// Runner executes batches of independent runs. Each run gets its own engine,
// facility, supplier resource and RNG; nothing mutable is shared between runs.
type Runner struct {
	cfg       Config
	gen       *scenario.Generator
	collector *Collector
	now       func() time.Time

	// beforeRun is called after a run is built and before its clock advances.
	beforeRun func(runIndex int, eng *sim.Engine, f *factory.Facility) error
}

// NewRunner validates cfg. collector may be nil.
func NewRunner(cfg Config, collector *Collector) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batch config: %w", err)
	}
	gen, err := scenario.NewGenerator(cfg.Generator)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, gen: gen, collector: collector, now: time.Now}, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

type outcome struct {
	result factory.RunResult
	err    *RunError
	done   bool
}

// RunBatch executes the configured number of runs and returns the completed
// results in run order. Failed runs are logged and skipped. If every run
// fails the error matches ErrAllRunsFailed.
//
// ctx is checked between runs only; a run that has started always reaches
// its horizon. On cancellation the report holds the runs finished so far and
// the context error is returned.
func (r *Runner) RunBatch(ctx context.Context) (*Report, error) {
	batchRNG := sim.NewPartitionedRNG(sim.NewSimulationKey(r.cfg.Seed)).ForSubsystem(sim.SubsystemBatch)
	count := r.cfg.ResolveRunCount(batchRNG)
	report := &Report{
		Timestamp: r.now(),
		Seed:      r.cfg.Seed,
		Horizon:   r.cfg.Horizon,
		Requested: count,
	}
	logrus.Infof("Running simulation with %d runs at %s", count, report.Timestamp.Format(time.DateTime))

	outcomes := make([]outcome, count)
	var completed int
	var mu sync.Mutex
	progress := func() {
		mu.Lock()
		completed++
		if completed%10 == 0 || completed == count {
			logrus.Infof("Completed simulation run %d/%d", completed, count)
		}
		mu.Unlock()
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(r.cfg.Workers, max(count, 1)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := r.runWithRetries(i + 1)
				outcomes[i] = outcome{result: res, err: err, done: true}
				progress()
			}
		}()
	}

	var cancelErr error
dispatch:
	for i := 0; i < count; i++ {
		// checkpoint before every run
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	var failures []*RunError
	for _, o := range outcomes {
		if !o.done {
			continue
		}
		if o.err != nil {
			failures = append(failures, o.err)
			report.Failures = append(report.Failures, RunFailure{
				RunIndex: o.err.RunIndex, Attempts: o.err.Attempts, Error: o.err.Err.Error(),
			})
			continue
		}
		report.Runs = append(report.Runs, o.result)
	}

	if cancelErr != nil {
		logrus.Warnf("batch cancelled after %d of %d runs: %v", len(report.Runs)+len(failures), count, cancelErr)
		return report, fmt.Errorf("batch cancelled: %w", cancelErr)
	}
	if len(report.Runs) == 0 {
		return nil, &BatchError{Failures: failures}
	}
	logrus.Infof("Completed %d simulation runs successfully (%d failed)", len(report.Runs), len(failures))
	return report, nil
}

// runWithRetries runs index once and, if it fails, up to Retries more times
// with fresh randomness. A retry is a new run, never a replay.
func (r *Runner) runWithRetries(index int) (factory.RunResult, *RunError) {
	var last error
	attempts := 0
	for attempt := 0; attempt <= r.cfg.Retries; attempt++ {
		attempts++
		res, err := r.RunOne(index, attempt)
		if err == nil {
			if attempt > 0 {
				logrus.Infof("run %d succeeded on attempt %d", index, attempt+1)
			}
			return res, nil
		}
		last = err
		if attempt < r.cfg.Retries {
			r.collector.observeRetry()
			logrus.Warnf("Error in simulation run %d (attempt %d): %v; retrying with fresh seed", index, attempt+1, err)
		}
	}
	logrus.Errorf("Error in simulation run %d: %v", index, last)
	r.collector.observeFailure()
	return factory.RunResult{}, &RunError{RunIndex: index, Attempts: attempts, Err: last}
}

// RunOne builds and executes a single run. Panics raised while building or
// advancing the run are recovered and returned as errors.
func (r *Runner) RunOne(index, attempt int) (res factory.RunResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in run %d: %v", index, rec)
		}
	}()

	rng := sim.NewPartitionedRNG(sim.RunKey(r.cfg.Seed, index, attempt))
	params := r.gen.Generate(rng.ForSubsystem(sim.SubsystemParams))

	eng := sim.NewEngine()
	f, err := factory.New(eng, params, rng, r.cfg.Factory)
	if err != nil {
		return factory.RunResult{}, fmt.Errorf("building facility: %w", err)
	}
	if err := f.Start(); err != nil {
		return factory.RunResult{}, fmt.Errorf("starting facility: %w", err)
	}
	if r.beforeRun != nil {
		if err := r.beforeRun(index, eng, f); err != nil {
			return factory.RunResult{}, err
		}
	}

	start := time.Now()
	if err := eng.RunUntil(r.cfg.Horizon); err != nil {
		return factory.RunResult{}, fmt.Errorf("advancing clock: %w", err)
	}
	res = f.Result(index)
	r.collector.observeRun(res, eng.Dispatched(), time.Since(start))
	logrus.Debugf("run %d (%s): production=%d faulty=%d events=%d",
		index, res.Scenario, res.FinalProduction, res.FaultyProducts, eng.Dispatched())
	return res, nil
}
