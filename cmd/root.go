package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inference-sim/linesim/sim/batch"
	"github.com/inference-sim/linesim/sim/factory"
)

var (
	// CLI flags for the batch
	configPath        string  // YAML batch configuration
	seed              int64   // Master seed; run i uses seed+i
	simulationHorizon float64 // Virtual length of each run
	runs              int     // Number of runs (0 = random count)
	workers           int     // Runs executed in parallel
	retries           int     // Fresh-seed retries per failed run
	restockMode       string  // sequential or dispatch
	snapshotInterval  float64 // Snapshot sampler period
	logLevel          string  // Log verbosity level

	// CLI flags for output
	outputPath      string // JSON report destination ("-" = stdout)
	metricsTextfile string // Prometheus textfile destination
	printSummary    bool   // Print the batch summary to stderr
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "linesim",
	Short: "Discrete-event simulator for stochastic manufacturing lines",
}

// runCmd executes a batch using parameters from the config file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch of manufacturing line simulations",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		logrus.Infof("Starting batch: horizon=%v seed=%d runs=%d workers=%d restock=%s",
			cfg.Horizon, cfg.Seed, cfg.Runs, cfg.Workers, cfg.Factory.RestockMode)

		collector := batch.NewCollector()
		runner, err := batch.NewRunner(cfg, collector)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		report, err := runner.RunBatch(ctx)
		if err != nil && report == nil {
			logrus.Fatalf("Critical error in simulation: %v", err)
		}
		if err != nil {
			logrus.Warnf("%v", err)
		}

		if err := writeReport(outputPath, report); err != nil {
			logrus.Fatalf("Error saving results: %v", err)
		}
		if metricsTextfile != "" {
			if err := collector.WriteTextfile(metricsTextfile); err != nil {
				logrus.Errorf("Error writing metrics textfile: %v", err)
			}
		}
		if printSummary {
			batch.Summarize(report.Runs).Print(os.Stderr)
		}
		logrus.Info("Simulation complete.")
	},
}

// resolveConfig layers defaults, the optional YAML file and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (batch.Config, error) {
	cfg := batch.DefaultConfig()
	if configPath != "" {
		loaded, err := batch.LoadConfig(configPath)
		if err != nil {
			return batch.Config{}, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("horizon") {
		cfg.Horizon = simulationHorizon
	}
	if flags.Changed("runs") {
		cfg.Runs = runs
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("retries") {
		cfg.Retries = retries
	}
	if flags.Changed("restock-mode") {
		cfg.Factory.RestockMode = factory.RestockMode(restockMode)
	}
	if flags.Changed("snapshot-interval") {
		cfg.Factory.SnapshotInterval = snapshotInterval
	}
	return cfg, cfg.Validate()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerRunFlags binds the run flags to their package variables on fs.
func registerRunFlags(fs *pflag.FlagSet) {
	defaults := batch.DefaultConfig()

	fs.StringVar(&configPath, "config", "", "YAML batch configuration file")
	fs.Int64Var(&seed, "seed", defaults.Seed, "Master seed; run i is seeded with seed+i")
	fs.Float64Var(&simulationHorizon, "horizon", defaults.Horizon, "Virtual length of each run")
	fs.IntVar(&runs, "runs", 0, "Number of runs (0 = random count in [min_runs, max_runs], capped)")
	fs.IntVar(&workers, "workers", defaults.Workers, "Runs executed in parallel")
	fs.IntVar(&retries, "retries", defaults.Retries, "Retries with a fresh seed for each failed run")
	fs.StringVar(&restockMode, "restock-mode", string(factory.RestockSequential), "Restocking controller mode (sequential, dispatch)")
	fs.Float64Var(&snapshotInterval, "snapshot-interval", factory.DefaultSnapshotEvery, "Virtual time between production snapshots")
	fs.StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	fs.StringVarP(&outputPath, "output", "o", "-", "Write the JSON report to this file (- for stdout)")
	fs.StringVar(&metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this textfile")
	fs.BoolVar(&printSummary, "summary", true, "Print a batch summary to stderr")
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd.Flags())

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(configCmd)
}
