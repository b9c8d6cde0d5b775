package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/linesim/sim/scenario"
)

var scenarioConfigPath string

// scenariosCmd lists the scenario table the parameter generator draws from
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the scenario table used for per-run parameter generation",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := scenario.DefaultGeneratorConfig()
		if scenarioConfigPath != "" {
			loaded, err := scenario.LoadGeneratorConfig(scenarioConfigPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			cfg = loaded
		}
		printScenarios(os.Stdout, cfg)
	},
}

func printScenarios(w io.Writer, cfg scenario.GeneratorConfig) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tFAILURE\tQUALITY\tSPEED\tRESTOCK")
	for _, s := range cfg.Scenarios {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Label,
			formatRange(s.Failure), formatRange(s.Quality), formatRange(s.Speed), formatRange(s.Restock))
	}
	tw.Flush()
	fmt.Fprintf(w, "\nbaseline failure probs: %v\n", cfg.Baseline.FailureProbs)
	fmt.Fprintf(w, "jitter %s, aggravation p=%.2f x%s, suppliers [%d, %d], bin %d x%s\n",
		formatRange(cfg.Jitter), cfg.AggravationProb, formatRange(cfg.Aggravation),
		cfg.SupplierCapacity.Min, cfg.SupplierCapacity.Max, cfg.Baseline.BinCapacity, formatRange(cfg.BinScale))
}

func formatRange(r scenario.Range) string {
	return fmt.Sprintf("[%.2f, %.2f]", r.Min, r.Max)
}

func init() {
	scenariosCmd.Flags().StringVar(&scenarioConfigPath, "config", "", "YAML generator configuration file")
}
