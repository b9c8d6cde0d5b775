package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/linesim/sim/batch"
)

var defaultsConfigPath string

// configCmd prints the effective batch configuration as YAML. The output is
// accepted by `run --config` unchanged.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective batch configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := batch.DefaultConfig()
		if defaultsConfigPath != "" {
			loaded, err := batch.LoadConfig(defaultsConfigPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			cfg = loaded
		}
		if err := dumpConfig(os.Stdout, cfg); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func dumpConfig(w io.Writer, cfg batch.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

func init() {
	configCmd.Flags().StringVar(&defaultsConfigPath, "config", "", "YAML batch configuration file to overlay on the defaults")
}
