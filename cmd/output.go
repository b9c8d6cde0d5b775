package cmd

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/inference-sim/linesim/sim/batch"
)

// writeReport encodes the batch report as indented JSON to path, or to
// stdout when path is "-" or empty.
func writeReport(path string, report *batch.Report) error {
	if path == "" || path == "-" {
		return encodeReport(os.Stdout, report)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := encodeReport(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeReport(w io.Writer, report *batch.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
