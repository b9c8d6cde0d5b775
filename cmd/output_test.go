package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/linesim/sim/batch"
	"github.com/inference-sim/linesim/sim/factory"
)

func TestWriteReport_FileUsesReportKeys(t *testing.T) {
	// GIVEN a report with one run and one snapshot
	report := &batch.Report{
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Seed:      42,
		Horizon:   5000,
		Requested: 2,
		Runs: []factory.RunResult{{
			RunIndex:               1,
			FinalProduction:        812,
			FaultyProducts:         97,
			DowntimePerWorkstation: []float64{10, 0, 3},
			Snapshots: []factory.Snapshot{{
				ElapsedTime: 24,
				Production:  4,
				Stations:    []factory.StationSnapshot{{Workstation: 0, Inventory: 20, Processed: 6}},
			}},
		}},
		Failures: []batch.RunFailure{{RunIndex: 2, Attempts: 1, Error: "boom"}},
	}
	path := filepath.Join(t.TempDir(), "report.json")

	// WHEN it is written
	require.NoError(t, writeReport(path, report))

	// THEN the file decodes with the documented field names
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	runs := doc["runs"].([]any)
	require.Len(t, runs, 1)
	run := runs[0].(map[string]any)
	assert.Equal(t, 812.0, run["final_production"])
	assert.Equal(t, 97.0, run["faulty_products"])
	assert.Equal(t, []any{10.0, 0.0, 3.0}, run["downtime_per_ws"])
	hourly := run["hourly_production"].([]any)
	require.Len(t, hourly, 1)
	snap := hourly[0].(map[string]any)
	assert.Equal(t, 24.0, snap["elapsed_time"])
	assert.Len(t, snap["workstation_states"], 1)

	failures := doc["failures"].([]any)
	assert.Equal(t, "boom", failures[0].(map[string]any)["error"])
	assert.Equal(t, "2024-05-01T12:00:00Z", doc["timestamp"])
}

func TestWriteReport_BadPath(t *testing.T) {
	err := writeReport(filepath.Join(t.TempDir(), "missing", "report.json"), &batch.Report{})
	assert.Error(t, err)
}
