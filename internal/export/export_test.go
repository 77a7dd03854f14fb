package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/montecarlo/internal/estimate"
	"github.com/rovshanmuradov/montecarlo/internal/fit"
	"github.com/rovshanmuradov/montecarlo/internal/gambling"
	"github.com/rovshanmuradov/montecarlo/internal/integral"
)

func fixedExporter() *Exporter {
	exporter := NewExporter(zap.NewNop())
	exporter.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }
	return exporter
}

func testPoints() []estimate.SamplePoint {
	return []estimate.SamplePoint{
		{X: 0.1, Y: 0.2, Class: estimate.Inside},
		{X: 0.9, Y: 0.8, Class: estimate.Outside},
		{X: 0.5, Y: -0.25, Class: estimate.Inside, Contribution: -1},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportPointsCSV(t *testing.T) {
	dir := t.TempDir()
	outputPath, err := fixedExporter().Export(context.Background(), Points("pi_points", testPoints()), Options{
		Format:    FormatCSV,
		OutputDir: dir,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "pi_points_20240301_123000.000.csv"), outputPath)

	records := readCSV(t, outputPath)
	require.Len(t, records, 4)
	assert.Equal(t, PointHeader, records[0])
	assert.Equal(t, []string{"0.1", "0.2", "inside", "0"}, records[1])
	assert.Equal(t, []string{"0.5", "-0.25", "inside", "-1"}, records[3])
}

func TestExportPointsJSON(t *testing.T) {
	dir := t.TempDir()
	outputPath, err := fixedExporter().Export(context.Background(), Points("pi_points", testPoints()), Options{
		Format:    FormatJSON,
		OutputDir: dir,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(outputPath, ".json"))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var decoded struct {
		Dataset  string                 `json:"dataset"`
		RowCount int                    `json:"row_count"`
		Data     []estimate.SamplePoint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, "pi_points", decoded.Dataset)
	assert.Equal(t, 3, decoded.RowCount)
	assert.Equal(t, testPoints(), decoded.Data)
}

func TestExportCreatesOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	outputPath, err := fixedExporter().Export(context.Background(), Scan("scan", []integral.ScanPoint{{X: 0, Y: 0}, {X: 0.5, Y: 0.125}}), Options{
		Format:    FormatCSV,
		OutputDir: dir,
	})
	require.NoError(t, err)

	records := readCSV(t, outputPath)
	assert.Equal(t, [][]string{{"x", "y"}, {"0", "0"}, {"0.5", "0.125"}}, records)
}

func TestExportRejectsInvalidOptions(t *testing.T) {
	exporter := fixedExporter()
	ctx := context.Background()

	_, err := exporter.Export(ctx, Points("points", nil), Options{Format: "xml", OutputDir: t.TempDir()})
	assert.Error(t, err)

	_, err = exporter.Export(ctx, Dataset{}, Options{Format: FormatCSV, OutputDir: t.TempDir()})
	assert.Error(t, err)
}

func TestExportFailsWhenOutputIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := fixedExporter().Export(context.Background(), Points("points", nil), Options{
		Format:     FormatCSV,
		OutputDir:  file,
		MaxElapsed: 100 * time.Millisecond,
	})
	assert.Error(t, err)
}

func TestExportRemovesFileOnEncodeFailure(t *testing.T) {
	dir := t.TempDir()
	ds := Dataset{Name: "broken", Data: map[string]any{"funds": make(chan int)}}

	_, err := fixedExporter().Export(context.Background(), ds, Options{Format: FormatJSON, OutputDir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTrialsDataset(t *testing.T) {
	agg := estimate.Aggregate{
		Trials: estimate.TrialSeries{
			estimate.Result{Value: 3.1}.WithReference(3),
			{Value: 2.9},
		},
		Mean: 3,
	}

	ds := Trials("trials", agg)
	assert.Equal(t, []string{"trial", "value", "absolute_error"}, ds.Header)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "0", ds.Rows[0][0])
	assert.Equal(t, "3.1", ds.Rows[0][1])
	assert.NotEmpty(t, ds.Rows[0][2])
	assert.Equal(t, "", ds.Rows[1][2])
}

func TestSweepDatasetWithTrend(t *testing.T) {
	points := []estimate.SweepPoint{
		{Iteration: 0, Points: 1000, Tests: 10, Mean: 3.1, AbsoluteError: 0.04, SingleError: 0.05},
		{Iteration: 1, Points: 1100, Tests: 10, Mean: 3.14, AbsoluteError: 0.002, SingleError: 0.03},
	}
	trend := &fit.Polynomial{Coefficients: []float64{1, 2}, Shift: 0, Scale: 1}

	ds := Sweep("sweep", points, trend)
	assert.Equal(t, "fitted_error", ds.Header[len(ds.Header)-1])
	assert.Equal(t, "1", ds.Rows[0][6])
	assert.Equal(t, "3", ds.Rows[1][6])

	plain := Sweep("sweep", points, nil)
	assert.Len(t, plain.Header, 6)
	assert.Len(t, plain.Rows[0], 6)
}

func TestPathsAndBatchDatasets(t *testing.T) {
	paths := []gambling.Path{
		{{Period: 0, Funds: 100}, {Period: 1, Funds: 110}},
		{{Period: 0, Funds: 100}, {Period: 1, Funds: 90}},
	}
	ds := Paths("paths", paths)
	assert.Equal(t, []string{"actor", "period", "funds"}, ds.Header)
	assert.Equal(t, [][]string{
		{"0", "0", "100"}, {"0", "1", "110"},
		{"1", "0", "100"}, {"1", "1", "90"},
	}, ds.Rows)

	res := gambling.BatchResult{
		Params:      gambling.DefaultParams(gambling.Policy{Stake: gambling.Flat}),
		Actors:      2,
		Gains:       1,
		GainPercent: 50,
		LossPercent: 50,
		Paths:       paths,
	}
	batch := Batch("batch", res)
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, len(batch.Header), len(batch.Rows[0]))
	assert.Equal(t, "flat", batch.Rows[0][0])
	assert.Nil(t, batch.Data.(gambling.BatchResult).Paths)
	assert.NotNil(t, res.Paths)
}

func TestPointStream(t *testing.T) {
	dir := t.TempDir()
	stream, err := fixedExporter().NewPointStream(dir, "stream")
	require.NoError(t, err)

	sink := stream.Sink()
	for _, p := range testPoints() {
		sink(p)
	}
	assert.Equal(t, uint64(3), stream.Records())
	require.NoError(t, stream.Close())

	records := readCSV(t, stream.Path())
	require.Len(t, records, 4)
	assert.Equal(t, PointHeader, records[0])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("JSONL")
	assert.Error(t, err)
}
