package logger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSafeFileWriterConcurrentWrites(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "nested", "safe.log")

	writer, err := NewSafeFileWriter(testFile, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	const goroutines, lines = 8, 100
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < lines; j++ {
				_, err := writer.Write([]byte(fmt.Sprintf("worker %d line %d\n", id, j)))
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	require.NoError(t, writer.Sync())
	writes, flushes := writer.GetStats()
	assert.Equal(t, uint64(goroutines*lines), writes)
	assert.GreaterOrEqual(t, flushes, uint64(1))
	require.NoError(t, writer.Close())

	content, err := os.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, goroutines*lines, strings.Count(string(content), "\n"))
}

func TestSafeCSVWriterWritesHeaderOnce(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "points.csv")
	header := []string{"x", "y", "class"}

	first, err := NewSafeCSVWriter(testFile, header, time.Second, nil)
	require.NoError(t, err)
	require.NoError(t, first.WriteRecord([]string{"0.1", "0.2", "inside"}))
	assert.Equal(t, uint64(1), first.Records())
	require.NoError(t, first.Close())

	second, err := NewSafeCSVWriter(testFile, header, time.Second, nil)
	require.NoError(t, err)
	require.NoError(t, second.WriteRecord([]string{"0.9", "0.9", "outside"}))
	require.NoError(t, second.Close())

	f, err := os.Open(testFile)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{header, {"0.1", "0.2", "inside"}, {"0.9", "0.9", "outside"}}, rows)
}

func TestSafeCSVWriterConcurrentWrites(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "concurrent.csv")

	writer, err := NewSafeCSVWriter(testFile, []string{"id", "n"}, 10*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NoError(t, writer.WriteRecord([]string{fmt.Sprint(id), fmt.Sprint(j)}))
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, writer.Close())

	content, err := os.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, 251, strings.Count(string(content), "\n"))
}

func TestPrettyLoggerFiltersFieldsOutsideDebug(t *testing.T) {
	var quiet bytes.Buffer
	newPrettyLogger(&quiet, false).Info("Pi estimated", zap.Float64("value", 3.14))
	newPrettyLogger(&quiet, false).Debug("hidden")
	assert.Contains(t, quiet.String(), "Pi estimated")
	assert.NotContains(t, quiet.String(), "3.14")
	assert.NotContains(t, quiet.String(), "hidden")

	var verbose bytes.Buffer
	newPrettyLogger(&verbose, true).Debug("Pi estimated", zap.Float64("value", 3.14))
	assert.Contains(t, verbose.String(), "[DEBUG]")
	assert.Contains(t, verbose.String(), "3.14")
}

func TestNewWithLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "montecarlo.log")

	log, closeFn, err := New(Config{File: logFile, FlushInterval: time.Hour})
	require.NoError(t, err)
	log.Info("Batch simulated", zap.Int("actors", 10))
	require.NoError(t, closeFn())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"Batch simulated"`)
	assert.Contains(t, string(content), `"actors":10`)
}

func TestCreateTUILogger(t *testing.T) {
	var buf bytes.Buffer
	CreateTUILogger(false, &buf).Info("Scenario finished", zap.String("scenario", "pi"))
	assert.Contains(t, buf.String(), `"scenario":"pi"`)

	assert.NotPanics(t, func() { CreateTUILogger(true, nil).Info("dropped") })
}
