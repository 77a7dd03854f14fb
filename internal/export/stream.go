package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/montecarlo/internal/estimate"
	"github.com/rovshanmuradov/montecarlo/internal/logger"
)

// PointStream writes sample points to a CSV file while an estimator runs,
// so large samples never have to be held in memory.
type PointStream struct {
	writer *logger.SafeCSVWriter
	path   string
	err    error
}

// NewPointStream creates a timestamped CSV file for name in dir.
func (e *Exporter) NewPointStream(dir, name string) (*PointStream, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, e.filename(name, FormatCSV))
	writer, err := logger.NewSafeCSVWriter(path, PointHeader, time.Second, e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open point stream: %w", err)
	}

	e.logger.Debug("Point stream opened", zap.String("file", path))
	return &PointStream{writer: writer, path: path}, nil
}

// Sink returns a point sink feeding the stream. The first write error is kept
// and reported by Close.
func (ps *PointStream) Sink() estimate.PointSink {
	return func(p estimate.SamplePoint) {
		if ps.err != nil {
			return
		}
		ps.err = ps.writer.WriteRecord(PointRecord(p))
	}
}

// Path returns the file being written.
func (ps *PointStream) Path() string {
	return ps.path
}

// Records returns the number of points written.
func (ps *PointStream) Records() uint64 {
	return ps.writer.Records()
}

// Close flushes and closes the file.
func (ps *PointStream) Close() error {
	closeErr := ps.writer.Close()
	if ps.err != nil {
		return ps.err
	}
	return closeErr
}
