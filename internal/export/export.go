package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Format represents the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// Options configures where and how a dataset is written
type Options struct {
	Format    Format
	OutputDir string
	// MaxElapsed bounds the retries of transient file system failures.
	MaxElapsed time.Duration
}

// Dataset is a table of simulation output. Rows feed CSV files, Data is the
// structured payload written to JSON files.
type Dataset struct {
	Name   string
	Header []string
	Rows   [][]string
	Data   any
}

// Exporter writes datasets to files for plotting tools.
type Exporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewExporter creates a new exporter
func NewExporter(logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		logger: logger,
		now:    time.Now,
	}
}

// Export writes ds to a new timestamped file in options.OutputDir and returns its path.
func (e *Exporter) Export(ctx context.Context, ds Dataset, options Options) (string, error) {
	if ds.Name == "" {
		return "", errors.New("dataset name is required")
	}
	if _, err := ParseFormat(string(options.Format)); err != nil {
		return "", err
	}

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(options.OutputDir, e.filename(ds.Name, options.Format))

	write := func(w io.Writer) error {
		if options.Format == FormatCSV {
			return writeCSV(w, ds)
		}
		return e.writeJSON(w, ds)
	}

	if err := writeFile(ctx, outputPath, options.MaxElapsed, write); err != nil {
		return "", err
	}

	e.logger.Info("Dataset exported",
		zap.String("file", outputPath),
		zap.String("dataset", ds.Name),
		zap.Int("rows", len(ds.Rows)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

func (e *Exporter) filename(name string, format Format) string {
	return fmt.Sprintf("%s_%s.%s", name, e.now().Format("20060102_150405.000"), format)
}

// writeFile creates path and fills it with write, retrying transient
// failures. Encoding failures are permanent. A failed write leaves no file behind.
func writeFile(ctx context.Context, path string, maxElapsed time.Duration, write func(io.Writer) error) error {
	if maxElapsed <= 0 {
		maxElapsed = 5 * time.Second
	}

	op := func() (struct{}, error) {
		file, err := os.Create(path)
		if err != nil {
			if errors.Is(err, os.ErrPermission) || errors.Is(err, os.ErrNotExist) {
				return struct{}{}, backoff.Permanent(fmt.Errorf("failed to create file: %w", err))
			}
			return struct{}{}, fmt.Errorf("failed to create file: %w", err)
		}

		if err := write(file); err != nil {
			return struct{}{}, backoff.Permanent(errors.Join(err, file.Close(), os.Remove(path)))
		}
		if err := file.Close(); err != nil {
			return struct{}{}, errors.Join(fmt.Errorf("failed to close file: %w", err), os.Remove(path))
		}
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxElapsed),
	)
	return err
}

func writeCSV(w io.Writer, ds Dataset) error {
	writer := csv.NewWriter(w)
	if len(ds.Header) > 0 {
		if err := writer.Write(ds.Header); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}
	if err := writer.WriteAll(ds.Rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

func (e *Exporter) writeJSON(w io.Writer, ds Dataset) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time `json:"export_time"`
		Dataset    string    `json:"dataset"`
		RowCount   int       `json:"row_count"`
		Data       any       `json:"data"`
	}{
		ExportTime: e.now(),
		Dataset:    ds.Name,
		RowCount:   len(ds.Rows),
		Data:       ds.Data,
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
