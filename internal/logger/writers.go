package logger

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// openAppend creates the parent directory and opens path for appending.
func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// ticker flushes on an interval until stopped.
type ticker struct {
	t    *time.Ticker
	done chan struct{}
	wg   sync.WaitGroup
}

func startTicker(interval time.Duration, flush func()) *ticker {
	tk := &ticker{
		t:    time.NewTicker(interval),
		done: make(chan struct{}),
	}
	tk.wg.Add(1)
	go func() {
		defer tk.wg.Done()
		for {
			select {
			case <-tk.t.C:
				flush()
			case <-tk.done:
				return
			}
		}
	}()
	return tk
}

func (tk *ticker) stop() {
	tk.t.Stop()
	close(tk.done)
	tk.wg.Wait()
}

// SafeFileWriter is a buffered, mutex-guarded file writer with periodic
// flush. It satisfies zapcore.WriteSyncer, so it can back a zap core.
type SafeFileWriter struct {
	mu       sync.Mutex
	writer   *bufio.Writer
	file     *os.File
	ticker   *ticker
	logger   *zap.Logger
	filePath string

	writes  uint64
	flushes uint64
}

// NewSafeFileWriter opens filePath for appending and flushes it every flushInterval.
func NewSafeFileWriter(filePath string, flushInterval time.Duration, logger *zap.Logger) (*SafeFileWriter, error) {
	file, err := openAppend(filePath)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sfw := &SafeFileWriter{
		writer:   bufio.NewWriter(file),
		file:     file,
		logger:   logger,
		filePath: filePath,
	}
	sfw.ticker = startTicker(flushInterval, func() {
		if err := sfw.Sync(); err != nil {
			sfw.logger.Error("Periodic flush failed", zap.String("file", sfw.filePath), zap.Error(err))
		}
	})
	return sfw, nil
}

func (sfw *SafeFileWriter) Write(data []byte) (int, error) {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	n, err := sfw.writer.Write(data)
	if err != nil {
		return n, fmt.Errorf("failed to write data: %w", err)
	}
	sfw.writes++
	return n, nil
}

// Sync flushes buffered data to disk.
func (sfw *SafeFileWriter) Sync() error {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	if err := sfw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	if err := sfw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	sfw.flushes++
	return nil
}

// Close stops the periodic flush, writes what is buffered and closes the file.
func (sfw *SafeFileWriter) Close() error {
	sfw.ticker.stop()

	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	if err := sfw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	return sfw.file.Close()
}

// GetStats returns the number of writes and flushes so far.
func (sfw *SafeFileWriter) GetStats() (writes, flushes uint64) {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()
	return sfw.writes, sfw.flushes
}

// SafeCSVWriter streams CSV records to a file from any goroutine.
type SafeCSVWriter struct {
	mu       sync.Mutex
	writer   *csv.Writer
	file     *os.File
	ticker   *ticker
	logger   *zap.Logger
	filePath string

	records uint64
}

// NewSafeCSVWriter opens filePath for appending. header is written only when
// the file is empty.
func NewSafeCSVWriter(filePath string, header []string, flushInterval time.Duration, logger *zap.Logger) (*SafeCSVWriter, error) {
	file, err := openAppend(filePath)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	scw := &SafeCSVWriter{
		writer:   csv.NewWriter(file),
		file:     file,
		logger:   logger,
		filePath: filePath,
	}

	if stat.Size() == 0 && len(header) > 0 {
		if err := scw.writer.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	scw.ticker = startTicker(flushInterval, func() {
		if err := scw.Flush(); err != nil {
			scw.logger.Error("Periodic CSV flush failed", zap.String("file", scw.filePath), zap.Error(err))
		}
	})
	return scw, nil
}

// WriteRecord appends one record.
func (scw *SafeCSVWriter) WriteRecord(record []string) error {
	scw.mu.Lock()
	defer scw.mu.Unlock()

	if err := scw.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	scw.records++
	return nil
}

// Flush writes buffered records to disk.
func (scw *SafeCSVWriter) Flush() error {
	scw.mu.Lock()
	defer scw.mu.Unlock()

	scw.writer.Flush()
	if err := scw.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return scw.file.Sync()
}

// Close stops the periodic flush, writes what is buffered and closes the file.
func (scw *SafeCSVWriter) Close() error {
	scw.ticker.stop()

	scw.mu.Lock()
	defer scw.mu.Unlock()

	scw.writer.Flush()
	if err := scw.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error on close: %w", err)
	}
	if err := scw.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	scw.logger.Debug("CSV stream closed",
		zap.String("file", scw.filePath),
		zap.Uint64("records", scw.records))
	return nil
}

// Records returns the number of records written, header excluded.
func (scw *SafeCSVWriter) Records() uint64 {
	scw.mu.Lock()
	defer scw.mu.Unlock()
	return scw.records
}
