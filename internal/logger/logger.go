package logger

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects where log entries go.
type Config struct {
	Debug bool
	// File, when set, receives every entry as JSON in addition to the console.
	File          string
	FlushInterval time.Duration
}

// New builds the CLI logger: pretty console output plus an optional JSON
// log file. The returned close function flushes and closes the file.
func New(cfg Config) (*zap.Logger, func() error, error) {
	console := newPrettyLogger(os.Stdout, cfg.Debug)
	if cfg.File == "" {
		return console, console.Sync, nil
	}

	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = time.Second
	}
	file, err := NewSafeFileWriter(cfg.File, interval, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), file, levelFor(cfg.Debug))
	logger := zap.New(zapcore.NewTee(console.Core(), fileCore))

	closeFn := func() error {
		_ = logger.Sync()
		return file.Close()
	}
	return logger, closeFn, nil
}
