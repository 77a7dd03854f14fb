package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/montecarlo/internal/config"
	"github.com/rovshanmuradov/montecarlo/internal/logger"
)

const usage = `Usage: montecarlo [-config file] [-debug] [-seed n] [-workers n] <command> [flags]

Commands:
  pi        estimate pi by sampling the unit square
  integral  estimate a definite integral by signed rejection sampling
  gamble    simulate a batch of gamblers
  sweep     study how the pi error shrinks with more points
  tui       open the interactive explorer

Run 'montecarlo <command> -h' for the flags of a command.
`

// errUsage is returned for command line mistakes; the usage text has already been shown.
var errUsage = errors.New("invalid usage")

type globalFlags struct {
	configPath string
	debug      bool
	seed       uint64
	workers    int
	logFile    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "montecarlo: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var g globalFlags
	fs := flag.NewFlagSet("montecarlo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	fs.StringVar(&g.configPath, "config", "", "path to a JSON, YAML or TOML config file")
	fs.BoolVar(&g.debug, "debug", false, "enable debug logging")
	fs.Uint64Var(&g.seed, "seed", 0, "random seed, 0 draws a fresh one")
	fs.IntVar(&g.workers, "workers", 0, "parallel trial workers")
	fs.StringVar(&g.logFile, "log-file", "", "also write JSON logs to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyGlobals(cfg, g, fs)

	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		fs.Usage()
		return errUsage
	}

	appLogger, closeLogs, err := newLogger(cfg, name == "tui")
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = closeLogs() }()

	appLogger.Debug("Configuration loaded",
		zap.String("command", name),
		zap.Uint64("seed", cfg.Seed),
		zap.Int("workers", cfg.Workers))

	return cmd(ctx, env{cfg: cfg, logger: appLogger, stdout: stdout, stderr: stderr}, rest)
}

// newLogger builds the console logger, or for the explorer a logger that only
// writes to the log file so the screen stays intact.
func newLogger(cfg *config.Config, tui bool) (*zap.Logger, func() error, error) {
	if !tui {
		return logger.New(logger.Config{Debug: cfg.DebugLogging, File: cfg.LogFile})
	}
	if cfg.LogFile == "" {
		return zap.NewNop(), func() error { return nil }, nil
	}

	w, err := logger.NewSafeFileWriter(cfg.LogFile, time.Second, nil)
	if err != nil {
		return nil, nil, err
	}
	return logger.CreateTUILogger(cfg.DebugLogging, w), w.Close, nil
}

// applyGlobals lets explicitly given global flags override the configuration.
func applyGlobals(cfg *config.Config, g globalFlags, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.DebugLogging = g.debug
		case "seed":
			cfg.Seed = g.seed
		case "workers":
			cfg.Workers = g.workers
		case "log-file":
			cfg.LogFile = g.logFile
		}
	})
}
