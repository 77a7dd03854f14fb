package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/montecarlo/internal/config"
	"github.com/rovshanmuradov/montecarlo/internal/export"
	"github.com/rovshanmuradov/montecarlo/internal/integral"
	"github.com/rovshanmuradov/montecarlo/internal/scenario"
	"github.com/rovshanmuradov/montecarlo/internal/ui/app"
)

type env struct {
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

type command func(ctx context.Context, e env, args []string) error

var commands = map[string]command{
	"pi":       runPi,
	"integral": runIntegral,
	"gamble":   runGamble,
	"sweep":    runSweep,
	"tui":      runTUI,
}

// exportFlags are shared by every command that can write its results.
type exportFlags struct {
	dir    string
	format string
}

func (f *exportFlags) register(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&f.dir, "export", cfg.Export.Dir, "write results to this directory")
	fs.StringVar(&f.format, "format", cfg.Export.Format, "export format: csv or json")
}

func (f *exportFlags) enabled() bool {
	return f.dir != ""
}

func (f *exportFlags) options() (export.Options, error) {
	format, err := export.ParseFormat(f.format)
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{Format: format, OutputDir: f.dir}, nil
}

// parse parses args and rejects a bad export format before any work is done.
func parse(fs *flag.FlagSet, args []string, out *exportFlags) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if out.enabled() {
		_, err := out.options()
		return err
	}
	return nil
}

func newFlagSet(name string, e env) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func runPi(ctx context.Context, e env, args []string) error {
	var out exportFlags
	fs := newFlagSet("pi", e)
	fs.IntVar(&e.cfg.Pi.Points, "points", e.cfg.Pi.Points, "points per estimate")
	fs.IntVar(&e.cfg.Pi.Tests, "tests", e.cfg.Pi.Tests, "estimates to average")
	out.register(fs, e.cfg)
	if err := parse(fs, args, &out); err != nil {
		return err
	}

	runner := scenario.NewRunner(e.cfg, e.logger)
	exporter := newExporter(e)

	var stream *export.PointStream
	if out.enabled() {
		var err error
		if stream, err = exporter.NewPointStream(out.dir, "pi_points"); err != nil {
			return err
		}
		runner.SetPointSink(stream.Sink())
	}

	report, err := runner.Pi(ctx)
	if stream != nil {
		if closeErr := stream.Close(); err == nil {
			err = closeErr
		}
	}
	if err != nil {
		return err
	}

	printSummary(e.stdout, "π estimate", []row{
		{"Points", fmt.Sprintf("%d", report.Points)},
		{"Tests", fmt.Sprintf("%d", report.Tests)},
		{"Single estimate", fmt.Sprintf("%.6f", report.Single.Value)},
		{"Single error", formatError(report.Single.AbsError())},
		{"Mean estimate", fmt.Sprintf("%.6f", report.Mean.Mean)},
		{"Mean error", formatError(report.Mean.AbsError())},
	})

	if !out.enabled() {
		return nil
	}
	return exportAll(ctx, e, exporter, out, export.Trials("pi_trials", report.Mean))
}

func runIntegral(ctx context.Context, e env, args []string) error {
	var (
		out  exportFlags
		poly string
	)
	ic := &e.cfg.Integral
	fs := newFlagSet("integral", e)
	fs.StringVar(&ic.Function, "f", ic.Function, fmt.Sprintf("integrand, one of %v", integral.Names()))
	fs.StringVar(&poly, "poly", "", "polynomial coefficients c0,c1,... overriding -f")
	fs.Float64Var(&ic.X1, "x1", ic.X1, "lower limit")
	fs.Float64Var(&ic.X2, "x2", ic.X2, "upper limit")
	fs.IntVar(&ic.BoundSteps, "steps", ic.BoundSteps, "grid steps used to bound the integrand")
	fs.IntVar(&ic.Points, "points", ic.Points, "points per estimate")
	fs.IntVar(&ic.Tests, "tests", ic.Tests, "estimates to average")
	out.register(fs, e.cfg)
	if err := parse(fs, args, &out); err != nil {
		return err
	}
	if poly != "" {
		ic.Function = scenario.PolyPrefix + poly
	}

	runner := scenario.NewRunner(e.cfg, e.logger)
	exporter := newExporter(e)

	var stream *export.PointStream
	if out.enabled() {
		var err error
		if stream, err = exporter.NewPointStream(out.dir, "integral_points"); err != nil {
			return err
		}
		runner.SetPointSink(stream.Sink())
	}

	report, err := runner.Integral(ctx)
	if stream != nil {
		if closeErr := stream.Close(); err == nil {
			err = closeErr
		}
	}
	if err != nil {
		return err
	}

	rows := []row{
		{"Integrand", report.Integrand.Name},
		{"Interval", fmt.Sprintf("[%g, %g)", report.X1, report.X2)},
		{"Value range", fmt.Sprintf("[%.6g, %.6g]", report.Range.Min, report.Range.Max)},
		{"Single estimate", fmt.Sprintf("%.6f", report.Single.Value)},
		{"Mean estimate", fmt.Sprintf("%.6f", report.Mean.Mean)},
	}
	if report.Mean.Reference != nil {
		rows = append(rows,
			row{"Exact", fmt.Sprintf("%.6f", *report.Mean.Reference)},
			row{"Mean error", formatError(report.Mean.AbsError())})
	}
	printSummary(e.stdout, "Integral", rows)

	if !out.enabled() {
		return nil
	}
	return exportAll(ctx, e, exporter, out,
		export.Scan("integral_scan", report.Scan),
		export.Trials("integral_trials", report.Mean))
}

func runGamble(ctx context.Context, e env, args []string) error {
	var (
		out   exportFlags
		paths bool
	)
	g := &e.cfg.Gambling
	fs := newFlagSet("gamble", e)
	fs.IntVar(&g.Actors, "actors", g.Actors, "number of gamblers")
	fs.Float64Var(&g.StartingFunds, "funds", g.StartingFunds, "starting funds")
	fs.Float64Var(&g.Stake, "stake", g.Stake, "base stake")
	fs.Float64Var(&g.WinProbability, "p", g.WinProbability, "win probability per bet")
	fs.IntVar(&g.Periods, "periods", g.Periods, "bets per gambler")
	fs.BoolVar(&g.Doubling, "double", g.Doubling, "double the stake after every loss")
	fs.BoolVar(&g.Absorbing, "broke", g.Absorbing, "stop a gambler whose funds reach zero")
	fs.BoolVar(&paths, "paths", true, "export every funds path")
	out.register(fs, e.cfg)
	if err := parse(fs, args, &out); err != nil {
		return err
	}

	params := g.Params()
	keepPaths := out.enabled() && paths
	res, err := scenario.NewRunner(e.cfg, e.logger).Gamble(ctx, params, keepPaths)
	if err != nil {
		return err
	}

	printSummary(e.stdout, "Gambling: "+params.Policy.String(), []row{
		{"Actors", fmt.Sprintf("%d", res.Actors)},
		{"Starting funds", fmt.Sprintf("%g", params.StartingFunds)},
		{"Stake", fmt.Sprintf("%g", params.Stake)},
		{"Win probability", fmt.Sprintf("%g", params.WinProbability)},
		{"Periods", fmt.Sprintf("%d", params.Periods)},
		{"Gained overall", fmt.Sprintf("%.2f%%", res.GainPercent)},
		{"Lost overall", fmt.Sprintf("%.2f%%", res.LossPercent)},
		{"Went broke", fmt.Sprintf("%.2f%%", res.BrokePercent)},
		{"Mean final funds", fmt.Sprintf("%.2f", res.MeanFinalFunds)},
	})

	if !out.enabled() {
		return nil
	}
	datasets := []export.Dataset{export.Batch("gambling_batch", res)}
	if keepPaths {
		datasets = append(datasets, export.Paths("gambling_paths", res.Paths))
	}
	return exportAll(ctx, e, newExporter(e), out, datasets...)
}

func runSweep(ctx context.Context, e env, args []string) error {
	var out exportFlags
	s := &e.cfg.Sweep
	fs := newFlagSet("sweep", e)
	fs.IntVar(&s.Iterations, "iterations", s.Iterations, "number of iterations")
	fs.IntVar(&s.Tests, "tests", s.Tests, "tests in the first iteration")
	fs.IntVar(&s.TestsIncrement, "tests-incr", s.TestsIncrement, "tests added per iteration")
	fs.IntVar(&s.PointsFirst, "points-first", s.PointsFirst, "points in the first iteration")
	fs.IntVar(&s.PointsIncrement, "points-incr", s.PointsIncrement, "points added per iteration")
	fs.StringVar(&s.FitModel, "fit", s.FitModel, "error trend model: linear, poly2 ... poly5")
	out.register(fs, e.cfg)
	if err := parse(fs, args, &out); err != nil {
		return err
	}

	report, err := scenario.NewRunner(e.cfg, e.logger).Sweep(ctx)
	if err != nil {
		return err
	}

	first, last := report.Points[0], report.Points[len(report.Points)-1]
	rows := []row{
		{"Iterations", fmt.Sprintf("%d", len(report.Points))},
		{"Points", fmt.Sprintf("%d → %d", first.Points, last.Points)},
		{"First error", fmt.Sprintf("%.6f", first.AbsoluteError)},
		{"Last error", fmt.Sprintf("%.6f", last.AbsoluteError)},
		{"Fit model", string(report.Model)},
	}
	if report.Trend != nil {
		rows = append(rows, row{"Fitted last error", fmt.Sprintf("%.6f", report.Fitted[len(report.Fitted)-1])})
	}
	printSummary(e.stdout, "π accuracy sweep", rows)

	if !out.enabled() {
		return nil
	}
	return exportAll(ctx, e, newExporter(e), out, export.Sweep("pi_sweep", report.Points, report.Trend))
}

func runTUI(ctx context.Context, e env, args []string) error {
	fs := newFlagSet("tui", e)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return app.Run(ctx, e.cfg, e.logger)
}

func newExporter(e env) *export.Exporter {
	return export.NewExporter(e.logger)
}

func exportAll(ctx context.Context, e env, exp *export.Exporter, out exportFlags, datasets ...export.Dataset) error {
	options, err := out.options()
	if err != nil {
		return err
	}
	for _, ds := range datasets {
		path, err := exp.Export(ctx, ds, options)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", ds.Name, err)
		}
		fmt.Fprintf(e.stdout, "exported %s\n", path)
	}
	return nil
}

func formatError(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.6f", v)
}
