// Package scenario runs the configured experiments end to end. The command
// line and the interactive explorer both drive it.
package scenario

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/montecarlo/internal/config"
	"github.com/rovshanmuradov/montecarlo/internal/estimate"
	"github.com/rovshanmuradov/montecarlo/internal/fit"
	"github.com/rovshanmuradov/montecarlo/internal/gambling"
	"github.com/rovshanmuradov/montecarlo/internal/integral"
	"github.com/rovshanmuradov/montecarlo/internal/pi"
	"github.com/rovshanmuradov/montecarlo/internal/sampler"
)

// MaxSeries caps the length of the series kept for plotting.
const MaxSeries = 400

// PolyPrefix marks an integrand given by its coefficients, e.g. "poly:1,0,3".
const PolyPrefix = "poly:"

// Runner executes experiments with the parameters of a configuration.
type Runner struct {
	cfg      *config.Config
	sink     estimate.PointSink
	progress estimate.Progress
	logger   *zap.Logger
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// SetPointSink receives the points of the single pi and integral runs.
func (r *Runner) SetPointSink(sink estimate.PointSink) *Runner {
	r.sink = sink
	return r
}

// SetProgress receives trial progress, or iteration progress for sweeps.
func (r *Runner) SetProgress(progress estimate.Progress) *Runner {
	r.progress = progress
	return r
}

// Config returns the configuration the runner uses.
func (r *Runner) Config() *config.Config {
	return r.cfg
}

func (r *Runner) seed() uint64 {
	if r.cfg.Seed != 0 {
		return r.cfg.Seed
	}
	return rand.Uint64()
}

func (r *Runner) aggregator(s sampler.Sampler) *estimate.Aggregator {
	agg := estimate.NewAggregator(s, r.logger).SetProgress(r.progress)
	if r.cfg.Workers > 1 {
		agg.SetParallelism(r.cfg.Workers, r.seed())
	}
	return agg
}

// stride returns the sampling step that keeps n values within MaxSeries.
func stride(n int) int {
	if n <= MaxSeries {
		return 1
	}
	return (n + MaxSeries - 1) / MaxSeries
}

// PiReport is the outcome of a pi experiment.
type PiReport struct {
	Points int
	Tests  int
	// Single is one estimate over Points points.
	Single estimate.Result
	// Running is the estimate after every stride of points of the single run.
	Running []float64
	Mean    estimate.Aggregate
}

// Pi runs one estimate of pi with the point sink attached, then the mean over
// the configured number of tests.
func (r *Runner) Pi(ctx context.Context) (PiReport, error) {
	points, tests := r.cfg.Pi.Points, r.cfg.Pi.Tests
	s := r.cfg.NewSampler()

	step := stride(points)
	running := make([]float64, 0, MaxSeries)
	seen, inside := 0, 0
	sink := func(p estimate.SamplePoint) {
		seen++
		if p.Class == estimate.Inside {
			inside++
		}
		if seen%step == 0 {
			running = append(running, 4*float64(inside)/float64(seen))
		}
		if r.sink != nil {
			r.sink(p)
		}
	}

	est := pi.NewEstimator(s, r.logger).SetSink(sink)
	single, err := est.Estimate(points)
	if err != nil {
		return PiReport{}, err
	}

	mean, err := est.EstimateMean(ctx, r.aggregator(s), tests, points)
	if err != nil {
		return PiReport{}, err
	}

	r.logger.Info("Pi estimated",
		zap.Int("points", points),
		zap.Int("tests", tests),
		zap.Float64("single", single.Value),
		zap.Float64("mean", mean.Mean),
		zap.Float64("abs_error", mean.AbsError()))

	return PiReport{Points: points, Tests: tests, Single: single, Running: running, Mean: mean}, nil
}

// SweepReport is the outcome of a pi accuracy sweep.
type SweepReport struct {
	Points []estimate.SweepPoint
	Model  fit.Model
	// Trend is nil when the error series could not be fitted.
	Trend  *fit.Polynomial
	Fitted []float64
}

// Sweep runs the accuracy study of the pi estimator and fits the error series.
func (r *Runner) Sweep(ctx context.Context) (SweepReport, error) {
	points, err := r.aggregator(r.cfg.NewSampler()).Sweep(ctx, r.cfg.Sweep.Estimate(), math.Pi, pi.Trial)
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{Points: points, Model: fit.Model(r.cfg.Sweep.FitModel)}
	xs, ys := estimate.ErrorSeries(points)
	trend, err := fit.Fit(xs, ys, report.Model)
	if err != nil {
		r.logger.Warn("Error trend not fitted", zap.String("model", string(report.Model)), zap.Error(err))
		return report, nil
	}
	report.Trend = &trend
	report.Fitted = trend.EvalAll(xs)

	r.logger.Info("Accuracy sweep finished",
		zap.Int("iterations", len(points)),
		zap.Float64("last_error", points[len(points)-1].AbsoluteError),
		zap.String("model", string(report.Model)))

	return report, nil
}

// ResolveIntegrand returns the catalogued integrand called name, or the
// polynomial of a "poly:c0,c1,..." specification.
func ResolveIntegrand(name string) (integral.Integrand, error) {
	if coeffs, ok := strings.CutPrefix(strings.TrimSpace(name), PolyPrefix); ok {
		parsed, err := integral.ParseCoefficients(coeffs)
		if err != nil {
			return integral.Integrand{}, err
		}
		return integral.Polynomial(parsed...), nil
	}
	return integral.Lookup(name)
}

// IntegralReport is the outcome of an integration experiment.
type IntegralReport struct {
	Integrand integral.Integrand
	X1, X2    float64
	// Range is the value range found by the bounding scan.
	Range  integral.Range
	Scan   []integral.ScanPoint
	Single estimate.Result
	Mean   estimate.Aggregate
}

// Integral integrates the configured function once with the sinks attached,
// then averages the configured number of tests.
func (r *Runner) Integral(ctx context.Context) (IntegralReport, error) {
	ic := r.cfg.Integral
	in, err := ResolveIntegrand(ic.Function)
	if err != nil {
		return IntegralReport{}, err
	}
	s := r.cfg.NewSampler()

	report := IntegralReport{Integrand: in, X1: ic.X1, X2: ic.X2}
	step := stride(ic.BoundSteps)
	scanned := 0
	scanSink := func(p integral.ScanPoint) {
		if scanned == 0 || p.Y < report.Range.Min {
			report.Range.Min = p.Y
		}
		if scanned == 0 || p.Y > report.Range.Max {
			report.Range.Max = p.Y
		}
		if scanned%step == 0 {
			report.Scan = append(report.Scan, p)
		}
		scanned++
	}

	est := integral.NewEstimator(s, r.logger).SetScanSink(scanSink)
	if r.sink != nil {
		est.SetSink(r.sink)
	}

	report.Single, err = est.Integrate(in.F, ic.X1, ic.X2, ic.BoundSteps, ic.Points)
	if err != nil {
		return IntegralReport{}, err
	}
	if exact, ok := in.Exact(ic.X1, ic.X2); ok {
		report.Single = report.Single.WithReference(exact)
	}

	report.Mean, err = est.IntegrateMean(ctx, r.aggregator(s), ic.Tests, in, ic.X1, ic.X2, ic.BoundSteps, ic.Points)
	if err != nil {
		return IntegralReport{}, err
	}

	r.logger.Info("Integral estimated",
		zap.String("integrand", in.Name),
		zap.Float64("x1", ic.X1),
		zap.Float64("x2", ic.X2),
		zap.Float64("single", report.Single.Value),
		zap.Float64("mean", report.Mean.Mean))

	return report, nil
}

// Gamble simulates the configured number of actors with params.
func (r *Runner) Gamble(ctx context.Context, params gambling.Params, keepPaths bool) (gambling.BatchResult, error) {
	sim := gambling.NewSimulator(r.cfg.NewSampler(), r.logger).KeepPaths(keepPaths)
	if r.cfg.Workers > 1 {
		sim.SetParallelism(r.cfg.Workers, r.seed())
	}

	res, err := sim.Batch(ctx, r.cfg.Gambling.Actors, params)
	if err != nil {
		return gambling.BatchResult{}, fmt.Errorf("gambling batch failed: %w", err)
	}

	r.logger.Info("Gambling batch finished",
		zap.Stringer("policy", params.Policy),
		zap.Int("actors", res.Actors),
		zap.Float64("gain_percent", res.GainPercent),
		zap.Float64("loss_percent", res.LossPercent),
		zap.Float64("broke_percent", res.BrokePercent))

	return res, nil
}
