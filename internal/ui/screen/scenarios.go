package screen

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/montecarlo/internal/config"
	"github.com/rovshanmuradov/montecarlo/internal/estimate"
	"github.com/rovshanmuradov/montecarlo/internal/gambling"
	"github.com/rovshanmuradov/montecarlo/internal/scenario"
	"github.com/rovshanmuradov/montecarlo/internal/ui"
)

// Scenario is one experiment the explorer can run.
type Scenario struct {
	Route       ui.Route
	Title       string
	Description string
	// ProgressLabel names the unit Run reports progress in.
	ProgressLabel string
	Run           func(ctx context.Context, progress estimate.Progress) (ui.Report, error)
}

// Catalogue returns the scenarios of the explorer in menu order.
func Catalogue(cfg *config.Config, logger *zap.Logger) []Scenario {
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := func(progress estimate.Progress) *scenario.Runner {
		return scenario.NewRunner(cfg, logger).SetProgress(progress)
	}

	scenarios := []Scenario{
		{
			Route:         ui.RoutePi,
			Title:         "π estimate",
			Description:   fmt.Sprintf("Unit-square sampling, %d points × %d tests", cfg.Pi.Points, cfg.Pi.Tests),
			ProgressLabel: "tests",
			Run: func(ctx context.Context, progress estimate.Progress) (ui.Report, error) {
				r, err := runner(progress).Pi(ctx)
				if err != nil {
					return ui.Report{}, err
				}
				return piReport(r), nil
			},
		},
		{
			Route:         ui.RoutePiSweep,
			Title:         "π accuracy sweep",
			Description:   fmt.Sprintf("Error of the π mean over %d iterations, fitted with %s", cfg.Sweep.Iterations, cfg.Sweep.FitModel),
			ProgressLabel: "iterations",
			Run: func(ctx context.Context, progress estimate.Progress) (ui.Report, error) {
				r, err := runner(progress).Sweep(ctx)
				if err != nil {
					return ui.Report{}, err
				}
				return sweepReport(r), nil
			},
		},
		{
			Route:         ui.RouteIntegral,
			Title:         "Integral",
			Description:   fmt.Sprintf("Signed rejection sampling of %s over [%g, %g)", cfg.Integral.Function, cfg.Integral.X1, cfg.Integral.X2),
			ProgressLabel: "tests",
			Run: func(ctx context.Context, progress estimate.Progress) (ui.Report, error) {
				r, err := runner(progress).Integral(ctx)
				if err != nil {
					return ui.Report{}, err
				}
				return integralReport(r), nil
			},
		},
	}

	gamblers := []struct {
		route  ui.Route
		policy gambling.Policy
	}{
		{ui.RouteGamblingFlat, gambling.Policy{Stake: gambling.Flat}},
		{ui.RouteGamblingFlatAbsorbing, gambling.Policy{Stake: gambling.Flat, Absorbing: true}},
		{ui.RouteGamblingDoubling, gambling.Policy{Stake: gambling.Doubling}},
		{ui.RouteGamblingDoublingAbsorbing, gambling.Policy{Stake: gambling.Doubling, Absorbing: true}},
	}
	for _, g := range gamblers {
		params := cfg.Gambling.Params()
		params.Policy = g.policy
		scenarios = append(scenarios, Scenario{
			Route:       g.route,
			Title:       "Gambling: " + g.policy.String(),
			Description: fmt.Sprintf("%d actors, funds %g, stake %g, p=%g, %d periods", cfg.Gambling.Actors, params.StartingFunds, params.Stake, params.WinProbability, params.Periods),
			Run: func(ctx context.Context, _ estimate.Progress) (ui.Report, error) {
				res, err := runner(nil).Gamble(ctx, params, true)
				if err != nil {
					return ui.Report{}, err
				}
				return gamblingReport(res), nil
			},
		})
	}

	return scenarios
}

func stat(label, format string, args ...any) ui.Stat {
	return ui.Stat{Label: label, Value: fmt.Sprintf(format, args...)}
}

func errorStat(label string, v float64) ui.Stat {
	if math.IsNaN(v) {
		return ui.Stat{Label: label, Value: "n/a"}
	}
	return stat(label, "%.6f", v)
}

func piReport(r scenario.PiReport) ui.Report {
	return ui.Report{
		Stats: []ui.Stat{
			stat("Points", "%d", r.Points),
			stat("Tests", "%d", r.Tests),
			stat("Single estimate", "%.6f", r.Single.Value),
			errorStat("Single error", r.Single.AbsError()),
			stat("Mean estimate", "%.6f", r.Mean.Mean),
			errorStat("Mean error", r.Mean.AbsError()),
		},
		Series:      r.Running,
		SeriesLabel: "running estimate",
		Trend:       r.Mean.Trials.Values(),
		TrendLabel:  "trial estimates",
	}
}

func sweepReport(r scenario.SweepReport) ui.Report {
	first, last := r.Points[0], r.Points[len(r.Points)-1]
	errs := make([]float64, len(r.Points))
	for i, p := range r.Points {
		errs[i] = p.AbsoluteError
	}

	report := ui.Report{
		Stats: []ui.Stat{
			stat("Iterations", "%d", len(r.Points)),
			stat("Points", "%d → %d", first.Points, last.Points),
			stat("First error", "%.6f", first.AbsoluteError),
			stat("Last error", "%.6f", last.AbsoluteError),
			stat("Fit model", "%s", r.Model),
		},
		Series:      errs,
		SeriesLabel: "absolute error of the mean",
	}
	if r.Trend != nil {
		coeffs := make([]string, len(r.Trend.Coefficients))
		for i, c := range r.Trend.Coefficients {
			coeffs[i] = fmt.Sprintf("%.3g", c)
		}
		report.Stats = append(report.Stats, stat("Fit coefficients", "%s", strings.Join(coeffs, ", ")))
		report.Trend = r.Fitted
		report.TrendLabel = "fitted " + string(r.Model)
	} else {
		report.Stats = append(report.Stats, stat("Fit coefficients", "not enough iterations"))
	}
	return report
}

func integralReport(r scenario.IntegralReport) ui.Report {
	ys := make([]float64, len(r.Scan))
	for i, p := range r.Scan {
		ys[i] = p.Y
	}

	stats := []ui.Stat{
		stat("Integrand", "%s", r.Integrand.Name),
		stat("Interval", "[%g, %g)", r.X1, r.X2),
		stat("Value range", "[%.4g, %.4g]", r.Range.Min, r.Range.Max),
		stat("Single estimate", "%.6f", r.Single.Value),
		stat("Mean estimate", "%.6f", r.Mean.Mean),
	}
	if r.Mean.Reference != nil {
		stats = append(stats,
			stat("Exact", "%.6f", *r.Mean.Reference),
			errorStat("Mean error", r.Mean.AbsError()))
	}

	return ui.Report{
		Stats:       stats,
		Series:      ys,
		SeriesLabel: "integrand on the bounding grid",
		Trend:       r.Mean.Trials.Values(),
		TrendLabel:  "trial estimates",
	}
}

func gamblingReport(res gambling.BatchResult) ui.Report {
	report := ui.Report{
		Stats: []ui.Stat{
			stat("Actors", "%d", res.Actors),
			stat("Policy", "%s", res.Params.Policy),
			stat("Gained overall", "%.2f%%", res.GainPercent),
			stat("Lost overall", "%.2f%%", res.LossPercent),
			stat("Went broke", "%.2f%%", res.BrokePercent),
			stat("Mean final funds", "%.2f", res.MeanFinalFunds),
		},
	}
	if len(res.Paths) == 0 {
		return report
	}

	report.Series = res.Paths[0].Funds()
	report.SeriesLabel = "funds of actor 0"

	mean := make([]float64, len(res.Paths[0]))
	for _, path := range res.Paths {
		for i, pt := range path {
			mean[i] += pt.Funds
		}
	}
	for i := range mean {
		mean[i] /= float64(len(res.Paths))
	}
	report.Trend = mean
	report.TrendLabel = "mean funds"
	return report
}
