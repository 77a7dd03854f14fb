package estimate

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// SweepConfig describes an accuracy study: iteration i runs
// Tests + i*TestsIncrement trials of PointsFirst + i*PointsIncrement points.
type SweepConfig struct {
	Iterations      int `json:"iterations" mapstructure:"iterations"`
	Tests           int `json:"tests" mapstructure:"tests"`
	TestsIncrement  int `json:"tests_increment" mapstructure:"tests_increment"`
	PointsFirst     int `json:"points_first" mapstructure:"points_first"`
	PointsIncrement int `json:"points_increment" mapstructure:"points_increment"`
}

// DefaultSweepConfig returns the settings of the classic pi accuracy check.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Iterations:      50,
		Tests:           10,
		TestsIncrement:  0,
		PointsFirst:     1000,
		PointsIncrement: 100,
	}
}

// Validate checks that every iteration has a positive trial and point count.
func (c SweepConfig) Validate() error {
	switch {
	case c.Iterations <= 0:
		return InvalidArgument("iterations must be positive, got %d", c.Iterations)
	case c.Tests <= 0:
		return InvalidArgument("tests must be positive, got %d", c.Tests)
	case c.TestsIncrement < 0:
		return InvalidArgument("tests increment must not be negative, got %d", c.TestsIncrement)
	case c.PointsFirst <= 0:
		return InvalidArgument("points first must be positive, got %d", c.PointsFirst)
	case c.PointsIncrement < 0:
		return InvalidArgument("points increment must not be negative, got %d", c.PointsIncrement)
	}
	return nil
}

// SweepPoint is one iteration of an accuracy study. AbsoluteError is the error
// of the mean over Tests trials, SingleError the error of the first trial alone.
type SweepPoint struct {
	Iteration     int     `json:"iteration"`
	Points        int     `json:"points"`
	Tests         int     `json:"tests"`
	Mean          float64 `json:"mean"`
	AbsoluteError float64 `json:"absolute_error"`
	SingleError   float64 `json:"single_error"`
}

// TrialFactory builds a trial that samples the given number of points.
type TrialFactory func(points int) Trial

// Sweep runs an accuracy study against a known reference value.
func (a *Aggregator) Sweep(ctx context.Context, cfg SweepConfig, reference float64, factory TrialFactory) ([]SweepPoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, InvalidArgument("trial factory must not be nil")
	}

	out := make([]SweepPoint, 0, cfg.Iterations)
	for i := 0; i < cfg.Iterations; i++ {
		points := cfg.PointsFirst + i*cfg.PointsIncrement
		tests := cfg.Tests + i*cfg.TestsIncrement

		agg, err := a.repeat(ctx, tests, factory(points), nil)
		if err != nil {
			return nil, fmt.Errorf("sweep iteration %d: %w", i, err)
		}
		agg = agg.WithReference(reference)

		out = append(out, SweepPoint{
			Iteration:     i,
			Points:        points,
			Tests:         tests,
			Mean:          agg.Mean,
			AbsoluteError: agg.AbsError(),
			SingleError:   math.Abs(reference - agg.Trials[0].Value),
		})
		if a.progress != nil {
			a.progress(i+1, cfg.Iterations)
		}
	}

	a.logger.Debug("Accuracy sweep finished",
		zap.Int("iterations", cfg.Iterations),
		zap.Float64("first_error", out[0].AbsoluteError),
		zap.Float64("last_error", out[len(out)-1].AbsoluteError))

	return out, nil
}

// ErrorSeries returns the (iteration, absolute error) pairs of a sweep, the
// input expected by curve fitting.
func ErrorSeries(points []SweepPoint) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Iteration)
		ys[i] = p.AbsoluteError
	}
	return xs, ys
}
