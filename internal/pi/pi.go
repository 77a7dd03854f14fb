// Package pi estimates the constant pi from the share of uniform points in
// the unit square that land inside the unit quarter circle.
package pi

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/montecarlo/internal/estimate"
	"github.com/rovshanmuradov/montecarlo/internal/sampler"
)

const (
	DefaultPoints = 100000
	DefaultTests  = 100
)

// Estimator computes pi estimates.
type Estimator struct {
	sampler sampler.Sampler
	sink    estimate.PointSink
	logger  *zap.Logger
}

// NewEstimator creates an estimator drawing from s. A nil sampler means the
// process-wide one.
func NewEstimator(s sampler.Sampler, logger *zap.Logger) *Estimator {
	if s == nil {
		s = sampler.Global()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		sampler: s,
		logger:  logger,
	}
}

// SetSink registers a receiver for every classified point.
func (e *Estimator) SetSink(sink estimate.PointSink) *Estimator {
	e.sink = sink
	return e
}

// Estimate samples points draws and returns 4 * inside / points with pi as reference.
func (e *Estimator) Estimate(points int) (estimate.Result, error) {
	r, err := estimateWith(e.sampler, points, e.sink)
	if err != nil {
		return estimate.Result{}, err
	}

	e.logger.Debug("Pi estimated",
		zap.Int("points", points),
		zap.Float64("value", r.Value),
		zap.Float64("abs_error", r.AbsError()))

	return r, nil
}

// EstimateMean repeats Estimate tests times and reports the mean with its
// distance from pi. Points are not forwarded to the sink in this mode.
func (e *Estimator) EstimateMean(ctx context.Context, agg *estimate.Aggregator, tests, points int) (estimate.Aggregate, error) {
	if err := validatePoints(points); err != nil {
		return estimate.Aggregate{}, err
	}
	if agg == nil {
		agg = estimate.NewAggregator(e.sampler, e.logger)
	}

	out, err := agg.Repeat(ctx, tests, Trial(points))
	if err != nil {
		return estimate.Aggregate{}, err
	}
	out = out.WithReference(math.Pi)

	e.logger.Debug("Pi mean estimated",
		zap.Int("tests", tests),
		zap.Int("points", points),
		zap.Float64("mean", out.Mean),
		zap.Float64("abs_error", out.AbsError()))

	return out, nil
}

// Trial returns an aggregator trial sampling the given number of points.
func Trial(points int) estimate.Trial {
	return func(s sampler.Sampler) (estimate.Result, error) {
		return estimateWith(s, points, nil)
	}
}

// Classify reports whether (x, y) lies strictly inside the unit circle.
func Classify(x, y float64) estimate.Classification {
	if math.Hypot(x, y) < 1 {
		return estimate.Inside
	}
	return estimate.Outside
}

func estimateWith(s sampler.Sampler, points int, sink estimate.PointSink) (estimate.Result, error) {
	if err := validatePoints(points); err != nil {
		return estimate.Result{}, err
	}

	inside := 0
	for i := 0; i < points; i++ {
		x, y := s.DrawPair(sampler.Unit, sampler.Unit)
		class := Classify(x, y)
		if class == estimate.Inside {
			inside++
		}
		if sink != nil {
			sink(estimate.SamplePoint{X: x, Y: y, Class: class})
		}
	}

	value := 4.0 * float64(inside) / float64(points)
	return estimate.Result{Value: value}.WithReference(math.Pi), nil
}

func validatePoints(points int) error {
	if points <= 0 {
		return estimate.InvalidArgument("points must be positive, got %d", points)
	}
	return nil
}
