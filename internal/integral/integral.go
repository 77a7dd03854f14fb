// Package integral estimates definite integrals by rejection sampling the
// rectangle that bounds the integrand over the interval.
package integral

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/montecarlo/internal/estimate"
	"github.com/rovshanmuradov/montecarlo/internal/sampler"
)

const (
	DefaultBoundSteps = 100000
	DefaultPoints     = 100000
)

// Func is an integrand.
type Func func(x float64) float64

// ScanPoint is one abscissa of the range-bounding grid.
type ScanPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScanSink receives the grid points evaluated while bounding the integrand.
type ScanSink func(ScanPoint)

// Range is the observed value range of an integrand over an interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Interval returns the range as a sampling interval.
func (r Range) Interval() sampler.Interval {
	return sampler.Interval{Low: r.Min, High: r.Max}
}

// Bounds evaluates f on steps evenly spaced abscissas x1 + (x2-x1)*i/steps,
// i in [0, steps), and returns the smallest and largest value seen. A sharp
// peak between grid points is missed; finer grids bound tighter.
func Bounds(f Func, x1, x2 float64, steps int, sink ScanSink) (Range, error) {
	if err := validateBounds(f, x1, x2, steps); err != nil {
		return Range{}, err
	}
	return scan(f, x1, x2, steps, sink), nil
}

func scan(f Func, x1, x2 float64, steps int, sink ScanSink) Range {
	first := f(x1)
	r := Range{Min: first, Max: first}
	width := sampler.Interval{Low: x1, High: x2}.Width()

	for i := 0; i < steps; i++ {
		x := x1 + width*float64(i)/float64(steps)
		y := f(x)
		if y > r.Max {
			r.Max = y
		}
		if y < r.Min {
			r.Min = y
		}
		if sink != nil {
			sink(ScanPoint{X: x, Y: y})
		}
	}
	return r
}

// Classify applies the acceptance test to a sample (x, y) with fx = f(x).
// A point is accepted when |y| <= |fx|. Accepted points under a positive lobe
// contribute +1, points above a negative lobe contribute -1 and accepted
// points whose y has the opposite sign of fx (or either is zero) contribute 0.
func Classify(fx, y float64) (estimate.Classification, int) {
	if math.Abs(y) > math.Abs(fx) {
		return estimate.Outside, 0
	}
	switch {
	case fx > 0 && y > 0:
		return estimate.Inside, 1
	case fx < 0 && y < 0:
		return estimate.Inside, -1
	default:
		return estimate.Inside, 0
	}
}

// Estimator computes integral estimates.
type Estimator struct {
	sampler  sampler.Sampler
	sink     estimate.PointSink
	scanSink ScanSink
	logger   *zap.Logger
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

// SetSink registers a receiver for every rejection sample.
func (e *Estimator) SetSink(sink estimate.PointSink) *Estimator {
	e.sink = sink
	return e
}

// SetScanSink registers a receiver for the bounding grid.
func (e *Estimator) SetScanSink(sink ScanSink) *Estimator {
	e.scanSink = sink
	return e
}

// Integrate estimates the integral of f over [x1, x2).
func (e *Estimator) Integrate(f Func, x1, x2 float64, boundSteps, points int) (estimate.Result, error) {
	r, bounds, err := integrate(e.sampler, f, x1, x2, boundSteps, points, e.scanSink, e.sink)
	if err != nil {
		return estimate.Result{}, err
	}

	e.logger.Debug("Integral estimated",
		zap.Float64("x1", x1),
		zap.Float64("x2", x2),
		zap.Int("bound_steps", boundSteps),
		zap.Int("points", points),
		zap.Float64("y_min", bounds.Min),
		zap.Float64("y_max", bounds.Max),
		zap.Float64("value", r.Value))

	return r, nil
}

// IntegrateMean repeats the estimate of in over [x1, x2) tests times. The
// result carries the exact integral as reference when in knows its antiderivative.
func (e *Estimator) IntegrateMean(ctx context.Context, agg *estimate.Aggregator, tests int, in Integrand, x1, x2 float64, boundSteps, points int) (estimate.Aggregate, error) {
	if err := validate(in.F, x1, x2, boundSteps, points); err != nil {
		return estimate.Aggregate{}, err
	}
	if agg == nil {
		agg = estimate.NewAggregator(e.sampler, e.logger)
	}

	out, err := agg.Repeat(ctx, tests, Trial(in, x1, x2, boundSteps, points))
	if err != nil {
		return estimate.Aggregate{}, err
	}
	if exact, ok := in.Exact(x1, x2); ok {
		out = out.WithReference(exact)
	}

	e.logger.Debug("Integral mean estimated",
		zap.String("integrand", in.Name),
		zap.Int("tests", tests),
		zap.Float64("mean", out.Mean))

	return out, nil
}

// Trial returns an aggregator trial integrating in over [x1, x2).
func Trial(in Integrand, x1, x2 float64, boundSteps, points int) estimate.Trial {
	return func(s sampler.Sampler) (estimate.Result, error) {
		r, _, err := integrate(s, in.F, x1, x2, boundSteps, points, nil, nil)
		if err != nil {
			return estimate.Result{}, err
		}
		if exact, ok := in.Exact(x1, x2); ok {
			r = r.WithReference(exact)
		}
		return r, nil
	}
}

func integrate(s sampler.Sampler, f Func, x1, x2 float64, boundSteps, points int, scanSink ScanSink, sink estimate.PointSink) (estimate.Result, Range, error) {
	if err := validate(f, x1, x2, boundSteps, points); err != nil {
		return estimate.Result{}, Range{}, err
	}

	bounds := scan(f, x1, x2, boundSteps, scanSink)
	xs := sampler.Interval{Low: x1, High: x2}
	ys := bounds.Interval()
	area := xs.Width() * ys.Width()

	signed := 0
	for i := 0; i < points; i++ {
		x, y := s.DrawPair(xs, ys)
		class, contribution := Classify(f(x), y)
		signed += contribution
		if sink != nil {
			sink(estimate.SamplePoint{X: x, Y: y, Class: class, Contribution: contribution})
		}
	}

	value := area * float64(signed) / float64(points)
	return estimate.Result{Value: value}, bounds, nil
}

func validateBounds(f Func, x1, x2 float64, steps int) error {
	switch {
	case f == nil:
		return estimate.InvalidArgument("integrand must not be nil")
	case !(sampler.Interval{Low: x1, High: x2}).Valid():
		return estimate.InvalidArgument("interval must satisfy x1 < x2, got [%g, %g]", x1, x2)
	case steps <= 0:
		return estimate.InvalidArgument("bound steps must be positive, got %d", steps)
	}
	return nil
}

func validate(f Func, x1, x2 float64, boundSteps, points int) error {
	if err := validateBounds(f, x1, x2, boundSteps); err != nil {
		return err
	}
	if points <= 0 {
		return estimate.InvalidArgument("points must be positive, got %d", points)
	}
	return nil
}
