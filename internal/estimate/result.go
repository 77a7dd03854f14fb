package estimate

import "math"

// Classification tells whether a sampled point fell inside the target region.
type Classification int

const (
	Outside Classification = iota
	Inside
)

func (c Classification) String() string {
	if c == Inside {
		return "inside"
	}
	return "outside"
}

// SamplePoint is a single classified draw. Contribution is the signed-count
// delta of an integration sample (+1, -1 or 0); it is always 0 for pi samples.
type SamplePoint struct {
	X            float64        `json:"x"`
	Y            float64        `json:"y"`
	Class        Classification `json:"class"`
	Contribution int            `json:"contribution,omitempty"`
}

// PointSink receives sample points as they are drawn. Sinks observe the
// estimation, they never influence it.
type PointSink func(SamplePoint)

// Result is the output of one estimator invocation.
type Result struct {
	Value         float64  `json:"value"`
	Reference     *float64 `json:"reference,omitempty"`
	AbsoluteError *float64 `json:"absolute_error,omitempty"`
}

// WithReference returns a copy of r that carries ref and |ref - value|.
func (r Result) WithReference(ref float64) Result {
	errAbs := math.Abs(ref - r.Value)
	r.Reference = &ref
	r.AbsoluteError = &errAbs
	return r
}

// AbsError returns the absolute error, or NaN when no reference is known.
func (r Result) AbsError() float64 {
	if r.AbsoluteError == nil {
		return math.NaN()
	}
	return *r.AbsoluteError
}

// TrialSeries is the ordered output of repeating an estimator.
type TrialSeries []Result

// Values returns the estimate of every trial in order.
func (ts TrialSeries) Values() []float64 {
	values := make([]float64, len(ts))
	for i, r := range ts {
		values[i] = r.Value
	}
	return values
}

// Mean returns the arithmetic mean of the trial values, 0 for an empty series.
func (ts TrialSeries) Mean() float64 {
	if len(ts) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range ts {
		sum += r.Value
	}
	return sum / float64(len(ts))
}

// Aggregate summarizes a trial series.
type Aggregate struct {
	Trials        TrialSeries `json:"trials"`
	Mean          float64     `json:"mean"`
	Reference     *float64    `json:"reference,omitempty"`
	AbsoluteError *float64    `json:"absolute_error,omitempty"`
}

// WithReference returns a copy of a that carries ref and |ref - mean|.
func (a Aggregate) WithReference(ref float64) Aggregate {
	errAbs := math.Abs(ref - a.Mean)
	a.Reference = &ref
	a.AbsoluteError = &errAbs
	return a
}

// AbsError returns the absolute error of the mean, or NaN when no reference is known.
func (a Aggregate) AbsError() float64 {
	if a.AbsoluteError == nil {
		return math.NaN()
	}
	return *a.AbsoluteError
}
