package pi

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/montecarlo/internal/estimate"
	"github.com/rovshanmuradov/montecarlo/internal/sampler"
)

func TestEstimateIsBounded(t *testing.T) {
	est := NewEstimator(sampler.NewUniform(3), zap.NewNop())

	for _, points := range []int{1, 2, 10, 1000} {
		r, err := est.Estimate(points)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, r.Value, 0.0)
		assert.LessOrEqual(t, r.Value, 4.0)
	}
}

func TestEstimateConverges(t *testing.T) {
	est := NewEstimator(sampler.NewUniform(11), nil)

	r, err := est.Estimate(1000000)
	require.NoError(t, err)

	require.NotNil(t, r.Reference)
	assert.Equal(t, math.Pi, *r.Reference)
	assert.InDelta(t, math.Pi, r.Value, 0.01)
	assert.InDelta(t, math.Abs(math.Pi-r.Value), r.AbsError(), 1e-12)
}

func TestEstimateRejectsZeroPoints(t *testing.T) {
	est := NewEstimator(sampler.NewUniform(1), nil)

	_, err := est.Estimate(0)
	assert.ErrorIs(t, err, estimate.ErrInvalidArgument)

	_, err = est.Estimate(-5)
	assert.ErrorIs(t, err, estimate.ErrInvalidArgument)

	_, err = est.EstimateMean(context.Background(), nil, 10, 0)
	assert.ErrorIs(t, err, estimate.ErrInvalidArgument)
}

func TestSinkDoesNotChangeEstimate(t *testing.T) {
	plain, err := NewEstimator(sampler.NewUniform(21), nil).Estimate(5000)
	require.NoError(t, err)

	var points []estimate.SamplePoint
	observed, err := NewEstimator(sampler.NewUniform(21), nil).
		SetSink(func(p estimate.SamplePoint) { points = append(points, p) }).
		Estimate(5000)
	require.NoError(t, err)

	assert.Equal(t, plain.Value, observed.Value)
	require.Len(t, points, 5000)

	inside := 0
	for _, p := range points {
		assert.Equal(t, Classify(p.X, p.Y), p.Class)
		if p.Class == estimate.Inside {
			inside++
		}
	}
	assert.InDelta(t, observed.Value, 4.0*float64(inside)/5000, 1e-12)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, estimate.Inside, Classify(0, 0))
	assert.Equal(t, estimate.Inside, Classify(0.6, 0.6))
	assert.Equal(t, estimate.Outside, Classify(1, 0))
	assert.Equal(t, estimate.Outside, Classify(0.8, 0.8))
}

func TestEstimateMean(t *testing.T) {
	est := NewEstimator(sampler.NewUniform(8), nil)

	out, err := est.EstimateMean(context.Background(), nil, 100, 1000)
	require.NoError(t, err)

	require.Len(t, out.Trials, 100)
	assert.InDelta(t, out.Trials.Mean(), out.Mean, 1e-12)
	assert.InDelta(t, math.Pi, out.Mean, 0.05)
	assert.InDelta(t, math.Abs(math.Pi-out.Mean), out.AbsError(), 1e-12)
}

func TestMeanErrorShrinksWithPoints(t *testing.T) {
	agg := estimate.NewAggregator(nil, nil).SetParallelism(4, 2024)
	est := NewEstimator(nil, nil)

	meanTrialError := func(points int) float64 {
		out, err := est.EstimateMean(context.Background(), agg, 20, points)
		require.NoError(t, err)
		sum := 0.0
		for _, r := range out.Trials {
			sum += r.AbsError()
		}
		return sum / float64(len(out.Trials))
	}

	// expected error scales with 1/sqrt(points): ~0.13, ~0.013, ~0.0013
	errs := []float64{meanTrialError(100), meanTrialError(10_000), meanTrialError(1_000_000)}

	assert.Less(t, errs[1], errs[0])
	assert.Less(t, errs[2], errs[1])
	assert.Less(t, errs[1], 0.03)
	assert.Less(t, errs[2], 0.004)
}

func TestEstimateMeanInParallel(t *testing.T) {
	agg := estimate.NewAggregator(nil, nil).SetParallelism(4, 99)
	est := NewEstimator(nil, nil)

	out, err := est.EstimateMean(context.Background(), agg, 32, 20000)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, out.Mean, 0.02)
}
