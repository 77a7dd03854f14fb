package fit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitRecoversExactPolynomial(t *testing.T) {
	tests := []struct {
		model Model
		f     func(x float64) float64
	}{
		{Linear, func(x float64) float64 { return 2*x - 3 }},
		{Poly2, func(x float64) float64 { return 0.5*x*x - x + 1 }},
		{Poly3, func(x float64) float64 { return 1e-3*x*x*x - 0.2*x*x + 4 }},
		{Poly5, func(x float64) float64 { return 1e-8*x*x*x*x*x - x }},
	}

	for _, tt := range tests {
		t.Run(string(tt.model), func(t *testing.T) {
			xs := make([]float64, 400)
			ys := make([]float64, 400)
			for i := range xs {
				xs[i] = float64(i)
				ys[i] = tt.f(xs[i])
			}

			p, err := Fit(xs, ys, tt.model)
			require.NoError(t, err)

			for _, x := range []float64{0, 17, 200, 399} {
				assert.InDelta(t, tt.f(x), p.Eval(x), 1e-6*(1+abs(tt.f(x))))
			}
		})
	}
}

func TestFitSmoothsNoise(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4, 5}
	ys := []float64{1.1, 0.9, 1.05, 0.95, 1.0, 1.0}

	p, err := Fit(xs, ys, Linear)
	require.NoError(t, err)

	fitted := p.EvalAll(xs)
	require.Len(t, fitted, len(xs))
	for _, y := range fitted {
		assert.InDelta(t, 1.0, y, 0.1)
	}
}

func TestFitErrors(t *testing.T) {
	_, err := Fit([]float64{1, 2}, []float64{1}, Linear)
	assert.Error(t, err)

	_, err = Fit([]float64{1, 2}, []float64{1, 2}, Poly3)
	assert.Error(t, err)

	_, err = Fit([]float64{1, 2, 3}, []float64{1, 2, 3}, Model("spline"))
	assert.Error(t, err)

	_, err = Fit([]float64{2, 2, 2}, []float64{1, 2, 3}, Linear)
	assert.Error(t, err)

	_, err = FitDegree([]float64{1}, []float64{1}, -1)
	assert.Error(t, err)
}

func TestFitNeedsDistinctAbscissas(t *testing.T) {
	xs := []float64{1, 1, 1, 4, 4, 4}
	ys := []float64{2, 2.1, 1.9, 8, 8.2, 7.8}

	_, err := Fit(xs, ys, Poly2)
	assert.ErrorContains(t, err, "singular")

	p, err := Fit(xs, ys, Linear)
	require.NoError(t, err)
	assert.InDelta(t, 2, p.Eval(1), 1e-9)
	assert.InDelta(t, 8, p.Eval(4), 1e-9)
}

func TestModelDegree(t *testing.T) {
	d, err := Model("POLY4").Degree()
	require.NoError(t, err)
	assert.Equal(t, 4, d)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
