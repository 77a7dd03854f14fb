// Package fit fits least-squares polynomial trends to accuracy series.
package fit

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Model names a polynomial degree.
type Model string

const (
	Linear Model = "linear"
	Poly2  Model = "poly2"
	Poly3  Model = "poly3"
	Poly4  Model = "poly4"
	Poly5  Model = "poly5"
)

// Degree returns the polynomial degree of the model.
func (m Model) Degree() (int, error) {
	switch Model(strings.ToLower(string(m))) {
	case Linear:
		return 1, nil
	case Poly2:
		return 2, nil
	case Poly3:
		return 3, nil
	case Poly4:
		return 4, nil
	case Poly5:
		return 5, nil
	}
	return 0, fmt.Errorf("unknown fit model %q", string(m))
}

// Polynomial is a fitted polynomial. Coefficients apply to the normalized
// abscissa t = (x - Shift) / Scale, lowest degree first.
type Polynomial struct {
	Coefficients []float64 `json:"coefficients"`
	Shift        float64   `json:"shift"`
	Scale        float64   `json:"scale"`
}

// Eval evaluates the polynomial at x.
func (p Polynomial) Eval(x float64) float64 {
	t := (x - p.Shift) / p.Scale
	y := 0.0
	for i := len(p.Coefficients) - 1; i >= 0; i-- {
		y = y*t + p.Coefficients[i]
	}
	return y
}

// EvalAll evaluates the polynomial at every x.
func (p Polynomial) EvalAll(xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = p.Eval(x)
	}
	return ys
}

// Fit fits a polynomial of the model's degree to (xs, ys) by least squares.
func Fit(xs, ys []float64, model Model) (Polynomial, error) {
	degree, err := model.Degree()
	if err != nil {
		return Polynomial{}, err
	}
	return FitDegree(xs, ys, degree)
}

// FitDegree fits a polynomial of the given degree to (xs, ys) by least squares.
func FitDegree(xs, ys []float64, degree int) (Polynomial, error) {
	if len(xs) != len(ys) {
		return Polynomial{}, fmt.Errorf("length mismatch: %d abscissas, %d values", len(xs), len(ys))
	}
	if degree < 0 {
		return Polynomial{}, fmt.Errorf("degree must not be negative, got %d", degree)
	}
	if len(xs) < degree+1 {
		return Polynomial{}, fmt.Errorf("need at least %d points for degree %d, got %d", degree+1, degree, len(xs))
	}
	if distinct(xs) < degree+1 {
		return Polynomial{}, fmt.Errorf("singular system: abscissas do not determine a degree %d fit", degree)
	}

	shift, scale := normalization(xs)
	ts := make([]float64, len(xs))
	for i, x := range xs {
		ts[i] = (x - shift) / scale
	}

	var coeffs []float64
	if degree == 1 {
		alpha, beta := stat.LinearRegression(ts, ys, nil, false)
		coeffs = []float64{alpha, beta}
	} else {
		var err error
		coeffs, err = solve(ts, ys, degree)
		if err != nil {
			return Polynomial{}, err
		}
	}
	return Polynomial{Coefficients: coeffs, Shift: shift, Scale: scale}, nil
}

// solve finds the least-squares coefficients of the Vandermonde system by QR.
func solve(ts, ys []float64, degree int) ([]float64, error) {
	v := mat.NewDense(len(ts), degree+1, nil)
	for i, t := range ts {
		tp := 1.0
		for k := 0; k <= degree; k++ {
			v.Set(i, k, tp)
			tp *= t
		}
	}

	var qr mat.QR
	qr.Factorize(v)

	var c mat.VecDense
	if err := qr.SolveVecTo(&c, false, mat.NewVecDense(len(ys), ys)); err != nil {
		return nil, fmt.Errorf("solve degree %d fit: %w", degree, err)
	}

	coeffs := make([]float64, degree+1)
	for k := range coeffs {
		coeffs[k] = c.AtVec(k)
	}
	return coeffs, nil
}

func distinct(xs []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
	}
	return len(seen)
}

func normalization(xs []float64) (shift, scale float64) {
	lo, hi := floats.Min(xs), floats.Max(xs)
	shift = (lo + hi) / 2
	scale = (hi - lo) / 2
	if scale == 0 {
		scale = 1
	}
	return shift, scale
}
