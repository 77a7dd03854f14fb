package integral

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Integrand is a named integrand. Antiderivative is optional; when present
// it lets callers measure the estimation error.
type Integrand struct {
	Name           string
	F              Func
	Antiderivative Func
}

// Exact returns the exact integral over [x1, x2] when the antiderivative is known.
func (in Integrand) Exact(x1, x2 float64) (float64, bool) {
	if in.Antiderivative == nil {
		return 0, false
	}
	return in.Antiderivative(x2) - in.Antiderivative(x1), true
}

var catalogue = map[string]Integrand{
	"x": {
		Name:           "x",
		F:              func(x float64) float64 { return x },
		Antiderivative: func(x float64) float64 { return x * x / 2 },
	},
	"x^2": {
		Name:           "x^2",
		F:              func(x float64) float64 { return x * x },
		Antiderivative: func(x float64) float64 { return x * x * x / 3 },
	},
	"x^3": {
		Name:           "x^3",
		F:              func(x float64) float64 { return x * x * x },
		Antiderivative: func(x float64) float64 { return x * x * x * x / 4 },
	},
	"sin": {
		Name:           "sin",
		F:              math.Sin,
		Antiderivative: func(x float64) float64 { return -math.Cos(x) },
	},
	"cos": {
		Name:           "cos",
		F:              math.Cos,
		Antiderivative: math.Sin,
	},
	"exp": {
		Name:           "exp",
		F:              math.Exp,
		Antiderivative: math.Exp,
	},
	"sqrt": {
		Name:           "sqrt",
		F:              math.Sqrt,
		Antiderivative: func(x float64) float64 { return 2 * math.Pow(x, 1.5) / 3 },
	},
}

// Lookup returns the catalogued integrand with the given name.
func Lookup(name string) (Integrand, error) {
	in, ok := catalogue[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Integrand{}, fmt.Errorf("unknown integrand %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return in, nil
}

// Names lists the catalogued integrands in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Polynomial builds c[0] + c[1]*x + c[2]*x^2 + ... with its exact antiderivative.
func Polynomial(coeffs ...float64) Integrand {
	c := append([]float64(nil), coeffs...)

	f := func(x float64) float64 {
		y := 0.0
		for i := len(c) - 1; i >= 0; i-- {
			y = y*x + c[i]
		}
		return y
	}
	anti := func(x float64) float64 {
		y := 0.0
		for i := len(c) - 1; i >= 0; i-- {
			y = y*x + c[i]/float64(i+1)
		}
		return y * x
	}

	terms := make([]string, 0, len(c))
	for i, v := range c {
		if v == 0 {
			continue
		}
		switch i {
		case 0:
			terms = append(terms, fmt.Sprintf("%g", v))
		case 1:
			terms = append(terms, fmt.Sprintf("%g*x", v))
		default:
			terms = append(terms, fmt.Sprintf("%g*x^%d", v, i))
		}
	}
	name := "0"
	if len(terms) > 0 {
		name = strings.Join(terms, " + ")
	}

	return Integrand{Name: name, F: f, Antiderivative: anti}
}

// ParseCoefficients parses a comma separated coefficient list "c0,c1,...".
func ParseCoefficients(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	coeffs := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coefficient %q: %w", p, err)
		}
		coeffs = append(coeffs, v)
	}
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("no coefficients in %q", s)
	}
	return coeffs, nil
}
