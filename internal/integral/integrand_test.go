package integral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	in, err := Lookup(" SIN ")
	require.NoError(t, err)

	exact, ok := in.Exact(0, math.Pi)
	require.True(t, ok)
	assert.InDelta(t, 2.0, exact, 1e-12)

	_, err = Lookup("tan")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "x^2")
}

func TestNamesAreSorted(t *testing.T) {
	assert.Equal(t, []string{"cos", "exp", "sin", "sqrt", "x", "x^2", "x^3"}, Names())
}

func TestPolynomial(t *testing.T) {
	p := Polynomial(1, 0, 3)

	assert.Equal(t, "1 + 3*x^2", p.Name)
	assert.InDelta(t, 13.0, p.F(2), 1e-12)

	exact, ok := p.Exact(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 2.0, exact, 1e-12)

	assert.Equal(t, "0", Polynomial().Name)
	assert.Equal(t, 0.0, Polynomial().F(3))
}

func TestParseCoefficients(t *testing.T) {
	coeffs, err := ParseCoefficients("1, -2.5,0,4e-1")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2.5, 0, 0.4}, coeffs)

	_, err = ParseCoefficients("1,abc")
	assert.Error(t, err)

	_, err = ParseCoefficients(" , ")
	assert.Error(t, err)
}
