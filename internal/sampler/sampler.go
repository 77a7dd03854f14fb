// =============================
// File: internal/sampler/sampler.go
// =============================
package sampler

import (
	"math/rand/v2"
)

// Interval is a half-open real interval [Low, High).
type Interval struct {
	Low  float64 `json:"low" mapstructure:"low"`
	High float64 `json:"high" mapstructure:"high"`
}

// Unit is the [0,1) interval.
var Unit = Interval{Low: 0, High: 1}

// Width returns High - Low.
func (iv Interval) Width() float64 {
	return iv.High - iv.Low
}

// Valid reports whether the interval is non-empty and ordered.
func (iv Interval) Valid() bool {
	return iv.Low < iv.High
}

// Sampler produces independent uniform draws.
type Sampler interface {
	// Draw returns a value uniformly distributed over [iv.Low, iv.High).
	Draw(iv Interval) float64
	// DrawPair returns two independent draws, one per interval.
	DrawPair(x, y Interval) (float64, float64)
}

// Uniform draws from a single pseudo-random stream. It is not safe for
// concurrent use; give every goroutine its own instance (see Streams).
type Uniform struct {
	r *rand.Rand
}

// NewUniform creates a deterministic sampler seeded with seed.
func NewUniform(seed uint64) *Uniform {
	return &Uniform{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandom creates a sampler seeded from the runtime generator.
func NewRandom() *Uniform {
	return NewUniform(rand.Uint64())
}

func (u *Uniform) Draw(iv Interval) float64 {
	return scale(iv, u.r.Float64())
}

func (u *Uniform) DrawPair(x, y Interval) (float64, float64) {
	a := u.Draw(x)
	b := u.Draw(y)
	return a, b
}

// global uses the runtime-wide generator, which is safe for concurrent use.
type global struct{}

// Global returns the process-wide sampler.
func Global() Sampler {
	return global{}
}

func (global) Draw(iv Interval) float64 {
	return scale(iv, rand.Float64())
}

func (g global) DrawPair(x, y Interval) (float64, float64) {
	a := g.Draw(x)
	b := g.Draw(y)
	return a, b
}

func scale(iv Interval, u float64) float64 {
	if iv.Low == iv.High {
		return iv.Low
	}
	return iv.Low + (iv.High-iv.Low)*u
}
