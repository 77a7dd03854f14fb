package sampler

import "math/rand/v2"

// Streams derives independent per-worker samplers from one base seed.
// Stream(i) always returns the same sequence for the same seed and index,
// so parallel runs stay reproducible regardless of scheduling.
type Streams struct {
	seed uint64
}

// NewStreams creates a stream family rooted at seed.
func NewStreams(seed uint64) Streams {
	return Streams{seed: seed}
}

// Stream returns the sampler for index i.
func (s Streams) Stream(i int) *Uniform {
	// splitmix64 of the index keeps neighbouring streams decorrelated
	z := s.seed + uint64(i+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return &Uniform{r: rand.New(rand.NewPCG(s.seed, z))}
}
