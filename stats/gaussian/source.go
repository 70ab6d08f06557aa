package gaussian

import (
	"math/rand/v2"
	"time"
)

// Source supplies uniform variates in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a PCG-backed source seeded with seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewTimeSource returns a source seeded from the wall clock.
func NewTimeSource() *rand.Rand {
	return NewSource(uint64(time.Now().UnixNano()))
}

// Uniform returns a variate in [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// UniformInt returns an integer in [lo, hi).
func UniformInt(src Source, lo, hi int) int {
	return lo + int(src.Float64()*float64(hi-lo))
}
