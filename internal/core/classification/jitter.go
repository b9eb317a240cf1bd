package classification

import "math/rand/v2"

// Jitter perturbs the combined confidence to signal that keyword scoring is approximate.
// Implementations must be safe for concurrent use.
type Jitter interface {
	Offset() int
}

// UniformJitter draws a uniform integer in [-Spread, Spread].
type UniformJitter struct {
	Spread int
}

func (j UniformJitter) Offset() int {
	if j.Spread <= 0 {
		return 0
	}
	return rand.IntN(2*j.Spread+1) - j.Spread
}

type NoJitter struct{}

func (NoJitter) Offset() int { return 0 }

// FixedJitter always returns the same offset.
type FixedJitter int

func (j FixedJitter) Offset() int { return int(j) }

// DefaultJitter matches the ±10 spread used by the classifier.
func DefaultJitter() Jitter {
	return UniformJitter{Spread: 10}
}
