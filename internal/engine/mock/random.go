package mock

import (
	"math/rand/v2"
	"time"
)

// Source is the randomness the mock engine draws failures and item counts from
type Source interface {
	// Float64 returns a number in [0.0, 1.0)
	Float64() float64
	// IntN returns a number in [0, n); n must be positive
	IntN(n int) int
}

// NewSource returns a PCG-backed Source. A non-zero seed makes the sequence
// reproducible; zero seeds from the clock.
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
