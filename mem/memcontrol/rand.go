package memcontrol

import "math/rand"

// A RandSource provides the randomness of arbitration.
type RandSource interface {
	// Intn returns a number in [0, n).
	Intn(n int) int
}

// NewRandSource creates a deterministic RandSource from a seed.
func NewRandSource(seed int64) RandSource {
	return rand.New(rand.NewSource(seed))
}
