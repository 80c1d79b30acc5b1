// Package dice provides the randomness abstraction used by the battle engine.
package dice

// Source is the randomness provider for every draw the engine makes.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// RandomRange returns a uniformly distributed int in [min, max).
// When max <= min the range degenerates to the single value min.
//
// Precondition: src must be non-nil.
// Postcondition: Returns min when max <= min; otherwise min <= result < max.
func RandomRange(src Source, min, max int) int {
	if max <= min {
		return min
	}
	return min + src.Intn(max-min)
}
