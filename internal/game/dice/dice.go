// Package dice provides the randomness abstraction shared by the bout engine,
// post-bout injury rolls, and the simple-fight variant.
package dice

// Source is the randomness provider for every probabilistic decision in a bout.
//
// A bout is a pure function of its inputs plus the sequence of values drawn
// from its Source, so a Source that replays the same sequence replays the
// same bout.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// Chance reports whether a draw from src falls below p.
//
// Precondition: src must be non-nil.
// Postcondition: Returns false when p <= 0 and true when p >= 1, without
// consuming a draw in either case.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Uniform returns a float drawn uniformly from [lo, hi).
//
// Precondition: src must be non-nil; hi >= lo.
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// IntRange returns an int drawn uniformly from the closed range [lo, hi].
//
// Precondition: src must be non-nil; hi >= lo.
func IntRange(src Source, lo, hi int) int {
	return lo + src.Intn(hi-lo+1)
}
