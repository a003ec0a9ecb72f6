// Package dice holds the small sampling helpers shared by the simulation packages.
package dice

import "math/rand"

// Pick draws one of values with probability proportional to weights.
// A zero total weight returns the first value.
func Pick[T any](rng *rand.Rand, values []T, weights []int) T {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return values[0]
	}
	r := rng.Intn(total)
	for i, w := range weights {
		if r < w {
			return values[i]
		}
		r -= w
	}
	return values[len(values)-1]
}

// PickFloat is Pick with float weights. Non-positive weights are never chosen
// unless every weight is non-positive, in which case the first value wins.
func PickFloat[T any](rng *rand.Rand, values []T, weights []float64) T {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return values[0]
	}
	r := rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r < w {
			return values[i]
		}
		r -= w
	}
	return values[len(values)-1]
}

// OneOf returns a uniformly chosen element of values.
func OneOf[T any](rng *rand.Rand, values []T) T {
	return values[rng.Intn(len(values))]
}

// Between returns a uniform integer in [lo, hi].
func Between(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// Chance reports true with probability p.
func Chance(rng *rand.Rand, p float64) bool {
	return rng.Float64() < p
}
