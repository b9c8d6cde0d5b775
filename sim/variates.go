package sim

import (
	"math"
	"math/rand"
)

// Random variates used by the process models. All take the caller's stream
// so that each subsystem stays reproducible.

// Uniform draws from [lo, hi).
func Uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// IntBetween draws an integer from the closed range [lo, hi].
func IntBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// Bernoulli returns true with probability p. Values of p >= 1 always trigger.
func Bernoulli(rng *rand.Rand, p float64) bool {
	return rng.Float64() < p
}

// FlooredNormal draws from N(mean, stdDev) and clamps negative values to 0.
func FlooredNormal(rng *rand.Rand, mean, stdDev float64) float64 {
	return math.Max(0, rng.NormFloat64()*stdDev+mean)
}

// HalfNormal returns |X| for X ~ N(mean, stdDev).
func HalfNormal(rng *rand.Rand, mean, stdDev float64) float64 {
	return math.Abs(rng.NormFloat64()*stdDev + mean)
}

// Exponential draws from an exponential distribution with the given mean.
func Exponential(rng *rand.Rand, mean float64) float64 {
	return rng.ExpFloat64() * mean
}
