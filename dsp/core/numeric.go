package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// Clamp01 limits value to [0, 1].
func Clamp01(value float64) float64 {
	return Clamp(value, 0, 1)
}

// Lerp linearly interpolates from a to b by t. t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// SemitonesToRatio converts an equal-tempered interval to a playback ratio.
func SemitonesToRatio(semitones float64) float64 {
	return math.Exp2(semitones / 12)
}

// IsFinite reports whether x is neither NaN nor Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// ValidSampleRate reports whether sampleRate is positive and finite.
func ValidSampleRate(sampleRate float64) bool {
	return sampleRate > 0 && IsFinite(sampleRate)
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}
