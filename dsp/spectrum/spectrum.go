package spectrum

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Magnitude returns |X[k]| for each complex spectrum bin.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	re := make([]float64, len(in))
	im := make([]float64, len(in))
	splitComplex(re, im, in)

	out := make([]float64, len(in))
	vecmath.Magnitude(out, re, im)

	return out
}

// MagnitudeFromParts computes sqrt(re[k]^2 + im[k]^2) into dst. All three
// slices must have the same length.
func MagnitudeFromParts(dst, re, im []float64) {
	vecmath.Magnitude(dst, re, im)
}

// Power returns |X[k]|^2 for each complex spectrum bin.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	re := make([]float64, len(in))
	im := make([]float64, len(in))
	splitComplex(re, im, in)

	out := make([]float64, len(in))
	vecmath.Power(out, re, im)

	return out
}

// AmplitudeDB converts a linear amplitude to dB, limited below by floorDB.
func AmplitudeDB(amplitude, floorDB float64) float64 {
	if amplitude <= 0 || math.IsNaN(amplitude) {
		return floorDB
	}

	db := 20 * math.Log10(amplitude)
	if db < floorDB {
		return floorDB
	}

	return db
}

func splitComplex(re, im []float64, in []complex128) {
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
}
