package spectrum

import (
	"fmt"
	"math"
)

// Tone measures a single frequency with the Goertzel recurrence. It is
// cheaper than a full FFT when only one bin is of interest, such as the
// level of a known source tone after granulation.
type Tone struct {
	frequency  float64
	sampleRate float64
	coeff      float64
	s0, s1     float64
	n          int
}

// NewTone creates a detector for frequency, which must lie in
// [0, sampleRate/2].
func NewTone(frequency, sampleRate float64) (*Tone, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("spectrum tone sample rate must be > 0: %v", sampleRate)
	}

	if frequency < 0 || frequency > sampleRate/2 || math.IsNaN(frequency) {
		return nil, fmt.Errorf("spectrum tone frequency must be in [0, %v]: %v", sampleRate/2, frequency)
	}

	return &Tone{
		frequency:  frequency,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(2*math.Pi*frequency/sampleRate),
	}, nil
}

// Frequency returns the detector frequency.
func (t *Tone) Frequency() float64 { return t.frequency }

// Reset clears the accumulated state.
func (t *Tone) Reset() {
	t.s0, t.s1 = 0, 0
	t.n = 0
}

// ProcessBlock feeds samples into the detector.
func (t *Tone) ProcessBlock(samples []float64) {
	s0, s1 := t.s0, t.s1
	for _, x := range samples {
		s0, s1 = x+t.coeff*s0-s1, s0
	}

	t.s0, t.s1 = s0, s1
	t.n += len(samples)
}

// Power returns |X(f)|^2 over all samples since the last Reset.
func (t *Tone) Power() float64 {
	return t.s0*t.s0 + t.s1*t.s1 - t.coeff*t.s0*t.s1
}

// Amplitude estimates the peak amplitude of the tone, 2|X(f)|/N. It is exact
// for a sine with a whole number of cycles in the analyzed block.
func (t *Tone) Amplitude() float64 {
	p := t.Power()
	if p <= 0 || t.n == 0 {
		return 0
	}

	return 2 * math.Sqrt(p) / float64(t.n)
}
