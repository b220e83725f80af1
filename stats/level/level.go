// Package level measures the loudness of rendered blocks: RMS, peak, crest
// factor, DC offset and clipping, in one pass or incrementally.
package level

import "math"

// ClipThreshold is the absolute sample value counted as clipped.
const ClipThreshold = 1.0

// Level holds time-domain level statistics.
type Level struct {
	Length        int
	DC            float64
	RMS           float64
	RMSdB         float64
	Peak          float64
	PeakdB        float64
	CrestFactor   float64 // peak / RMS
	CrestdB       float64
	ZeroCrossings int
	Clipped       int
}

// ampTodB converts an amplitude to dB, returning -Inf for zero.
func ampTodB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(a)
}

func emptyLevel() Level {
	return Level{
		RMSdB:   math.Inf(-1),
		PeakdB:  math.Inf(-1),
		CrestdB: math.Inf(-1),
	}
}

// Calculate computes level statistics of signal.
func Calculate(signal []float64) Level {
	var m Meter
	m.Update(signal)

	return m.Result()
}

// Meter accumulates level statistics across blocks. Results are identical
// to Calculate over the concatenated blocks.
type Meter struct {
	n             int
	sum           float64
	sumSq         float64
	peak          float64
	zeroCrossings int
	clipped       int
	last          float64
}

// Update adds samples to the running statistics.
func (m *Meter) Update(samples []float64) {
	for _, x := range samples {
		if m.n > 0 && m.last*x < 0 {
			m.zeroCrossings++
		}

		a := math.Abs(x)
		if a > m.peak {
			m.peak = a
		}
		if a >= ClipThreshold {
			m.clipped++
		}

		m.sum += x
		m.sumSq += x * x
		m.last = x
		m.n++
	}
}

// Result returns the statistics of everything seen since the last Reset.
func (m *Meter) Result() Level {
	if m.n == 0 {
		return emptyLevel()
	}

	nf := float64(m.n)
	rms := math.Sqrt(m.sumSq / nf)

	l := Level{
		Length:        m.n,
		DC:            m.sum / nf,
		RMS:           rms,
		RMSdB:         ampTodB(rms),
		Peak:          m.peak,
		PeakdB:        ampTodB(m.peak),
		ZeroCrossings: m.zeroCrossings,
		Clipped:       m.clipped,
		CrestdB:       math.Inf(-1),
	}

	if rms > 0 {
		l.CrestFactor = m.peak / rms
		l.CrestdB = ampTodB(l.CrestFactor)
	}

	return l
}

// Reset clears all accumulated data.
func (m *Meter) Reset() {
	*m = Meter{}
}
