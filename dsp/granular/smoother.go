package granular

import "math"

// smoother is a one-pole exponential lowpass on a control value. It snaps to
// its first target after a reset.
type smoother struct {
	coef   float64
	value  float64
	primed bool
}

func (s *smoother) configure(timeMs, sampleRate float64) {
	if timeMs <= 0 || sampleRate <= 0 {
		s.coef = 1
		return
	}

	tauSeconds := timeMs / 1000
	s.coef = 1 - math.Exp(-1/(tauSeconds*sampleRate))
	if s.coef < 0 {
		s.coef = 0
	}
	if s.coef > 1 {
		s.coef = 1
	}
}

func (s *smoother) next(target float64) float64 {
	if !s.primed {
		s.value = target
		s.primed = true

		return s.value
	}

	s.value += (target - s.value) * s.coef

	return s.value
}

func (s *smoother) reset() {
	s.value = 0
	s.primed = false
}
