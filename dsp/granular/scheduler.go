package granular

// Scheduler turns a spawn rate into discrete spawn attempts with a phase
// accumulator in [0, 1).
type Scheduler struct {
	phase float64
}

// Phase returns the accumulator value.
func (s *Scheduler) Phase() float64 {
	return s.phase
}

// Advance moves the accumulator by one sample at rateHz and returns the
// number of spawn attempts due. More than one attempt is returned when the
// rate exceeds the sample rate.
//
// When generating is false the phase is reset to 0 and no attempts are
// returned.
func (s *Scheduler) Advance(rateHz, sampleRate float64, generating bool) int {
	if !generating {
		s.phase = 0
		return 0
	}

	s.phase += rateHz / sampleRate

	attempts := 0
	for s.phase >= 1.0 {
		s.phase -= 1.0
		attempts++
	}

	return attempts
}

// Reset sets the phase to 0.
func (s *Scheduler) Reset() {
	s.phase = 0
}
