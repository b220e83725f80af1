package granular

import (
	"math"

	"github.com/cwbudde/algo-granular/dsp/core"
)

const (
	relativeDensityMin = 0.5
	relativeDensityMax = 2.0
	relativeSizeMin    = 0.1
	relativeSizeMax    = 2.0
	relativePitchSpan  = 24.0
)

// NormalizeCV maps a CV sample to [0, 1].
//
// Samples already in [0, 1] are taken as unipolar. Anything else is treated
// as bipolar [-1, 1], remapped with (cv+1)/2 and clamped. NaN maps to 0.5.
func NormalizeCV(cv float64) float64 {
	if math.IsNaN(cv) {
		return 0.5
	}

	if cv >= 0 && cv <= 1 {
		return cv
	}

	return core.Clamp01((cv + 1) / 2)
}

// Resolve returns the effective value of control c for one sample.
//
// Without CV the base value is clamped to the control range. With CV in
// relative mode the normalized CV offsets or scales the base; in absolute
// mode it is remapped onto the full range and the base is ignored. Gate CV
// always scales the base in relative mode.
func Resolve(c Control, base float64, hasCV bool, cv float64, relative bool) float64 {
	rng := c.Range()
	if !hasCV {
		return core.Clamp(base, rng.Min, rng.Max)
	}

	cv01 := NormalizeCV(cv)

	var v float64
	if relative {
		v = resolveRelative(c, base, cv01)
	} else {
		v = core.Lerp(rng.Min, rng.Max, cv01)
	}

	return core.Clamp(v, rng.Min, rng.Max)
}

func resolveRelative(c Control, base, cv01 float64) float64 {
	switch c {
	case ControlDensity:
		return base * core.Lerp(relativeDensityMin, relativeDensityMax, cv01)
	case ControlSize:
		return base * core.Lerp(relativeSizeMin, relativeSizeMax, cv01)
	case ControlPosition:
		return base + core.Clamp(cv01-0.5, -0.5, 0.5)
	case ControlPitch:
		return base + relativePitchSpan*(cv01-0.5)
	case ControlGate:
		return base * cv01
	default:
		return base
	}
}

// cvLane feeds one control's CV samples to the resolver for the current
// block. A block whose CV is constant throughout is treated as a block-rate
// source and ramped linearly from the last sample of the previous block.
// The lane never keeps the CV slice past end().
type cvLane struct {
	anchor    float64
	hasAnchor bool

	samples []float64
	ramping bool
	from    float64
	step    float64
}

func (l *cvLane) begin(samples []float64) {
	l.samples = samples
	l.ramping = false

	if len(samples) == 0 {
		l.samples = nil
		l.hasAnchor = false
		return
	}

	first := samples[0]
	constant := true

	for _, v := range samples[1:] {
		if v != first {
			constant = false
			break
		}
	}

	if constant && l.hasAnchor && l.anchor != first && !math.IsNaN(l.anchor) {
		l.ramping = true
		l.from = l.anchor
		l.step = (first - l.anchor) / float64(len(samples))
	}

	l.anchor = samples[len(samples)-1]
	l.hasAnchor = true
}

func (l *cvLane) connected() bool {
	return l.samples != nil
}

func (l *cvLane) at(i int) float64 {
	if l.ramping {
		return l.from + l.step*float64(i+1)
	}

	return l.samples[i]
}

func (l *cvLane) end() {
	l.samples = nil
	l.ramping = false
}

func (l *cvLane) reset() {
	*l = cvLane{}
}
