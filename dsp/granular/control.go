package granular

import (
	"fmt"
	"strings"
)

// Control identifies one of the five per-sample modulated controls.
type Control int

const (
	// ControlDensity is the grain spawn rate in Hz.
	ControlDensity Control = iota
	// ControlSize is the grain duration in milliseconds.
	ControlSize
	// ControlPosition is the read position as a fraction of the buffer behind
	// the write cursor.
	ControlPosition
	// ControlPitch is the grain transposition in semitones.
	ControlPitch
	// ControlGate scales the mixed output.
	ControlGate

	numControls
)

// Range is an inclusive valid interval for a control.
type Range struct {
	Min float64
	Max float64
}

var controlRanges = [numControls]Range{
	ControlDensity:  {Min: 0.1, Max: 100},
	ControlSize:     {Min: 5, Max: 500},
	ControlPosition: {Min: 0, Max: 1},
	ControlPitch:    {Min: -24, Max: 24},
	ControlGate:     {Min: 0, Max: 1},
}

// Smoothing time constants in milliseconds. Gate multiplies the output
// directly and gets the fastest one.
var controlSmoothingMs = [numControls]float64{
	ControlDensity:  20,
	ControlSize:     20,
	ControlPosition: 20,
	ControlPitch:    10,
	ControlGate:     2,
}

var controlNames = [numControls]string{
	ControlDensity:  "density",
	ControlSize:     "size",
	ControlPosition: "position",
	ControlPitch:    "pitch",
	ControlGate:     "gate",
}

// Controls lists all controls in processing order.
func Controls() []Control {
	return []Control{ControlDensity, ControlSize, ControlPosition, ControlPitch, ControlGate}
}

// Range returns the valid range of c.
func (c Control) Range() Range {
	if !c.valid() {
		return Range{}
	}

	return controlRanges[c]
}

// SmoothingMs returns the one-pole smoothing time constant of c.
func (c Control) SmoothingMs() float64 {
	if !c.valid() {
		return 0
	}

	return controlSmoothingMs[c]
}

// String returns the lowercase control name.
func (c Control) String() string {
	if !c.valid() {
		return "unknown"
	}

	return controlNames[c]
}

// ParseControl returns the control with the given name.
func ParseControl(name string) (Control, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range controlNames {
		if n == name {
			return Control(c), nil
		}
	}

	return 0, fmt.Errorf("unknown granular control: %q", name)
}

func (c Control) valid() bool {
	return c >= 0 && c < numControls
}
