package granular

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-granular/dsp/core"
)

const (
	defaultDensityHz = 10.0
	defaultSizeMs    = 100.0
	defaultPosition  = 0.5
	defaultPitch     = 0.0
	defaultGate      = 1.0

	maxPitchRandom = 24.0
)

// param is a float64 shared through a single atomic word. Readers see either
// the previous or the new value, never a torn one; later stores win.
type param struct {
	bits atomic.Uint64
}

func (p *param) load() float64 {
	return math.Float64frombits(p.bits.Load())
}

func (p *param) store(v float64) {
	p.bits.Store(math.Float64bits(v))
}

// Params is the control surface shared between a control goroutine and the
// audio goroutine. Setters may be called from any goroutine; there is no
// queue, so of several stores between two blocks only the last one is heard.
//
// Params must not be copied after first use.
type Params struct {
	base     [numControls]param
	relative [numControls - 1]atomic.Bool

	spread      param
	pitchRandom param
	panRandom   param

	generating atomic.Bool
}

// NewParams returns parameters with defaults: 10 Hz density, 100 ms grains,
// position 0.5, no transposition, gate 1, relative CV modes and generating on.
func NewParams() *Params {
	p := &Params{}
	p.SetDefaults()
	return p
}

// SetDefaults restores the default values.
func (p *Params) SetDefaults() {
	p.base[ControlDensity].store(defaultDensityHz)
	p.base[ControlSize].store(defaultSizeMs)
	p.base[ControlPosition].store(defaultPosition)
	p.base[ControlPitch].store(defaultPitch)
	p.base[ControlGate].store(defaultGate)

	for i := range p.relative {
		p.relative[i].Store(true)
	}

	p.spread.store(0)
	p.pitchRandom.store(0)
	p.panRandom.store(0)
	p.generating.Store(true)
}

// SetBase sets the base value of c. Values outside the control range are
// accepted and clamped when resolved; non-finite values are rejected.
func (p *Params) SetBase(c Control, v float64) error {
	if !c.valid() {
		return fmt.Errorf("granular control out of range: %d", int(c))
	}
	if !core.IsFinite(v) {
		return fmt.Errorf("granular %s must be finite: %f", c, v)
	}

	p.base[c].store(v)

	return nil
}

// Base returns the base value of c.
func (p *Params) Base(c Control) float64 {
	if !c.valid() {
		return 0
	}

	return p.base[c].load()
}

// SetRelative selects relative (true) or absolute (false) CV mode for c.
// Gate has no absolute mode; setting it is an error.
func (p *Params) SetRelative(c Control, relative bool) error {
	if !c.valid() || c == ControlGate {
		return fmt.Errorf("granular %s has no modulation mode", c)
	}

	p.relative[c].Store(relative)

	return nil
}

// Relative reports whether c uses relative CV mode. Gate always does.
func (p *Params) Relative(c Control) bool {
	if !c.valid() || c == ControlGate {
		return true
	}

	return p.relative[c].Load()
}

// SetSpread sets random position spread in [0, 1].
func (p *Params) SetSpread(spread float64) error {
	if spread < 0 || spread > 1 || math.IsNaN(spread) {
		return fmt.Errorf("granular spread must be in [0, 1]: %f", spread)
	}

	p.spread.store(spread)

	return nil
}

// Spread returns the random position spread.
func (p *Params) Spread() float64 { return p.spread.load() }

// SetPitchRandom sets random transposition width in [0, 24] semitones.
func (p *Params) SetPitchRandom(semitones float64) error {
	if semitones < 0 || semitones > maxPitchRandom || math.IsNaN(semitones) {
		return fmt.Errorf("granular pitch random must be in [0, %g]: %f", maxPitchRandom, semitones)
	}

	p.pitchRandom.store(semitones)

	return nil
}

// PitchRandom returns the random transposition width in semitones.
func (p *Params) PitchRandom() float64 { return p.pitchRandom.load() }

// SetPanRandom sets random pan width in [0, 1].
func (p *Params) SetPanRandom(amount float64) error {
	if amount < 0 || amount > 1 || math.IsNaN(amount) {
		return fmt.Errorf("granular pan random must be in [0, 1]: %f", amount)
	}

	p.panRandom.store(amount)

	return nil
}

// PanRandom returns the random pan width.
func (p *Params) PanRandom() float64 { return p.panRandom.load() }

// SetGenerating enables or suppresses new grains. Grains already playing
// finish either way.
func (p *Params) SetGenerating(on bool) {
	p.generating.Store(on)
}

// Generating reports whether new grains may spawn.
func (p *Params) Generating() bool {
	return p.generating.Load()
}

// frame is the per-block copy of Params seen by the audio goroutine.
type frame struct {
	base        [numControls]float64
	relative    [numControls]bool
	spread      float64
	pitchRandom float64
	panRandom   float64
	generating  bool
}

func (p *Params) load(f *frame) {
	for c := range f.base {
		f.base[c] = p.base[c].load()
	}

	for c := range p.relative {
		f.relative[c] = p.relative[c].Load()
	}

	f.relative[ControlGate] = true

	f.spread = p.spread.load()
	f.pitchRandom = p.pitchRandom.load()
	f.panRandom = p.panRandom.load()
	f.generating = p.generating.Load()
}
