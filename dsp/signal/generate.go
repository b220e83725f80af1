package signal

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/cwbudde/algo-granular/dsp/core"
)

// Source streams a signal block by block.
type Source interface {
	// Fill overwrites dst with the next len(dst) samples.
	Fill(dst []float64)
}

// Shape selects an oscillator waveform.
type Shape int

const (
	ShapeSine Shape = iota
	ShapeTriangle
	ShapeSquare
	ShapeSaw
)

var shapeNames = map[Shape]string{
	ShapeSine:     "sine",
	ShapeTriangle: "triangle",
	ShapeSquare:   "square",
	ShapeSaw:      "saw",
}

// String returns the shape name.
func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}

	return "unknown"
}

// ParseShape returns the shape with the given name.
func ParseShape(name string) (Shape, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range shapeNames {
		if n == name {
			return s, nil
		}
	}

	return 0, fmt.Errorf("unsupported signal shape: %q", name)
}

// Generator creates deterministic sources from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a configured signal generator with
// signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Seed returns the noise seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

func (g *Generator) checkFrequency(name string, freqHz float64) error {
	if !core.IsFinite(freqHz) || freqHz <= 0 || freqHz > g.cfg.SampleRate/2 {
		return fmt.Errorf("%s frequency must be in (0, %g]: %f", name, g.cfg.SampleRate/2, freqHz)
	}

	return nil
}

// Oscillator returns a periodic source starting at phase 0.
func (g *Generator) Oscillator(shape Shape, freqHz, amplitude float64) (*Oscillator, error) {
	if err := g.checkFrequency(shape.String(), freqHz); err != nil {
		return nil, err
	}
	if _, ok := shapeNames[shape]; !ok {
		return nil, fmt.Errorf("unsupported signal shape: %d", int(shape))
	}

	return &Oscillator{
		shape:     shape,
		amplitude: amplitude,
		increment: freqHz / g.cfg.SampleRate,
	}, nil
}

// Sine returns a sine oscillator.
func (g *Generator) Sine(freqHz, amplitude float64) (*Oscillator, error) {
	return g.Oscillator(ShapeSine, freqHz, amplitude)
}

// LFO returns a full-scale bipolar oscillator for use as a CV lane.
func (g *Generator) LFO(shape Shape, rateHz float64) (*Oscillator, error) {
	return g.Oscillator(shape, rateHz, 1)
}

// WhiteNoise returns uniform noise in [-amplitude, amplitude] seeded from
// the generator seed.
func (g *Generator) WhiteNoise(amplitude float64) (*Noise, error) {
	if amplitude < 0 || !core.IsFinite(amplitude) {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}

	return &Noise{
		amplitude: amplitude,
		rng:       rand.New(rand.NewSource(g.seed)),
	}, nil
}

// Chirp returns an exponential sine sweep from startHz to endHz that
// restarts every periodSeconds with continuous phase.
func (g *Generator) Chirp(startHz, endHz, periodSeconds, amplitude float64) (*Chirp, error) {
	if err := g.checkFrequency("chirp start", startHz); err != nil {
		return nil, err
	}
	if err := g.checkFrequency("chirp end", endHz); err != nil {
		return nil, err
	}

	period := int(math.Round(periodSeconds * g.cfg.SampleRate))
	if period < 1 {
		return nil, fmt.Errorf("chirp period must be at least one sample: %f", periodSeconds)
	}

	return &Chirp{
		amplitude:  amplitude,
		startHz:    startHz,
		ratio:      endHz / startHz,
		period:     period,
		sampleRate: g.cfg.SampleRate,
	}, nil
}

// Oscillator is a phase-accumulating periodic source.
type Oscillator struct {
	shape     Shape
	amplitude float64
	increment float64
	phase     float64
}

// Fill implements Source.
func (o *Oscillator) Fill(dst []float64) {
	for i := range dst {
		dst[i] = o.amplitude * shapeAt(o.shape, o.phase)

		o.phase += o.increment
		if o.phase >= 1 {
			o.phase -= 1
		}
	}
}

// Reset restarts the oscillator at phase 0.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// shapeAt evaluates one cycle of shape at phase p in [0, 1). Every shape
// starts at 0 or its rising edge and peaks at +1.
func shapeAt(shape Shape, p float64) float64 {
	switch shape {
	case ShapeTriangle:
		q := p + 0.25
		if q >= 1 {
			q--
		}

		return 1 - 4*math.Abs(q-0.5)
	case ShapeSquare:
		if p < 0.5 {
			return 1
		}

		return -1
	case ShapeSaw:
		return 2*p - 1
	default:
		return math.Sin(2 * math.Pi * p)
	}
}

// Noise is a seeded uniform white noise source.
type Noise struct {
	amplitude float64
	rng       *rand.Rand
}

// Fill implements Source.
func (n *Noise) Fill(dst []float64) {
	for i := range dst {
		dst[i] = (n.rng.Float64()*2 - 1) * n.amplitude
	}
}

// Chirp is a repeating exponential sine sweep.
type Chirp struct {
	amplitude  float64
	startHz    float64
	ratio      float64
	period     int
	sampleRate float64

	n     int
	phase float64
}

// Fill implements Source.
func (c *Chirp) Fill(dst []float64) {
	for i := range dst {
		dst[i] = c.amplitude * math.Sin(2*math.Pi*c.phase)

		freq := c.startHz * math.Pow(c.ratio, float64(c.n)/float64(c.period))
		c.phase += freq / c.sampleRate
		c.phase -= math.Floor(c.phase)

		c.n++
		if c.n >= c.period {
			c.n = 0
		}
	}
}

// Render draws samples from src into a new slice.
func Render(src Source, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("render samples must be > 0: %d", samples)
	}

	out := make([]float64, samples)
	src.Fill(out)

	return out, nil
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}

	return out, nil
}
