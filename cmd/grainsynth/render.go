package main

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-granular/dsp/core"
	"github.com/cwbudde/algo-granular/dsp/granular"
	"github.com/cwbudde/algo-granular/dsp/interp"
	"github.com/cwbudde/algo-granular/dsp/signal"
	"github.com/cwbudde/algo-granular/dsp/spectrum"
	"github.com/cwbudde/algo-granular/stats/level"
)

const (
	analyzerSize   = 4096
	chirpEndHz     = 4000.0
	chirpPeriodSec = 2.0
)

type options struct {
	sampleRate float64
	block      int
	seconds    float64

	source    string
	freq      float64
	amplitude float64

	density     float64
	size        float64
	position    float64
	pitch       float64
	spread      float64
	pitchRandom float64
	panRandom   float64
	gate        float64

	cvTarget   string
	cvShape    string
	cvRate     float64
	cvAbsolute bool

	hermite bool
	seed    int64
	out     string
	play    bool

	dither       string
	noiseShaping bool
}

// renderer pulls blocks of source audio through the engine and keeps
// running measurements of the output.
type renderer struct {
	opts   options
	logger *slog.Logger
	engine *granular.Engine

	src    signal.Source
	lfo    signal.Source
	target granular.Control

	in   []float64
	cv   []float64
	outL []float64
	outR []float64

	remaining int
	rendered  int

	meterL level.Meter
	meterR level.Meter
	tone   *spectrum.Tone

	// tail holds the last analyzerSize mono output samples, oldest at tailPos
	// once full.
	tail       []float64
	tailPos    int
	tailFilled int

	// sink, when set, receives every rendered block.
	sink func(l, r []float64) error
}

func newRenderer(opts options, logger *slog.Logger) (*renderer, error) {
	if opts.block <= 0 {
		return nil, fmt.Errorf("block size must be > 0: %d", opts.block)
	}
	if !(opts.seconds > 0) || math.IsInf(opts.seconds, 0) {
		return nil, fmt.Errorf("seconds must be > 0: %f", opts.seconds)
	}

	engineOpts := []granular.Option{
		granular.WithSeed(opts.seed),
		granular.WithLogger(logger),
	}
	if opts.hermite {
		engineOpts = append(engineOpts, granular.WithInterpolation(interp.ModeHermite))
	}

	engine := granular.New(engineOpts...)

	cfg := core.ApplyProcessorOptions(core.WithSampleRate(opts.sampleRate), core.WithBlockSize(opts.block))
	if cfg.SampleRate != opts.sampleRate {
		return nil, fmt.Errorf("%w: %v", granular.ErrInvalidSampleRate, opts.sampleRate)
	}

	if err := engine.PrepareConfig(cfg); err != nil {
		return nil, err
	}

	if err := applyParams(engine.Params(), opts); err != nil {
		return nil, err
	}

	gen := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(cfg.SampleRate), core.WithBlockSize(cfg.BlockSize)},
		signal.WithSeed(opts.seed),
	)

	r := &renderer{
		opts:      opts,
		logger:    logger,
		engine:    engine,
		in:        make([]float64, cfg.BlockSize),
		outL:      make([]float64, cfg.BlockSize),
		outR:      make([]float64, cfg.BlockSize),
		remaining: int(math.Round(opts.seconds * cfg.SampleRate)),
		tail:      make([]float64, analyzerSize),
	}

	var err error

	switch opts.source {
	case "sine":
		r.src, err = gen.Sine(opts.freq, opts.amplitude)
		if err == nil {
			r.tone, err = spectrum.NewTone(opts.freq, cfg.SampleRate)
		}
	case "noise":
		r.src, err = gen.WhiteNoise(opts.amplitude)
	case "chirp":
		r.src, err = gen.Chirp(opts.freq, math.Min(chirpEndHz, cfg.SampleRate/2), chirpPeriodSec, opts.amplitude)
	default:
		err = fmt.Errorf("unsupported source: %q", opts.source)
	}
	if err != nil {
		return nil, err
	}

	if opts.cvTarget != "" && opts.cvTarget != "none" {
		if r.target, err = granular.ParseControl(opts.cvTarget); err != nil {
			return nil, err
		}

		shape, err := signal.ParseShape(opts.cvShape)
		if err != nil {
			return nil, err
		}

		if r.lfo, err = gen.LFO(shape, opts.cvRate); err != nil {
			return nil, err
		}

		if r.target != granular.ControlGate {
			if err := engine.Params().SetRelative(r.target, !opts.cvAbsolute); err != nil {
				return nil, err
			}
		}

		r.cv = make([]float64, cfg.BlockSize)
	}

	logger.Debug("grainsynth: renderer ready",
		"source", opts.source,
		"frames", r.remaining,
		"cv_target", opts.cvTarget,
		"interpolation", engine.Interpolation().String(),
	)

	return r, nil
}

func applyParams(p *granular.Params, opts options) error {
	bases := []struct {
		c granular.Control
		v float64
	}{
		{granular.ControlDensity, opts.density},
		{granular.ControlSize, opts.size},
		{granular.ControlPosition, opts.position},
		{granular.ControlPitch, opts.pitch},
		{granular.ControlGate, opts.gate},
	}

	for _, b := range bases {
		if err := p.SetBase(b.c, b.v); err != nil {
			return err
		}
	}

	if err := p.SetSpread(opts.spread); err != nil {
		return err
	}
	if err := p.SetPitchRandom(opts.pitchRandom); err != nil {
		return err
	}

	return p.SetPanRandom(opts.panRandom)
}

// next renders the next block. It returns false once the requested length
// has been rendered.
func (r *renderer) next() (l, rt []float64, ok bool, err error) {
	if r.remaining <= 0 {
		return nil, nil, false, nil
	}

	n := min(r.remaining, len(r.in))
	in := r.in[:n]
	r.src.Fill(in)

	var cv granular.CV
	if r.lfo != nil {
		lane := r.cv[:n]
		r.lfo.Fill(lane)
		setLane(&cv, r.target, lane)
	}

	outL, outR := r.outL[:n], r.outR[:n]
	r.engine.Process(granular.StereoBlock{L: in, R: in}, granular.StereoBlock{L: outL, R: outR}, cv)

	r.measure(outL, outR)
	r.remaining -= n
	r.rendered += n

	if r.sink != nil {
		if err := r.sink(outL, outR); err != nil {
			return nil, nil, false, err
		}
	}

	return outL, outR, true, nil
}

func (r *renderer) renderAll() error {
	for {
		_, _, ok, err := r.next()
		if err != nil || !ok {
			return err
		}
	}
}

func (r *renderer) measure(l, rt []float64) {
	r.meterL.Update(l)
	r.meterR.Update(rt)

	for i := range l {
		r.tail[r.tailPos] = 0.5 * (l[i] + rt[i])
		r.tailPos++
		if r.tailPos == len(r.tail) {
			r.tailPos = 0
		}
		if r.tailFilled < len(r.tail) {
			r.tailFilled++
		}
	}

	if r.tone != nil {
		r.tone.ProcessBlock(l)
	}
}

// tailSamples returns the buffered output tail in time order.
func (r *renderer) tailSamples() []float64 {
	if r.tailFilled < len(r.tail) {
		return append([]float64(nil), r.tail[:r.tailFilled]...)
	}

	out := make([]float64, 0, len(r.tail))
	out = append(out, r.tail[r.tailPos:]...)

	return append(out, r.tail[:r.tailPos]...)
}

func setLane(cv *granular.CV, c granular.Control, lane []float64) {
	switch c {
	case granular.ControlDensity:
		cv.Density = lane
	case granular.ControlSize:
		cv.Size = lane
	case granular.ControlPosition:
		cv.Position = lane
	case granular.ControlPitch:
		cv.Pitch = lane
	case granular.ControlGate:
		cv.Gate = lane
	}
}
