package spectrum

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-granular/dsp/window"
)

const (
	minAnalyzerSize = 16
	defaultFloorDB  = -130.0
)

var (
	// ErrInvalidSize is returned by NewAnalyzer for sizes that are not a
	// power of two of at least 16.
	ErrInvalidSize = errors.New("spectrum: analyzer size must be a power of two >= 16")

	errDstLength = errors.New("spectrum: dst length must equal Bins()")
)

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*analyzerConfig)

type analyzerConfig struct {
	window  window.Type
	floorDB float64
}

// WithWindow selects the analysis window. The default is Hann.
func WithWindow(t window.Type) AnalyzerOption {
	return func(c *analyzerConfig) {
		c.window = t
	}
}

// WithFloorDB sets the lowest reported level. The default is -130 dB.
func WithFloorDB(db float64) AnalyzerOption {
	return func(c *analyzerConfig) {
		if db < 0 {
			c.floorDB = db
		}
	}
}

// Analyzer computes single-sided magnitude spectra in dB relative to a
// full-scale sine. It reuses its buffers and is not safe for concurrent use.
type Analyzer struct {
	size    int
	floorDB float64

	plan   *algofft.Plan[complex128]
	coeffs []float64
	norm   float64

	frame []float64
	in    []complex128
	out   []complex128
	re    []float64
	im    []float64
	mag   []float64
}

// NewAnalyzer creates an analyzer for frames of size samples.
func NewAnalyzer(size int, opts ...AnalyzerOption) (*Analyzer, error) {
	if size < minAnalyzerSize || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	cfg := analyzerConfig{window: window.TypeHann, floorDB: defaultFloorDB}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	coeffs := window.Generate(cfg.window, size, window.WithPeriodic())

	gain, err := window.CoherentGain(coeffs)
	if err != nil {
		return nil, fmt.Errorf("spectrum: %s window: %w", cfg.window, err)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	bins := size/2 + 1

	return &Analyzer{
		size:    size,
		floorDB: cfg.floorDB,
		plan:    plan,
		coeffs:  coeffs,
		norm:    float64(size) * gain,
		frame:   make([]float64, size),
		in:      make([]complex128, size),
		out:     make([]complex128, size),
		re:      make([]float64, bins),
		im:      make([]float64, bins),
		mag:     make([]float64, bins),
	}, nil
}

// Size returns the frame length.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of single-sided bins, Size()/2+1.
func (a *Analyzer) Bins() int { return a.size/2 + 1 }

// BinFrequency returns the centre frequency of bin k.
func (a *Analyzer) BinFrequency(k int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(a.size)
}

// MagnitudeDB writes the windowed magnitude spectrum of samples into dst in
// dB. A sine of amplitude 1 centred on a bin reads 0 dB. Inputs longer than
// Size() are analyzed over their last Size() samples; shorter inputs are
// zero-padded.
func (a *Analyzer) MagnitudeDB(dst, samples []float64) error {
	if len(dst) != a.Bins() {
		return fmt.Errorf("%w: %d != %d", errDstLength, len(dst), a.Bins())
	}

	if len(samples) > a.size {
		samples = samples[len(samples)-a.size:]
	}

	copy(a.frame, samples)
	for i := len(samples); i < a.size; i++ {
		a.frame[i] = 0
	}

	if err := window.ApplyCoefficients(a.frame, a.frame, a.coeffs); err != nil {
		return err
	}

	for i, x := range a.frame {
		a.in[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return fmt.Errorf("spectrum: forward fft: %w", err)
	}

	splitComplex(a.re, a.im, a.out[:len(a.re)])
	MagnitudeFromParts(a.mag, a.re, a.im)

	last := len(a.mag) - 1
	for k, m := range a.mag {
		m /= a.norm
		if k > 0 && k < last {
			m *= 2
		}

		dst[k] = AmplitudeDB(m, a.floorDB)
	}

	return nil
}

// Peak returns the index and level of the loudest bin in db, skipping DC.
// It returns -1 when db has fewer than two bins.
func Peak(db []float64) (int, float64) {
	if len(db) < 2 {
		return -1, 0
	}

	best := 1
	for k := 2; k < len(db); k++ {
		if db[k] > db[best] {
			best = k
		}
	}

	return best, db[best]
}
