package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeTukey
	TypeTriangle
)

var (
	hannCoeffs     = []float64{0.5, -0.5}
	hammingCoeffs  = []float64{0.54, -0.46}
	blackmanCoeffs = []float64{0.42, -0.5, 0.08}
)

var typeNames = map[Type]string{
	TypeRectangular: "Rectangular",
	TypeHann:        "Hann",
	TypeHamming:     "Hamming",
	TypeBlackman:    "Blackman",
	TypeTukey:       "Tukey",
	TypeTriangle:    "Triangle",
}

// String returns the window name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return "Unknown"
}

// Option configures window generation.
type Option func(*config)

type config struct {
	alpha    float64
	periodic bool
}

func defaultConfig() config {
	return config{alpha: 0.5}
}

// WithAlpha configures the taper ratio for Tukey windows.
func WithAlpha(v float64) Option {
	return func(c *config) {
		if v >= 0 {
			c.alpha = v
		}
	}
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = evalWindow(t, samplePosition(i, length, cfg.periodic), cfg)
	}

	return out
}

// Apply multiplies buf in-place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	coeffs := Generate(t, len(buf), opts...)
	vecmath.MulBlockInPlace(buf, coeffs)
}

// ApplyCoefficients multiplies samples by coeffs into dst.
// All three slices must have the same length.
func ApplyCoefficients(dst, samples, coeffs []float64) error {
	if len(samples) != len(coeffs) || len(dst) != len(samples) {
		return errMismatchedLength
	}

	vecmath.MulBlock(dst, samples, coeffs)

	return nil
}

// At evaluates window t at normalized position x in [0, 1].
// Positions outside the range are clamped.
func At(t Type, x float64, opts ...Option) float64 {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return evalWindow(t, x, cfg)
}

// HannAt evaluates the raised-cosine window 0.5*(1-cos(2*pi*x)) at x in [0, 1].
//
// It is 0 at x=0 and x=1 and exactly 1 at x=0.5. No range check is done; this
// is the per-sample grain envelope.
func HannAt(x float64) float64 {
	return 0.5 * (1 - math.Cos(2*math.Pi*x))
}

// CoherentGain returns the mean coefficient value.
func CoherentGain(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	if sum == 0 {
		return 0, errZeroCoherentGain
	}

	return sum / float64(len(coeffs)), nil
}

func evalWindow(t Type, x float64, cfg config) float64 {
	if x < 0 {
		x = 0
	}

	if x > 1 {
		x = 1
	}

	switch t {
	case TypeRectangular:
		return 1
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case TypeBlackman:
		return cosineFromCoeffs(x, blackmanCoeffs)
	case TypeTukey:
		return tukeyAt(x, cfg.alpha)
	case TypeTriangle:
		return 1 - math.Abs(2*x-1)
	default:
		return 1
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}

func tukeyAt(x, alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}

	if alpha >= 1 {
		return cosineFromCoeffs(x, hannCoeffs)
	}

	a := alpha / 2
	switch {
	case x < a:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
	case x <= 1-a:
		return 1
	default:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
	}
}
