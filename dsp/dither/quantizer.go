package dither

import (
	"math"
	"math/rand/v2"
)

// Quantizer maps samples in [-1, 1] to signed integers of a fixed bit
// depth. Full scale 1.0 maps to the largest positive code; values beyond
// full scale are clipped. It is not safe for concurrent use.
type Quantizer struct {
	bitDepth int
	typ      Type
	shaping  bool
	seed     uint64
	rng      *rand.Rand

	scale float64
	lo    int
	hi    int

	lastErr float64
}

// NewQuantizer creates a Quantizer. The default is 16-bit triangular dither
// without noise shaping.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	hi := 1<<(cfg.bitDepth-1) - 1

	return &Quantizer{
		bitDepth: cfg.bitDepth,
		typ:      cfg.typ,
		shaping:  cfg.shaping,
		seed:     cfg.seed,
		rng:      rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15)),
		scale:    float64(hi),
		lo:       -hi - 1,
		hi:       hi,
	}, nil
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Type returns the dither noise distribution.
func (q *Quantizer) Type() Type { return q.typ }

// NoiseShaping reports whether error feedback is enabled.
func (q *Quantizer) NoiseShaping() bool { return q.shaping }

// Quantize returns the integer code for x. NaN maps to 0.
func (q *Quantizer) Quantize(x float64) int {
	if math.IsNaN(x) {
		return 0
	}

	v := x * q.scale
	if q.shaping {
		v -= q.lastErr
	}

	code := math.Round(v + q.noise())

	var out int
	switch {
	case code > float64(q.hi):
		out = q.hi
	case code < float64(q.lo):
		out = q.lo
	default:
		out = int(code)
	}

	if q.shaping {
		// Clipping error is not fed back; it would ring after an overload.
		q.lastErr = math.Max(-1, math.Min(1, float64(out)-v))
	}

	return out
}

// QuantizeInt16 quantizes a block into dst. The bit depth must be 16 or
// less. dst must be at least as long as src.
func (q *Quantizer) QuantizeInt16(dst []int16, src []float64) {
	for i, x := range src {
		dst[i] = int16(q.Quantize(x))
	}
}

// Reset clears the error history and reseeds the noise generator.
func (q *Quantizer) Reset() {
	q.lastErr = 0
	q.rng = rand.New(rand.NewPCG(q.seed, q.seed^0x9e3779b97f4a7c15))
}

// noise returns one dither sample in LSB units.
func (q *Quantizer) noise() float64 {
	switch q.typ {
	case Rectangular:
		return q.rng.Float64() - 0.5
	case Triangular:
		return q.rng.Float64() - q.rng.Float64()
	default:
		return 0
	}
}
