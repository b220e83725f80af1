package dither

import "fmt"

const (
	defaultBitDepth = 16
	defaultType     = Triangular
	minBitDepth     = 2
	maxBitDepth     = 24
)

type config struct {
	bitDepth int
	typ      Type
	shaping  bool
	seed     uint64
}

func defaultConfig() config {
	return config{
		bitDepth: defaultBitDepth,
		typ:      defaultType,
		seed:     1,
	}
}

// Option configures a Quantizer.
type Option func(*config) error

// WithBitDepth sets the target bit depth (2-24, default 16).
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bits)
		}

		cfg.bitDepth = bits

		return nil
	}
}

// WithType sets the dither noise distribution (default Triangular).
func WithType(t Type) Option {
	return func(cfg *config) error {
		if !t.Valid() {
			return fmt.Errorf("dither: invalid type: %d", int(t))
		}

		cfg.typ = t

		return nil
	}
}

// WithNoiseShaping enables first-order error feedback, which moves
// quantization noise towards high frequencies.
func WithNoiseShaping(enabled bool) Option {
	return func(cfg *config) error {
		cfg.shaping = enabled
		return nil
	}
}

// WithSeed seeds the dither noise generator for reproducible output.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}
