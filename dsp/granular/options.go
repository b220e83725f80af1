package granular

import (
	"log/slog"

	"github.com/cwbudde/algo-granular/dsp/interp"
)

const (
	defaultSeed            = 1
	defaultTelemetryStride = 64
	defaultWaveformPoints  = 256
)

// Option configures an Engine at construction.
type Option func(*config)

type config struct {
	seed            int64
	logger          *slog.Logger
	interpolation   interp.Mode
	maxGrains       int
	telemetryStride int
	waveformPoints  int
}

func defaultConfig() config {
	return config{
		seed:            defaultSeed,
		logger:          slog.New(slog.DiscardHandler),
		interpolation:   interp.ModeLinear,
		maxGrains:       DefaultMaxGrains,
		telemetryStride: defaultTelemetryStride,
		waveformPoints:  defaultWaveformPoints,
	}
}

// WithSeed sets the random seed applied at Prepare and Reset.
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithLogger sets the logger used by non-real-time entry points.
// Process never logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInterpolation selects how grains read between recorded samples.
func WithInterpolation(mode interp.Mode) Option {
	return func(c *config) {
		if mode == interp.ModeLinear || mode == interp.ModeHermite {
			c.interpolation = mode
		}
	}
}

// WithMaxGrains sets the voice pool capacity.
func WithMaxGrains(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxGrains = n
		}
	}
}

// WithTelemetryStride sets how many samples pass between snapshot publishes.
func WithTelemetryStride(samples int) Option {
	return func(c *config) {
		if samples > 0 {
			c.telemetryStride = samples
		}
	}
}

// WithWaveformPoints sets the number of points in the snapshot waveform.
func WithWaveformPoints(points int) Option {
	return func(c *config) {
		if points > 0 {
			c.waveformPoints = points
		}
	}
}
