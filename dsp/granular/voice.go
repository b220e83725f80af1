package granular

import (
	"math"

	"github.com/cwbudde/algo-granular/dsp/core"
	"github.com/cwbudde/algo-granular/dsp/window"
)

// Grain is one voice of the engine: a windowed read head moving through the
// recorded buffer.
//
// Invariant: 0 <= samplesRemaining <= totalLifetime, and an active grain has
// samplesRemaining > 0.
type Grain struct {
	active           bool
	readPosition     float64
	increment        float64
	samplesRemaining int
	totalLifetime    int
	panL             float64
	panR             float64
}

// Active reports whether the grain is playing.
func (g *Grain) Active() bool { return g.active }

// ReadPosition returns the absolute fractional buffer position of the next read.
func (g *Grain) ReadPosition() float64 { return g.readPosition }

// Increment returns the playback ratio.
func (g *Grain) Increment() float64 { return g.increment }

// SamplesRemaining returns how many samples the grain will still render.
func (g *Grain) SamplesRemaining() int { return g.samplesRemaining }

// TotalLifetime returns the grain length in samples.
func (g *Grain) TotalLifetime() int { return g.totalLifetime }

// Pan returns the constant-power channel gains.
func (g *Grain) Pan() (left, right float64) { return g.panL, g.panR }

// Envelope returns the Hann window value for the next rendered sample.
func (g *Grain) Envelope() float64 {
	if g.totalLifetime <= 0 {
		return 0
	}

	elapsed := g.totalLifetime - g.samplesRemaining

	return window.HannAt(float64(elapsed) / float64(g.totalLifetime))
}

func (g *Grain) start(readPosition, increment, panL, panR float64, lifetime int) {
	g.active = true
	g.readPosition = readPosition
	g.increment = increment
	g.samplesRemaining = lifetime
	g.totalLifetime = lifetime
	g.panL = panL
	g.panR = panR
}

// advance moves the read head by one sample and reports whether the grain
// retired.
func (g *Grain) advance(capacity float64) bool {
	g.readPosition += g.increment
	if g.readPosition >= capacity {
		g.readPosition -= capacity
	}

	g.samplesRemaining--
	if g.samplesRemaining <= 0 {
		g.samplesRemaining = 0
		g.active = false

		return true
	}

	return false
}

// lifetimeSamples converts a grain size in milliseconds to whole samples.
func lifetimeSamples(sizeMs, sampleRate float64) int {
	return int(math.Round(sizeMs / 1000 * sampleRate))
}

// startPosition returns the absolute read position for a grain whose
// nominal position (fraction of the buffer behind cursor) is jittered by
// u*spread, u in [-0.5, 0.5).
func startPosition(cursor, capacity int, position, spread, u float64) float64 {
	n := float64(capacity)
	offset := core.Clamp01(position+u*spread) * n

	pos := math.Mod(float64(cursor)-offset+n, n)
	if pos < 0 {
		pos += n
	}
	if pos >= n {
		pos = 0
	}

	return pos
}

// playbackIncrement returns the equal-tempered ratio for pitch semitones
// jittered by u*pitchRandom.
func playbackIncrement(pitch, pitchRandom, u float64) float64 {
	return core.SemitonesToRatio(pitch + u*pitchRandom)
}

// panGains returns the constant-power gains for pan u*panRandom, where -0.5
// leans left and +0.5 leans right. pan 0 gives cos(pi/4) on both sides.
func panGains(panRandom, u float64) (left, right float64) {
	angle := (u*panRandom + 1) * math.Pi / 4

	return math.Cos(angle), math.Cos(math.Pi/2 - angle)
}
