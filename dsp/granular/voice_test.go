package granular

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-granular/internal/testutil"
)

func TestPanGainsCentredWithoutRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	want := math.Cos(math.Pi / 4)

	for range 1000 {
		l, r := panGains(0, rng.Float64()-0.5)
		testutil.RequireNear(t, "panL", l, want, 1e-15)
		testutil.RequireNear(t, "panR", r, want, 1e-15)
		if l != r {
			t.Fatalf("centred pan must be symmetric: l=%v r=%v", l, r)
		}
	}

	testutil.RequireNear(t, "0.7071", want, 0.7071067811865476, 1e-15)
}

func TestPanGainsConstantPower(t *testing.T) {
	for _, u := range []float64{-0.5, -0.25, 0, 0.2, 0.49} {
		l, r := panGains(1, u)
		testutil.RequireNear(t, "power", l*l+r*r, 1, 1e-12)
	}

	l, r := panGains(1, -0.5)
	if l <= r {
		t.Fatalf("u=-0.5 should lean left: l=%v r=%v", l, r)
	}
}

func TestGrainEnvelopeShape(t *testing.T) {
	for _, lifetime := range []int{2, 3, 4, 101, 4800} {
		var g Grain
		g.start(0, 1, 1, 1, lifetime)

		testutil.RequireNear(t, "birth", g.Envelope(), 0, 0)

		peak := 0.0
		last := 0.0
		for g.Active() {
			env := g.Envelope()
			if env > peak {
				peak = env
			}
			last = env
			g.advance(1 << 20)
		}

		if lifetime%2 == 0 {
			testutil.RequireNear(t, "midpoint peak", peak, 1, 1e-15)
		} else if peak > 1 {
			t.Fatalf("lifetime %d: peak %v above 1", lifetime, peak)
		}

		// The final rendered sample is one step before the closing zero.
		wantLast := 0.5 * (1 - math.Cos(2*math.Pi*float64(lifetime-1)/float64(lifetime)))
		testutil.RequireNear(t, "last", last, wantLast, 1e-12)
	}
}

func TestGrainLifecycle(t *testing.T) {
	var g Grain
	g.start(10, 1.5, 0.6, 0.8, 3)

	if !g.Active() || g.SamplesRemaining() != 3 || g.TotalLifetime() != 3 {
		t.Fatalf("unexpected start state: %+v", g)
	}

	if g.advance(12) {
		t.Fatal("retired after first sample")
	}
	testutil.RequireNear(t, "position", g.ReadPosition(), 11.5, 0)

	g.advance(12)
	testutil.RequireNear(t, "wrapped position", g.ReadPosition(), 1, 0)

	if !g.advance(12) {
		t.Fatal("expected retirement on third sample")
	}

	if g.Active() || g.SamplesRemaining() != 0 {
		t.Fatalf("grain not retired: %+v", g)
	}

	l, r := g.Pan()
	if l != 0.6 || r != 0.8 || g.Increment() != 1.5 {
		t.Fatalf("unexpected voice data: pan=(%v,%v) inc=%v", l, r, g.Increment())
	}
}

func TestLifetimeSamples(t *testing.T) {
	tests := []struct {
		sizeMs     float64
		sampleRate float64
		want       int
	}{
		{100, 48000, 4800},
		{5, 48000, 240},
		{500, 44100, 22050},
		{5, 80, 0},
		{5, 100, 1},
	}

	for _, tc := range tests {
		if got := lifetimeSamples(tc.sizeMs, tc.sampleRate); got != tc.want {
			t.Fatalf("lifetimeSamples(%v, %v)=%d, want %d", tc.sizeMs, tc.sampleRate, got, tc.want)
		}
	}
}

func TestStartPosition(t *testing.T) {
	tests := []struct {
		name     string
		cursor   int
		capacity int
		position float64
		spread   float64
		u        float64
		want     float64
	}{
		{"midpoint", 4800, 96000, 0.5, 0, 0.3, 52800},
		{"just behind cursor", 100, 1000, 0.01, 0, 0, 90},
		{"spread jitter", 500, 1000, 0.5, 0.5, 0.2, 900},
		{"clamped high", 500, 1000, 0.9, 1, 0.4, 500},
		{"clamped low", 500, 1000, 0.1, 1, -0.5, 500},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := startPosition(tc.cursor, tc.capacity, tc.position, tc.spread, tc.u)
			testutil.RequireNear(t, "position", got, tc.want, 1e-9)

			if got < 0 || got >= float64(tc.capacity) {
				t.Fatalf("position %v outside [0,%d)", got, tc.capacity)
			}
		})
	}
}

func TestPlaybackIncrement(t *testing.T) {
	testutil.RequireNear(t, "unison", playbackIncrement(0, 0, 0.4), 1, 0)
	testutil.RequireNear(t, "octave", playbackIncrement(12, 0, 0.4), 2, 1e-15)
	testutil.RequireNear(t, "random", playbackIncrement(0, 24, -0.5), 0.5, 1e-15)

	if inc := playbackIncrement(-24, 24, -0.5); inc <= 0 {
		t.Fatalf("increment must stay positive, got %v", inc)
	}
}
