package main

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-granular/dsp/granular"
	"github.com/cwbudde/algo-granular/internal/testutil"
)

func testOptions() options {
	return options{
		sampleRate: 48000,
		block:      256,
		seconds:    0.5,
		source:     "sine",
		freq:       220,
		amplitude:  0.5,
		density:    20,
		size:       50,
		position:   0.1,
		gate:       1,
		cvTarget:   "none",
		cvShape:    "sine",
		cvRate:     1,
		seed:       1,
	}
}

func newTestRenderer(t *testing.T, opts options) *renderer {
	t.Helper()

	r, err := newRenderer(opts, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("newRenderer: %v", err)
	}

	return r
}

func TestRendererRendersRequestedLength(t *testing.T) {
	r := newTestRenderer(t, testOptions())

	frames := 0
	r.sink = func(l, rt []float64) error {
		if len(l) != len(rt) {
			t.Fatalf("channel length mismatch: %d != %d", len(l), len(rt))
		}
		testutil.RequireFinite(t, l)
		frames += len(l)
		return nil
	}

	if err := r.renderAll(); err != nil {
		t.Fatalf("renderAll: %v", err)
	}

	if frames != 24000 || r.rendered != 24000 {
		t.Fatalf("rendered %d frames (sink %d), want 24000", r.rendered, frames)
	}

	s := r.summary()
	if s.stats.Samples != 24000 || s.stats.Spawned == 0 {
		t.Fatalf("unexpected engine stats: %+v", s.stats)
	}

	if !s.hasTone || s.toneHz != 220 {
		t.Fatalf("sine source should report tone level: %+v", s)
	}
}

func TestRendererSourcesAndCV(t *testing.T) {
	for _, source := range []string{"sine", "noise", "chirp"} {
		for _, target := range []string{"density", "size", "position", "pitch", "gate"} {
			opts := testOptions()
			opts.source = source
			opts.cvTarget = target
			opts.cvShape = "triangle"
			opts.cvAbsolute = target == "pitch"
			opts.seconds = 0.1

			r := newTestRenderer(t, opts)
			if r.lfo == nil {
				t.Fatalf("%s/%s: no LFO", source, target)
			}

			if err := r.renderAll(); err != nil {
				t.Fatalf("%s/%s: %v", source, target, err)
			}

			if target == "pitch" && r.engine.Params().Relative(granular.ControlPitch) {
				t.Fatal("-cv-absolute not applied")
			}
		}
	}
}

func TestRendererRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*options)
	}{
		{"block", func(o *options) { o.block = 0 }},
		{"seconds", func(o *options) { o.seconds = 0 }},
		{"nan seconds", func(o *options) { o.seconds = math.NaN() }},
		{"source", func(o *options) { o.source = "square" }},
		{"cv target", func(o *options) { o.cvTarget = "volume" }},
		{"cv shape", func(o *options) { o.cvTarget = "pitch"; o.cvShape = "wobble" }},
		{"density", func(o *options) { o.density = math.NaN() }},
		{"spread", func(o *options) { o.spread = 2 }},
		{"freq", func(o *options) { o.freq = 30000 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := testOptions()
			tc.modify(&opts)

			if _, err := newRenderer(opts, slog.New(slog.DiscardHandler)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	opts := testOptions()
	opts.sampleRate = 0
	if _, err := newRenderer(opts, slog.New(slog.DiscardHandler)); !errors.Is(err, granular.ErrInvalidSampleRate) {
		t.Fatalf("sample rate error=%v, want ErrInvalidSampleRate", err)
	}
}

func TestRendererTailOrder(t *testing.T) {
	opts := testOptions()
	opts.seconds = 1000.0 / 48000
	r := newTestRenderer(t, opts)

	var last []float64
	r.sink = func(l, rt []float64) error {
		for i := range l {
			last = append(last, 0.5*(l[i]+rt[i]))
		}
		return nil
	}

	if err := r.renderAll(); err != nil {
		t.Fatalf("renderAll: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, r.tailSamples(), last, 0)

	// Past the tail capacity only the newest samples are kept, in order.
	opts.seconds = 10000.0 / 48000
	r = newTestRenderer(t, opts)
	last = last[:0]
	r.sink = func(l, rt []float64) error {
		for i := range l {
			last = append(last, 0.5*(l[i]+rt[i]))
		}
		return nil
	}

	if err := r.renderAll(); err != nil {
		t.Fatalf("renderAll: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, r.tailSamples(), last[len(last)-analyzerSize:], 0)
}

func TestSinkErrorStopsRender(t *testing.T) {
	r := newTestRenderer(t, testOptions())

	want := errors.New("disk full")
	r.sink = func(_, _ []float64) error { return want }

	if err := r.renderAll(); !errors.Is(err, want) {
		t.Fatalf("renderAll error=%v, want %v", err, want)
	}
}

func TestPrintSummary(t *testing.T) {
	r := newTestRenderer(t, testOptions())
	if err := r.renderAll(); err != nil {
		t.Fatalf("renderAll: %v", err)
	}

	var buf bytes.Buffer
	if err := printSummary(&buf, r.summary()); err != nil {
		t.Fatalf("printSummary: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Grains spawned", "Peak L / R", "Spectral peak", "Source tone level"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatDB(t *testing.T) {
	if got := formatDB(math.Inf(-1)); got != "-inf" {
		t.Fatalf("formatDB(-Inf)=%q", got)
	}
	if got := formatDB(-6.02); got != "-6.0" {
		t.Fatalf("formatDB(-6.02)=%q", got)
	}
}

func TestRunWritesWAV(t *testing.T) {
	opts := testOptions()
	opts.out = filepath.Join(t.TempDir(), "cloud.wav")
	opts.dither = "triangular"
	opts.noiseShaping = true

	if err := run(opts, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("run: %v", err)
	}

	info, err := os.Stat(opts.out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if want := int64(wavHeaderSize + 24000*wavBlockAlign); info.Size() != want {
		t.Fatalf("wav size=%d, want %d", info.Size(), want)
	}
}

func TestRunRejectsUnknownDither(t *testing.T) {
	opts := testOptions()
	opts.out = filepath.Join(t.TempDir(), "x.wav")
	opts.dither = "gaussian"

	if err := run(opts, slog.New(slog.DiscardHandler)); err == nil {
		t.Fatal("expected error")
	}
}
