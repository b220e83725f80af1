package main

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-granular/dsp/dither"
)

func TestWAVWriterHeaderAndData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	w, err := createWAV(path, 44100, 1, dither.WithType(dither.None))
	if err != nil {
		t.Fatalf("createWAV: %v", err)
	}

	if err := w.WriteStereo([]float64{0, 1, -1}, []float64{0.5, -2, math.NaN()}); err != nil {
		t.Fatalf("WriteStereo: %v", err)
	}
	if err := w.WriteStereo([]float64{0.25}, []float64{-0.25}); err != nil {
		t.Fatalf("WriteStereo: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if len(data) != wavHeaderSize+4*wavBlockAlign {
		t.Fatalf("file size=%d", len(data))
	}

	le := binary.LittleEndian
	if string(data[0:4]) != "RIFF" || string(data[8:16]) != "WAVEfmt " || string(data[36:40]) != "data" {
		t.Fatalf("bad chunk ids: %q", data[:40])
	}

	checks := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"riff size", le.Uint32(data[4:8]), 36 + 16},
		{"channels", uint32(le.Uint16(data[22:24])), 2},
		{"sample rate", le.Uint32(data[24:28]), 44100},
		{"byte rate", le.Uint32(data[28:32]), 44100 * 4},
		{"block align", uint32(le.Uint16(data[32:34])), 4},
		{"bits", uint32(le.Uint16(data[34:36])), 16},
		{"data size", le.Uint32(data[40:44]), 16},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s=%d, want %d", c.name, c.got, c.want)
		}
	}

	wantSamples := []int16{0, 16384, 32767, -32768, -32767, 0, 8192, -8192}
	for i, want := range wantSamples {
		got := int16(le.Uint16(data[wavHeaderSize+2*i:]))
		if got != want {
			t.Fatalf("sample %d=%d, want %d", i, got, want)
		}
	}

	if w.Frames() != 4 {
		t.Fatalf("Frames()=%d", w.Frames())
	}
}

func TestWAVWriterRejectsMismatchedChannels(t *testing.T) {
	w, err := createWAV(filepath.Join(t.TempDir(), "x.wav"), 48000, 1)
	if err != nil {
		t.Fatalf("createWAV: %v", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.WriteStereo(make([]float64, 2), make([]float64, 3)); err == nil {
		t.Fatal("expected error")
	}
}

func TestWAVWriterDitherIsSmallAndSeeded(t *testing.T) {
	dir := t.TempDir()
	in := make([]float64, 256)
	for i := range in {
		in[i] = 0.3 * math.Sin(float64(i)/10)
	}

	write := func(name string) []byte {
		path := filepath.Join(dir, name)
		w, err := createWAV(path, 48000, 7, dither.WithNoiseShaping(true))
		if err != nil {
			t.Fatalf("createWAV: %v", err)
		}
		if err := w.WriteStereo(in, in); err != nil {
			t.Fatalf("WriteStereo: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read: %v", err)
		}

		return data
	}

	a := write("a.wav")
	b := write("b.wav")
	if string(a) != string(b) {
		t.Fatal("same seed produced different files")
	}

	for i, x := range in {
		got := float64(int16(binary.LittleEndian.Uint16(a[wavHeaderSize+4*i:])))
		if d := math.Abs(got - x*math.MaxInt16); d > 3 {
			t.Fatalf("frame %d: code %v is %v LSB from %v", i, got, d, x*math.MaxInt16)
		}
	}
}

func TestCreateWAVRejectsBadDitherOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if _, err := createWAV(path, 48000, 1, dither.WithType(dither.Type(9))); err == nil {
		t.Fatal("expected error")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file should not be created, stat err=%v", err)
	}
}
