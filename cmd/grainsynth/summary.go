package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/cwbudde/algo-granular/dsp/granular"
	"github.com/cwbudde/algo-granular/dsp/spectrum"
	"github.com/cwbudde/algo-granular/stats/level"
)

type summary struct {
	sampleRate float64
	frames     int
	stats      granular.Stats
	active     int
	left       level.Level
	right      level.Level

	peakHz float64
	peakDB float64
	hasFFT bool

	toneHz  float64
	toneDB  float64
	hasTone bool
}

func (r *renderer) summary() summary {
	s := summary{
		sampleRate: r.engine.SampleRate(),
		frames:     r.rendered,
		stats:      r.engine.Stats(),
		active:     r.engine.ActiveGrains(),
		left:       r.meterL.Result(),
		right:      r.meterR.Result(),
	}

	if a, err := spectrum.NewAnalyzer(analyzerSize); err == nil {
		db := make([]float64, a.Bins())
		if err := a.MagnitudeDB(db, r.tailSamples()); err == nil {
			k, peak := spectrum.Peak(db)
			s.peakHz = a.BinFrequency(k, s.sampleRate)
			s.peakDB = peak
			s.hasFFT = true
		}
	} else {
		r.logger.Warn("grainsynth: spectrum unavailable", "error", err)
	}

	if r.tone != nil {
		s.toneHz = r.tone.Frequency()
		s.toneDB = spectrum.AmplitudeDB(r.tone.Amplitude(), -130)
		s.hasTone = true
	}

	return s
}

func printSummary(w io.Writer, s summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	rows := [][2]string{
		{"Frames", fmt.Sprintf("%d (%.2f s)", s.frames, float64(s.frames)/s.sampleRate)},
		{"Spawn attempts", fmt.Sprintf("%d", s.stats.SpawnAttempts)},
		{"Grains spawned", fmt.Sprintf("%d", s.stats.Spawned)},
		{"Dropped (pool full)", fmt.Sprintf("%d", s.stats.SpawnsDropped)},
		{"Aborted (zero length)", fmt.Sprintf("%d", s.stats.SpawnsAborted)},
		{"Active at end", fmt.Sprintf("%d", s.active)},
		{"Peak L / R [dBFS]", fmt.Sprintf("%s / %s", formatDB(s.left.PeakdB), formatDB(s.right.PeakdB))},
		{"RMS L / R [dBFS]", fmt.Sprintf("%s / %s", formatDB(s.left.RMSdB), formatDB(s.right.RMSdB))},
		{"Clipped samples", fmt.Sprintf("%d", s.left.Clipped+s.right.Clipped)},
	}

	if s.hasFFT {
		rows = append(rows, [2]string{"Spectral peak", fmt.Sprintf("%.1f Hz at %s dB", s.peakHz, formatDB(s.peakDB))})
	}
	if s.hasTone {
		rows = append(rows, [2]string{"Source tone level", fmt.Sprintf("%.1f Hz at %s dB", s.toneHz, formatDB(s.toneDB))})
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}

	return nil
}

func formatDB(db float64) string {
	if math.IsInf(db, -1) {
		return "-inf"
	}

	return fmt.Sprintf("%.1f", db)
}
