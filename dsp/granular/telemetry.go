package granular

import (
	"math"
	"sync"
)

// VoiceView is the visual state of one active grain.
type VoiceView struct {
	// Position is the read position normalized to [0, 1) over the buffer.
	Position float64
	// Envelope is the current window gain in [0, 1].
	Envelope float64
}

// Stats counts scheduler and pool events since the last Prepare or Reset.
type Stats struct {
	Samples       uint64
	SpawnAttempts uint64
	Spawned       uint64
	// SpawnsDropped counts attempts that found the pool full.
	SpawnsDropped uint64
	// SpawnsAborted counts attempts whose size rounded to zero samples.
	SpawnsAborted uint64
	Retired       uint64
}

// Snapshot is an advisory picture of the engine for visualization. It is
// not part of the audio path and may lag by up to one telemetry stride.
type Snapshot struct {
	// Waveform holds the peak of max(|L|, |R|) per bucket of the ring buffer,
	// in buffer order (not rotated to the cursor).
	Waveform []float64
	// WriteCursor is the absolute ring index of the next write.
	WriteCursor int
	// WritePosition is WriteCursor normalized to [0, 1).
	WritePosition float64
	// Voices lists active grains in pool order.
	Voices      []VoiceView
	ActiveCount int
	Stats       Stats
}

// CopyTo deep-copies s into dst, reusing dst's slices when large enough.
func (s *Snapshot) CopyTo(dst *Snapshot) {
	dst.Waveform = append(dst.Waveform[:0], s.Waveform...)
	dst.Voices = append(dst.Voices[:0], s.Voices...)
	dst.WriteCursor = s.WriteCursor
	dst.WritePosition = s.WritePosition
	dst.ActiveCount = s.ActiveCount
	dst.Stats = s.Stats
}

// telemetry owns the live waveform tracker (audio goroutine only) and the
// published snapshot (guarded by mu).
type telemetry struct {
	stride    int
	countdown int

	points   []float64
	bucket   int
	peak     float64
	capacity int

	mu        sync.Mutex
	published Snapshot
	valid     bool
}

func (t *telemetry) allocate(capacity, points, stride, maxGrains int) {
	if points > capacity {
		points = capacity
	}

	t.stride = stride
	t.capacity = capacity
	t.points = make([]float64, points)

	t.mu.Lock()
	t.published = Snapshot{
		Waveform: make([]float64, points),
		Voices:   make([]VoiceView, 0, maxGrains),
	}
	t.valid = false
	t.mu.Unlock()

	t.reset()
}

func (t *telemetry) reset() {
	for i := range t.points {
		t.points[i] = 0
	}

	t.bucket = 0
	t.peak = 0
	t.countdown = t.stride

	t.mu.Lock()
	t.valid = false
	t.mu.Unlock()
}

// record folds one written frame at ring index cursor into the waveform.
func (t *telemetry) record(cursor int, l, r float64) {
	b := cursor * len(t.points) / t.capacity
	if b != t.bucket {
		t.points[t.bucket] = t.peak
		t.bucket = b
		t.peak = 0
	}

	if a := math.Abs(l); a > t.peak {
		t.peak = a
	}
	if a := math.Abs(r); a > t.peak {
		t.peak = a
	}
}

// due counts down one sample and reports whether a publish is due.
func (t *telemetry) due() bool {
	t.countdown--
	if t.countdown > 0 {
		return false
	}

	t.countdown = t.stride

	return true
}

// publish copies the engine state into the shared snapshot unless a reader
// holds it, in which case this publish is skipped.
func (t *telemetry) publish(e *Engine) bool {
	if !t.mu.TryLock() {
		return false
	}
	defer t.mu.Unlock()

	s := &t.published
	copy(s.Waveform, t.points)
	if t.bucket < len(s.Waveform) && t.peak > s.Waveform[t.bucket] {
		s.Waveform[t.bucket] = t.peak
	}

	cursor := e.ring.Cursor()
	n := float64(e.ring.Len())

	s.WriteCursor = cursor
	s.WritePosition = float64(cursor) / n
	s.Voices = s.Voices[:0]

	for i := range e.pool.Cap() {
		g := e.pool.Grain(i)
		if !g.Active() {
			continue
		}

		s.Voices = append(s.Voices, VoiceView{
			Position: g.ReadPosition() / n,
			Envelope: g.Envelope(),
		})
	}

	s.ActiveCount = e.pool.Active()
	s.Stats = e.stats
	t.valid = true

	return true
}

func (t *telemetry) read(dst *Snapshot) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.valid {
		return false
	}

	t.published.CopyTo(dst)

	return true
}
