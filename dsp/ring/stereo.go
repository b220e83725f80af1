package ring

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-granular/dsp/interp"
)

// ErrInvalidCapacity is returned when a buffer is created with fewer than
// two frames.
var ErrInvalidCapacity = errors.New("ring: capacity must be >= 2")

// Stereo is a fixed-capacity two-channel circular recorder.
//
// Writes never block and never fail: once the buffer is full the oldest
// frame is overwritten. Reads address positions behind the write cursor.
// Stereo is owned by a single goroutine and is not safe for concurrent use.
type Stereo struct {
	left   []float64
	right  []float64
	cursor int
}

// New returns a zeroed stereo buffer holding capacity frames.
func New(capacity int) (*Stereo, error) {
	if capacity < 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	return &Stereo{
		left:  make([]float64, capacity),
		right: make([]float64, capacity),
	}, nil
}

// Len returns the capacity in frames.
func (s *Stereo) Len() int {
	return len(s.left)
}

// Cursor returns the absolute index the next frame will be written to.
func (s *Stereo) Cursor() int {
	return s.cursor
}

// Write stores one stereo frame and advances the cursor.
func (s *Stereo) Write(l, r float64) {
	s.left[s.cursor] = l
	s.right[s.cursor] = r

	s.cursor++
	if s.cursor >= len(s.left) {
		s.cursor = 0
	}
}

// WriteBlock stores len(l) frames. r must be at least as long as l.
func (s *Stereo) WriteBlock(l, r []float64) {
	for i := range l {
		s.Write(l[i], r[i])
	}
}

// ReadInterpolated reads the frame offset samples behind the write cursor,
// linearly interpolating fractional offsets.
//
// Offset k >= 1 addresses the k-th most recently written frame. Offsets
// outside [0, Len()) wrap; callers keep offsets in range by bounding how far
// back they look.
func (s *Stereo) ReadInterpolated(offset float64) (l, r float64) {
	return s.ReadAt(float64(s.cursor) - offset)
}

// ReadAt reads the absolute fractional position pos with linear
// interpolation between floor(pos) and the next frame (wrapping).
func (s *Stereo) ReadAt(pos float64) (l, r float64) {
	i0, frac := s.split(pos)

	i1 := i0 + 1
	if i1 >= len(s.left) {
		i1 = 0
	}

	l = interp.Linear(frac, s.left[i0], s.left[i1])
	r = interp.Linear(frac, s.right[i0], s.right[i1])

	return l, r
}

// ReadAtHermite reads the absolute fractional position pos with 4-point
// cubic Hermite interpolation.
func (s *Stereo) ReadAtHermite(pos float64) (l, r float64) {
	i0, frac := s.split(pos)
	n := len(s.left)

	im1 := i0 - 1
	if im1 < 0 {
		im1 += n
	}

	i1 := i0 + 1
	if i1 >= n {
		i1 -= n
	}

	i2 := i1 + 1
	if i2 >= n {
		i2 -= n
	}

	l = interp.Hermite4(frac, s.left[im1], s.left[i0], s.left[i1], s.left[i2])
	r = interp.Hermite4(frac, s.right[im1], s.right[i0], s.right[i1], s.right[i2])

	return l, r
}

// Wrap maps pos into [0, Len()).
func (s *Stereo) Wrap(pos float64) float64 {
	n := float64(len(s.left))
	if pos >= 0 && pos < n {
		return pos
	}

	pos = math.Mod(pos, n)
	if pos < 0 {
		pos += n
	}

	// Mod of a tiny negative value can round up to exactly n.
	if pos >= n {
		pos = 0
	}

	return pos
}

// Frame returns the raw stored frame at absolute index i (wrapping).
func (s *Stereo) Frame(i int) (l, r float64) {
	n := len(s.left)

	i %= n
	if i < 0 {
		i += n
	}

	return s.left[i], s.right[i]
}

// Reset clears stored audio and rewinds the cursor.
func (s *Stereo) Reset() {
	for i := range s.left {
		s.left[i] = 0
		s.right[i] = 0
	}

	s.cursor = 0
}

func (s *Stereo) split(pos float64) (int, float64) {
	pos = s.Wrap(pos)

	i0 := int(pos)
	frac := pos - float64(i0)

	if i0 >= len(s.left) {
		i0 = 0
	}

	return i0, frac
}
