//go:build !headless

package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
)

// stream adapts the renderer to the io.Reader oto pulls float32 LE stereo
// frames from. Read runs on oto's goroutine.
type stream struct {
	r       *renderer
	pending []byte
	err     error
	done    chan struct{}
}

func (s *stream) Read(p []byte) (int, error) {
	for len(s.pending) == 0 {
		if s.err != nil {
			return 0, s.err
		}

		l, rt, ok, err := s.r.next()
		if err != nil || !ok {
			s.err = err
			if s.err == nil {
				s.err = io.EOF
			}
			close(s.done)

			return 0, s.err
		}

		s.pending = encodeFloat32Stereo(s.pending[:0], l, rt)
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	return n, nil
}

func encodeFloat32Stereo(dst []byte, l, r []float64) []byte {
	for i := range l {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(l[i])))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(r[i])))
	}

	return dst
}

func play(r *renderer) error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(r.engine.SampleRate()),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	s := &stream{r: r, done: make(chan struct{})}
	player := ctx.NewPlayer(s)
	player.Play()

	<-s.done

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	if err := player.Close(); err != nil {
		return fmt.Errorf("close player: %w", err)
	}

	if s.err != io.EOF {
		return s.err
	}

	return nil
}
