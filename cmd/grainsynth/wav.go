package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-granular/dsp/dither"
)

const (
	wavHeaderSize    = 44
	wavChannels      = 2
	wavBitsPerSample = 16
	wavBlockAlign    = wavChannels * wavBitsPerSample / 8
)

// wavWriter streams 16-bit PCM stereo frames to a file and patches the RIFF
// sizes on Close. Each channel has its own quantizer so dither noise and
// shaping state are independent.
type wavWriter struct {
	f          *os.File
	w          *bufio.Writer
	sampleRate int
	frames     int
	buf        []byte
	qL, qR     *dither.Quantizer
	pcmL, pcmR []int16
}

// createWAV opens path for writing. opts configure both channel quantizers;
// the right channel's noise is seeded with seed+1.
func createWAV(path string, sampleRate int, seed uint64, opts ...dither.Option) (*wavWriter, error) {
	qL, err := dither.NewQuantizer(append(opts, dither.WithBitDepth(wavBitsPerSample), dither.WithSeed(seed))...)
	if err != nil {
		return nil, err
	}

	qR, err := dither.NewQuantizer(append(opts, dither.WithBitDepth(wavBitsPerSample), dither.WithSeed(seed+1))...)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav: %w", err)
	}

	ww := &wavWriter{
		f:          f,
		w:          bufio.NewWriter(f),
		sampleRate: sampleRate,
		qL:         qL,
		qR:         qR,
	}

	if err := writeWAVHeader(ww.w, sampleRate, 0); err != nil {
		_ = f.Close()
		return nil, err
	}

	return ww, nil
}

// writeWAVHeader writes a canonical 44-byte PCM header for dataFrames frames.
func writeWAVHeader(w io.Writer, sampleRate, dataFrames int) error {
	dataSize := uint32(dataFrames * wavBlockAlign)

	var h [wavHeaderSize]byte
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], 36+dataSize)
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:24], wavChannels)
	binary.LittleEndian.PutUint32(h[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(sampleRate*wavBlockAlign))
	binary.LittleEndian.PutUint16(h[32:34], wavBlockAlign)
	binary.LittleEndian.PutUint16(h[34:36], wavBitsPerSample)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], dataSize)

	if _, err := w.Write(h[:]); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}

	return nil
}

// WriteStereo appends interleaved frames. l and r must have equal length.
func (ww *wavWriter) WriteStereo(l, r []float64) error {
	if len(l) != len(r) {
		return fmt.Errorf("wav channel length mismatch: %d != %d", len(l), len(r))
	}

	need := len(l) * wavBlockAlign
	if cap(ww.buf) < need {
		ww.buf = make([]byte, need)
		ww.pcmL = make([]int16, len(l))
		ww.pcmR = make([]int16, len(l))
	}
	buf := ww.buf[:need]
	pcmL, pcmR := ww.pcmL[:len(l)], ww.pcmR[:len(l)]

	ww.qL.QuantizeInt16(pcmL, l)
	ww.qR.QuantizeInt16(pcmR, r)

	for i := range l {
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(pcmL[i]))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(pcmR[i]))
	}

	if _, err := ww.w.Write(buf); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}

	ww.frames += len(l)

	return nil
}

// Frames returns the number of frames written.
func (ww *wavWriter) Frames() int { return ww.frames }

// Close flushes pending data, rewrites the header with final sizes and
// closes the file.
func (ww *wavWriter) Close() error {
	err := ww.w.Flush()

	if err == nil {
		if _, err = ww.f.Seek(0, io.SeekStart); err == nil {
			err = writeWAVHeader(ww.f, ww.sampleRate, ww.frames)
		}
	}

	if cerr := ww.f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return fmt.Errorf("finish wav: %w", err)
	}

	return nil
}
