package granular

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-granular/dsp/core"
	"github.com/cwbudde/algo-granular/dsp/interp"
	"github.com/cwbudde/algo-granular/dsp/ring"
)

// BufferSeconds is the length of recorded history. Grain size is capped at
// 500 ms, well below it, so a grain never reads past the write cursor
// within one buffer revolution.
const BufferSeconds = 2.0

const minBufferFrames = 4

var (
	// ErrInvalidSampleRate is returned by Prepare for non-positive or
	// non-finite sample rates.
	ErrInvalidSampleRate = errors.New("granular: sample rate must be > 0 and finite")
	// ErrInvalidBlockSize is returned by Prepare for non-positive block sizes.
	ErrInvalidBlockSize = errors.New("granular: max block size must be > 0")
)

// StereoBlock is a pair of channel slices.
type StereoBlock struct {
	L []float64
	R []float64
}

// CV holds optional control-voltage lanes for one block. A nil lane, or one
// shorter than the block, is treated as not connected. Lanes are read only
// during the Process call they are passed to.
type CV struct {
	Density  []float64
	Size     []float64
	Position []float64
	Pitch    []float64
	Gate     []float64
}

func (cv *CV) lane(c Control) []float64 {
	switch c {
	case ControlDensity:
		return cv.Density
	case ControlSize:
		return cv.Size
	case ControlPosition:
		return cv.Position
	case ControlPitch:
		return cv.Pitch
	case ControlGate:
		return cv.Gate
	default:
		return nil
	}
}

// Engine is a stereo granular synthesizer over a recording ring buffer.
//
// Engine is not safe for concurrent use, except for its Params and Snapshot
// which may be used from other goroutines.
type Engine struct {
	cfg    config
	logger *slog.Logger
	params *Params

	sampleRate   float64
	maxBlockSize int
	ready        bool

	ring      *ring.Stereo
	pool      *Pool
	scheduler Scheduler
	lanes     [numControls]cvLane
	smoothers [numControls]smoother
	rng       *rand.Rand

	frame   frame
	gateBuf []float64

	stats     Stats
	telemetry telemetry
}

// New creates an engine. It is not ready until Prepare succeeds; until then
// Process outputs silence.
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Engine{
		cfg:    cfg,
		logger: cfg.logger,
		params: NewParams(),
		pool:   NewPool(cfg.maxGrains),
		rng:    rand.New(rand.NewSource(cfg.seed)),
	}
}

// Params returns the shared control surface.
func (e *Engine) Params() *Params { return e.params }

// Ready reports whether the last Prepare succeeded.
func (e *Engine) Ready() bool { return e.ready }

// SampleRate returns the prepared sample rate, or 0 when not ready.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// MaxBlockSize returns the prepared maximum block size.
func (e *Engine) MaxBlockSize() int { return e.maxBlockSize }

// BufferFrames returns the ring buffer capacity, or 0 when not ready.
func (e *Engine) BufferFrames() int {
	if e.ring == nil {
		return 0
	}

	return e.ring.Len()
}

// Interpolation returns the grain read interpolation mode.
func (e *Engine) Interpolation() interp.Mode { return e.cfg.interpolation }

// ActiveGrains returns the number of playing grains.
func (e *Engine) ActiveGrains() int { return e.pool.Active() }

// MaxGrains returns the voice pool capacity.
func (e *Engine) MaxGrains() int { return e.pool.Cap() }

// Phase returns the spawn scheduler phase in [0, 1).
func (e *Engine) Phase() float64 { return e.scheduler.Phase() }

// Stats returns event counters. Call it from the audio goroutine; other
// goroutines read Stats through Snapshot.
func (e *Engine) Stats() Stats { return e.stats }

// Snapshot copies the latest published telemetry into dst. It returns false
// if nothing has been published since the last Prepare or Reset.
func (e *Engine) Snapshot(dst *Snapshot) bool {
	return e.telemetry.read(dst)
}

// PrepareConfig is Prepare with a core.ProcessorConfig.
func (e *Engine) PrepareConfig(cfg core.ProcessorConfig) error {
	return e.Prepare(cfg.SampleRate, cfg.BlockSize)
}

// Prepare allocates the ring buffer and scratch space for sampleRate and
// blocks of up to maxBlockSize frames, then resets all state. It is the only
// method that allocates. On error the engine is left not ready.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize int) error {
	e.ready = false

	if !core.ValidSampleRate(sampleRate) {
		err := fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
		e.logger.Error("granular: prepare failed", "sample_rate", sampleRate, "error", err)

		return err
	}

	if maxBlockSize <= 0 {
		err := fmt.Errorf("%w: %d", ErrInvalidBlockSize, maxBlockSize)
		e.logger.Error("granular: prepare failed", "max_block_size", maxBlockSize, "error", err)

		return err
	}

	frames := int(math.Round(sampleRate * BufferSeconds))
	if frames < minBufferFrames {
		frames = minBufferFrames
	}

	rb, err := ring.New(frames)
	if err != nil {
		return fmt.Errorf("granular: allocate ring buffer: %w", err)
	}

	e.sampleRate = sampleRate
	e.maxBlockSize = maxBlockSize
	e.ring = rb
	e.gateBuf = make([]float64, maxBlockSize)

	for _, c := range Controls() {
		e.smoothers[c].configure(c.SmoothingMs(), sampleRate)
	}

	e.telemetry.allocate(frames, e.cfg.waveformPoints, e.cfg.telemetryStride, e.pool.Cap())
	e.Reset()
	e.ready = true

	e.logger.Debug("granular: prepared",
		"sample_rate", sampleRate,
		"max_block_size", maxBlockSize,
		"buffer_frames", frames,
		"max_grains", e.pool.Cap(),
		"interpolation", e.cfg.interpolation.String(),
	)

	return nil
}

// Reset clears recorded audio, voices, scheduler phase, CV anchors,
// smoothers and counters, and reseeds the random generator.
func (e *Engine) Reset() {
	if e.ring != nil {
		e.ring.Reset()
	}

	e.pool.Clear()
	e.scheduler.Reset()

	for i := range e.lanes {
		e.lanes[i].reset()
		e.smoothers[i].reset()
	}

	e.rng.Seed(e.cfg.seed)
	e.stats = Stats{}

	if e.telemetry.points != nil {
		e.telemetry.reset()
	}
}

// ForceStop silences every grain immediately and sets the scheduler phase
// to 0. Recorded audio is kept. Call it only from the audio goroutine.
func (e *Engine) ForceStop() {
	e.pool.Clear()
	e.scheduler.Reset()
}

// Process records in and renders len(out.L) frames into out. in may alias
// out. Missing input frames are recorded as silence.
//
// When the engine is not ready out is zeroed and no state changes.
func (e *Engine) Process(in, out StereoBlock, cv CV) {
	n := len(out.L)
	if len(out.R) < n {
		n = len(out.R)
	}

	if !e.ready {
		core.Zero(out.L)
		core.Zero(out.R)

		return
	}

	e.params.load(&e.frame)

	var lanes [numControls][]float64
	for _, c := range Controls() {
		if l := cv.lane(c); len(l) >= n {
			lanes[c] = l
		}
	}

	for start := 0; start < n; start += e.maxBlockSize {
		end := start + e.maxBlockSize
		if end > n {
			end = n
		}

		e.processChunk(in, out, &lanes, start, end)
	}
}

func (e *Engine) processChunk(in, out StereoBlock, lanes *[numControls][]float64, start, end int) {
	for c := range e.lanes {
		if lanes[c] == nil {
			e.lanes[c].begin(nil)
			continue
		}

		e.lanes[c].begin(lanes[c][start:end])
	}

	gate := e.gateBuf[:end-start]
	f := &e.frame
	capacity := float64(e.ring.Len())

	for i := range gate {
		idx := start + i

		e.telemetry.record(e.ring.Cursor(), sampleAt(in.L, idx), sampleAt(in.R, idx))
		e.ring.Write(sampleAt(in.L, idx), sampleAt(in.R, idx))

		density := e.control(ControlDensity, i)
		size := e.control(ControlSize, i)
		position := e.control(ControlPosition, i)
		pitch := e.control(ControlPitch, i)
		gate[i] = e.control(ControlGate, i)

		for attempts := e.scheduler.Advance(density, e.sampleRate, f.generating); attempts > 0; attempts-- {
			e.spawn(size, position, pitch)
		}

		out.L[idx], out.R[idx] = e.render(capacity)
		e.stats.Samples++

		if e.telemetry.due() {
			e.telemetry.publish(e)
		}
	}

	vecmath.MulBlockInPlace(out.L[start:end], gate)
	vecmath.MulBlockInPlace(out.R[start:end], gate)

	for c := range e.lanes {
		e.lanes[c].end()
	}
}

// control resolves and smooths control c for sample i of the current chunk.
func (e *Engine) control(c Control, i int) float64 {
	lane := &e.lanes[c]

	var target float64
	if lane.connected() {
		target = Resolve(c, e.frame.base[c], true, lane.at(i), e.frame.relative[c])
	} else {
		target = Resolve(c, e.frame.base[c], false, 0, e.frame.relative[c])
	}

	return e.smoothers[c].next(target)
}

// spawn makes one spawn attempt. Attempts are dropped silently when the
// pool is full or the size rounds to zero samples.
func (e *Engine) spawn(sizeMs, position, pitch float64) {
	e.stats.SpawnAttempts++

	lifetime := lifetimeSamples(sizeMs, e.sampleRate)
	if lifetime <= 0 {
		e.stats.SpawnsAborted++
		return
	}

	if e.pool.Full() {
		e.stats.SpawnsDropped++
		return
	}

	f := &e.frame
	uPos := e.rng.Float64() - 0.5
	uPitch := e.rng.Float64() - 0.5
	uPan := e.rng.Float64() - 0.5

	readPos := startPosition(e.ring.Cursor(), e.ring.Len(), position, f.spread, uPos)
	increment := playbackIncrement(pitch, f.pitchRandom, uPitch)
	panL, panR := panGains(f.panRandom, uPan)

	if e.pool.Spawn(readPos, increment, panL, panR, lifetime) {
		e.stats.Spawned++
	}
}

// render mixes one sample of every active grain.
func (e *Engine) render(capacity float64) (float64, float64) {
	var sumL, sumR float64

	hermite := e.cfg.interpolation == interp.ModeHermite

	for i := range e.pool.grains {
		g := &e.pool.grains[i]
		if !g.active {
			continue
		}

		var l, r float64
		if hermite {
			l, r = e.ring.ReadAtHermite(g.readPosition)
		} else {
			l, r = e.ring.ReadAt(g.readPosition)
		}

		env := g.Envelope()
		sumL += l * env * g.panL
		sumR += r * env * g.panR

		if g.advance(capacity) {
			e.pool.retired()
			e.stats.Retired++
		}
	}

	return core.FlushDenormals(sumL), core.FlushDenormals(sumR)
}

func sampleAt(buf []float64, i int) float64 {
	if i < len(buf) {
		return buf[i]
	}

	return 0
}
