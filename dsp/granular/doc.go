// Package granular implements a real-time stereo granular synthesis engine.
//
// The engine records its input into a two-second ring buffer and replays it
// as a stream of short, Hann-windowed grains. Every sample it resolves five
// controls (density, size, position, pitch, gate) from a base value and an
// optional control-voltage (CV) lane, smooths them, advances a phase
// accumulator that decides when grains spawn, and mixes all active grains.
//
// Threading model:
//   - [Engine.Prepare], [Engine.Process], [Engine.Reset] and [Engine.ForceStop]
//     belong to the audio goroutine.
//   - [Params] may be written from any goroutine; each value is a single
//     atomic word and the audio goroutine reads it once per block.
//   - [Engine.Snapshot] may be called from any goroutine. It never blocks the
//     audio goroutine; a publish that finds the snapshot locked is skipped.
//
// The steady-state processing path does not allocate.
package granular
