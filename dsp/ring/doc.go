// Package ring provides the stereo source recorder used by the granular
// engine: a fixed-capacity circular buffer that is written one frame per
// sample and read back at fractional positions behind the write cursor.
package ring
