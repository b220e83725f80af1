// Package dither quantizes float samples to integer PCM with optional
// dither noise and first-order noise shaping.
package dither
