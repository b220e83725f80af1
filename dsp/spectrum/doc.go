// Package spectrum provides magnitude views of rendered audio: a windowed
// FFT analyzer built on algo-fft, single-bin tone measurement, and bin
// magnitude helpers.
package spectrum
