// Package window provides the tapering functions used for grain envelopes
// and for framing telemetry audio before spectral analysis.
//
// [HannAt] is the allocation-free per-sample envelope; [Generate] and [Apply]
// build and apply whole coefficient tables.
package window
