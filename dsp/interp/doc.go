// Package interp provides the fractional-sample interpolators used to read
// recorded audio between sample instants: two-point linear and four-point
// cubic Hermite.
package interp
