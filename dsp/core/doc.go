// Package core holds the numeric helpers and processor configuration shared
// by the rest of the module.
package core
