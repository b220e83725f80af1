package dither

import "fmt"

// Type selects the probability distribution of the dither noise.
type Type int

const (
	// None rounds without added noise.
	None Type = iota
	// Rectangular adds uniform noise of one LSB peak.
	Rectangular
	// Triangular adds TPDF noise, the sum of two uniform draws.
	Triangular

	typeCount
)

var typeNames = [typeCount]string{"none", "rectangular", "triangular"}

// String returns the lowercase type name.
func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known dither type.
func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

// ParseType returns the dither type with the given name.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}

	return 0, fmt.Errorf("dither: unknown type %q", name)
}
