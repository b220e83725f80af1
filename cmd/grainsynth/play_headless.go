//go:build headless

package main

import "errors"

func play(*renderer) error {
	return errors.New("grainsynth: built without audio output (headless tag)")
}
