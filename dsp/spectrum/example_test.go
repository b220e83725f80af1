package spectrum_test

import (
	"fmt"

	"github.com/cwbudde/algo-granular/dsp/spectrum"
	"github.com/cwbudde/algo-granular/internal/testutil"
)

func ExampleAnalyzer() {
	a, err := spectrum.NewAnalyzer(2048)
	if err != nil {
		fmt.Println(err)
		return
	}

	freq := a.BinFrequency(64, 48000)
	sig := testutil.DeterministicSine(freq, 48000, 0.5, 2048)

	db := make([]float64, a.Bins())
	_ = a.MagnitudeDB(db, sig)

	k, level := spectrum.Peak(db)
	fmt.Printf("%.0f Hz at %.1f dB\n", a.BinFrequency(k, 48000), level)
	// Output:
	// 1500 Hz at -6.0 dB
}
