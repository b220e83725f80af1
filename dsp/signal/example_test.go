package signal_test

import (
	"fmt"

	"github.com/cwbudde/algo-granular/dsp/core"
	"github.com/cwbudde/algo-granular/dsp/signal"
)

func ExampleGenerator_Sine() {
	g := signal.NewGenerator(core.WithSampleRate(1000))

	osc, err := g.Sine(250, 1)
	if err != nil {
		panic(err)
	}

	x, _ := signal.Render(osc, 5)
	fmt.Printf("%.0f %.0f %.0f %.0f %.0f\n", x[0], x[1], x[2], x[3], x[4])
	// Output:
	// 0 1 0 -1 0
}

func ExampleGenerator_LFO() {
	g := signal.NewGenerator(core.WithSampleRate(8))

	lfo, _ := g.LFO(signal.ShapeTriangle, 1)
	cv := make([]float64, 8)
	lfo.Fill(cv)

	fmt.Println(cv)
	// Output:
	// [0 0.5 1 0.5 0 -0.5 -1 -0.5]
}

func ExampleNormalize() {
	x, err := signal.Normalize([]float64{-0.5, 0.25, 1}, 0.8)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%.2f %.2f %.2f\n", x[0], x[1], x[2])
	// Output:
	// -0.40 0.20 0.80
}
