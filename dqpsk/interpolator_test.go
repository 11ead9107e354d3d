package dqpsk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestInterpolatorTapRowsSumToOne(t *testing.T) {
	for phase := 0; phase < InterpolatorPhases; phase++ {
		var sum float64
		for _, v := range interpolatorTaps[phase] {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "phase %d", phase)
	}
}

func TestInterpolatorMuHalfIsSymmetric(t *testing.T) {
	// mu=0.5 centers the kernel exactly at tap 3.5, making the row
	// symmetric; a normalized symmetric kernel applied to a linear ramp
	// reproduces the ramp's value at that center of mass.
	window := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	it := NewInterpolator(InterpolatorScalar)
	got := it.Filter(window, 0, 0.5)
	assert.InDelta(t, 4.5, got, 1e-6)
}

func TestInterpolatorScalarAndUnrolledAgree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		window := make([]float64, InterpolatorTaps)
		for i := range window {
			window[i] = rapid.Float64Range(-10, 10).Draw(t, "sample")
		}
		mu := rapid.Float64Range(0, 0.999999).Draw(t, "mu")

		scalar := NewInterpolator(InterpolatorScalar)
		unrolled := NewInterpolator(InterpolatorUnrolled)

		got := scalar.Filter(window, 0, mu)
		want := unrolled.Filter(window, 0, mu)

		assert.InDelta(t, want, got, 1e-9)
	})
}

func TestTapRowClampsOutOfRangeMu(t *testing.T) {
	assert.Equal(t, 0, tapRow(-0.1))
	assert.Equal(t, InterpolatorPhases-1, tapRow(1.1))
	assert.Equal(t, 0, tapRow(0))
}
