package dqpsk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDifferentialDemodulatorConstantPhaseGivesZero(t *testing.T) {
	// A constant-amplitude, constant-phase carrier differentially
	// demodulates to zero everywhere: "previous" and "current" are the
	// same complex value, so the angle of current*conj(previous) is 0.
	n := 40
	i := make([]float64, n)
	q := make([]float64, n)
	for k := range i {
		i[k] = math.Cos(math.Pi / 6)
		q[k] = math.Sin(math.Pi / 6)
	}

	dd := NewDifferentialDemodulator(NewInterpolator(InterpolatorScalar))
	out := make([]float64, 10)
	dd.Demodulate(i, q, 5, 15, 2, 0.5, out)

	for _, v := range out {
		assert.InDelta(t, 0, v, 1e-9)
	}
}

func TestDifferentialDemodulatorRotatingPhase(t *testing.T) {
	// A carrier rotating by a fixed increment every sample should
	// differentially demodulate to approximately that increment times the
	// number of samples between the "previous" and "current" points.
	n := 40
	step := 0.05
	i := make([]float64, n)
	q := make([]float64, n)
	for k := range i {
		i[k] = math.Cos(float64(k) * step)
		q[k] = math.Sin(float64(k) * step)
	}

	// interpolationOffset=1, mu=0.5 centers the interpolator's window 4.5
	// samples after x (about 0.225 rad here); rather than assert an exact value
	// (which depends on the tap table), assert the sign and rough
	// magnitude are sane relative to a single-sample rotation.
	dd := NewDifferentialDemodulator(NewInterpolator(InterpolatorScalar))
	out := make([]float64, 10)
	dd.Demodulate(i, q, 10, 20, 1, 0.5, out)

	for _, v := range out {
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, math.Pi/2)
	}
}

func TestDifferentialDemodulatorOutputIndexingIsRelativeToXStart(t *testing.T) {
	n := 40
	i := make([]float64, n)
	q := make([]float64, n)
	for k := range i {
		i[k] = math.Cos(float64(k) * 0.1)
		q[k] = math.Sin(float64(k) * 0.1)
	}

	dd := NewDifferentialDemodulator(NewInterpolator(InterpolatorScalar))

	full := make([]float64, 20)
	dd.Demodulate(i, q, 0, 20, 2, 0.25, full)

	partial := make([]float64, 5)
	dd.Demodulate(i, q, 10, 15, 2, 0.25, partial)

	for k := 0; k < 5; k++ {
		assert.InDelta(t, full[10+k], partial[k], 1e-12)
	}
}
