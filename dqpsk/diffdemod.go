package dqpsk

import "math"

// DifferentialDemodulator implements spec.md §4.2: for each sample index x
// in a batch, it forms a "previous" complex value directly from the
// input rails and a "current" complex value by fractional-delay
// interpolation about one symbol period later, then emits the angle of
// current * conj(previous).
type DifferentialDemodulator struct {
	interp Interpolator
}

// NewDifferentialDemodulator returns a Differential Demodulator using the
// given Interpolator implementation.
func NewDifferentialDemodulator(interp Interpolator) DifferentialDemodulator {
	return DifferentialDemodulator{interp: interp}
}

// Demodulate computes differential phases for absolute sample indices
// [xStart, xEnd) of the residual+new I/Q rails, writing len(xEnd-xStart)
// values into out[0:xEnd-xStart]. The "current" sample is interpolated at
// position x+interpolationOffset+3+mu (tap row mu is centered at tap
// 3+mu), so the Facade's interpolationOffset = floor(sps)-4 places it
// sps-1 samples after index x. interpolationOffset and mu
// are held fixed for the whole call, matching the Facade's contract
// of refreshing them only between blocks.
func (dd DifferentialDemodulator) Demodulate(iRail, qRail []float64, xStart, xEnd int, interpolationOffset int, mu float64, out []float64) {
	for x := xStart; x < xEnd; x++ {
		prevI := iRail[x]
		prevQ := qRail[x]

		curI := dd.interp.Filter(iRail, interpolationOffset+x, mu)
		curQ := dd.interp.Filter(qRail, interpolationOffset+x, mu)

		dI := prevI*curI + prevQ*curQ
		dQ := prevI*curQ - curI*prevQ

		out[x-xStart] = math.Atan2(dQ, dI)
	}
}
