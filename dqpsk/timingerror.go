package dqpsk

import "math"

// maxTimingError is the clamp bound on the unsigned timing error magnitude
// (spec.md §4.7): pi/8.
const maxTimingError = math.Pi / 8

// TimingError is the stateless timing-error detector of spec.md §4.7. It
// maps a hard decision and its three neighboring interpolated phases
// (preceding, this, following) to a signed radian error that pushes the
// timing loop toward the ideal sampling instant.
func TimingError(symbol Dibit, preceding, this, following float64) float64 {
	ideal := symbol.IdealPhase()

	err := ideal - this
	if err > maxTimingError {
		err = maxTimingError
	} else if err < -maxTimingError {
		err = -maxTimingError
	}

	if preceding < following {
		return err
	}
	return -err
}
