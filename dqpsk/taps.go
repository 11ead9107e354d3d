package dqpsk

import "math"

// InterpolatorPhases is the number of fractional-delay phases the tap
// table is indexed by (spec.md §3: 128 rows).
const InterpolatorPhases = 128

// InterpolatorTaps is the number of taps per phase (spec.md §3: 8 columns).
const InterpolatorTaps = 8

// interpolatorTaps is the 128x8 constant table of fractional-delay FIR
// coefficients. Row mu samples a symmetric pulse-shaping prototype at 8
// taps centered at tap 3+mu (so only the mu=0.5 row is itself symmetric,
// about the midpoint of taps 3 and 4), built from a windowed-sinc (root-raised
// cosine family) prototype the way the teacher's gen_lowpass/gen_bandpass
// in dsp.go build FIR kernels from a closed-form window function, except
// here the window is re-evaluated once per fractional phase rather than
// once per filter. The exact reference bit-layout is an unresolved open
// question (spec.md §9); this table reproduces the documented shape
// (symmetric 8-tap, 128-phase, unity passband gain at mu=0 toward the
// center taps) rather than a specific vendor's bit pattern.
var interpolatorTaps [InterpolatorPhases][InterpolatorTaps]float64

// rrcBeta is the excess-bandwidth (roll-off) factor of the generating
// prototype.
const rrcBeta = 0.2

func init() {
	for phase := 0; phase < InterpolatorPhases; phase++ {
		mu := float64(phase) / float64(InterpolatorPhases)
		var row [InterpolatorTaps]float64
		var sum float64
		for tap := 0; tap < InterpolatorTaps; tap++ {
			// Center the kernel between taps 3 and 4, offset by the
			// fractional position within the current sample interval.
			t := float64(tap) - 3.0 - mu
			row[tap] = rrcSample(t, rrcBeta)
			sum += row[tap]
		}
		if sum != 0 {
			for tap := range row {
				row[tap] /= sum
			}
		}
		interpolatorTaps[phase] = row
	}
}

// rrcSample evaluates a root-raised-cosine prototype at symbol-spaced
// offset t (in symbols), with roll-off beta, guarding the two removable
// singularities (t == 0 and t == +-1/(4*beta)).
func rrcSample(t, beta float64) float64 {
	const epsilon = 1e-9

	if math.Abs(t) < epsilon {
		return 1.0 - beta + 4*beta/math.Pi
	}

	denom := 1 - math.Pow(4*beta*t, 2)
	if math.Abs(denom) < epsilon {
		return (beta / math.Sqrt2) * ((1+2/math.Pi)*math.Sin(math.Pi/(4*beta)) + (1-2/math.Pi)*math.Cos(math.Pi/(4*beta)))
	}

	num := math.Sin(math.Pi*t*(1-beta)) + 4*beta*t*math.Cos(math.Pi*t*(1+beta))
	return num / (math.Pi * t * denom)
}
