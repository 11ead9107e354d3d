package dqpsk

// InterpolatorKind selects which Filter implementation an Interpolator
// uses. Both are required to agree to within 1 ULP for identical inputs
// (spec.md §4.1); the unrolled variant exists to stand in for the
// runtime-selected SIMD variants spec.md §9 says to replace with a single
// portable implementation chosen at construction time.
type InterpolatorKind int

const (
	InterpolatorScalar   InterpolatorKind = iota // straight loop over 8 taps
	InterpolatorUnrolled                         // 4-lane unrolled, horizontal add at the end
)

// Interpolator implements the fixed 8-tap, 128-phase polyphase
// fractional-delay FIR of spec.md §4.1. It is stateless and safe to share
// across pipeline instances (spec.md §5): the tap table is read-only
// after package init.
type Interpolator struct {
	kind InterpolatorKind
}

// NewInterpolator returns an Interpolator using the given implementation.
func NewInterpolator(kind InterpolatorKind) Interpolator {
	return Interpolator{kind: kind}
}

// Filter returns the inner product of samples[offset:offset+8] with the
// tap row selected by mu, per spec.md §4.1.
//
// Preconditions: len(samples) >= offset+8, 0 <= mu < 1. Violating these is
// a programming error in the caller (the Symbol Processor and Differential
// Demodulator are responsible for keeping the delay lines long enough);
// Filter does not validate them on the critical path.
func (it Interpolator) Filter(samples []float64, offset int, mu float64) float64 {
	row := &interpolatorTaps[tapRow(mu)]
	switch it.kind {
	case InterpolatorUnrolled:
		return filterUnrolled(samples[offset:offset+InterpolatorTaps], row)
	default:
		return filterScalar(samples[offset:offset+InterpolatorTaps], row)
	}
}

func tapRow(mu float64) int {
	row := int(mu * InterpolatorPhases)
	if row < 0 {
		return 0
	}
	if row >= InterpolatorPhases {
		return InterpolatorPhases - 1
	}
	return row
}

func filterScalar(window []float64, row *[InterpolatorTaps]float64) float64 {
	var sum float64
	for i := 0; i < InterpolatorTaps; i++ {
		sum += window[i] * row[i]
	}
	return sum
}

// filterUnrolled computes the same inner product as filterScalar, four
// lanes at a time with a final horizontal add, matching the scalar result
// to within 1 ULP per spec.md §4.1.
func filterUnrolled(window []float64, row *[InterpolatorTaps]float64) float64 {
	lane0 := window[0]*row[0] + window[4]*row[4]
	lane1 := window[1]*row[1] + window[5]*row[5]
	lane2 := window[2]*row[2] + window[6]*row[6]
	lane3 := window[3]*row[3] + window[7]*row[7]
	return (lane0 + lane1) + (lane2 + lane3)
}
