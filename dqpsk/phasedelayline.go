package dqpsk

// phaseDelayLineLen is the number of distinct phase samples the Symbol
// Processor's delay line holds (spec.md §3: 8 entries, duplicated to 16
// so the interpolator can read 8 contiguous entries without a modulo).
const phaseDelayLineLen = InterpolatorTaps

// phaseDelayLine is the length-16 duplicated ring buffer of spec.md §3
// feeding the Interpolator inside the Symbol Processor.
type phaseDelayLine struct {
	buf [2 * phaseDelayLineLen]float64
	p   int // 0 <= p < phaseDelayLineLen
}

func (dl *phaseDelayLine) reset() {
	for i := range dl.buf {
		dl.buf[i] = 0
	}
	dl.p = 0
}

// push inserts v at both copies of the current pointer and advances it.
// The window [p, p+8) always holds the 8 most recent samples, oldest
// first.
func (dl *phaseDelayLine) push(v float64) {
	dl.buf[dl.p] = v
	dl.buf[dl.p+phaseDelayLineLen] = v
	dl.p++
	if dl.p >= phaseDelayLineLen {
		dl.p = 0
	}
}

// at returns the duplicated-buffer entry at index p+offset, the
// convention spec.md §4.3 step 5 uses for the neighbors of the
// interpolated point (offsets 3 and 4).
func (dl *phaseDelayLine) at(offset int) float64 {
	return dl.buf[dl.p+offset]
}

// window returns the duplicated buffer to pass to Interpolator.Filter.
func (dl *phaseDelayLine) window() []float64 {
	return dl.buf[:]
}

// pointer returns the current insertion pointer (0..7), also the offset
// Interpolator.Filter should read from.
func (dl *phaseDelayLine) pointer() int {
	return dl.p
}
