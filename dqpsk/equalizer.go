package dqpsk

import "math"

// DefaultEqualizerN is the half-length N used for DMR (spec.md §4.4):
// the equalizer has L = 2N+1 = 25 taps.
const DefaultEqualizerN = 12

// EqualizerStep is the fixed LMS step size (spec.md §4.4).
const EqualizerStep = 0.1

// Equalizer is a real-valued, decision-directed LMS adaptive filter over
// soft-symbol phases, with a fixed unity center tap (spec.md §4.4). Its
// rings are duplicated (length 2L) so the inner loop can read a
// contiguous window without a modulo, mirroring the phase delay line's
// duplication in the Symbol Processor and the Design Notes' instruction
// to preserve that representation.
type Equalizer struct {
	n    int // half-length; L = 2n+1
	l    int
	step float64

	z []float64 // duplicated ring of recent symbol phases, length 2L
	a []float64 // duplicated ring of ideal-phase ground truth, length 2L
	q []float64 // tap vector, length L; q[L/2] fixed at 1

	p int // ring pointer, 0 <= p < L

	log Logger
}

// NewEqualizer constructs an L=2n+1 tap equalizer with the given step
// size. n defaults to DefaultEqualizerN and step to EqualizerStep when
// zero-valued, so a zero Config field falls back to the DMR defaults.
func NewEqualizer(n int, step float64, log Logger) *Equalizer {
	if n <= 0 {
		n = DefaultEqualizerN
	}
	if step == 0 {
		step = EqualizerStep
	}

	l := 2*n + 1
	eq := &Equalizer{
		n:    n,
		l:    l,
		step: step,
		z:    make([]float64, 2*l),
		a:    make([]float64, 2*l),
		q:    make([]float64, l),
		log:  log,
	}
	eq.q[l/2] = 1
	return eq
}

// Len returns L = 2N+1, the number of taps.
func (eq *Equalizer) Len() int { return eq.l }

// Reset restores the equalizer to its boot-time state: zeroed rings and a
// unity center tap.
func (eq *Equalizer) Reset() {
	for i := range eq.z {
		eq.z[i] = 0
		eq.a[i] = 0
	}
	for i := range eq.q {
		eq.q[i] = 0
	}
	eq.q[eq.l/2] = 1
	eq.p = 0
}

func (eq *Equalizer) insert(decision Dibit, phase float64) {
	eq.z[eq.p] = phase
	eq.z[eq.p+eq.l] = phase
	eq.a[eq.p] = decision.IdealPhase()
	eq.a[eq.p+eq.l] = decision.IdealPhase()
	eq.p++
	if eq.p >= eq.l {
		eq.p = 0
	}
}

// Process inserts (decision, phase), adapts the tap vector by the
// normalized-error LMS rule, and returns the equalized phase (spec.md
// §4.4 process).
func (eq *Equalizer) Process(decision Dibit, phase float64) float64 {
	eq.insert(decision, phase)

	center := eq.l / 2
	var y float64
	for l := 0; l < eq.l; l++ {
		y += (eq.z[eq.p+l] - eq.a[eq.p+l]) * eq.q[l]
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		eq.warnNonFinite("equalizer output")
		y = 0
	}

	e := eq.a[eq.p+center] - y

	for l := 0; l < eq.l; l++ {
		if l == center {
			continue
		}
		tap := eq.q[l] + 2*eq.step*e*(eq.z[eq.p+l]-eq.a[eq.p+l])
		if math.IsNaN(tap) || math.IsInf(tap, 0) {
			eq.warnNonFinite("equalizer tap")
			tap = 0
		}
		eq.q[l] = tap
	}

	return y
}

// ProcessNoUpdate advances the ring state without adapting taps or
// returning a value, used when the current symbol is marked noisy
// (spec.md §4.3 step 7, §4.4 process_no_update).
func (eq *Equalizer) ProcessNoUpdate(decision Dibit, phase float64) {
	eq.insert(decision, phase)
}

// SyncDetected force-trains the equalizer from 24 confirmed sync dibits
// (spec.md §4.4 sync_detected): it overwrites the 24 most-recent ground
// truth entries, then closed-form retunes every off-center tap so its
// contribution cancels its own residual against the center tap's
// residual. This is the aggressive, non-LMS, experimental retune the
// Design Notes say to guard behind a configuration flag; see
// Config.ExperimentalSyncRetune and SymbolProcessor's use of it.
func (eq *Equalizer) SyncDetected(trueDibits [SyncPatternLength]Dibit) {
	eq.OverwriteGroundTruth(trueDibits)

	center := eq.l / 2
	mainTapError := eq.z[eq.p+center] - eq.a[eq.p+center]

	for x := 0; x < eq.l; x++ {
		if x == center {
			continue
		}
		tapError := eq.z[eq.p+x] - eq.a[eq.p+x]
		if tapError == 0 || math.IsNaN(tapError) || math.IsInf(tapError, 0) {
			eq.warnNonFinite("sync retune tap error")
			eq.q[x] = 0
			continue
		}
		q := -mainTapError / float64(SyncPatternLength) / tapError
		if math.IsNaN(q) || math.IsInf(q, 0) {
			eq.warnNonFinite("sync retune tap")
			q = 0
		}
		eq.q[x] = q
	}
}

// OverwriteGroundTruth replaces the 24 most-recent ground-truth entries
// with the ideal phases of trueDibits, oldest first, without retuning any
// taps. This is the safe, LMS-only force-training path SymbolProcessor uses when
// Config.ExperimentalSyncRetune is false: subsequent ordinary Process
// calls pick up the corrected reference on their own.
func (eq *Equalizer) OverwriteGroundTruth(trueDibits [SyncPatternLength]Dibit) {
	for k := 0; k < SyncPatternLength; k++ {
		idx := (eq.p - SyncPatternLength + k) % eq.l
		if idx < 0 {
			idx += eq.l
		}
		ideal := trueDibits[k].IdealPhase()
		eq.a[idx] = ideal
		eq.a[idx+eq.l] = ideal
	}
}

func (eq *Equalizer) warnNonFinite(what string) {
	if eq.log == nil {
		return
	}
	eq.log.Warn("non-finite value substituted with 0", "component", "equalizer", "what", what)
}
