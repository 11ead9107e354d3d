package dqpsk

import "math"

// DefaultRefreshBlockWidth is the block size W of spec.md §4.5 step 2:
// after each fixed-width block of differential-phase computation, mu,
// interpolation_offset and overlap are refreshed from the Symbol
// Processor's latest observed_samples_per_symbol. The teacher's SIMD
// variants would pick W from the vector lane count; since this
// implementation replaces those with one portable implementation
// (spec.md §9), W is simply a tunable chunking constant.
const DefaultRefreshBlockWidth = 16

// Sample is one batch of complex I/Q samples handed to Facade.Receive
// (spec.md §3, §6). I and Q must be equal length; Timestamp is
// informational only and not interpreted by the core.
type Sample struct {
	I, Q      []float32
	Timestamp int64 // nanoseconds, monotonically non-decreasing across batches
}

// SymbolListener receives the dibits emitted by one Receive call. Batch
// may be empty but is never nil (spec.md §6).
type SymbolListener func(dibits []Dibit)

// Facade is the Demodulator Facade of spec.md §4.5: it owns the residual
// sample overlap buffer, invokes the Differential Demodulator block-wise
// over each arriving batch, and forwards the resulting phases to the
// Symbol Processor.
//
// Buffer layout: residualI/Q hold `overlap` = floor(samples_per_symbol)+4
// carried-over samples at indices [0, overlap), followed by the current
// batch's new samples at [overlap, overlap+batch). Index 0 is therefore
// `overlap` samples before index `overlap`, which is enough room for the
// interpolation window of every "previous" index x in [0, batch).
type Facade struct {
	cfg Config

	samplesPerSymbol    float64
	mu                  float64
	interpolationOffset int
	overlap             int
	blockWidth          int

	residualI, residualQ []float64
	phaseScratch         []float64

	diffDemod DifferentialDemodulator
	sp        *SymbolProcessor

	log Logger
}

// NewFacade validates cfg and constructs a Facade ready to receive
// batches. Returns the Configuration error of spec.md §7 if cfg is
// invalid.
func NewFacade(cfg Config, log Logger) (*Facade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kind := InterpolatorUnrolled
	if cfg.DisableUnrolledInterpolator {
		kind = InterpolatorScalar
	}
	interp := NewInterpolator(kind)

	blockWidth := cfg.RefreshBlockWidth
	if blockWidth <= 0 {
		blockWidth = DefaultRefreshBlockWidth
	}

	f := &Facade{
		cfg:        cfg,
		blockWidth: blockWidth,
		diffDemod:  NewDifferentialDemodulator(interp),
		log:        log,
	}

	f.samplesPerSymbol = cfg.SampleRate / float64(cfg.SymbolRate)

	f.sp = NewSymbolProcessor(SymbolProcessorConfig{
		NominalSamplesPerSymbol: f.samplesPerSymbol,
		Interpolator:            interp,
		EqualizerN:              cfg.equalizerN(),
		EqualizerStep:           cfg.equalizerStep(),
		ExperimentalSyncRetune:  cfg.ExperimentalSyncRetune,
		Logger:                  log,
	})

	f.updateObserved(f.samplesPerSymbol)
	f.residualI = make([]float64, f.overlap)
	f.residualQ = make([]float64, f.overlap)

	return f, nil
}

// Reset idempotently restores the facade to boot-time state: the residual
// buffers are cleared and the Symbol Processor (and everything it owns)
// is reset, per spec.md §6.
func (f *Facade) Reset() {
	for i := range f.residualI {
		f.residualI[i] = 0
		f.residualQ[i] = 0
	}
	f.sp.Reset()
	f.updateObserved(f.samplesPerSymbol)
	if f.log != nil {
		f.log.Info("facade reset")
	}
}

// SetSampleRate recomputes samples_per_symbol, updates the Symbol
// Processor's nominal value (which also resets loop state, per spec.md
// §6's "set_sample_rate(fs) implies reset of loop state"), and refreshes
// mu/interpolation_offset/overlap.
func (f *Facade) SetSampleRate(fs float64) error {
	cfg := f.cfg
	cfg.SampleRate = fs
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.cfg = cfg
	f.samplesPerSymbol = fs / float64(cfg.SymbolRate)
	f.sp.nominalSamplesPerSymbol = f.samplesPerSymbol
	f.sp.Reset()
	f.updateObserved(f.samplesPerSymbol)
	return nil
}

// updateObserved sets mu, interpolation_offset and overlap from s, per
// spec.md §4.5.
func (f *Facade) updateObserved(s float64) {
	whole := math.Floor(s)
	f.mu = s - whole
	f.interpolationOffset = int(whole) - 4
	f.overlap = int(whole) + 4
}

// Receive processes one batch of I/Q samples per spec.md §4.5 and §6,
// invoking listener with the dibits emitted during this call (possibly
// empty, never nil).
func (f *Facade) Receive(batch Sample, listener SymbolListener) {
	n := len(batch.I)
	overlap := f.overlap

	newI := make([]float64, overlap+n)
	newQ := make([]float64, overlap+n)

	// Step 1: copy the tail `overlap` of the stored arrays to the head of
	// the freshly sized arrays (this is a no-op on the very first call,
	// when residualI/Q are zeroed and sized to the boot-time overlap).
	prevTail := f.residualI[max(0, len(f.residualI)-overlap):]
	copy(newI[overlap-len(prevTail):overlap], prevTail)
	prevTailQ := f.residualQ[max(0, len(f.residualQ)-overlap):]
	copy(newQ[overlap-len(prevTailQ):overlap], prevTailQ)

	for i := 0; i < n; i++ {
		newI[overlap+i] = float64(batch.I[i])
		newQ[overlap+i] = float64(batch.Q[i])
	}

	f.residualI = newI
	f.residualQ = newQ

	if cap(f.phaseScratch) < f.blockWidth {
		f.phaseScratch = make([]float64, f.blockWidth)
	}

	// Step 2: fixed-width blocks; x ranges over [0, n) and indexes
	// directly into residualI/Q, since the "previous" sample for new
	// batch index x is the carried-over sample roughly one symbol
	// period earlier, which (thanks to the overlap sizing) sits at that
	// same raw index.
	for xStart := 0; xStart < n; xStart += f.blockWidth {
		xEnd := xStart + f.blockWidth
		if xEnd > n {
			xEnd = n
		}

		phases := f.phaseScratch[:xEnd-xStart]
		f.diffDemod.Demodulate(f.residualI, f.residualQ, xStart, xEnd, f.interpolationOffset, f.mu, phases)

		for _, ph := range phases {
			f.sp.ProcessSample(ph)
		}

		f.updateObserved(f.sp.ObservedSamplesPerSymbol())
	}

	// Step 3: retrieve accumulated symbols, clearing the processor's
	// buffer, and hand them to the listener.
	symbols := f.sp.DrainSymbols()
	if listener != nil {
		listener(symbols)
	}
}
