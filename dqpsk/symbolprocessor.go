package dqpsk

import "math"

// Loop gains fixed by spec.md §4.3.
const (
	scGain  = 0.070
	obsGain = 0.05 * scGain * scGain

	// clampFraction bounds observed_samples_per_symbol to
	// nominal*(1 +- clampFraction).
	clampFraction = 5e-4

	// noiseThresholdMultiplier is the tunable multiplier in
	// noise_threshold = (2*pi/nominal_samples_per_symbol) * multiplier
	// (spec.md §4.3 step 3, §9).
	noiseThresholdMultiplier = 1.2

	// syncRegisterMask keeps the rolling hard-decision shift register to
	// its 48-bit (24-dibit) width.
	syncRegisterMask = (1 << 48) - 1
)

// SymbolProcessor is the closed-loop heart of the pipeline (spec.md §4.3):
// it tracks the sample-per-symbol period, selects the symbol sampling
// instant by fractional interpolation, makes hard decisions, drives the
// timing loop, feeds the equalizer, runs the sync detector, and emits a
// 24-dibit-delayed output stream.
type SymbolProcessor struct {
	nominalSamplesPerSymbol  float64
	observedSamplesPerSymbol float64
	samplePoint              float64
	previousPhase            float64
	syncShiftRegister        uint64
	noisy                    bool

	delay phaseDelayLine

	interp                  Interpolator
	equalizer               *Equalizer
	sync                    *SyncDetector
	dibitDelay              *DibitDelayLine
	experimentalSyncRetune  bool
	log                     Logger

	emitted    []Dibit
	lastSyncAt int64 // sample index of last sync event, for diagnostics
	sampleIdx  int64
}

// SymbolProcessorConfig configures a new Symbol Processor.
type SymbolProcessorConfig struct {
	NominalSamplesPerSymbol float64
	Interpolator            Interpolator
	EqualizerN              int
	EqualizerStep           float64
	ExperimentalSyncRetune  bool
	Logger                  Logger
}

// NewSymbolProcessor constructs a Symbol Processor at boot-time defaults.
func NewSymbolProcessor(cfg SymbolProcessorConfig) *SymbolProcessor {
	sp := &SymbolProcessor{
		nominalSamplesPerSymbol: cfg.NominalSamplesPerSymbol,
		interp:                  cfg.Interpolator,
		equalizer:               NewEqualizer(cfg.EqualizerN, cfg.EqualizerStep, cfg.Logger),
		sync:                    NewSyncDetector(),
		dibitDelay:              NewDibitDelayLine(),
		experimentalSyncRetune:  cfg.ExperimentalSyncRetune,
		log:                     cfg.Logger,
	}
	sp.resetLoopState()
	return sp
}

// ObservedSamplesPerSymbol returns the currently tracked samples-per-symbol
// estimate, used by Facade to refresh mu/interpolation_offset/overlap.
func (sp *SymbolProcessor) ObservedSamplesPerSymbol() float64 {
	return sp.observedSamplesPerSymbol
}

// Reset re-initializes all state to boot-time defaults except
// nominal_samples_per_symbol (spec.md §4.3).
func (sp *SymbolProcessor) Reset() {
	sp.resetLoopState()
}

func (sp *SymbolProcessor) resetLoopState() {
	sp.observedSamplesPerSymbol = sp.nominalSamplesPerSymbol
	sp.samplePoint = sp.nominalSamplesPerSymbol
	sp.previousPhase = 0
	sp.syncShiftRegister = 0
	sp.noisy = false
	sp.delay.reset()
	sp.equalizer.Reset()
	sp.sync.Reset()
	sp.dibitDelay.Reset()
	sp.emitted = sp.emitted[:0]
	sp.lastSyncAt = -1
	sp.sampleIdx = 0
}

func (sp *SymbolProcessor) clampBounds() (lo, hi float64) {
	lo = sp.nominalSamplesPerSymbol * (1 - clampFraction)
	hi = sp.nominalSamplesPerSymbol * (1 + clampFraction)
	return lo, hi
}

func (sp *SymbolProcessor) noiseThreshold() float64 {
	return (2 * math.Pi / sp.nominalSamplesPerSymbol) * noiseThresholdMultiplier
}

// ProcessSample consumes one differentially-decoded phase sample,
// advancing the timing countdown and, when a symbol instant falls inside
// this sample interval, running the full decide/track/equalize/correlate
// cycle of spec.md §4.3 and appending the emitted dibit to the internal
// output buffer.
func (sp *SymbolProcessor) ProcessSample(phase float64) {
	sp.sampleIdx++

	current := sp.unwrap(phase)

	if math.Abs(current-sp.previousPhase) > sp.noiseThreshold() {
		sp.noisy = true
	}
	sp.previousPhase = current

	sp.delay.push(current)
	sp.samplePoint--

	if sp.samplePoint >= 1.0 {
		return
	}

	sp.processSymbolInstant()
}

// unwrap removes a 2*pi discontinuity between current and the last
// unwrapped phase, per spec.md §4.3 step 2.
func (sp *SymbolProcessor) unwrap(current float64) float64 {
	delta := current - sp.previousPhase
	switch {
	case delta > math.Pi:
		return current - 2*math.Pi
	case delta < -math.Pi:
		return current + 2*math.Pi
	default:
		return current
	}
}

func (sp *SymbolProcessor) processSymbolInstant() {
	muPrime := sp.samplePoint
	if muPrime < 0 {
		muPrime = 0
	}

	pointer := sp.delay.pointer()
	symbolPhase := sp.interp.Filter(sp.delay.window(), pointer, muPrime)
	decision := HardDecision(symbolPhase)

	preceding := sp.delay.at(3)
	following := sp.delay.at(4)

	epsilon := TimingError(decision, preceding, symbolPhase, following)
	if sp.noisy {
		epsilon = 0
	}

	sp.updateLoop(epsilon)

	var eqPhase float64
	if sp.noisy {
		sp.equalizer.ProcessNoUpdate(decision, symbolPhase)
		eqPhase = symbolPhase
	} else {
		eqPhase = sp.equalizer.Process(decision, symbolPhase)
		decision = HardDecision(eqPhase)
	}

	score := sp.sync.Correlate(eqPhase)
	sp.syncShiftRegister = ((sp.syncShiftRegister << 2) | uint64(decision.Value())) & syncRegisterMask

	var out Dibit
	if score > SyncThreshold {
		out = sp.dibitDelay.OverwriteWithSyncPattern()
		if sp.experimentalSyncRetune {
			sp.equalizer.SyncDetected(SyncPatternDibits)
		} else {
			sp.equalizer.OverwriteGroundTruth(SyncPatternDibits)
		}
		sp.lastSyncAt = sp.sampleIdx
		if sp.log != nil {
			sp.log.Info("sync pattern acquired", "score", score, "sample", sp.sampleIdx)
		}
	} else {
		out = sp.dibitDelay.Push(decision)
	}

	sp.emitted = append(sp.emitted, out)
	sp.noisy = false
}

func (sp *SymbolProcessor) updateLoop(epsilon float64) {
	sp.observedSamplesPerSymbol += epsilon * obsGain

	if math.IsNaN(sp.observedSamplesPerSymbol) || math.IsInf(sp.observedSamplesPerSymbol, 0) {
		if sp.log != nil {
			sp.log.Warn("non-finite observed samples-per-symbol, clamping to nominal")
		}
		sp.observedSamplesPerSymbol = sp.nominalSamplesPerSymbol
	}

	lo, hi := sp.clampBounds()
	if sp.observedSamplesPerSymbol < lo {
		sp.observedSamplesPerSymbol = lo
	} else if sp.observedSamplesPerSymbol > hi {
		sp.observedSamplesPerSymbol = hi
	}

	sp.samplePoint += sp.observedSamplesPerSymbol + epsilon*scGain
}

// DrainSymbols returns all dibits emitted since the last call (never nil)
// and clears the internal buffer.
func (sp *SymbolProcessor) DrainSymbols() []Dibit {
	out := sp.emitted
	if out == nil {
		out = []Dibit{}
	}
	sp.emitted = sp.emitted[:0]
	return out
}
