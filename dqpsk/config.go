package dqpsk

import "math"

// Config is the YAML-serializable session configuration for a Facade
// (spec.md §3, §7; SPEC_FULL.md §3). Zero-valued optional fields fall
// back to the DMR defaults documented on each field.
type Config struct {
	// SymbolRate is the baud rate, 4800 for DMR. Required, must be > 0.
	SymbolRate int `yaml:"symbol_rate"`

	// SampleRate is the input I/Q sample rate in Hz, nominally 50000 for
	// DMR. Required; must exceed SymbolRate*2 (Nyquist for the 4-level
	// DQPSK constellation, per spec.md §7).
	SampleRate float64 `yaml:"sample_rate"`

	// EqualizerTaps is L = 2N+1, the equalizer's tap count. Zero selects
	// the default N=12 (L=25, spec.md §4.4). Must be odd and >= 3 when
	// set explicitly.
	EqualizerTaps int `yaml:"equalizer_taps"`

	// ExperimentalSyncRetune enables the closed-form equalizer retune on
	// sync acquisition (spec.md §4.4 sync_detected, §9 Open Questions).
	// When false, a sync event only overwrites the equalizer's ground
	// truth reference and lets ordinary LMS process calls retrain the
	// taps, which is the conservative default.
	ExperimentalSyncRetune bool `yaml:"experimental_sync_retune"`

	// DisableUnrolledInterpolator forces the scalar interpolator kernel
	// instead of the portable unrolled one (spec.md §9). Intended for
	// debugging numerical parity between the two kernels.
	DisableUnrolledInterpolator bool `yaml:"disable_unrolled_interpolator"`

	// RefreshBlockWidth overrides DefaultRefreshBlockWidth, the block
	// size at which the Facade refreshes mu/interpolation_offset/overlap
	// from the Symbol Processor's tracked samples-per-symbol (spec.md
	// §4.5 step 2). Zero selects DefaultRefreshBlockWidth.
	RefreshBlockWidth int `yaml:"refresh_block_width"`
}

// Validate checks Config against spec.md §7's configuration invariants,
// returning a *ConfigError naming the first offending field.
func (c Config) Validate() error {
	if c.SymbolRate <= 0 {
		return configErrorf("symbol_rate", "must be positive, got %d", c.SymbolRate)
	}
	if math.IsNaN(c.SampleRate) || math.IsInf(c.SampleRate, 0) {
		return configErrorf("sample_rate", "must be finite")
	}
	if c.SampleRate <= float64(c.SymbolRate)*2 {
		return configErrorf("sample_rate", "must exceed symbol_rate*2 (%d), got %g", c.SymbolRate*2, c.SampleRate)
	}
	if c.EqualizerTaps != 0 {
		if c.EqualizerTaps < 3 {
			return configErrorf("equalizer_taps", "must be >= 3, got %d", c.EqualizerTaps)
		}
		if c.EqualizerTaps%2 == 0 {
			return configErrorf("equalizer_taps", "must be odd (2N+1), got %d", c.EqualizerTaps)
		}
	}
	if c.RefreshBlockWidth < 0 {
		return configErrorf("refresh_block_width", "must be non-negative, got %d", c.RefreshBlockWidth)
	}
	return nil
}

// equalizerN returns the equalizer half-length N implied by
// EqualizerTaps, falling back to DefaultEqualizerN when unset.
func (c Config) equalizerN() int {
	if c.EqualizerTaps == 0 {
		return DefaultEqualizerN
	}
	return (c.EqualizerTaps - 1) / 2
}

// equalizerStep returns the fixed LMS step size. DMR has no per-session
// tuning of this in spec.md, so it is always EqualizerStep.
func (c Config) equalizerStep() float64 {
	return EqualizerStep
}
