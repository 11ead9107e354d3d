package dqpsk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestDifferentialDemodulationIsRotationInvariant checks that adding a
// fixed phase offset to an entire I/Q segment (rotating the whole
// constellation) does not change the differential phase output: only
// the phase *difference* between consecutive symbol instants carries
// information, per spec.md §4.2.
func TestDifferentialDemodulationIsRotationInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(16, 64).Draw(t, "n")
		offset := rapid.Float64Range(-math.Pi, math.Pi).Draw(t, "offset")
		freq := rapid.Float64Range(-0.2, 0.2).Draw(t, "freq")

		baseI := make([]float64, n)
		baseQ := make([]float64, n)
		rotI := make([]float64, n)
		rotQ := make([]float64, n)
		for k := 0; k < n; k++ {
			p := freq * float64(k)
			baseI[k] = math.Cos(p)
			baseQ[k] = math.Sin(p)
			rotI[k] = math.Cos(p + offset)
			rotQ[k] = math.Sin(p + offset)
		}

		dd := NewDifferentialDemodulator(NewInterpolator(InterpolatorScalar))
		outBase := make([]float64, n-10)
		outRot := make([]float64, n-10)
		dd.Demodulate(baseI, baseQ, 0, n-10, 2, 0.3, outBase)
		dd.Demodulate(rotI, rotQ, 0, n-10, 2, 0.3, outRot)

		for i := range outBase {
			assert.InDelta(t, outBase[i], outRot[i], 1e-6)
		}
	})
}

// TestSymbolProcessorStaysFiniteOverLongRuns feeds millions of noisy
// phase samples through a Symbol Processor and checks that its tracked
// state never goes non-finite and the loop variable stays within its
// clamp bounds, per spec.md §4.3's "no exceptions escape the component"
// failure mode.
func TestSymbolProcessorStaysFiniteOverLongRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("long-run stability check skipped in -short mode")
	}

	sp := newTestSymbolProcessor()

	const total = 1_500_000
	var x uint64 = 0x2545F4914F6CDD1D
	nextRand := func() float64 {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		return (float64(x%2000000) / 1000000.0) - 1.0 // in [-1, 1)
	}

	for i := 0; i < total; i++ {
		phase := math.Pi * nextRand()
		sp.ProcessSample(phase)

		require.False(t, math.IsNaN(sp.observedSamplesPerSymbol) || math.IsInf(sp.observedSamplesPerSymbol, 0))
		require.False(t, math.IsNaN(sp.samplePoint) || math.IsInf(sp.samplePoint, 0))

		if i%4096 == 0 {
			sp.DrainSymbols()
		}
	}

	lo, hi := sp.clampBounds()
	assert.GreaterOrEqual(t, sp.observedSamplesPerSymbol, lo)
	assert.LessOrEqual(t, sp.observedSamplesPerSymbol, hi)
}

// TestSymbolProcessorTracksClockOffset exercises scenario S4: a sustained
// fractional clock offset of +2e-4 should pull observed_samples_per_symbol
// to within 1e-4 of the true period after 5000 symbols, while staying
// clamped inside the +-5e-4 window (spec.md §8, S4).
func TestSymbolProcessorTracksClockOffset(t *testing.T) {
	nominal := 50000.0 / 4800.0
	const offset = 2e-4
	trueSps := nominal * (1 + offset)

	sp := NewSymbolProcessor(SymbolProcessorConfig{
		NominalSamplesPerSymbol: nominal,
		Interpolator:            NewInterpolator(InterpolatorScalar),
		EqualizerN:              DefaultEqualizerN,
		EqualizerStep:           EqualizerStep,
	})

	samplePos := 0.0
	symbolSeq := []Dibit{D00Plus1, D01Plus3, D10Minus1, D11Minus3}
	symbolIdx := 0

	const symbols = 5000
	totalSamples := int(float64(symbols) * trueSps)

	for i := 0; i < totalSamples; i++ {
		phase := symbolSeq[symbolIdx%len(symbolSeq)].IdealPhase()
		sp.ProcessSample(phase)
		samplePos += 1
		if samplePos >= trueSps {
			samplePos -= trueSps
			symbolIdx++
		}
	}
	sp.DrainSymbols()

	lo, hi := sp.clampBounds()
	assert.GreaterOrEqual(t, sp.observedSamplesPerSymbol, lo)
	assert.LessOrEqual(t, sp.observedSamplesPerSymbol, hi)
	assert.InDelta(t, trueSps, sp.observedSamplesPerSymbol, 1e-4)
}
