package dqpsk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncDetectorPerfectPatternExceedsThreshold(t *testing.T) {
	sd := NewSyncDetector()

	var score float64
	for i := 0; i < 2*SyncPatternLength; i++ {
		phase := SyncPatternPhases[i%SyncPatternLength]
		score = sd.Correlate(phase)
	}
	assert.Greater(t, score, float64(SyncThreshold))
}

func TestSyncDetectorAlternatingInnerPhasesStayBelowThreshold(t *testing.T) {
	sd := NewSyncDetector()
	// Alternate the two inner constellation phases (+-pi/4) in a pattern
	// that shares no structure with the sync pattern; correlation should
	// stay weak.
	for i := 0; i < 500; i++ {
		phase := D00Plus1.IdealPhase()
		if i%2 == 0 {
			phase = D10Minus1.IdealPhase()
		}
		score := sd.Correlate(phase)
		assert.Less(t, score, float64(SyncThreshold))
	}
}

func TestSyncDetectorResetClearsRing(t *testing.T) {
	sd := NewSyncDetector()
	for i := 0; i < SyncPatternLength; i++ {
		sd.Correlate(SyncPatternPhases[i])
	}
	sd.Reset()
	for _, v := range sd.s {
		assert.Equal(t, float64(0), v)
	}
	assert.Equal(t, 0, sd.i)
}

func TestClampToSyncExtremes(t *testing.T) {
	assert.InDelta(t, -3*3.141592653589793/4, clampToSyncExtremes(-10), 1e-9)
	assert.InDelta(t, 3*3.141592653589793/4, clampToSyncExtremes(10), 1e-9)
	assert.InDelta(t, 0, clampToSyncExtremes(0), 1e-9)
}
