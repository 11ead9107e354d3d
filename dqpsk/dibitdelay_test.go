package dqpsk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDibitDelayLineInitialFill(t *testing.T) {
	dl := NewDibitDelayLine()
	for i := 0; i < SyncPatternLength; i++ {
		assert.Equal(t, D00Plus1, dl.Push(D10Minus1))
	}
	// After SyncPatternLength pushes, every initial D00Plus1 slot has been
	// displaced and returned exactly once.
	assert.Equal(t, D10Minus1, dl.Push(D11Minus3))
}

func TestDibitDelayLineFixedLatency(t *testing.T) {
	dl := NewDibitDelayLine()
	seq := []Dibit{D00Plus1, D01Plus3, D10Minus1, D11Minus3}
	var out []Dibit
	for i := 0; i < SyncPatternLength+len(seq); i++ {
		d := seq[i%len(seq)]
		out = append(out, dl.Push(d))
	}
	// The first emitted "real" value should reappear exactly
	// SyncPatternLength pushes later.
	assert.Equal(t, seq[0], out[SyncPatternLength])
}

func TestDibitDelayLineOverwriteWithSyncPattern(t *testing.T) {
	dl := NewDibitDelayLine()
	for i := 0; i < 10; i++ {
		dl.Push(D11Minus3)
	}
	first := dl.OverwriteWithSyncPattern()
	assert.Equal(t, SyncPatternDibits[0], first)

	// The 24 most recently pushed entries must now read the sync pattern,
	// oldest first.
	for k := 0; k < SyncPatternLength; k++ {
		idx := (dl.pos + k) % SyncPatternLength
		assert.Equal(t, SyncPatternDibits[k], dl.buf[idx])
	}
}
