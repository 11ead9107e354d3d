package dqpsk

// DibitDelayLine is the 24-dibit ring buffer used to align emitted symbols
// with the 24-dibit-lagged sync correlator (spec.md §2.8, §3). It starts
// filled with D00Plus1, matching scenario S6's expectation that an
// all-zero input stream emits the initial fill before any real decisions
// reach the output.
type DibitDelayLine struct {
	buf [SyncPatternLength]Dibit
	pos int // index of the oldest entry
}

// NewDibitDelayLine returns a delay line pre-filled with D00Plus1.
func NewDibitDelayLine() *DibitDelayLine {
	dl := &DibitDelayLine{}
	dl.Reset()
	return dl
}

// Reset restores the delay line to its boot-time fill.
func (dl *DibitDelayLine) Reset() {
	for i := range dl.buf {
		dl.buf[i] = D00Plus1
	}
	dl.pos = 0
}

// Push inserts d as the newest entry and returns the oldest entry that it
// displaces, introducing a fixed 24-dibit latency (spec.md §4.3 step 9).
func (dl *DibitDelayLine) Push(d Dibit) Dibit {
	oldest := dl.buf[dl.pos]
	dl.buf[dl.pos] = d
	dl.pos++
	if dl.pos >= SyncPatternLength {
		dl.pos = 0
	}
	return oldest
}

// OverwriteWithSyncPattern replaces the 24 most-recently pushed entries
// with the confirmed sync pattern, oldest-dibit-first, and returns the
// pattern's first dibit as the value to emit for the current symbol
// (spec.md §4.3 step 8).
func (dl *DibitDelayLine) OverwriteWithSyncPattern() Dibit {
	for k := 0; k < SyncPatternLength; k++ {
		idx := (dl.pos + k) % SyncPatternLength
		dl.buf[idx] = SyncPatternDibits[k]
	}
	return SyncPatternDibits[0]
}
