package dqpsk

// SyncPatternBits is the DMR "base-station data" sync pattern: a 48-bit
// constant expressed as 24 dibits drawn from {D01Plus3, D11Minus3}.
const SyncPatternBits uint64 = 0x755FD7DFD57D

// SyncPatternLength is the number of dibits (symbols) in the sync pattern.
const SyncPatternLength = 24

// SyncPatternDibits and SyncPatternPhases are derived once from
// SyncPatternBits at package init and never mutated; they are the (ii) and
// (iii) views of the sync pattern required by spec.md §3.
var (
	SyncPatternDibits [SyncPatternLength]Dibit
	SyncPatternPhases [SyncPatternLength]float64
)

func init() {
	for i := range SyncPatternDibits {
		shift := uint((SyncPatternLength - 1 - i) * 2)
		bits := (SyncPatternBits >> shift) & 0x3
		d := Dibit(bits)
		SyncPatternDibits[i] = d
		SyncPatternPhases[i] = d.IdealPhase()
	}
}
