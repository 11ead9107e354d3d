package dqpsk

// Logger is the minimal structured-logging surface the core depends on.
// *log.Logger from github.com/charmbracelet/log satisfies this interface
// directly; a nil Logger is always valid and silences logging, matching
// the teacher's own preference for an optional diagnostic channel that
// defaults to silence (see the #if DEBUG blocks throughout demod_9600.go
// and demod_psk.go, here replaced with a structured equivalent instead of
// a build tag).
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}
