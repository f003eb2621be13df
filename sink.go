package logging

import (
	"io"
	"sync"

	"go.uber.org/atomic"
)

// Sink is a destination attached to one or more streams.
// Emit must be safe for concurrent use and must not panic; a returned error is
// reported through the owning service's error channel and the record is dropped.
type Sink interface {
	Name() string
	Enabled(level Severity) bool
	Emit(rec Record) error
	Close() error
}

// LeveledSink is a Sink whose threshold can be changed at runtime.
type LeveledSink interface {
	Sink
	Level() Severity
	SetLevel(level Severity)
}

// sinkLevel is the threshold shared by the concrete sinks.
type sinkLevel struct {
	level atomic.Int32
}

func (l *sinkLevel) Level() Severity {
	return Severity(l.level.Load())
}

func (l *sinkLevel) SetLevel(level Severity) {
	l.level.Store(int32(level))
}

func (l *sinkLevel) enabled(level Severity) bool {
	return level >= l.Level()
}

// ConsoleSink writes bare messages to a terminal stream.
// A non-zero max level is an exclusive upper bound: records at or above it are skipped.
type ConsoleSink struct {
	sinkLevel
	name string
	max  Severity
	mu   sync.Mutex
	out  io.Writer
}

// NewConsoleSink creates a console sink. Pass NotSet as max for no upper bound.
func NewConsoleSink(name string, out io.Writer, level, max Severity) *ConsoleSink {
	s := &ConsoleSink{name: name, out: out, max: max}
	s.SetLevel(level)
	return s
}

func (s *ConsoleSink) Name() string {
	return s.name
}

func (s *ConsoleSink) Enabled(level Severity) bool {
	if s.max != NotSet && level >= s.max {
		return false
	}
	return s.enabled(level)
}

func (s *ConsoleSink) Emit(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.out, rec.Message+"\n")
	return err
}

// Close is a no-op; the console streams belong to the process.
func (s *ConsoleSink) Close() error {
	return nil
}
