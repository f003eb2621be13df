package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"code.cloudfoundry.org/clock"
	"go.uber.org/atomic"
)

// rootThreshold applies to a stream without its own threshold and without a parent.
const rootThreshold = Warning

type sinkErrorHandler func(err error, rec Record, sink Sink)

// Stream is a named logical log stream. Records at or above its threshold are
// handed to its sinks and, while propagation is on, to the sinks of its ancestors.
// Ancestor thresholds are not re-checked on propagation.
type Stream struct {
	name      string
	parent    *Stream
	threshold atomic.Int32
	propagate atomic.Bool

	mu    sync.RWMutex
	sinks []Sink

	clock   clock.Clock
	onError sinkErrorHandler
	metrics *metrics
}

// NewStream creates a stand-alone stream with no parent. Streams owned by a
// Service are obtained with Service.Stream instead.
func NewStream(name string) *Stream {
	return newStream(name, nil, clock.NewClock(), nil, nil)
}

func newStream(name string, parent *Stream, c clock.Clock, onError sinkErrorHandler, m *metrics) *Stream {
	s := &Stream{
		name:    name,
		parent:  parent,
		clock:   c,
		onError: onError,
		metrics: m,
	}
	s.propagate.Store(true)
	return s
}

func (s *Stream) Name() string {
	return s.name
}

// Threshold returns the threshold set on this stream, NotSet if none.
func (s *Stream) Threshold() Severity {
	return Severity(s.threshold.Load())
}

// SetThreshold replaces the threshold. It is never changed implicitly.
func (s *Stream) SetThreshold(level Severity) {
	s.threshold.Store(int32(level))
}

// EffectiveThreshold walks up the hierarchy until a threshold is found.
func (s *Stream) EffectiveThreshold() Severity {
	for st := s; st != nil; st = st.parent {
		if t := st.Threshold(); t != NotSet {
			return t
		}
	}
	return rootThreshold
}

func (s *Stream) Propagate() bool {
	return s.propagate.Load()
}

func (s *Stream) SetPropagate(on bool) {
	s.propagate.Store(on)
}

// AddSink attaches sink. Attaching the same sink twice has no effect.
func (s *Stream) AddSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sinks {
		if existing == sink {
			return
		}
	}
	sinks := make([]Sink, len(s.sinks), len(s.sinks)+1)
	copy(sinks, s.sinks)
	s.sinks = append(sinks, sink)
}

// RemoveSink detaches sink if attached.
func (s *Stream) RemoveSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sinks := make([]Sink, 0, len(s.sinks))
	for _, existing := range s.sinks {
		if existing != sink {
			sinks = append(sinks, existing)
		}
	}
	s.sinks = sinks
}

// Sinks returns a snapshot of the attached sinks in attachment order.
func (s *Stream) Sinks() []Sink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Sink, len(s.sinks))
	copy(out, s.sinks)
	return out
}

// Enabled reports whether a record at level passes this stream's threshold.
func (s *Stream) Enabled(level Severity) bool {
	return level >= s.EffectiveThreshold()
}

func (s *Stream) Log(level Severity, msg string) {
	s.emit(level, msg, OriginLocal)
}

func (s *Stream) Logf(level Severity, format string, args ...any) {
	if !s.Enabled(level) {
		return
	}
	s.emit(level, fmt.Sprintf(format, args...), OriginLocal)
}

func (s *Stream) Trace(format string, args ...any)    { s.Logf(Trace, format, args...) }
func (s *Stream) SubDebug(format string, args ...any) { s.Logf(SubDebug, format, args...) }
func (s *Stream) DDebug(format string, args ...any)   { s.Logf(DDebug, format, args...) }
func (s *Stream) Debug(format string, args ...any)    { s.Logf(Debug, format, args...) }
func (s *Stream) Info(format string, args ...any)     { s.Logf(Info, format, args...) }
func (s *Stream) Warning(format string, args ...any)  { s.Logf(Warning, format, args...) }
func (s *Stream) Error(format string, args ...any)    { s.Logf(Error, format, args...) }
func (s *Stream) Critical(format string, args ...any) { s.Logf(Critical, format, args...) }

func (s *Stream) emit(level Severity, msg string, origin Origin) {
	if level >= SuppressAll || !s.Enabled(level) {
		return
	}
	s.metrics.record(s.name)
	s.dispatch(Record{
		Time:    s.clock.Now().UTC(),
		Level:   level,
		Message: msg,
		Origin:  origin,
		Stream:  s.name,
	})
}

func (s *Stream) dispatch(rec Record) {
	for st := s; st != nil; st = st.parent {
		for _, sink := range st.Sinks() {
			if !sink.Enabled(rec.Level) {
				continue
			}
			if err := sink.Emit(rec); err != nil {
				s.sinkFailed(err, rec, sink)
			}
		}
		if !st.Propagate() {
			return
		}
	}
}

// sinkFailed is the only place a sink error ends up; it never reaches the caller.
func (s *Stream) sinkFailed(err error, rec Record, sink Sink) {
	s.metrics.sinkError(sink.Name())
	if s.onError != nil {
		s.onError(err, rec, sink)
	}
}

// Writer returns an io.Writer that logs each write as one record at level.
func (s *Stream) Writer(level Severity) io.Writer {
	return &streamWriter{stream: s, level: level}
}

type streamWriter struct {
	stream *Stream
	level  Severity
}

func (w *streamWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if msg != emptyString {
		w.stream.Log(w.level, msg)
	}
	return len(p), nil
}
