package logging

import (
	"time"

	"code.cloudfoundry.org/clock"
)

// Timer measures one operation and logs the elapsed time at DDEBUG.
type Timer struct {
	label  string
	start  time.Time
	clock  clock.Clock
	stream *Stream
}

// StartTimer starts measuring label on the local stream.
func (s *Service) StartTimer(label string) *Timer {
	return &Timer{
		label:  label,
		start:  s.clock.Now(),
		clock:  s.clock,
		stream: s.Logger(),
	}
}

// Stop logs "timer: <label>: <N> ms" and returns the elapsed time. Every call is a
// new measurement from the same start.
func (t *Timer) Stop() time.Duration {
	elapsed := t.clock.Since(t.start)
	t.stream.Logf(DDebug, "timer: %s: %d ms", t.label, elapsed.Milliseconds())
	return elapsed
}
