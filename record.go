package logging

import "time"

// Origin tells where a record was produced.
type Origin int

const (
	OriginLocal Origin = iota
	OriginNative
	OriginUnknown
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginNative:
		return "native"
	default:
		return "unknown"
	}
}

// Record is a single log entry. It is passed by value and never mutated after creation.
type Record struct {
	Time    time.Time
	Level   Severity
	Message string
	Origin  Origin
	Stream  string
}
