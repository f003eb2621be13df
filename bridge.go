package logging

import (
	stderrs "errors"
	"fmt"
	"strings"
	"time"
)

// NativeLevel is the severity enumeration of the native sub-library.
type NativeLevel int

const (
	NativeCritical NativeLevel = iota
	NativeError
	NativeWarning
	NativeNotice
	NativeInfo
	NativeDebug
	NativeTrace
)

// Source tags passed by the native sub-library with every message.
const (
	SourceUnknown  = 0
	SourceLibrary  = 1
	SourceTransfer = 2
)

var (
	ErrUnknownNativeLevel = stderrs.New("unknown native log level")
	ErrBadPayload         = stderrs.New("malformed native log payload")
)

var nativeLevels = map[NativeLevel]Severity{
	NativeCritical: Critical,
	NativeError:    Error,
	NativeWarning:  Warning,
	NativeNotice:   Info,
	NativeInfo:     Info,
	NativeDebug:    Debug,
	NativeTrace:    Trace,
}

var nativeLevelNames = map[string]NativeLevel{
	"critical": NativeCritical,
	"error":    NativeError,
	"warning":  NativeWarning,
	"notice":   NativeNotice,
	"info":     NativeInfo,
	"debug":    NativeDebug,
	"trace":    NativeTrace,
}

// ParseNativeLevel parses the native library's level name.
func ParseNativeLevel(name string) (NativeLevel, error) {
	if level, ok := nativeLevelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level, nil
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownNativeLevel, name)
}

// NativeLogger is the callback contract the native sub-library logs through.
// The short form carries (level, message); the long form also carries the
// library's own timestamp and pid.
type NativeLogger interface {
	Write(source int, level NativeLevel, message string)
	WriteTimed(source int, ts time.Time, pid int, level NativeLevel, message string)
}

var _ NativeLogger = (*NativeBridge)(nil)

// NativeBridge turns native callbacks into records of one stream. Records carry
// the capture time; the native timestamp and pid are not kept. A level outside the
// native enumeration is logged at WARNING and reported through the error channel.
type NativeBridge struct {
	stream  *Stream
	onError func(err error, rec Record)
}

// NewNativeBridge forwards into stream. onError may be nil.
func NewNativeBridge(stream *Stream, onError func(err error, rec Record)) *NativeBridge {
	return &NativeBridge{stream: stream, onError: onError}
}

// NativeBridge returns the bridge feeding the native stream.
func (s *Service) NativeBridge() *NativeBridge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bridge == nil {
		s.bridge = NewNativeBridge(s.streamLocked(NativeStreamName), func(err error, rec Record) {
			s.reportError(err, rec, "native-bridge")
		})
	}
	return s.bridge
}

func (b *NativeBridge) Write(source int, level NativeLevel, message string) {
	b.forward(source, level, message)
}

func (b *NativeBridge) WriteTimed(source int, _ time.Time, _ int, level NativeLevel, message string) {
	b.forward(source, level, message)
}

// Dispatch accepts the untyped payload of the native callback: either
// (level, message) or (timestamp, pid, level, message). The level may be a
// NativeLevel, an int, or a level name.
func (b *NativeBridge) Dispatch(source int, payload ...any) error {
	var rawLevel, rawMsg any
	switch len(payload) {
	case 2:
		rawLevel, rawMsg = payload[0], payload[1]
	case 4:
		rawLevel, rawMsg = payload[2], payload[3]
	default:
		return fmt.Errorf("%w: %d elements", ErrBadPayload, len(payload))
	}

	var message string
	switch m := rawMsg.(type) {
	case string:
		message = m
	case []byte:
		message = string(m)
	case fmt.Stringer:
		message = m.String()
	default:
		return fmt.Errorf("%w: message of type %T", ErrBadPayload, rawMsg)
	}

	switch l := rawLevel.(type) {
	case NativeLevel:
		b.forward(source, l, message)
	case int:
		b.forward(source, NativeLevel(l), message)
	case string:
		level, err := ParseNativeLevel(l)
		if err != nil {
			b.unknownLevel(err, source, message)
			return nil
		}
		b.forward(source, level, message)
	default:
		return fmt.Errorf("%w: level of type %T", ErrBadPayload, rawLevel)
	}
	return nil
}

func (b *NativeBridge) forward(source int, level NativeLevel, message string) {
	severity, ok := nativeLevels[level]
	if !ok {
		b.unknownLevel(fmt.Errorf("%w: %d", ErrUnknownNativeLevel, int(level)), source, message)
		return
	}
	b.stream.emit(severity, message, originOf(source))
}

func (b *NativeBridge) unknownLevel(err error, source int, message string) {
	origin := originOf(source)
	if b.onError != nil {
		b.onError(err, Record{
			Time:    b.stream.clock.Now().UTC(),
			Level:   Warning,
			Message: message,
			Origin:  origin,
			Stream:  b.stream.Name(),
		})
	}
	b.stream.emit(Warning, message, origin)
}

func originOf(source int) Origin {
	if source == SourceUnknown {
		return OriginUnknown
	}
	return OriginNative
}
