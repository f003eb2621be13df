package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap/zapcore"
)

// Go sub-libraries that log through zerolog, zap or logrus are routed through a
// NativeBridge so their records get the same level normalisation as native callbacks.

// ZerologWriter returns a zerolog.LevelWriter forwarding each event to the bridge.
//
//	lib := zerolog.New(svc.NativeBridge().ZerologWriter(logging.SourceLibrary))
func (b *NativeBridge) ZerologWriter(source int) zerolog.LevelWriter {
	return &zerologWriter{bridge: b, source: source}
}

type zerologWriter struct {
	bridge *NativeBridge
	source int
}

type zerologEvent struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (w *zerologWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w *zerologWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	var ev zerologEvent
	if err := json.Unmarshal(p, &ev); err != nil {
		// Not JSON (e.g. a pre-formatted line): keep the raw text.
		ev.Message = strings.TrimRight(string(p), "\n")
	}
	msg := ev.Message
	if ev.Error != emptyString {
		msg += ": " + ev.Error
	}
	w.bridge.Write(w.source, fromZerolog(level), msg)
	return len(p), nil
}

func fromZerolog(level zerolog.Level) NativeLevel {
	switch level {
	case zerolog.TraceLevel:
		return NativeTrace
	case zerolog.DebugLevel:
		return NativeDebug
	case zerolog.WarnLevel:
		return NativeWarning
	case zerolog.ErrorLevel:
		return NativeError
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return NativeCritical
	default:
		return NativeInfo
	}
}

// ZapCore returns a zapcore.Core forwarding entries to the bridge. Fields are
// appended to the message as sorted key=value pairs.
func (b *NativeBridge) ZapCore(source int) zapcore.Core {
	return &zapCore{bridge: b, source: source, enabler: zapcore.DebugLevel}
}

type zapCore struct {
	bridge  *NativeBridge
	source  int
	enabler zapcore.LevelEnabler
	fields  []zapcore.Field
}

func (c *zapCore) Enabled(level zapcore.Level) bool {
	return c.enabler.Enabled(level)
}

func (c *zapCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = make([]zapcore.Field, 0, len(c.fields)+len(fields))
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return &clone
}

func (c *zapCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *zapCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}
	c.bridge.Write(c.source, fromZap(ent.Level), withFields(ent.Message, enc.Fields))
	return nil
}

func (c *zapCore) Sync() error {
	return nil
}

func fromZap(level zapcore.Level) NativeLevel {
	switch {
	case level < zapcore.InfoLevel:
		return NativeDebug
	case level == zapcore.InfoLevel:
		return NativeInfo
	case level == zapcore.WarnLevel:
		return NativeWarning
	case level == zapcore.ErrorLevel:
		return NativeError
	default:
		return NativeCritical
	}
}

func withFields(msg string, fields map[string]any) string {
	if len(fields) == 0 {
		return msg
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fmt.Sprint(fields[k]))
	}
	return b.String()
}

// LogrusHook returns a logrus.Hook forwarding every entry to the bridge.
func (b *NativeBridge) LogrusHook(source int) logrus.Hook {
	return &logrusHook{bridge: b, source: source}
}

type logrusHook struct {
	bridge *NativeBridge
	source int
}

func (h *logrusHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *logrusHook) Fire(entry *logrus.Entry) error {
	fields := make(map[string]any, len(entry.Data))
	for k, v := range entry.Data {
		fields[k] = v
	}
	h.bridge.Write(h.source, fromLogrus(entry.Level), withFields(entry.Message, fields))
	return nil
}

func fromLogrus(level logrus.Level) NativeLevel {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return NativeCritical
	case logrus.ErrorLevel:
		return NativeError
	case logrus.WarnLevel:
		return NativeWarning
	case logrus.InfoLevel:
		return NativeInfo
	case logrus.DebugLevel:
		return NativeDebug
	default:
		return NativeTrace
	}
}
