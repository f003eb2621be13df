package logging

// Logger is the printf-style API shared by every stream.
// Messages below the stream threshold are discarded before formatting.
type Logger interface {
	Log(level Severity, msg string)
	Logf(level Severity, format string, args ...any)

	Trace(format string, args ...any)
	SubDebug(format string, args ...any)
	DDebug(format string, args ...any)
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
	Critical(format string, args ...any)

	Enabled(level Severity) bool
}

var _ Logger = (*Stream)(nil)
