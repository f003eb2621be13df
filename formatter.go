package logging

import "strings"

// TimestampLayout is the UTC timestamp written at the start of every file line.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Formatter renders a record as one line of a log file.
type Formatter interface {
	Format(rec Record) string
}

// LineFormatter produces "<timestamp> <LEVEL> <message>\n".
type LineFormatter struct{}

func (LineFormatter) Format(rec Record) string {
	level := rec.Level.String()
	var b strings.Builder
	b.Grow(len(TimestampLayout) + len(level) + len(rec.Message) + 3)
	b.WriteString(rec.Time.UTC().Format(TimestampLayout))
	b.WriteByte(' ')
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(rec.Message)
	b.WriteByte('\n')
	return b.String()
}
