package logging

import (
	"io"
	"log"
)

// stdLogCapture remembers the standard library logger state replaced by captureStdLog.
type stdLogCapture struct {
	out    io.Writer
	flags  int
	prefix string
}

// captureStdLog routes the standard library log package into st at WARNING, the
// way runtime warnings of third-party code end up next to our own records.
func captureStdLog(st *Stream) *stdLogCapture {
	c := &stdLogCapture{
		out:    log.Writer(),
		flags:  log.Flags(),
		prefix: log.Prefix(),
	}
	log.SetOutput(st.Writer(Warning))
	log.SetFlags(0)
	log.SetPrefix(emptyString)
	return c
}

func (c *stdLogCapture) restore() {
	log.SetOutput(c.out)
	log.SetFlags(c.flags)
	log.SetPrefix(c.prefix)
}
