package logging

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureSink keeps every record it receives.
type captureSink struct {
	sinkLevel
	mu   sync.Mutex
	recs []Record
}

func (c *captureSink) Name() string                { return "capture" }
func (c *captureSink) Enabled(level Severity) bool { return c.enabled(level) }
func (c *captureSink) Close() error                { return nil }

func (c *captureSink) Emit(rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = append(c.recs, rec)
	return nil
}

func (c *captureSink) records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.recs))
	copy(out, c.recs)
	return out
}

func (c *captureSink) messages() []string {
	var out []string
	for _, rec := range c.records() {
		out = append(out, rec.Message)
	}
	return out
}

// newTestService builds a Service writing its console output to buffers. The
// service is closed at the end of the test, which also restores the log package.
func newTestService(t testing.TB, opts ...Option) (*Service, *syncBuffer, *syncBuffer) {
	t.Helper()
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	all := append([]Option{WithStdout(stdout), WithStderr(stderr)}, opts...)
	svc, err := New(all...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, stdout, stderr
}

func readFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
