package logging

import (
	"bytes"
	stderrs "errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bridgeFixture struct {
	bridge  *NativeBridge
	capture *captureSink
	errs    []error
}

func newBridgeFixture() *bridgeFixture {
	f := &bridgeFixture{capture: &captureSink{}}
	st := NewStream(NativeStreamName)
	st.SetThreshold(Trace)
	st.AddSink(f.capture)
	f.bridge = NewNativeBridge(st, func(err error, rec Record) { f.errs = append(f.errs, err) })
	return f
}

func (f *bridgeFixture) last(t *testing.T) Record {
	t.Helper()
	recs := f.capture.records()
	require.NotEmpty(t, recs)
	return recs[len(recs)-1]
}

func TestNativeLevelMapping(t *testing.T) {
	want := map[NativeLevel]Severity{
		NativeCritical: Critical,
		NativeError:    Error,
		NativeWarning:  Warning,
		NativeNotice:   Info,
		NativeInfo:     Info,
		NativeDebug:    Debug,
		NativeTrace:    Trace,
	}
	for native, level := range want {
		f := newBridgeFixture()
		f.bridge.Write(SourceLibrary, native, "msg")
		assert.Equal(t, level, f.last(t).Level, "native level %d", native)
		assert.Empty(t, f.errs)
	}
}

func TestDispatchShapes(t *testing.T) {
	f := newBridgeFixture()

	require.NoError(t, f.bridge.Dispatch(SourceLibrary, time.Now(), 4242, "warning", "disk slow"))
	rec := f.last(t)
	assert.Equal(t, Warning, rec.Level)
	assert.Equal(t, "disk slow", rec.Message)
	assert.Equal(t, OriginNative, rec.Origin)

	require.NoError(t, f.bridge.Dispatch(SourceTransfer, NativeError, []byte("checksum mismatch")))
	assert.Equal(t, Error, f.last(t).Level)
	assert.Equal(t, "checksum mismatch", f.last(t).Message)

	require.NoError(t, f.bridge.Dispatch(SourceUnknown, int(NativeDebug), "probe"))
	assert.Equal(t, Debug, f.last(t).Level)
	assert.Equal(t, OriginUnknown, f.last(t).Origin)

	assert.Empty(t, f.errs)
}

func TestDispatchRejectsMalformedPayloads(t *testing.T) {
	f := newBridgeFixture()
	for name, payload := range map[string][]any{
		"one element":   {"only"},
		"three":         {1, 2, 3},
		"float level":   {3.5, "msg"},
		"numeric msg":   {"info", 42},
		"empty payload": nil,
	} {
		err := f.bridge.Dispatch(SourceLibrary, payload...)
		assert.True(t, stderrs.Is(err, ErrBadPayload), name)
	}
	assert.Empty(t, f.capture.records())
}

func TestUnknownNativeLevel(t *testing.T) {
	f := newBridgeFixture()

	f.bridge.Write(SourceLibrary, NativeLevel(42), "odd")
	rec := f.last(t)
	assert.Equal(t, Warning, rec.Level)
	assert.Equal(t, "odd", rec.Message)

	require.NoError(t, f.bridge.Dispatch(SourceLibrary, "shouting", "louder"))
	assert.Equal(t, Warning, f.last(t).Level)

	require.Len(t, f.errs, 2)
	for _, err := range f.errs {
		assert.True(t, stderrs.Is(err, ErrUnknownNativeLevel))
	}
}

func TestParseNativeLevel(t *testing.T) {
	level, err := ParseNativeLevel(" Notice ")
	require.NoError(t, err)
	assert.Equal(t, NativeNotice, level)

	_, err = ParseNativeLevel("verbose")
	assert.True(t, stderrs.Is(err, ErrUnknownNativeLevel))
}

func TestZerologWriter(t *testing.T) {
	f := newBridgeFixture()
	lib := zerolog.New(f.bridge.ZerologWriter(SourceLibrary))

	lib.Warn().Str("mirror", "fedora").Msg("disk slow")
	rec := f.last(t)
	assert.Equal(t, Warning, rec.Level)
	assert.Equal(t, "disk slow", rec.Message)

	lib.Error().Err(stderrs.New("eof")).Msg("download failed")
	assert.Equal(t, Error, f.last(t).Level)
	assert.Equal(t, "download failed: eof", f.last(t).Message)

	_, err := f.bridge.ZerologWriter(SourceLibrary).Write([]byte("plain text\n"))
	require.NoError(t, err)
	assert.Equal(t, "plain text", f.last(t).Message)
	assert.Equal(t, Info, f.last(t).Level)
}

func TestZapCore(t *testing.T) {
	f := newBridgeFixture()
	lib := zap.New(f.bridge.ZapCore(SourceTransfer)).With(zap.String("repo", "updates"))

	lib.Warn("slow mirror", zap.Int("ms", 120))
	rec := f.last(t)
	assert.Equal(t, Warning, rec.Level)
	assert.Equal(t, "slow mirror ms=120 repo=updates", rec.Message)

	lib.Debug("probe")
	assert.Equal(t, Debug, f.last(t).Level)
	assert.NoError(t, lib.Sync())
}

func TestLogrusHook(t *testing.T) {
	f := newBridgeFixture()
	lib := logrus.New()
	lib.SetOutput(&bytes.Buffer{})
	lib.AddHook(f.bridge.LogrusHook(SourceLibrary))

	lib.WithField("repo", "base").Error("gpg check failed")
	rec := f.last(t)
	assert.Equal(t, Error, rec.Level)
	assert.Equal(t, "gpg check failed repo=base", rec.Message)

	lib.Info("metadata cached")
	assert.Equal(t, Info, f.last(t).Level)
}
