package logging

import (
	"io"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	smerrors "github.com/Station-Manager/errors"
)

// newBenchStream returns a stream at threshold writing to a discarding console sink.
func newBenchStream(threshold Severity) *Stream {
	st := NewStream("bench")
	st.SetThreshold(threshold)
	st.AddSink(NewConsoleSink("discard", io.Discard, NotSet, NotSet))
	return st
}

func makeDetailedChain(depth int) error {
	if depth <= 0 {
		return nil
	}
	err := smerrors.New(smerrors.Op("op_0")).Msg("root cause message")
	for i := 1; i < depth; i++ {
		op := "op_" + strconv.Itoa(i)
		err = smerrors.New(smerrors.Op(op)).Err(err).Msg("wrapped message")
	}
	return err
}

func makeStdWrapChain(depth int) error {
	if depth <= 0 {
		return nil
	}
	err := smerrors.New(smerrors.Op("std_root")).Msg("root cause message")
	for i := 1; i < depth; i++ {
		op := "std_" + strconv.Itoa(i)
		err = smerrors.New(smerrors.Op(op)).Errorf("wrap %d: %w", i, err)
	}
	return err
}

func BenchmarkInfo_Accepted(b *testing.B) {
	st := newBenchStream(Info)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		st.Info("installed %s-%d", "bash", i)
	}
}

func BenchmarkDebug_BelowThreshold(b *testing.B) {
	st := newBenchStream(Info)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		st.Debug("installed %s-%d", "bash", i)
	}
}

func BenchmarkLineFormatter(b *testing.B) {
	rec := Record{Time: time.Now(), Level: Warning, Message: "repo metadata expired"}
	f := LineFormatter{}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Format(rec)
	}
}

func BenchmarkRotatingFileSink(b *testing.B) {
	sink := NewRotatingFileSink(filepath.Join(b.TempDir(), "pkg.log"), 1<<20, 2, &probeLock{})
	b.Cleanup(func() { _ = sink.Close() })
	rec := Record{Time: time.Now(), Level: Info, Message: "downloading packages"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := sink.Emit(rec); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWalkErrorChain_Detailed6(b *testing.B) {
	err := makeDetailedChain(6)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = walkErrorChain(err)
	}
}

func BenchmarkWalkErrorChain_StdWrap6(b *testing.B) {
	err := makeStdWrapChain(6)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = walkErrorChain(err)
	}
}

func BenchmarkParallel_Info(b *testing.B) {
	st := newBenchStream(Info)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			st.Info("hi")
		}
	})
}
