package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestVerbosityLevel(t *testing.T) {
	want := map[int]Severity{
		0: SuppressAll,
		1: Info, 2: Info,
		3: Debug, 4: Debug, 5: Debug, 6: Debug,
		7: DDebug, 8: DDebug, 9: DDebug, 10: DDebug,
	}
	for v, level := range want {
		assert.Equal(t, level, VerbosityLevel(v), "verbosity %d", v)
	}
}

func TestErrorLevel(t *testing.T) {
	want := map[int]Severity{
		0: SuppressAll,
		1: Critical,
		2: Error,
	}
	for e := 3; e <= 10; e++ {
		want[e] = Warning
	}
	for e, level := range want {
		assert.Equal(t, level, ErrorLevel(e), "error dial %d", e)
	}
}

func TestDialsPanicOutOfRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.OneOf(rapid.IntRange(-1000, -1), rapid.IntRange(11, 1000)).Draw(t, "dial")
		for name, fn := range map[string]func(int) Severity{"verbosity": VerbosityLevel, "error": ErrorLevel} {
			func() {
				defer func() {
					if recover() == nil {
						t.Fatalf("%s dial %d did not panic", name, v)
					}
				}()
				fn(v)
			}()
		}
	})
}

func TestDialsAreMonotonic(t *testing.T) {
	// Turning a dial up never makes the console quieter, except for the 0 = silent position.
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(1, 10).Draw(t, "a")
		b := rapid.IntRange(a, 10).Draw(t, "b")
		if VerbosityLevel(b) > VerbosityLevel(a) {
			t.Fatalf("verbosity %d louder threshold than %d", b, a)
		}
		if ErrorLevel(b) > ErrorLevel(a) {
			t.Fatalf("error dial %d louder threshold than %d", b, a)
		}
	})
}

func TestSeverityOrdering(t *testing.T) {
	ordered := []Severity{Trace, SubDebug, DDebug, Debug, Info, Warning, Error, Critical, SuppressAll}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, ordered[i-1], ordered[i])
	}
}

func TestSeverityNames(t *testing.T) {
	registerCustomLevels()

	assert.Equal(t, "DDEBUG", DDebug.String())
	assert.Equal(t, "SUBDEBUG", SubDebug.String())
	assert.Equal(t, "TRACE", Trace.String())
	assert.Equal(t, "WARNING", Warning.String())
	assert.Equal(t, "Level 13", Severity(13).String())

	for _, name := range []string{"trace", "SUBDEBUG", "ddebug", "Debug", "info", "warn", "WARNING", "error", "critical"} {
		level, err := ParseSeverity(name)
		require.NoError(t, err, name)
		assert.NotEqual(t, NotSet, level, name)
	}
	level, err := ParseSeverity("25")
	require.NoError(t, err)
	assert.Equal(t, Severity(25), level)

	_, err = ParseSeverity("loud")
	assert.Error(t, err)
}
