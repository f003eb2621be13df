package logging

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Severity is the rank of a record or the threshold of a stream or sink.
// Higher values are more severe. The numeric ranks are fixed for the process lifetime.
type Severity int32

const (
	NotSet      Severity = 0
	Trace       Severity = 4
	SubDebug    Severity = 6
	DDebug      Severity = 8
	Debug       Severity = 10
	Info        Severity = 20
	Warning     Severity = 30
	Error       Severity = 40
	Critical    Severity = 50
	SuppressAll Severity = 100 // threshold only, never attached to a record
)

var (
	levelNamesMu sync.RWMutex
	levelNames   = map[Severity]string{
		NotSet:   "NOTSET",
		Debug:    "DEBUG",
		Info:     "INFO",
		Warning:  "WARNING",
		Error:    "ERROR",
		Critical: "CRITICAL",
	}
)

// registerLevelName adds or replaces the display name of a rank.
func registerLevelName(level Severity, name string) {
	levelNamesMu.Lock()
	levelNames[level] = name
	levelNamesMu.Unlock()
}

// registerCustomLevels makes the package-manager specific tiers known by name.
func registerCustomLevels() {
	registerLevelName(DDebug, "DDEBUG")
	registerLevelName(SubDebug, "SUBDEBUG")
	registerLevelName(Trace, "TRACE")
	registerLevelName(SuppressAll, "SUPPRESS")
}

func (s Severity) String() string {
	levelNamesMu.RLock()
	name, ok := levelNames[s]
	levelNamesMu.RUnlock()
	if ok {
		return name
	}
	return "Level " + strconv.Itoa(int(s))
}

// ParseSeverity parses a level name (case-insensitive) or a numeric rank.
func ParseSeverity(name string) (Severity, error) {
	name = strings.TrimSpace(name)
	if n, err := strconv.Atoi(name); err == nil {
		return Severity(n), nil
	}
	upper := strings.ToUpper(name)
	if upper == "WARN" {
		return Warning, nil
	}
	levelNamesMu.RLock()
	defer levelNamesMu.RUnlock()
	for level, levelName := range levelNames {
		if levelName == upper {
			return level, nil
		}
	}
	return NotSet, fmt.Errorf("unknown severity %q", name)
}

const (
	minDial = 0
	maxDial = 10
)

var verbosityLevels = map[int]Severity{
	0: SuppressAll,
	1: Info,
	2: Info, // the default
	3: Debug,
	4: Debug,
	5: Debug,
	6: Debug, // verbose
}

var errorLevels = map[int]Severity{
	0: SuppressAll,
	1: Critical,
	2: Error,
}

// VerbosityLevel maps the verbosity dial (0-10) to the stdout threshold.
// Values outside 0-10 are a caller bug and panic.
func VerbosityLevel(v int) Severity {
	mustDial("verbosity", v)
	if level, ok := verbosityLevels[v]; ok {
		return level
	}
	return DDebug
}

// ErrorLevel maps the error dial (0-10) to the stderr threshold.
// Values outside 0-10 are a caller bug and panic.
func ErrorLevel(e int) Severity {
	mustDial("error", e)
	if level, ok := errorLevels[e]; ok {
		return level
	}
	return Warning
}

func mustDial(name string, v int) {
	if v < minDial || v > maxDial {
		panic(fmt.Sprintf("logging: %s dial %d outside [%d, %d]", name, v, minDial, maxDial))
	}
}
