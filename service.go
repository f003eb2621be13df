package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"code.cloudfoundry.org/clock"
	"github.com/Station-Manager/errors"
	"github.com/Station-Manager/pkglogging/internal/lock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Option configures a Service at construction.
type Option func(*Service)

// WithStdout replaces os.Stdout as the informational console target.
func WithStdout(w io.Writer) Option {
	return func(s *Service) { s.stdout = w }
}

// WithStderr replaces os.Stderr as the warning console target and error channel.
func WithStderr(w io.Writer) Option {
	return func(s *Service) { s.stderr = w }
}

// WithClock sets the clock used for record timestamps, timers and rotation backoff.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLockDir places the rotation lock file in dir instead of the log directory.
func WithLockDir(dir string) Option {
	return func(s *Service) { s.lockDir = dir }
}

// WithLockerFactory replaces the flock based rotation lock.
func WithLockerFactory(f func(dir string) Locker) Option {
	return func(s *Service) { s.lockerFactory = f }
}

// WithTransferLogger hands the transfer log file to an embedded transfer library.
func WithTransferLogger(t TransferLogger) Option {
	return func(s *Service) { s.transfer = t }
}

// WithErrorHook is called for every record a sink failed to write.
func WithErrorHook(hook func(err error, rec Record)) Option {
	return func(s *Service) { s.errorHook = hook }
}

// WithMetrics registers the routing counters on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Service) { s.registerer = reg }
}

// WithoutStdLogCapture leaves the standard library log package alone.
func WithoutStdLogCapture() Option {
	return func(s *Service) { s.captureStdLog = false }
}

// TransferLogger is the logging extension point of the transfer sub-library.
// Setup hands it the transfer log file once; debug reports whether verbose
// transfer diagnostics were requested.
type TransferLogger interface {
	SetLogOutput(w io.Writer, debug bool)
}

// Service owns the named streams of one process and wires their sinks.
// Every setup step takes effect at most once per Service; once it has succeeded,
// later calls are no-ops whatever their arguments. A failed step may be retried.
type Service struct {
	// Config is used by Initialize.
	Config *Config

	stdout        io.Writer
	stderr        io.Writer
	clock         clock.Clock
	lockDir       string
	lockerFactory func(dir string) Locker
	transfer      TransferLogger
	errorHook     func(err error, rec Record)
	registerer    prometheus.Registerer
	captureStdLog bool

	mu          sync.Mutex
	streams     map[string]*Stream
	lockers     map[string]Locker
	fileSinks   []*RotatingFileSink
	stdoutSink  *ConsoleSink
	stderrSink  *ConsoleSink
	transferOut *lumberjack.Logger
	transferLog atomic.Pointer[zerolog.Logger]
	bridge      *NativeBridge
	stdLog      *stdLogCapture

	diag       zerolog.Logger
	echoErrors atomic.Bool
	metrics    *metrics

	levelsOnce   sync.Once
	presetupOnce sync.Once
	setupOnce    successOnce
	localOnce    successOnce
	transferOnce successOnce
	nativeOnce   successOnce
}

// successOnce runs a step until it succeeds once; a failed run may be retried.
type successOnce struct {
	mu   sync.Mutex
	done bool
}

func (o *successOnce) Do(f func() error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done {
		return nil
	}
	if err := f(); err != nil {
		return err
	}
	o.done = true
	return nil
}

// New creates a Service. Nothing is written to disk until Setup.
func New(opts ...Option) (*Service, error) {
	const op errors.Op = "logging.New"
	s := &Service{
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		clock:         clock.NewClock(),
		captureStdLog: true,
		streams:       make(map[string]*Stream),
		lockers:       make(map[string]Locker),
	}
	s.lockerFactory = func(dir string) Locker { return lock.New(dir) }
	for _, opt := range opts {
		opt(s)
	}

	m, err := newMetrics(s.registerer)
	if err != nil {
		return nil, errors.New(op).Err(err).Msg("failed to register metrics")
	}
	s.metrics = m

	s.diag = zerolog.New(zerolog.ConsoleWriter{Out: s.stderr, NoColor: true}).
		With().Timestamp().Str("component", "logging").Logger()
	s.echoErrors.Store(true)
	return s, nil
}

// Initialize sets up from the Config field.
func (s *Service) Initialize() error {
	const op errors.Op = "logging.Service.Initialize"
	if s == nil {
		return errors.New(op).Msg(errMsgNilService)
	}
	return s.SetupFromConfig(s.Config)
}

// Stream returns the stream called name, creating it and its dotted ancestors on first use.
func (s *Service) Stream(name string) *Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamLocked(name)
}

func (s *Service) streamLocked(name string) *Stream {
	if st, ok := s.streams[name]; ok {
		return st
	}
	var parent *Stream
	if i := strings.LastIndex(name, "."); i > 0 {
		parent = s.streamLocked(name[:i])
	}
	st := newStream(name, parent, s.clock, s.sinkFailed, s.metrics)
	s.streams[name] = st
	return st
}

// Logger returns the client's own stream.
func (s *Service) Logger() *Stream {
	return s.Stream(LocalStreamName)
}

// StdoutSink and StderrSink are nil before Presetup.
func (s *Service) StdoutSink() *ConsoleSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stdoutSink
}

func (s *Service) StderrSink() *ConsoleSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stderrSink
}

// FileSinks returns the rotating sinks created by setup, in creation order.
func (s *Service) FileSinks() []*RotatingFileSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*RotatingFileSink, len(s.fileSinks))
	copy(out, s.fileSinks)
	return out
}

// TransferLog is the logger the transfer sub-library writes to. It discards
// everything until Setup has run.
func (s *Service) TransferLog() *zerolog.Logger {
	if l := s.transferLog.Load(); l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

func (s *Service) registerLevels() {
	s.levelsOnce.Do(registerCustomLevels)
}

// Presetup attaches the console sinks to the local stream: standard output gets
// INFO up to (not including) WARNING, standard error gets WARNING and above.
func (s *Service) Presetup() {
	s.presetupOnce.Do(func() {
		s.registerLevels()
		local := s.Logger()
		local.SetThreshold(Trace)

		stdout := NewConsoleSink("stdout", s.stdout, Info, Warning)
		stderr := NewConsoleSink("stderr", s.stderr, Warning, NotSet)
		local.AddSink(stdout)
		local.AddSink(stderr)

		s.mu.Lock()
		s.stdoutSink = stdout
		s.stderrSink = stderr
		s.mu.Unlock()
	})
}

// Setup creates the three log files under logDir with default names and gates the
// console sinks by verbosity and errorLevel. Only the first successful call has any effect.
func (s *Service) Setup(verbosity, errorLevel Severity, logDir string, maxBytes int64, backupCount int) error {
	return s.setupOnceWith(verbosity, errorLevel, logDir, maxBytes, backupCount, defaultFileNames(), emptyString)
}

// SetupFromConfig validates cfg, maps its dials and runs Setup.
func (s *Service) SetupFromConfig(cfg *Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	return s.setupOnceWith(
		VerbosityLevel(cfg.DebugLevel),
		ErrorLevel(cfg.ErrorLevel),
		cfg.LogDir, cfg.LogSize, cfg.LogRotate,
		cfg.fileNames(), cfg.LockDir,
	)
}

func (s *Service) setupOnceWith(verbosity, errorLevel Severity, logDir string, maxBytes int64, backupCount int, names fileNames, lockDir string) error {
	return s.setupOnce.Do(func() error {
		if lockDir != emptyString {
			s.mu.Lock()
			if s.lockDir == emptyString {
				s.lockDir = lockDir
			}
			s.mu.Unlock()
		}
		return s.setup(verbosity, errorLevel, logDir, maxBytes, backupCount, names)
	})
}

func (s *Service) setup(verbosity, errorLevel Severity, logDir string, maxBytes int64, backupCount int, names fileNames) error {
	const op errors.Op = "logging.Service.setup"
	s.Presetup()

	// Keep file creation noise off the terminal until the dials apply.
	stdout, stderr := s.StdoutSink(), s.StderrSink()
	stdout.SetLevel(SuppressAll)
	stderr.SetLevel(SuppressAll)
	defer func() {
		stdout.SetLevel(verbosity)
		stderr.SetLevel(errorLevel)
	}()

	if err := s.setupLocalStream(logDir, maxBytes, backupCount, names.local); err != nil {
		return errors.New(op).Err(err).Msg("failed to set up " + LocalStreamName + " stream")
	}
	if err := s.setupTransferLogger(logDir, maxBytes, backupCount, verbosity, names.transfer); err != nil {
		return errors.New(op).Err(err).Msg("failed to set up transfer logger")
	}
	if err := s.setupNativeStream(logDir, maxBytes, backupCount, SubDebug, names.native); err != nil {
		return errors.New(op).Err(err).Msg("failed to set up " + NativeStreamName + " stream")
	}
	native := s.Stream(NativeStreamName)
	native.AddSink(stdout)
	native.AddSink(stderr)

	// From here on a broken sink only shows up in metrics and the error hook.
	s.echoErrors.Store(false)
	return nil
}

func (s *Service) setupLocalStream(logDir string, maxBytes int64, backupCount int, name string) error {
	return s.localOnce.Do(func() error {
		sink, err := s.newFileSink(filepath.Join(logDir, name), maxBytes, backupCount)
		if err != nil {
			return err
		}
		local := s.Logger()
		local.SetThreshold(Trace)
		local.AddSink(sink)

		warnings := s.Stream(WarningsStreamName)
		warnings.SetPropagate(false)
		warnings.AddSink(s.StderrSink())
		warnings.AddSink(sink)
		if s.captureStdLog {
			s.mu.Lock()
			s.stdLog = captureStdLog(warnings)
			s.mu.Unlock()
		}
		paintMark(local)
		return nil
	})
}

func (s *Service) setupTransferLogger(logDir string, maxBytes int64, backupCount int, verbosity Severity, name string) error {
	return s.transferOnce.Do(func() error {
		w, err := newTransferWriter(filepath.Join(logDir, name), maxBytes, backupCount)
		if err != nil {
			return err
		}
		debug := verbosity <= Debug
		level := zerolog.InfoLevel
		if debug {
			level = zerolog.DebugLevel
		}
		logger := zerolog.New(w).Level(level).With().Timestamp().Logger()

		s.mu.Lock()
		s.transferOut = w
		s.mu.Unlock()
		s.transferLog.Store(&logger)
		if s.transfer != nil {
			s.transfer.SetLogOutput(w, debug)
		}
		return nil
	})
}

func (s *Service) setupNativeStream(logDir string, maxBytes int64, backupCount int, threshold Severity, name string) error {
	return s.nativeOnce.Do(func() error {
		sink, err := s.newFileSink(filepath.Join(logDir, name), maxBytes, backupCount)
		if err != nil {
			return err
		}
		native := s.Stream(NativeStreamName)
		native.SetPropagate(false)
		native.AddSink(sink)
		native.SetThreshold(threshold)
		paintMark(native)
		return nil
	})
}

func paintMark(st *Stream) {
	st.Log(Info, LogMarker)
}

// sinkFailed is the error channel of every stream owned by the service.
func (s *Service) sinkFailed(err error, rec Record, sink Sink) {
	s.reportError(err, rec, sink.Name())
}

func (s *Service) reportError(err error, rec Record, source string) {
	if s.errorHook != nil {
		s.errorHook(err, rec)
	}
	if !s.echoErrors.Load() {
		return
	}
	chain := walkErrorChain(err)
	s.diag.Error().
		Str("source", source).
		Str("stream", rec.Stream).
		Str("record", rec.Message).
		Str("error_chain", chain.String()).
		Strs("error_ops", chain.namedOps()).
		Str("root_cause", chain.root()).
		Str("root_op", chain.rootOp()).
		Msg("logging failure")
}

// Close flushes and closes every file and restores the standard library logger.
// Streams stay usable; file sinks reopen on the next record.
func (s *Service) Close() error {
	s.mu.Lock()
	sinks := s.fileSinks
	transferOut := s.transferOut
	stdLog := s.stdLog
	s.stdLog = nil
	s.mu.Unlock()

	var err error
	if stdLog != nil {
		stdLog.restore()
	}
	for _, sink := range sinks {
		err = multierr.Append(err, sink.Close())
	}
	if transferOut != nil {
		err = multierr.Append(err, transferOut.Close())
	}
	return err
}
