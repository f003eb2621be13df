package logging

import (
	stderrs "errors"
	"os"
	"strconv"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/Station-Manager/errors"
	"github.com/Station-Manager/pkglogging/internal/lock"
)

const (
	// rotationBackoff is the fixed sleep between attempts when a sibling holds the rotation lock.
	rotationBackoff = 10 * time.Millisecond
	filePerm        = 0o644
)

// ErrLockContended must be returned (or wrapped) by a Locker whose lock is held elsewhere.
var ErrLockContended = lock.ErrContended

// Locker is the process-shared lock taken around a rollover.
type Locker interface {
	TryLock() error
	Unlock() error
}

type nopLocker struct{}

func (nopLocker) TryLock() error { return nil }
func (nopLocker) Unlock() error  { return nil }

// FileSinkOption customises a RotatingFileSink.
type FileSinkOption func(*RotatingFileSink)

// WithFormatter replaces the default LineFormatter.
func WithFormatter(f Formatter) FileSinkOption {
	return func(s *RotatingFileSink) { s.formatter = f }
}

// WithSinkClock sets the clock used for the contention backoff.
func WithSinkClock(c clock.Clock) FileSinkOption {
	return func(s *RotatingFileSink) { s.clock = c }
}

func withSinkMetrics(m *metrics) FileSinkOption {
	return func(s *RotatingFileSink) { s.metrics = m }
}

// RotatingFileSink appends formatted records to a file and rotates it once it
// would grow past maxBytes. Rotation runs under a Locker shared by every process
// writing to the same directory, so two processes never rotate at once. Plain
// appends are not serialised across processes.
//
// A maxBytes or backupCount of zero disables rotation; the file then grows unbounded.
type RotatingFileSink struct {
	sinkLevel
	path        string
	maxBytes    int64
	backupCount int
	locker      Locker
	formatter   Formatter
	clock       clock.Clock
	metrics     *metrics

	mu sync.Mutex
	fd *os.File
}

// NewRotatingFileSink creates a sink for path. The file is opened on the first Emit.
// A nil locker only serialises rotation within this sink.
func NewRotatingFileSink(path string, maxBytes int64, backupCount int, locker Locker, opts ...FileSinkOption) *RotatingFileSink {
	if locker == nil {
		locker = nopLocker{}
	}
	s := &RotatingFileSink{
		path:        path,
		maxBytes:    maxBytes,
		backupCount: backupCount,
		locker:      locker,
		formatter:   LineFormatter{},
		clock:       clock.NewClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RotatingFileSink) Name() string {
	return s.path
}

// Path returns the current (un-suffixed) file path.
func (s *RotatingFileSink) Path() string {
	return s.path
}

func (s *RotatingFileSink) Enabled(level Severity) bool {
	return s.enabled(level)
}

// Emit writes rec, rotating first when needed. While the rotation lock is held by
// a sibling it sleeps and retries without limit; any other failure is returned.
func (s *RotatingFileSink) Emit(rec Record) error {
	line := s.formatter.Format(rec)

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		err := s.emitLocked(line)
		if !stderrs.Is(err, ErrLockContended) {
			return err
		}
		s.metrics.contended()
		s.clock.Sleep(rotationBackoff)
	}
}

func (s *RotatingFileSink) emitLocked(line string) error {
	const op errors.Op = "logging.RotatingFileSink.emit"
	if s.fd == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	rollover, err := s.shouldRollover(int64(len(line)))
	if err != nil {
		return err
	}
	if rollover {
		if err = s.locker.TryLock(); err != nil {
			return err
		}
		err = s.rolloverLocked(int64(len(line)))
		if unlockErr := s.locker.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
		if err != nil {
			return err
		}
	}

	if _, err = s.fd.WriteString(line); err != nil {
		return errors.New(op).Err(err).Msg("failed to write " + s.path)
	}
	return nil
}

// shouldRollover reports whether appending n bytes reaches maxBytes. An empty file
// never rotates, so a single oversized record is written as is. It measures the
// file at the path rather than the open handle, and follows the path when a sibling
// process has already rotated the handle's file away.
func (s *RotatingFileSink) shouldRollover(n int64) (bool, error) {
	if s.maxBytes <= 0 || s.backupCount <= 0 {
		return false, nil
	}
	size, err := s.syncHandle()
	if err != nil || size == 0 {
		return false, err
	}
	return size+n >= s.maxBytes, nil
}

// syncHandle reopens the path when the handle no longer refers to it and returns the file size.
func (s *RotatingFileSink) syncHandle() (int64, error) {
	const op errors.Op = "logging.RotatingFileSink.syncHandle"
	pathInfo, err := os.Stat(s.path)
	if err != nil && !os.IsNotExist(err) {
		return 0, errors.New(op).Err(err).Msg("failed to stat " + s.path)
	}

	stale := err != nil
	if !stale {
		// Devices and pipes never rotate.
		if !pathInfo.Mode().IsRegular() {
			return 0, nil
		}
		fdInfo, statErr := s.fd.Stat()
		if statErr != nil {
			return 0, errors.New(op).Err(statErr).Msg("failed to stat open handle of " + s.path)
		}
		stale = !os.SameFile(pathInfo, fdInfo)
	}
	if !stale {
		return pathInfo.Size(), nil
	}

	if err = s.reopen(); err != nil {
		return 0, err
	}
	fdInfo, err := s.fd.Stat()
	if err != nil {
		return 0, errors.New(op).Err(err).Msg("failed to stat reopened " + s.path)
	}
	return fdInfo.Size(), nil
}

// rolloverLocked must be called with the rotation lock held.
func (s *RotatingFileSink) rolloverLocked(n int64) error {
	// A sibling may have rotated between our size check and taking the lock.
	rollover, err := s.shouldRollover(n)
	if err != nil || !rollover {
		return err
	}

	s.closeHandle()
	if err = s.rotateBackups(); err != nil {
		return err
	}
	if err = s.open(); err != nil {
		return err
	}
	_ = s.fd.Chmod(filePerm)
	s.metrics.rotated(s.path)
	return nil
}

// rotateBackups shifts path.N-1 -> path.N ... path -> path.1, discarding the oldest.
func (s *RotatingFileSink) rotateBackups() error {
	const op errors.Op = "logging.RotatingFileSink.rotateBackups"
	for i := s.backupCount - 1; i > 0; i-- {
		src := s.backupName(i)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := s.backupName(i + 1)
		if err := removeIfExists(dst); err != nil {
			return errors.New(op).Err(err).Msg("failed to remove " + dst)
		}
		if err := os.Rename(src, dst); err != nil {
			return errors.New(op).Err(err).Msg("failed to rename " + src)
		}
	}

	dst := s.backupName(1)
	if err := removeIfExists(dst); err != nil {
		return errors.New(op).Err(err).Msg("failed to remove " + dst)
	}
	if err := os.Rename(s.path, dst); err != nil && !os.IsNotExist(err) {
		return errors.New(op).Err(err).Msg("failed to rename " + s.path)
	}
	return nil
}

func (s *RotatingFileSink) backupName(i int) string {
	return s.path + "." + strconv.Itoa(i)
}

func (s *RotatingFileSink) open() error {
	const op errors.Op = "logging.RotatingFileSink.open"
	fd, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return errors.New(op).Err(err).Msg("failed to open " + s.path)
	}
	s.fd = fd
	return nil
}

func (s *RotatingFileSink) reopen() error {
	s.closeHandle()
	return s.open()
}

func (s *RotatingFileSink) closeHandle() {
	if s.fd != nil {
		_ = s.fd.Close()
		s.fd = nil
	}
}

// Close flushes and closes the file. A later Emit reopens it.
func (s *RotatingFileSink) Close() error {
	const op errors.Op = "logging.RotatingFileSink.Close"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd == nil {
		return nil
	}
	err := s.fd.Close()
	s.fd = nil
	if err != nil {
		return errors.New(op).Err(err).Msg("failed to close " + s.path)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
