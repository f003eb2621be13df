package logging

import (
	"os"
	"path/filepath"

	"github.com/Station-Manager/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

const dirPerm = 0o755

// ensureLogFile creates the directory and an empty file when path is missing.
// New files are made world-readable so crash reporters running as another user can attach them.
func ensureLogFile(path string) error {
	const op errors.Op = "logging.ensureLogFile"
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return errors.New(op).Err(err).Msg(errMsgLogDir)
	}
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgLogFile)
	}
	if err = fd.Close(); err != nil {
		return errors.New(op).Err(err).Msg(errMsgLogFile)
	}
	if err = os.Chmod(path, filePerm); err != nil {
		return errors.New(op).Err(err).Msg(errMsgLogFile)
	}
	return nil
}

// newFileSink ensures the file exists and builds a sink sharing the directory's rotation lock.
func (s *Service) newFileSink(path string, maxBytes int64, backupCount int) (*RotatingFileSink, error) {
	if err := ensureLogFile(path); err != nil {
		return nil, err
	}
	sink := NewRotatingFileSink(path, maxBytes, backupCount, s.rotationLock(filepath.Dir(path)),
		WithSinkClock(s.clock),
		withSinkMetrics(s.metrics),
	)
	s.mu.Lock()
	s.fileSinks = append(s.fileSinks, sink)
	s.mu.Unlock()
	return sink, nil
}

// rotationLock returns the single Locker used for every file in logDir.
func (s *Service) rotationLock(logDir string) Locker {
	s.mu.Lock()
	defer s.mu.Unlock()
	dir := s.lockDir
	if dir == emptyString {
		dir = logDir
	}
	if l, ok := s.lockers[dir]; ok {
		return l
	}
	l := s.lockerFactory(dir)
	s.lockers[dir] = l
	return l
}

// newTransferWriter opens the file the transfer sub-library writes to. That file
// is only ever written by the sub-library of this process, so it rotates on its own.
func newTransferWriter(path string, maxBytes int64, backupCount int) (*lumberjack.Logger, error) {
	if err := ensureLogFile(path); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    megabytes(maxBytes),
		MaxBackups: backupCount,
	}, nil
}

// megabytes rounds up to lumberjack's unit; lumberjack treats 0 as its own default.
func megabytes(n int64) int {
	const mb = 1 << 20
	if n <= 0 {
		return 0
	}
	return int((n + mb - 1) / mb)
}
