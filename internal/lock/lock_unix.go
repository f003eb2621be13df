//go:build unix

package lock

import (
	stderrs "errors"
	"os"

	"github.com/Station-Manager/errors"
	"golang.org/x/sys/unix"
)

func (l *FileLock) lockFile() error {
	const op errors.Op = "lock.FileLock.lockFile"
	fd, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return errors.New(op).Err(err).Msg("failed to open lock file " + l.path)
	}
	l.fd = fd

	if err = unix.Flock(int(fd.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		l.closeFileDescriptor()
		// EWOULDBLOCK and EAGAIN are distinct on some older systems; treat both as contention.
		if stderrs.Is(err, unix.EWOULDBLOCK) || stderrs.Is(err, unix.EAGAIN) {
			return ErrContended
		}
		return errors.New(op).Err(err).Msg("failed to acquire lock " + l.path)
	}

	if err = l.writePid(); err != nil {
		_ = unix.Flock(int(fd.Fd()), unix.LOCK_UN)
		l.closeFileDescriptor()
		return errors.New(op).Err(err).Msg("failed to write PID to lock file")
	}
	return nil
}

func (l *FileLock) unlockFile() error {
	const op errors.Op = "lock.FileLock.unlockFile"
	if l.fd == nil {
		return nil
	}
	var err error
	if flockErr := unix.Flock(int(l.fd.Fd()), unix.LOCK_UN); flockErr != nil {
		err = errors.New(op).Err(flockErr).Msg("failed to release lock " + l.path)
	}
	// Closing the descriptor drops the flock even when LOCK_UN failed.
	if closeErr := l.fd.Close(); closeErr != nil && err == nil {
		err = errors.New(op).Err(closeErr).Msg("failed to close lock file " + l.path)
	}
	l.fd = nil
	return err
}
