//go:build !unix

package lock

import (
	"os"

	"github.com/Station-Manager/errors"
)

// Without flock the lock file itself is the lock: creating it acquires, removing it releases.
func (l *FileLock) lockFile() error {
	const op errors.Op = "lock.FileLock.lockFile"
	fd, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err != nil {
		if os.IsExist(err) {
			return ErrContended
		}
		return errors.New(op).Err(err).Msg("failed to create lock file " + l.path)
	}
	l.fd = fd
	if err = l.writePid(); err != nil {
		l.closeFileDescriptor()
		_ = os.Remove(l.path)
		return errors.New(op).Err(err).Msg("failed to write PID to lock file")
	}
	return nil
}

func (l *FileLock) unlockFile() error {
	const op errors.Op = "lock.FileLock.unlockFile"
	if l.fd == nil {
		return nil
	}
	l.closeFileDescriptor()
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.New(op).Err(err).Msg("failed to remove lock file " + l.path)
	}
	return nil
}
