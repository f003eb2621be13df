package lock

import (
	stderrs "errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// FileName is the lock file created in the lock directory.
const FileName = "log_lock.pid"

// ErrContended is returned by TryLock when another process or goroutine holds the lock.
var ErrContended = stderrs.New("lock: held by another owner")

// FileLock is a process-shared rotation lock keyed by a file path.
type FileLock struct {
	path string
	pid  int
	mu   sync.Mutex
	fd   *os.File
}

// New returns a FileLock for dir. Nothing is touched on disk until TryLock.
func New(dir string) *FileLock {
	return &FileLock{
		path: filepath.Join(dir, FileName),
		pid:  os.Getpid(),
	}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// TryLock acquires the lock without blocking.
func (l *FileLock) TryLock() error {
	if !l.mu.TryLock() {
		return ErrContended
	}
	if err := l.lockFile(); err != nil {
		l.mu.Unlock()
		return err
	}
	return nil
}

// Unlock releases a lock obtained with TryLock.
func (l *FileLock) Unlock() error {
	err := l.unlockFile()
	l.mu.Unlock()
	return err
}

// writePid records the owner for whoever inspects a stuck lock file.
func (l *FileLock) writePid() error {
	if err := l.fd.Truncate(0); err != nil {
		return err
	}
	_, err := l.fd.WriteAt([]byte(strconv.Itoa(l.pid)), 0)
	return err
}

func (l *FileLock) closeFileDescriptor() {
	if l.fd != nil {
		_ = l.fd.Close()
		l.fd = nil
	}
}
