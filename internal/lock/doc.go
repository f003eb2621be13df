// Package lock implements the advisory lock that serialises log rotation
// across every process sharing a log directory.
//
// A FileLock combines an in-process mutex with an exclusive, non-blocking
// flock(2) on a well-known file. TryLock never blocks: when either the mutex
// or the file lock is held elsewhere it returns ErrContended and the caller
// decides how to wait.
package lock
