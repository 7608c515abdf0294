//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package filelock

import "os"
import "syscall"

// WithExclusive opens path (creating it if necessary), takes an
// exclusive flock, runs fn with the open file, and releases the lock
// before returning — the shape Save needs: open, truncate, write, done.
func WithExclusive(path string, fn func(f *os.File) error) error {
	return withFlock(path, os.O_CREATE|os.O_RDWR, syscall.LOCK_EX, fn)
}

// WithShared opens path, takes a shared flock, runs fn with the open
// file, and releases the lock before returning — the shape
// LoadFromFile needs: open, read, done, allowing concurrent readers
// but never alongside a WithExclusive writer.
func WithShared(path string, fn func(f *os.File) error) error {
	return withFlock(path, os.O_CREATE|os.O_RDONLY, syscall.LOCK_SH, fn)
}

func withFlock(path string, flag int, how int, fn func(f *os.File) error) error {
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		return err
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	return fn(f)
}
